// Package validator checks a batch.Job for structural and semantic
// problems before it runs, grounded on _examples/jhkimqd-chaos-utils
// pkg/scenario/validator/validator.go's accumulating Warnings/Errors
// shape.
package validator

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jihwankim/rfc/pkg/batch"
)

var nameRegex = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

var validResidualMethods = map[string]bool{
	"": true, "none": true, "discard": true, "half_cycles": true, "full_cycles": true,
	"clormann_seeger": true, "repeated": true, "din45667": true,
}

var validSpreadMethods = map[string]bool{
	"": true, "none": true, "half_23": true, "ramp_amplitude_23": true, "ramp_damage_23": true,
	"ramp_amplitude_24": true, "ramp_damage_24": true, "full_p2": true, "full_p3": true,
	"transient_23": true, "transient_23c": true,
}

var validLCMethods = map[string]bool{"": true, "slopes_up": true, "slopes_down": true, "slopes_all": true}

// Validator accumulates Warnings (non-fatal) and Errors (fatal) while
// checking a Job.
type Validator struct {
	Warnings []string
	Errors   []string
}

// New builds an empty Validator.
func New() *Validator {
	return &Validator{Warnings: make([]string, 0), Errors: make([]string, 0)}
}

// Validate checks job, resetting any prior Warnings/Errors.
func (v *Validator) Validate(job *batch.Job) error {
	v.Warnings = v.Warnings[:0]
	v.Errors = v.Errors[:0]

	v.validateEnvelope(job)
	v.validateSources(job)
	v.validateOverrides(job.Spec.Overrides, "spec.overrides")
	for i, src := range job.Spec.Sources {
		v.validateOverrides(src.Overrides, fmt.Sprintf("spec.sources[%d].overrides", i))
	}
	v.validateExecutionMode(job)

	if len(v.Errors) > 0 {
		return fmt.Errorf("validation failed with %d errors", len(v.Errors))
	}
	return nil
}

// HasWarnings reports whether the last Validate call found warnings.
func (v *Validator) HasWarnings() bool { return len(v.Warnings) > 0 }

// HasErrors reports whether the last Validate call found errors.
func (v *Validator) HasErrors() bool { return len(v.Errors) > 0 }

// GetReport renders Errors and Warnings as a human-readable report.
func (v *Validator) GetReport() string {
	var sb strings.Builder
	if len(v.Errors) > 0 {
		sb.WriteString("ERRORS:\n")
		for _, e := range v.Errors {
			fmt.Fprintf(&sb, "  - %s\n", e)
		}
	}
	if len(v.Warnings) > 0 {
		sb.WriteString("\nWARNINGS:\n")
		for _, w := range v.Warnings {
			fmt.Fprintf(&sb, "  - %s\n", w)
		}
	}
	if len(v.Errors) == 0 && len(v.Warnings) == 0 {
		sb.WriteString("validation passed with no issues\n")
	}
	return sb.String()
}

func (v *Validator) validateEnvelope(job *batch.Job) {
	if job.APIVersion == "" {
		v.Errors = append(v.Errors, "apiVersion is required")
	} else if job.APIVersion != "rfc.io/v1" {
		v.Warnings = append(v.Warnings, fmt.Sprintf("apiVersion '%s' may not be supported (expected rfc.io/v1)", job.APIVersion))
	}

	if job.Kind == "" {
		v.Errors = append(v.Errors, "kind is required")
	} else if job.Kind != "BatchJob" {
		v.Warnings = append(v.Warnings, fmt.Sprintf("kind '%s' may not be supported (expected BatchJob)", job.Kind))
	}

	if job.Metadata.Name == "" {
		v.Errors = append(v.Errors, "metadata.name is required")
	} else if !nameRegex.MatchString(job.Metadata.Name) {
		v.Errors = append(v.Errors, "metadata.name must be lowercase alphanumeric with hyphens")
	}
}

func (v *Validator) validateSources(job *batch.Job) {
	if len(job.Spec.Sources) == 0 {
		v.Errors = append(v.Errors, "spec.sources must have at least one source")
		return
	}

	seenAlias := make(map[string]bool)
	for i, src := range job.Spec.Sources {
		if src.Path == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.sources[%d].path is required", i))
			continue
		}
		if _, err := os.Stat(src.Path); err != nil {
			v.Warnings = append(v.Warnings, fmt.Sprintf("spec.sources[%d].path '%s' does not exist on disk yet", i, src.Path))
		}
		if src.Alias != "" {
			if seenAlias[src.Alias] {
				v.Errors = append(v.Errors, fmt.Sprintf("spec.sources[%d].alias '%s' is duplicated", i, src.Alias))
			}
			seenAlias[src.Alias] = true
		}
	}
}

func (v *Validator) validateOverrides(o batch.OptionsOverride, field string) {
	if !validResidualMethods[o.ResidualMethod] {
		v.Errors = append(v.Errors, fmt.Sprintf("%s.residual_method '%s' is invalid", field, o.ResidualMethod))
	}
	if !validSpreadMethods[o.SpreadDamage] {
		v.Errors = append(v.Errors, fmt.Sprintf("%s.spread_damage '%s' is invalid", field, o.SpreadDamage))
	}
	if !validLCMethods[o.LCMethod] {
		v.Errors = append(v.Errors, fmt.Sprintf("%s.lc_method '%s' is invalid", field, o.LCMethod))
	}
	if o.Hysteresis < 0 {
		v.Errors = append(v.Errors, fmt.Sprintf("%s.hysteresis cannot be negative", field))
	}
	if o.UseHCM && o.UseASTM {
		v.Warnings = append(v.Warnings, fmt.Sprintf("%s sets both use_hcm and use_astm; use_astm takes precedence", field))
	}
}

func (v *Validator) validateExecutionMode(job *batch.Job) {
	if job.Spec.ExecutionMode == "" {
		return
	}
	if job.Spec.ExecutionMode != "sequential" && job.Spec.ExecutionMode != "parallel" {
		v.Errors = append(v.Errors, fmt.Sprintf("spec.execution_mode '%s' is invalid (must be 'sequential' or 'parallel')", job.Spec.ExecutionMode))
	}
	if len(job.Spec.Sources) > 50 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("large batch (%d sources) - ensure this is intentional", len(job.Spec.Sources)))
	}
}
