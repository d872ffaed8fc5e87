// Package batch declares the YAML job format a batch run of the
// counting engine consumes: one or more input sources plus option
// overrides for each. Grounded on _examples/jhkimqd-chaos-utils
// pkg/scenario/types.go's apiVersion/kind/metadata/spec envelope, with
// Targets/Faults/SuccessCriteria replaced by Sources/Overrides/Checks.
package batch

import "time"

// Job is a complete batch job description.
type Job struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       JobSpec  `yaml:"spec"`
}

// Metadata carries descriptive, non-semantic job information.
type Metadata struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// JobSpec is the semantic body of a Job.
type JobSpec struct {
	// Sources are the input load histories to count, in order.
	Sources []Source `yaml:"sources"`

	// Overrides holds rfc.Options overrides applied to every source
	// unless a Source carries its own.
	Overrides OptionsOverride `yaml:"overrides,omitempty"`

	// Checks names conformance properties. It is parsed but not read by
	// the batch command: --verify always runs every applicable check.
	Checks []string `yaml:"checks,omitempty"`

	// ExecutionMode is "sequential" or "parallel".
	ExecutionMode string `yaml:"execution_mode,omitempty"`

	// Timeout is parsed but not enforced; a batch job runs until every
	// source is done or it is stopped.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Source names one input file and its own option overrides.
type Source struct {
	// Path to a CSV or newline-delimited numeric input file.
	Path string `yaml:"path"`

	// Alias is an optional name for this source. The validator rejects
	// duplicate aliases; reports identify a source by Path, not Alias.
	Alias string `yaml:"alias,omitempty"`

	// Overrides applied to this source only, layered on top of the job's
	// own OptionsOverride.
	Overrides OptionsOverride `yaml:"overrides,omitempty"`
}

// OptionsOverride mirrors the fields of rfc.Options a batch job may set
// from YAML; zero values mean "use the default/inherited value".
type OptionsOverride struct {
	ClassCount     uint32  `yaml:"class_count,omitempty"`
	ClassWidth     float64 `yaml:"class_width,omitempty"`
	ClassOffset    float64 `yaml:"class_offset,omitempty"`
	Hysteresis     float64 `yaml:"hysteresis,omitempty"`
	ResidualMethod string  `yaml:"residual_method,omitempty"`
	SpreadDamage   string  `yaml:"spread_damage,omitempty"`
	LCMethod       string  `yaml:"lc_method,omitempty"`
	UseHCM         bool    `yaml:"use_hcm,omitempty"`
	UseASTM        bool    `yaml:"use_astm,omitempty"`
	EnforceMargin  bool    `yaml:"enforce_margin,omitempty"`
	AutoResize     bool    `yaml:"auto_resize,omitempty"`
}

// Merge layers override on top of o, with override's nonzero fields
// taking precedence.
func (o OptionsOverride) Merge(override OptionsOverride) OptionsOverride {
	merged := o
	if override.ClassCount != 0 {
		merged.ClassCount = override.ClassCount
	}
	if override.ClassWidth != 0 {
		merged.ClassWidth = override.ClassWidth
	}
	if override.ClassOffset != 0 {
		merged.ClassOffset = override.ClassOffset
	}
	if override.Hysteresis != 0 {
		merged.Hysteresis = override.Hysteresis
	}
	if override.ResidualMethod != "" {
		merged.ResidualMethod = override.ResidualMethod
	}
	if override.SpreadDamage != "" {
		merged.SpreadDamage = override.SpreadDamage
	}
	if override.LCMethod != "" {
		merged.LCMethod = override.LCMethod
	}
	merged.UseHCM = merged.UseHCM || override.UseHCM
	merged.UseASTM = merged.UseASTM || override.UseASTM
	merged.EnforceMargin = merged.EnforceMargin || override.EnforceMargin
	merged.AutoResize = merged.AutoResize || override.AutoResize
	return merged
}
