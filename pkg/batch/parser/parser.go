// Package parser reads batch.Job documents from YAML, with ${VAR}
// substitution against the process environment and parser-set
// variables, grounded on _examples/jhkimqd-chaos-utils
// pkg/scenario/parser/parser.go.
package parser

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jihwankim/rfc/pkg/batch"
)

var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Parser parses batch job YAML, substituting ${VAR}/$VAR references.
type Parser struct {
	Variables map[string]string
}

// New builds a Parser with the given substitution variables.
func New(variables map[string]string) *Parser {
	if variables == nil {
		variables = make(map[string]string)
	}
	return &Parser{Variables: variables}
}

// ParseFile reads and parses a batch job from path.
func (p *Parser) ParseFile(path string) (*batch.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch job file: %w", err)
	}
	return p.Parse(data)
}

// Parse parses a batch job from YAML bytes.
func (p *Parser) Parse(data []byte) (*batch.Job, error) {
	substituted := p.substitute(string(data))

	var job batch.Job
	if err := yaml.Unmarshal([]byte(substituted), &job); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := p.validateRequiredFields(&job); err != nil {
		return nil, err
	}

	return &job, nil
}

func (p *Parser) substitute(content string) string {
	return varPattern.ReplaceAllStringFunc(content, func(match string) string {
		var name string
		if strings.HasPrefix(match, "${") {
			name = match[2 : len(match)-1]
		} else {
			name = match[1:]
		}
		if v, ok := p.Variables[name]; ok {
			return v
		}
		if v := os.Getenv(name); v != "" {
			return v
		}
		return match
	})
}

// SetVariable sets one substitution variable.
func (p *Parser) SetVariable(key, value string) { p.Variables[key] = value }

// ParseOverrides parses `--set key=value` strings into a string map,
// keeping keys/values as-is for ApplyOverrides to interpret.
func ParseOverrides(overrides []string) (map[string]string, error) {
	result := make(map[string]string, len(overrides))
	for _, o := range overrides {
		parts := strings.SplitN(o, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid override format: %s (expected key=value)", o)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			return nil, fmt.Errorf("empty key in override: %s", o)
		}
		result[key] = value
	}
	return result, nil
}

// ApplyOverrides applies CLI `--set` overrides to a job's top-level
// OptionsOverride.
func ApplyOverrides(job *batch.Job, overrides map[string]string) error {
	for key, value := range overrides {
		switch key {
		case "class_count", "overrides.class_count":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid class_count override: %w", err)
			}
			job.Spec.Overrides.ClassCount = uint32(n)
		case "hysteresis", "overrides.hysteresis":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid hysteresis override: %w", err)
			}
			job.Spec.Overrides.Hysteresis = f
		case "residual_method", "overrides.residual_method":
			job.Spec.Overrides.ResidualMethod = value
		case "spread_damage", "overrides.spread_damage":
			job.Spec.Overrides.SpreadDamage = value
		case "lc_method", "overrides.lc_method":
			job.Spec.Overrides.LCMethod = value
		default:
			return fmt.Errorf("unsupported override key: %s", key)
		}
	}
	return nil
}

func (p *Parser) validateRequiredFields(job *batch.Job) error {
	if job.APIVersion == "" {
		return fmt.Errorf("apiVersion is required")
	}
	if job.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	if job.Metadata.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	if len(job.Spec.Sources) == 0 {
		return fmt.Errorf("spec.sources is required and must have at least one source")
	}
	for i, src := range job.Spec.Sources {
		if src.Path == "" {
			return fmt.Errorf("spec.sources[%d].path is required", i)
		}
	}
	return nil
}
