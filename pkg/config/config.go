// Package config loads and validates the on-disk configuration for a
// counting run or batch job. Grounded on _examples/jhkimqd-chaos-utils
// pkg/config/config.go: same Config/DefaultConfig/Load/Save/Validate
// shape, YAML with env-var expansion and a missing-file fallback to
// defaults, with the Kurtosis/Docker/Prometheus-discovery sections
// replaced by counting defaults and reporting settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jihwankim/rfc/pkg/rfc"
)

// Config is the top-level on-disk configuration.
type Config struct {
	Framework FrameworkConfig `yaml:"framework"`
	Counting  CountingConfig  `yaml:"counting"`
	Reporting ReportingConfig `yaml:"reporting"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Emergency EmergencyConfig `yaml:"emergency"`
	Execution ExecutionConfig `yaml:"execution"`
}

// FrameworkConfig contains general settings.
type FrameworkConfig struct {
	Version   string `yaml:"version"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// CountingConfig carries the default rfc.Options applied to any input
// that doesn't override them.
type CountingConfig struct {
	ClassCount     uint32  `yaml:"class_count"`
	ClassWidth     float64 `yaml:"class_width"`
	ClassOffset    float64 `yaml:"class_offset"`
	Hysteresis     float64 `yaml:"hysteresis"`
	ResidualMethod string  `yaml:"residual_method"`
	SpreadDamage   string  `yaml:"spread_damage"`
	LCMethod       string  `yaml:"lc_method"`
	UseHCM         bool    `yaml:"use_hcm"`
	UseASTM        bool    `yaml:"use_astm"`
	EnforceMargin  bool    `yaml:"enforce_margin"`
	AutoResize     bool    `yaml:"auto_resize"`
	SD             float64 `yaml:"sd"`
	ND             float64 `yaml:"nd"`
	K              float64 `yaml:"k"`
	K2             float64 `yaml:"k2"`
}

// ReportingConfig contains reporting and output settings.
type ReportingConfig struct {
	OutputDir string   `yaml:"output_dir"`
	KeepLastN int      `yaml:"keep_last_n"`
	Formats   []string `yaml:"formats"`
}

// MetricsConfig contains the Prometheus exporter's bind address.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// EmergencyConfig contains abort-on-stop-file settings for long batch runs.
type EmergencyConfig struct {
	StopFile           string        `yaml:"stop_file"`
	AutoCleanupTimeout time.Duration `yaml:"auto_cleanup_timeout"`
}

// ExecutionConfig contains batch execution settings.
type ExecutionConfig struct {
	DefaultMode        string `yaml:"default_mode"`
	MaxConcurrentFiles int    `yaml:"max_concurrent_files"`
}

// DefaultConfig returns a default configuration. Counting defaults are
// left zero-valued (class_count=0) as a signal to the caller to derive
// them from the input via rfc.DefaultOptions; only the ambient settings
// get concrete defaults here.
func DefaultConfig() *Config {
	return &Config{
		Framework: FrameworkConfig{
			Version:   "v1",
			LogLevel:  "info",
			LogFormat: "text",
		},
		Counting: CountingConfig{
			ResidualMethod: "repeated",
			SpreadDamage:   "transient_23c",
			LCMethod:       "slopes_up",
			SD:             1e3,
			ND:             1e7,
			K:              5,
			K2:             5,
		},
		Reporting: ReportingConfig{
			OutputDir: "./reports",
			KeepLastN: 50,
			Formats:   []string{"json", "text"},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Emergency: EmergencyConfig{
			StopFile:           "/tmp/rfc-emergency-stop",
			AutoCleanupTimeout: 5 * time.Minute,
		},
		Execution: ExecutionConfig{
			DefaultMode:        "sequential",
			MaxConcurrentFiles: 1,
		},
	}
}

// Load loads configuration from a YAML file, expanding ${VAR} references
// against the process environment. A missing file is not an error: Load
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "rfc.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Reporting.OutputDir == "" {
		return fmt.Errorf("reporting.output_dir is required")
	}
	if c.Execution.MaxConcurrentFiles < 1 {
		return fmt.Errorf("execution.max_concurrent_files must be at least 1")
	}
	if _, err := c.Counting.residualMethod(); err != nil {
		return err
	}
	if _, err := c.Counting.spreadMethod(); err != nil {
		return err
	}
	if _, err := c.Counting.lcMethod(); err != nil {
		return err
	}
	return nil
}

// ToOptions resolves the named Counting settings into rfc.Options, using
// data to derive any zero-valued class/hysteresis fields the same way
// rfc.DefaultOptions does.
func (c *Config) ToOptions(data []float64) (rfc.Options, error) {
	opts := rfc.DefaultOptions(data)

	if c.Counting.ClassCount != 0 {
		opts.ClassCount = c.Counting.ClassCount
	}
	if c.Counting.ClassWidth != 0 {
		opts.ClassWidth = c.Counting.ClassWidth
		opts.Hysteresis = c.Counting.ClassWidth
	}
	if c.Counting.ClassOffset != 0 {
		opts.ClassOffset = c.Counting.ClassOffset
	}
	if c.Counting.Hysteresis != 0 {
		opts.Hysteresis = c.Counting.Hysteresis
	}

	residual, err := c.Counting.residualMethod()
	if err != nil {
		return opts, err
	}
	opts.ResidualMethod = residual

	spread, err := c.Counting.spreadMethod()
	if err != nil {
		return opts, err
	}
	opts.SpreadDamage = spread

	lc, err := c.Counting.lcMethod()
	if err != nil {
		return opts, err
	}
	opts.LCMethod = lc

	opts.UseHCM = c.Counting.UseHCM
	opts.UseASTM = c.Counting.UseASTM
	opts.EnforceMargin = c.Counting.EnforceMargin
	opts.AutoResize = c.Counting.AutoResize

	if c.Counting.SD != 0 {
		opts.Curve = rfc.Curve{SD: c.Counting.SD, ND: c.Counting.ND, K: c.Counting.K, K2: c.Counting.K2}
	}

	return opts, nil
}

func (c CountingConfig) residualMethod() (rfc.ResidualMethod, error) {
	switch c.ResidualMethod {
	case "", "none":
		return rfc.ResidualNone, nil
	case "discard":
		return rfc.ResidualDiscard, nil
	case "half_cycles":
		return rfc.ResidualHalfCycles, nil
	case "full_cycles":
		return rfc.ResidualFullCycles, nil
	case "clormann_seeger":
		return rfc.ResidualClormannSeeger, nil
	case "repeated":
		return rfc.ResidualRepeated, nil
	case "din45667":
		return rfc.ResidualDIN45667, nil
	default:
		return 0, fmt.Errorf("counting.residual_method: unrecognized value %q", c.ResidualMethod)
	}
}

func (c CountingConfig) spreadMethod() (rfc.SDMethod, error) {
	switch c.SpreadDamage {
	case "none":
		return rfc.SDNone, nil
	case "", "half_23":
		return rfc.SDHalf23, nil
	case "ramp_amplitude_23":
		return rfc.SDRampAmplitude23, nil
	case "ramp_damage_23":
		return rfc.SDRampDamage23, nil
	case "ramp_amplitude_24":
		return rfc.SDRampAmplitude24, nil
	case "ramp_damage_24":
		return rfc.SDRampDamage24, nil
	case "full_p2":
		return rfc.SDFullP2, nil
	case "full_p3":
		return rfc.SDFullP3, nil
	case "transient_23":
		return rfc.SDTransient23, nil
	case "transient_23c":
		return rfc.SDTransient23c, nil
	default:
		return 0, fmt.Errorf("counting.spread_damage: unrecognized value %q", c.SpreadDamage)
	}
}

func (c CountingConfig) lcMethod() (rfc.LCMethod, error) {
	switch c.LCMethod {
	case "", "slopes_up":
		return rfc.SlopesUp, nil
	case "slopes_down":
		return rfc.SlopesDown, nil
	case "slopes_all":
		return rfc.SlopesAll, nil
	default:
		return 0, fmt.Errorf("counting.lc_method: unrecognized value %q", c.LCMethod)
	}
}
