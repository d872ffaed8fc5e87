package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jihwankim/rfc/pkg/config"
)

var runIDCounter int64

// generateRunID builds a unique run identifier, grounded on
// pkg/core/orchestrator's generateTestID (there: "test-<unix-seconds>");
// a per-process counter is appended so runs within the same batch job,
// which can complete inside the same second, don't collide.
func generateRunID() string {
	n := atomic.AddInt64(&runIDCounter, 1)
	return fmt.Sprintf("run-%d-%d", time.Now().Unix(), n)
}

// loadConfig loads the configuration from file, auto-generating a
// default one if it doesn't exist yet, grounded on
// cmd/chaos-runner/utils.go's loadConfig.
func loadConfig() (*config.Config, error) {
	configPath := cfgFile
	if configPath == "" {
		configPath = "config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("config file not found, creating default configuration at: %s\n", configPath)

		cfg := config.DefaultConfig()
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// readLoadHistory reads a numeric load history from path. A .csv
// extension is parsed column-wise, taking the last column of each
// record (so a timestamp,value file works without extra flags); any
// other extension is read as one floating-point value per line,
// blank lines and lines starting with '#' skipped. No example repo in
// the retrieval pack ships a third-party CSV library, so this uses
// encoding/csv directly.
func readLoadHistory(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSV(f)
	}
	return readLines(f)
}

func readCSV(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var data []float64
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		field := strings.TrimSpace(record[len(record)-1])
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue // header row or non-numeric column, skip
		}
		data = append(data, v)
	}
	return data, nil
}

func readLines(r io.Reader) ([]float64, error) {
	var data []float64
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", line, err)
		}
		data = append(data, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return data, nil
}

// parseSetFlags parses --set key=value flags into a map.
func parseSetFlags(setFlags []string) map[string]string {
	overrides := make(map[string]string)
	for _, flag := range setFlags {
		parts := strings.SplitN(flag, "=", 2)
		if len(parts) == 2 {
			overrides[parts[0]] = parts[1]
		}
	}
	return overrides
}

// applyCountingOverrides applies --set key=value overrides directly to
// a CountingConfig, for a single ad hoc run (batch jobs instead layer
// overrides through batch.OptionsOverride.Merge).
func applyCountingOverrides(cc *config.CountingConfig, overrides map[string]string) error {
	for key, value := range overrides {
		var err error
		switch key {
		case "class_count":
			err = setUint32(&cc.ClassCount, value)
		case "class_width":
			err = setFloat(&cc.ClassWidth, value)
		case "class_offset":
			err = setFloat(&cc.ClassOffset, value)
		case "hysteresis":
			err = setFloat(&cc.Hysteresis, value)
		case "residual_method":
			cc.ResidualMethod = value
		case "spread_damage":
			cc.SpreadDamage = value
		case "lc_method":
			cc.LCMethod = value
		case "use_hcm":
			err = setBool(&cc.UseHCM, value)
		case "use_astm":
			err = setBool(&cc.UseASTM, value)
		case "enforce_margin":
			err = setBool(&cc.EnforceMargin, value)
		case "auto_resize":
			err = setBool(&cc.AutoResize, value)
		case "sd":
			err = setFloat(&cc.SD, value)
		case "nd":
			err = setFloat(&cc.ND, value)
		case "k":
			err = setFloat(&cc.K, value)
		case "k2":
			err = setFloat(&cc.K2, value)
		default:
			return fmt.Errorf("unsupported override key: %s", key)
		}
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}
	return nil
}

func setFloat(dst *float64, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setUint32(dst *uint32, value string) error {
	v, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return err
	}
	*dst = uint32(v)
	return nil
}

func setBool(dst *bool, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
