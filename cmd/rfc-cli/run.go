package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jihwankim/rfc/pkg/report"
	"github.com/jihwankim/rfc/pkg/rfc"
	"github.com/jihwankim/rfc/pkg/verify"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Count one load history",
	Long: `Loads a single CSV or newline-delimited numeric input file, runs it
through the four-point rainflow rule, and writes a report.`,
	RunE: runCount,
}

func init() {
	runCmd.Flags().String("input", "", "path to a CSV or newline-delimited numeric input file")
	runCmd.Flags().StringArray("set", []string{}, "override counting options (e.g., --set residual_method=discard)")
	runCmd.Flags().String("format", "text", "report format (text, json)")
	runCmd.Flags().Bool("verify", false, "run conformance checks against the result")
	runCmd.Flags().Bool("dry-run", false, "parse and validate the input without counting it")
}

func runCount(cmd *cobra.Command, _ []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	if inputPath == "" {
		return fmt.Errorf("--input flag is required")
	}
	setFlags, _ := cmd.Flags().GetStringArray("set")
	format, _ := cmd.Flags().GetString("format")
	doVerify, _ := cmd.Flags().GetBool("verify")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logLevel := report.LevelInfo
	if verbose {
		logLevel = report.LevelDebug
	}
	logger := report.NewLogger(report.LoggerConfig{
		Level:  logLevel,
		Format: report.Format(cfg.Framework.LogFormat),
		Output: os.Stdout,
	})

	logger.Info("rfc-cli starting", "version", version)

	data, err := readLoadHistory(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	logger.Info("input loaded", "path", inputPath, "samples", len(data))

	if len(setFlags) > 0 {
		overrides := parseSetFlags(setFlags)
		if err := applyCountingOverrides(&cfg.Counting, overrides); err != nil {
			return fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	if dryRun {
		fmt.Printf("input is valid: %d samples (dry-run mode)\n", len(data))
		return nil
	}

	opts, err := cfg.ToOptions(data)
	if err != nil {
		return fmt.Errorf("invalid counting options: %w", err)
	}

	start := time.Now()
	result, err := rfc.Rfc(data, opts)
	if err != nil {
		return fmt.Errorf("counting failed: %w", err)
	}
	end := time.Now()

	runReport := &report.RunReport{
		RunID:     generateRunID(),
		InputPath: inputPath,
		Status:    report.StatusCompleted,
		Success:   true,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Options:   opts,
		Summary:   report.SummarizeResult(result),
	}

	if doVerify {
		v := verify.New()
		runReport.Verify = v.Verify(data, opts, result)
		if !runReport.Verify.AllPassed() {
			runReport.Success = false
			runReport.Status = report.StatusFailed
			runReport.Message = "conformance checks failed"
		}
	}

	storage, err := report.NewStorage(cfg.Reporting.OutputDir, cfg.Reporting.KeepLastN, logger)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	if _, err := storage.SaveReport(runReport); err != nil {
		logger.Warn("failed to persist report", "error", err)
	}

	formatter := report.NewFormatter(logger)
	outputPath := report.ReportPath(runReport, report.OutputFormat(format), cfg.Reporting.OutputDir)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := formatter.GenerateReport(runReport, report.OutputFormat(format), outputPath); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Printf("report written: %s\n", outputPath)
	if doVerify && !runReport.Success {
		return fmt.Errorf("conformance checks failed; see %s", outputPath)
	}
	return nil
}
