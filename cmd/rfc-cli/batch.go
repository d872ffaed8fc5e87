package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jihwankim/rfc/pkg/batch"
	"github.com/jihwankim/rfc/pkg/batch/parser"
	"github.com/jihwankim/rfc/pkg/batch/validator"
	"github.com/jihwankim/rfc/pkg/config"
	"github.com/jihwankim/rfc/pkg/emergency"
	"github.com/jihwankim/rfc/pkg/metrics"
	"github.com/jihwankim/rfc/pkg/report"
	"github.com/jihwankim/rfc/pkg/rfc"
	"github.com/jihwankim/rfc/pkg/rfcerr"
	"github.com/jihwankim/rfc/pkg/verify"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Args:  cobra.NoArgs,
	Short: "Run a declarative multi-file batch job",
	Long: `Loads a batch job YAML describing one or more input sources and their
option overrides, counts each source, and writes one report per source
plus a combined comparison summary.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("job", "", "path to batch job YAML file")
	batchCmd.Flags().StringArray("set", []string{}, "override job values (e.g., --set residual_method=discard)")
	batchCmd.Flags().String("format", "text", "per-source report format (text, json)")
	batchCmd.Flags().Bool("verify", false, "run conformance checks after each source")
	batchCmd.Flags().Bool("dry-run", false, "validate the job without counting anything")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	jobPath, _ := cmd.Flags().GetString("job")
	if jobPath == "" {
		return fmt.Errorf("--job flag is required")
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

	logger.Info("parsing batch job", "file", jobPath)
	p := parser.New(nil)
	job, err := p.ParseFile(jobPath)
	if err != nil {
		return fmt.Errorf("failed to parse batch job: %w", err)
	}

	if len(setFlags) > 0 {
		overrides, err := parser.ParseOverrides(setFlags)
		if err != nil {
			return fmt.Errorf("failed to parse --set flags: %w", err)
		}
		if err := parser.ApplyOverrides(job, overrides); err != nil {
			return fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	v := validator.New()
	if err := v.Validate(job); err != nil {
		fmt.Print(v.GetReport())
		return fmt.Errorf("batch job validation failed: %w", err)
	}
	if v.HasWarnings() {
		logger.Warn("batch job has warnings")
		fmt.Print(v.GetReport())
	}
	logger.Info("batch job validated", "name", job.Metadata.Name, "sources", len(job.Spec.Sources))

	if dryRun {
		fmt.Printf("job %q is valid: %d source(s) (dry-run mode)\n", job.Metadata.Name, len(job.Spec.Sources))
		return nil
	}

	storage, err := report.NewStorage(cfg.Reporting.OutputDir, cfg.Reporting.KeepLastN, logger)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	formatter := report.NewFormatter(logger)
	progress := report.NewProgressReporter(report.ProgressText, logger)

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	controller := emergency.New(emergency.Config{StopFile: cfg.Emergency.StopFile})
	controller.Start(ctx)

	var defs *metrics.Definitions
	if cfg.Metrics.Enabled {
		exporter, err := metrics.New(metrics.Config{Addr: cfg.Metrics.Addr})
		if err != nil {
			return fmt.Errorf("failed to start metrics exporter: %w", err)
		}
		defs = exporter.Defs
		go func() {
			if err := exporter.ListenAndServe(ctx); err != nil {
				logger.Warn("metrics exporter stopped", "error", err)
			}
		}()
		logger.Info("metrics exporter listening", "addr", cfg.Metrics.Addr)
	}

	reports := runSources(ctx, job, cfg, storage, formatter, progress, format, doVerify, logger, controller, defs)

	progress.ReportBatchCompleted(reports)

	if len(reports) > 1 {
		comparePath := fmt.Sprintf("%s/%s-comparison.txt", cfg.Reporting.OutputDir, job.Metadata.Name)
		if err := formatter.CompareReports(reports, comparePath); err != nil {
			logger.Warn("failed to write comparison report", "error", err)
		} else {
			fmt.Printf("comparison written: %s\n", comparePath)
		}
	}

	failed := 0
	for _, r := range reports {
		if !r.Success {
			failed++
		}
	}
	if controller.IsStopped() {
		return fmt.Errorf("batch run aborted after %d/%d source(s)", len(reports), len(job.Spec.Sources))
	}
	if failed > 0 {
		return fmt.Errorf("%d/%d source(s) failed", failed, len(reports))
	}
	return nil
}

// runSources counts every source in job, in parallel bounded by
// cfg.Execution.MaxConcurrentFiles when job.Spec.ExecutionMode is
// "parallel", else strictly sequentially. Grounded on
// pkg/core/orchestrator.executeInject's bounded-WaitGroup-plus-results-
// slice shape: there every fault fires in its own goroutine and results
// land in an index-addressed slice with no lock contention, here every
// source does.
func runSources(
	ctx context.Context,
	job *batch.Job,
	cfg *config.Config,
	storage *report.Storage,
	formatter *report.Formatter,
	progress *report.ProgressReporter,
	format string,
	doVerify bool,
	logger *report.Logger,
	controller *emergency.Controller,
	defs *metrics.Definitions,
) []*report.RunReport {
	sources := job.Spec.Sources
	results := make([]*report.RunReport, len(sources))

	runOne := func(i int) {
		src := sources[i]
		fp := report.FileProgress{Path: src.Path, Index: i, Total: len(sources), StartTime: time.Now()}
		progress.ReportFileStarted(fp)
		results[i] = countSource(src, job.Spec.Overrides, cfg, format, doVerify, storage, formatter, logger, defs)
		progress.ReportFileCompleted(fp, results[i].Summary)
		if doVerify && results[i].Verify != nil {
			progress.ReportVerifyResult(src.Path, results[i].Verify.AllPassed(), len(failedCriteria(results[i].Verify)))
		}
	}

	if job.Spec.ExecutionMode != "parallel" {
		for i := range sources {
			if ctx.Err() != nil || controller.IsStopped() {
				break
			}
			runOne(i)
		}
		return compact(results)
	}

	maxConcurrent := cfg.Execution.MaxConcurrentFiles
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	for i := range sources {
		if ctx.Err() != nil || controller.IsStopped() {
			break
		}
		i := i
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			runOne(i)
		}()
	}
	wg.Wait()
	return compact(results)
}

func compact(results []*report.RunReport) []*report.RunReport {
	out := make([]*report.RunReport, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func failedCriteria(v *verify.Report) []verify.CriterionResult {
	var failed []verify.CriterionResult
	for _, c := range v.Criteria {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// countSource runs one batch source end to end: read, merge overrides,
// count, verify, persist, render.
func countSource(
	src batch.Source,
	jobOverride batch.OptionsOverride,
	cfg *config.Config,
	format string,
	doVerify bool,
	storage *report.Storage,
	formatter *report.Formatter,
	logger *report.Logger,
	defs *metrics.Definitions,
) *report.RunReport {
	start := time.Now()
	runReport := &report.RunReport{
		RunID:     generateRunID(),
		InputPath: src.Path,
		StartTime: start,
	}

	data, err := readLoadHistory(src.Path)
	if err != nil {
		observeRunOutcome(defs, nil, err, "failed")
		return failSource(runReport, fmt.Errorf("read input: %w", err))
	}

	effective := jobOverride.Merge(src.Overrides)
	opts, err := optionsFromOverride(cfg, data, effective)
	if err != nil {
		observeRunOutcome(defs, nil, err, "failed")
		return failSource(runReport, fmt.Errorf("resolve options: %w", err))
	}

	result, err := rfc.Rfc(data, opts)
	if err != nil {
		observeRunOutcome(defs, nil, err, "failed")
		return failSource(runReport, fmt.Errorf("count: %w", err))
	}

	end := time.Now()
	runReport.EndTime = end
	runReport.Duration = end.Sub(start)
	runReport.Options = opts
	runReport.Summary = report.SummarizeResult(result)
	runReport.Status = report.StatusCompleted
	runReport.Success = true

	if doVerify {
		runReport.Verify = verify.New().Verify(data, opts, result)
		if !runReport.Verify.AllPassed() {
			runReport.Success = false
			runReport.Status = report.StatusFailed
			runReport.Message = "conformance checks failed"
		}
	}

	outcome := "success"
	if !runReport.Success {
		outcome = "failed"
	}
	observeRunOutcome(defs, result, nil, outcome)

	if _, err := storage.SaveReport(runReport); err != nil {
		logger.Warn("failed to persist report", "source", src.Path, "error", err)
	}

	outputPath := report.ReportPath(runReport, report.OutputFormat(format), cfg.Reporting.OutputDir)
	if err := formatter.GenerateReport(runReport, report.OutputFormat(format), outputPath); err != nil {
		logger.Warn("failed to write report", "source", src.Path, "error", err)
	}

	return runReport
}

// observeRunOutcome feeds one source's outcome into defs, when metrics are
// enabled (defs is nil otherwise). A non-nil runErr means the run never
// produced a result; an rfcerr.OutOfRange runErr is additionally counted
// against rfc_out_of_range_samples_total.
func observeRunOutcome(defs *metrics.Definitions, result *rfc.Result, runErr error, outcome string) {
	if defs == nil {
		return
	}
	if runErr != nil {
		defs.RunsTotal.WithLabelValues(outcome).Inc()
		var rerr *rfcerr.Error
		if errors.As(runErr, &rerr) && rerr.Kind == rfcerr.OutOfRange {
			defs.OutOfRangeTotal.Inc()
		}
		return
	}
	defs.ObserveRun(result.ClosedCycles, result.HalfCycles, result.ResidueDepth, result.Damage, outcome)
}

func failSource(runReport *report.RunReport, err error) *report.RunReport {
	runReport.EndTime = time.Now()
	runReport.Duration = runReport.EndTime.Sub(runReport.StartTime)
	runReport.Status = report.StatusFailed
	runReport.Success = false
	runReport.Errors = []string{err.Error()}
	return runReport
}

// optionsFromOverride merges a batch-job OptionsOverride onto cfg's own
// CountingConfig (nonzero override fields winning), then resolves the
// result into rfc.Options the same way config.Config.ToOptions does.
func optionsFromOverride(cfg *config.Config, data []float64, o batch.OptionsOverride) (rfc.Options, error) {
	merged := cfg.Counting
	if o.ClassCount != 0 {
		merged.ClassCount = o.ClassCount
	}
	if o.ClassWidth != 0 {
		merged.ClassWidth = o.ClassWidth
	}
	if o.ClassOffset != 0 {
		merged.ClassOffset = o.ClassOffset
	}
	if o.Hysteresis != 0 {
		merged.Hysteresis = o.Hysteresis
	}
	if o.ResidualMethod != "" {
		merged.ResidualMethod = o.ResidualMethod
	}
	if o.SpreadDamage != "" {
		merged.SpreadDamage = o.SpreadDamage
	}
	if o.LCMethod != "" {
		merged.LCMethod = o.LCMethod
	}
	merged.UseHCM = merged.UseHCM || o.UseHCM
	merged.UseASTM = merged.UseASTM || o.UseASTM
	merged.EnforceMargin = merged.EnforceMargin || o.EnforceMargin
	merged.AutoResize = merged.AutoResize || o.AutoResize

	temp := *cfg
	temp.Counting = merged
	return temp.ToOptions(data)
}
