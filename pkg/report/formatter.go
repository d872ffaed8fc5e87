package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OutputFormat selects a rendered report's file format. HTML is dropped:
// a counting run's natural artifact is a matrix/histogram dump, not a
// pass/fail narrative, so text and JSON cover the real consumers.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Formatter renders a RunReport to disk in a given OutputFormat.
type Formatter struct {
	logger *Logger
}

// NewFormatter builds a Formatter that logs through logger.
func NewFormatter(logger *Logger) *Formatter {
	return &Formatter{logger: logger}
}

// GenerateReport writes report to outputPath in the given format. JSON
// output is the same document Storage.SaveReport persists.
func (f *Formatter) GenerateReport(report *RunReport, format OutputFormat, outputPath string) error {
	switch format {
	case OutputJSON:
		return f.generateJSON(report, outputPath)
	case OutputText:
		return f.generateText(report, outputPath)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

func (f *Formatter) generateJSON(report *RunReport, outputPath string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write json report: %w", err)
	}
	f.logger.Info("json report generated", "path", outputPath)
	return nil
}

func (f *Formatter) generateText(report *RunReport, outputPath string) error {
	var buf bytes.Buffer

	buf.WriteString(strings.Repeat("=", 72) + "\n")
	buf.WriteString("   RAINFLOW COUNTING REPORT\n")
	buf.WriteString(strings.Repeat("=", 72) + "\n\n")

	status := strings.ToUpper(string(report.Status))
	buf.WriteString("RUN SUMMARY\n")
	buf.WriteString(strings.Repeat("-", 72) + "\n")
	fmt.Fprintf(&buf, "Status:      %s\n", status)
	fmt.Fprintf(&buf, "Run ID:      %s\n", report.RunID)
	fmt.Fprintf(&buf, "Input:       %s\n", report.InputPath)
	fmt.Fprintf(&buf, "Start:       %s\n", report.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&buf, "End:         %s\n", report.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&buf, "Duration:    %s\n", report.Duration)
	if report.Message != "" {
		fmt.Fprintf(&buf, "Message:     %s\n", report.Message)
	}
	buf.WriteString("\n")

	buf.WriteString("COUNTING OPTIONS\n")
	buf.WriteString(strings.Repeat("-", 72) + "\n")
	fmt.Fprintf(&buf, "Class count:      %d\n", report.Options.ClassCount)
	fmt.Fprintf(&buf, "Class width:      %.6g\n", report.Options.ClassWidth)
	fmt.Fprintf(&buf, "Hysteresis:       %.6g\n", report.Options.Hysteresis)
	fmt.Fprintf(&buf, "Residual method:  %d\n", report.Options.ResidualMethod)
	fmt.Fprintf(&buf, "Spread damage:    %d\n", report.Options.SpreadDamage)
	fmt.Fprintf(&buf, "LC method:        %d\n", report.Options.LCMethod)
	buf.WriteString("\n")

	buf.WriteString("RESULT SUMMARY\n")
	buf.WriteString(strings.Repeat("-", 72) + "\n")
	fmt.Fprintf(&buf, "Turning points:   %d\n", report.Summary.TPCount)
	fmt.Fprintf(&buf, "Closed cycles:    %.4g\n", report.Summary.ClosedCount)
	fmt.Fprintf(&buf, "Residue length:   %d\n", report.Summary.ResidueLen)
	fmt.Fprintf(&buf, "Total damage:     %.6g\n", report.Summary.Damage)
	buf.WriteString("\n")

	if report.Verify != nil {
		buf.WriteString("CONFORMANCE CHECKS\n")
		buf.WriteString(strings.Repeat("-", 72) + "\n")
		buf.WriteString(report.Verify.GetSummary())
		buf.WriteString("\n")
	}

	if len(report.Errors) > 0 {
		buf.WriteString("ERRORS\n")
		buf.WriteString(strings.Repeat("-", 72) + "\n")
		for i, e := range report.Errors {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, e)
		}
		buf.WriteString("\n")
	}

	buf.WriteString(strings.Repeat("=", 72) + "\n")

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	f.logger.Info("text report generated", "path", outputPath)
	return nil
}

// CompareReports writes a side-by-side summary table of multiple runs,
// sorted by start time, grounded on reporting.Formatter.CompareReports.
func (f *Formatter) CompareReports(reports []*RunReport, outputPath string) error {
	if len(reports) < 2 {
		return fmt.Errorf("need at least 2 reports to compare")
	}

	sorted := append([]*RunReport{}, reports...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime.Before(sorted[j].StartTime) })

	var buf bytes.Buffer
	buf.WriteString(strings.Repeat("=", 72) + "\n")
	buf.WriteString("   RAINFLOW COUNTING COMPARISON\n")
	buf.WriteString(strings.Repeat("=", 72) + "\n\n")

	fmt.Fprintf(&buf, "%-22s %-10s %-10s %-10s %s\n", "Run ID", "Status", "TPs", "Cycles", "Damage")
	buf.WriteString(strings.Repeat("-", 72) + "\n")
	for _, r := range sorted {
		fmt.Fprintf(&buf, "%-22s %-10s %-10d %-10.4g %.6g\n",
			truncate(r.RunID, 22), r.Status, r.Summary.TPCount, r.Summary.ClosedCount, r.Summary.Damage)
	}
	buf.WriteString("\n")

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write comparison report: %w", err)
	}
	f.logger.Info("comparison report generated", "path", outputPath)
	return nil
}

// ReportPath derives a conventional report filename from a RunReport.
func ReportPath(report *RunReport, format OutputFormat, outputDir string) string {
	timestamp := report.StartTime.Format("20060102-150405")
	return filepath.Join(outputDir, fmt.Sprintf("report-%s-%s.%s", timestamp, report.RunID, format))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
