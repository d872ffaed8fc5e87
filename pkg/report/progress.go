package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ProgressFormat selects how live batch-run progress is rendered.
type ProgressFormat string

const (
	ProgressText ProgressFormat = "text"
	ProgressJSON ProgressFormat = "json"
	ProgressTUI  ProgressFormat = "tui"
)

// FileProgress is the state of one file within a running batch job.
type FileProgress struct {
	Path      string
	Index     int
	Total     int
	StartTime time.Time
}

// ProgressReporter emits live progress during a batch job, grounded on
// pkg/reporting/progress.go's ProgressReporter (there: fault-injection
// and success-criteria events during a chaos test; here: per-file
// started/completed and verification events, plus a final batch summary,
// during a batch counting run).
type ProgressReporter struct {
	format ProgressFormat
	logger *Logger
}

// NewProgressReporter builds a ProgressReporter rendering in format.
func NewProgressReporter(format ProgressFormat, logger *Logger) *ProgressReporter {
	return &ProgressReporter{format: format, logger: logger}
}

// ReportFileStarted reports that a batch job has begun processing one
// input file.
func (pr *ProgressReporter) ReportFileStarted(fp FileProgress) {
	switch pr.format {
	case ProgressJSON:
		pr.emitJSON("file_started", map[string]interface{}{"path": fp.Path, "index": fp.Index, "total": fp.Total})
	case ProgressTUI:
		pr.clearLine()
		fmt.Printf("▶ [%d/%d] %s\n", fp.Index+1, fp.Total, fp.Path)
	default:
		fmt.Printf("[FILE] (%d/%d) starting %s\n", fp.Index+1, fp.Total, fp.Path)
	}
}

// ReportFileCompleted reports that one input file's run finished.
func (pr *ProgressReporter) ReportFileCompleted(fp FileProgress, summary Summary) {
	switch pr.format {
	case ProgressJSON:
		pr.emitJSON("file_completed", map[string]interface{}{"path": fp.Path, "summary": summary})
	case ProgressTUI:
		pr.clearLine()
		fmt.Printf("✓ [%d/%d] %s — %d cycles, damage %.4g\n", fp.Index+1, fp.Total, fp.Path, int(summary.ClosedCount), summary.Damage)
	default:
		fmt.Printf("[FILE] (%d/%d) done %s: %.4g cycles, damage %.6g\n", fp.Index+1, fp.Total, fp.Path, summary.ClosedCount, summary.Damage)
	}
}

// ReportVerifyResult reports the outcome of the optional conformance
// verification pass for one run.
func (pr *ProgressReporter) ReportVerifyResult(path string, allPassed bool, failCount int) {
	switch pr.format {
	case ProgressJSON:
		pr.emitJSON("verify_result", map[string]interface{}{"path": path, "passed": allPassed, "failures": failCount})
	case ProgressTUI:
		pr.clearLine()
		if allPassed {
			fmt.Printf("✅ %s: all conformance checks passed\n", path)
		} else {
			fmt.Printf("🔴 %s: %d conformance check(s) failed\n", path, failCount)
		}
	default:
		status := "PASS"
		if !allPassed {
			status = fmt.Sprintf("FAIL (%d)", failCount)
		}
		fmt.Printf("[VERIFY] %s: %s\n", path, status)
	}
}

// ReportBatchCompleted prints a final summary once every file in a batch
// has run.
func (pr *ProgressReporter) ReportBatchCompleted(reports []*RunReport) {
	switch pr.format {
	case ProgressJSON:
		pr.emitJSON("batch_completed", map[string]interface{}{"reports": reports})
	case ProgressTUI:
		pr.clearLine()
		pr.printBatchSummary(reports)
	default:
		pr.printBatchSummary(reports)
	}
}

func (pr *ProgressReporter) printBatchSummary(reports []*RunReport) {
	succeeded, failed := 0, 0
	for _, r := range reports {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("BATCH SUMMARY: %d files, %d succeeded, %d failed\n", len(reports), succeeded, failed)
	fmt.Println(strings.Repeat("=", 72))
}

func (pr *ProgressReporter) emitJSON(event string, fields map[string]interface{}) {
	fields["event"] = event
	fields["timestamp"] = time.Now()
	data, err := json.Marshal(fields)
	if err != nil {
		pr.logger.Error("failed to marshal progress event", "error", err)
		return
	}
	fmt.Println(string(data))
}

func (pr *ProgressReporter) clearLine() {
	fmt.Print("\033[K")
}
