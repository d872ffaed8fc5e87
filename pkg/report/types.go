// Package report renders and persists the outcome of counting runs:
// structured logging, text/JSON summaries, JSON persistence with
// keep-last-N pruning, and progress output for batch jobs. Grounded on
// _examples/jhkimqd-chaos-utils pkg/reporting/*: same Logger/Formatter/
// Storage/ProgressReporter split, with the chaos TestReport (targets,
// injected faults, success criteria, cleanup audit log) replaced by a
// RunReport (input source, options, result summary, conformance report).
package report

import (
	"time"

	"github.com/jihwankim/rfc/pkg/rfc"
	"github.com/jihwankim/rfc/pkg/verify"
)

// RunStatus is the terminal state of a counting run.
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusStopped   RunStatus = "stopped" // emergency stop, see pkg/emergency
)

// Summary condenses a rfc.Result down to the handful of numbers a
// progress display or comparison table cares about.
type Summary struct {
	ClassCount  uint32  `json:"class_count"`
	TPCount     int     `json:"tp_count"`
	ClosedCount float64 `json:"closed_count"`
	ResidueLen  int     `json:"residue_len"`
	Damage      float64 `json:"damage"`
}

// SummarizeResult reduces a full Result to its Summary.
func SummarizeResult(result *rfc.Result) Summary {
	closed := 0.0
	for _, row := range result.RFM {
		for _, c := range row {
			closed += c
		}
	}
	return Summary{
		ClassCount:  result.ClassCount,
		TPCount:     len(result.TP),
		ClosedCount: closed,
		ResidueLen:  len(result.Res),
		Damage:      result.Damage,
	}
}

// RunReport is the persisted/rendered outcome of one counting run.
type RunReport struct {
	RunID     string        `json:"run_id"`
	InputPath string        `json:"input_path"`
	Status    RunStatus     `json:"status"`
	Success   bool          `json:"success"`
	Message   string        `json:"message,omitempty"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	Options rfc.Options    `json:"options"`
	Summary Summary        `json:"summary"`
	Verify  *verify.Report `json:"verify,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

// RunSummary is the lightweight index entry Storage.ListReports returns,
// grounded on reporting.ReportSummary.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	InputPath string    `json:"input_path"`
	StartTime time.Time `json:"start_time"`
	Duration  string    `json:"duration"`
	Status    RunStatus `json:"status"`
	Success   bool      `json:"success"`
	Filepath  string    `json:"filepath"`
}
