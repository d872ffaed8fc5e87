package report_test

import (
	"os"
	"testing"
	"time"

	"github.com/jihwankim/rfc/pkg/report"
)

func testLogger() *report.Logger {
	return report.NewLogger(report.LoggerConfig{Level: report.LevelError, Output: os.Stderr})
}

func sampleReport(runID string, when time.Time) *report.RunReport {
	return &report.RunReport{
		RunID:     runID,
		InputPath: "testdata.csv",
		Status:    report.StatusCompleted,
		Success:   true,
		StartTime: when,
		EndTime:   when.Add(time.Second),
		Duration:  time.Second,
		Summary:   report.Summary{ClassCount: 10, TPCount: 4, ClosedCount: 1, Damage: 0.001},
	}
}

func TestStorageSaveAndLoad(t *testing.T) {
	storage, err := report.NewStorage(t.TempDir(), 10, testLogger())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	rr := sampleReport("run-1", time.Now())
	path, err := storage.SaveReport(rr)
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	loaded, err := storage.LoadReport(path)
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}
	if loaded.RunID != "run-1" {
		t.Fatalf("RunID = %q, want run-1", loaded.RunID)
	}
}

func TestStorageListReportsNewestFirst(t *testing.T) {
	storage, err := report.NewStorage(t.TempDir(), 10, testLogger())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	if _, err := storage.SaveReport(sampleReport("run-old", older)); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if _, err := storage.SaveReport(sampleReport("run-new", newer)); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	summaries, err := storage.ListReports()
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].RunID != "run-new" {
		t.Fatalf("first summary RunID = %q, want run-new (newest first)", summaries[0].RunID)
	}
}

func TestStoragePrunesBeyondKeepLastN(t *testing.T) {
	storage, err := report.NewStorage(t.TempDir(), 1, testLogger())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	base := time.Now().Add(-time.Hour)
	if _, err := storage.SaveReport(sampleReport("run-a", base)); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if _, err := storage.SaveReport(sampleReport("run-b", base.Add(time.Minute))); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	summaries, err := storage.ListReports()
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries after pruning, want 1", len(summaries))
	}
	if summaries[0].RunID != "run-b" {
		t.Fatalf("surviving report = %q, want run-b (most recent)", summaries[0].RunID)
	}
}

func TestFindReportByRunIDMissing(t *testing.T) {
	storage, err := report.NewStorage(t.TempDir(), 10, testLogger())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	if _, err := storage.FindReportByRunID("nonexistent"); err == nil {
		t.Fatal("expected error for missing run ID")
	}
}
