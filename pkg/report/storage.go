package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Storage persists RunReports as JSON files, pruning to the newest N,
// grounded on pkg/reporting/storage.go's Storage.
type Storage struct {
	outputDir string
	keepLastN int
	logger    *Logger
}

// NewStorage builds a Storage rooted at outputDir, creating it if needed.
func NewStorage(outputDir string, keepLastN int, logger *Logger) (*Storage, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Storage{outputDir: outputDir, keepLastN: keepLastN, logger: logger}, nil
}

// SaveReport writes report as run-<timestamp>-<runID>.json and prunes
// older files beyond keepLastN.
func (s *Storage) SaveReport(report *RunReport) (string, error) {
	timestamp := report.StartTime.Format("20060102-150405")
	path := filepath.Join(s.outputDir, fmt.Sprintf("run-%s-%s.json", timestamp, report.RunID))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	s.logger.Info("run report saved", "path", path)

	if s.keepLastN > 0 {
		if err := s.pruneOldReports(); err != nil {
			s.logger.Warn("failed to prune old reports", "error", err)
		}
	}
	return path, nil
}

// LoadReport reads a RunReport back from path.
func (s *Storage) LoadReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}
	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// ListReports lists every persisted report, newest first.
func (s *Storage) ListReports() ([]RunSummary, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	summaries := make([]RunSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.outputDir, entry.Name())
		report, err := s.LoadReport(path)
		if err != nil {
			s.logger.Warn("failed to load report", "path", path, "error", err)
			continue
		}
		summaries = append(summaries, RunSummary{
			RunID:     report.RunID,
			InputPath: report.InputPath,
			StartTime: report.StartTime,
			Duration:  report.Duration.String(),
			Status:    report.Status,
			Success:   report.Success,
			Filepath:  path,
		})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].StartTime.After(summaries[j].StartTime) })
	return summaries, nil
}

// FindReportByRunID looks up a previously saved report by its run ID.
func (s *Storage) FindReportByRunID(runID string) (*RunReport, error) {
	summaries, err := s.ListReports()
	if err != nil {
		return nil, err
	}
	for _, summary := range summaries {
		if summary.RunID == runID {
			return s.LoadReport(summary.Filepath)
		}
	}
	return nil, fmt.Errorf("report not found for run ID: %s", runID)
}

// GetOutputDir returns the directory reports are persisted under.
func (s *Storage) GetOutputDir() string { return s.outputDir }

func (s *Storage) pruneOldReports() error {
	summaries, err := s.ListReports()
	if err != nil {
		return err
	}
	if len(summaries) <= s.keepLastN {
		return nil
	}
	for _, old := range summaries[s.keepLastN:] {
		if err := os.Remove(old.Filepath); err != nil {
			s.logger.Warn("failed to delete old report", "path", old.Filepath, "error", err)
		} else {
			s.logger.Debug("deleted old report", "path", old.Filepath)
		}
	}
	return nil
}
