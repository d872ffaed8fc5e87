package synth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jihwankim/rfc/pkg/rfc"
)

func TestRunnerSweepsGridAndLogs(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sweep.jsonl")
	runner := NewRunner(&Config{
		Kind:   KindSine,
		Rounds: 1,
		Seed:   123,
		Grid: Grid{
			ClassCounts:     []uint32{16, 32},
			Hystereses:      []float64{0, 1},
			ResidualMethods: []rfc.ResidualMethod{rfc.ResidualRepeated},
		},
		LogPath: logPath,
	})

	results, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4 (2 class counts x 2 hystereses)", len(results))
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 4 {
		t.Fatalf("log has %d lines, want 4", lines)
	}

	var first SweepResult
	firstLine := data[:indexOfByte(data, '\n')]
	if err := json.Unmarshal(firstLine, &first); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}
	if first.Seed != 123 {
		t.Fatalf("seed = %d, want 123", first.Seed)
	}
}

func indexOfByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return len(b)
}

func TestRunnerDefaultsGridWhenEmpty(t *testing.T) {
	runner := NewRunner(&Config{Kind: KindRandomWalk, Rounds: 1, Seed: 7})
	results, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 with default grid", len(results))
	}
}
