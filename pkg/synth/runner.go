package synth

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jihwankim/rfc/pkg/rfc"
)

// SweepResult is one entry in the JSONL sweep log, grounded on the
// teacher's RoundResult (pkg/fuzz/runner.go): there one entry per fuzz
// round against a live enclave, here one entry per counting run against
// a generated load history.
type SweepResult struct {
	Session        string  `json:"session"`
	Seed           int64   `json:"seed"`
	Round          int     `json:"round"`
	Kind           string  `json:"kind"`
	Length         int     `json:"length"`
	ClassCount     uint32  `json:"class_count"`
	Hysteresis     float64 `json:"hysteresis"`
	ResidualMethod string  `json:"residual_method"`
	ClosedCycles   float64 `json:"closed_cycles"`
	Damage         float64 `json:"damage"`
	ElapsedS       float64 `json:"elapsed_s"`
	Timestamp      string  `json:"timestamp"`
	Error          string  `json:"error,omitempty"`
}

// Grid names the parameter values a Runner sweeps over. A zero-value
// field falls back to a single-element default in Run.
type Grid struct {
	ClassCounts     []uint32
	Hystereses      []float64
	ResidualMethods []rfc.ResidualMethod
}

func (g Grid) withDefaults() Grid {
	if len(g.ClassCounts) == 0 {
		g.ClassCounts = []uint32{64}
	}
	if len(g.Hystereses) == 0 {
		g.Hystereses = []float64{0}
	}
	if len(g.ResidualMethods) == 0 {
		g.ResidualMethods = []rfc.ResidualMethod{rfc.ResidualRepeated}
	}
	return g
}

// Config holds all settings for one sweep session.
type Config struct {
	Kind    Kind
	Rounds  int   // number of distinct generated load histories
	Seed    int64 // 0 = auto-generate
	Grid    Grid
	LogPath string
}

// Runner generates Rounds load histories of Kind and counts each one
// under every combination in Grid, grounded on the teacher's Runner
// (pkg/fuzz/runner.go): there each round samples a fault scenario and
// executes it through the orchestrator against a live enclave, here
// each round samples a WaveParams and counts it through rfc.Rfc under
// every grid combination, with no external system involved.
type Runner struct {
	cfg *Config
}

// NewRunner builds a Runner from cfg.
func NewRunner(cfg *Config) *Runner {
	return &Runner{cfg: cfg}
}

// Run executes cfg.Rounds generated histories, each counted under
// every Grid combination, appending one SweepResult per combination to
// cfg.LogPath. It returns every result collected, in run order.
func (r *Runner) Run() ([]SweepResult, error) {
	seed := r.cfg.Seed
	if seed == 0 {
		seed = rand.Int63() //nolint:gosec
	}
	sampler := NewSampler(seed)
	generator := NewGenerator(seed)
	grid := r.cfg.Grid.withDefaults()
	sessionID := time.Now().Format(time.RFC3339)

	var results []SweepResult
	round := 0
	for i := 0; i < r.cfg.Rounds; i++ {
		kind := r.cfg.Kind
		params := sampler.SampleParams(kind)
		data, err := generator.Generate(kind, params)
		if err != nil {
			return results, fmt.Errorf("synth: generate round %d: %w", i, err)
		}

		for _, cc := range grid.ClassCounts {
			for _, hyst := range grid.Hystereses {
				for _, method := range grid.ResidualMethods {
					round++
					start := time.Now()
					opts := rfc.DefaultOptions(data)
					if cc > 1 && cc != opts.ClassCount {
						// Re-derive width and offset so cc classes span the same data range.
						lo := opts.ClassOffset + opts.ClassWidth/2
						opts.ClassWidth = opts.ClassWidth * float64(opts.ClassCount-1) / float64(cc-1)
						opts.ClassOffset = lo - opts.ClassWidth/2
						opts.Hysteresis = opts.ClassWidth
					}
					opts.ClassCount = cc
					if hyst > 0 {
						opts.Hysteresis = hyst
					}
					opts.ResidualMethod = method

					entry := SweepResult{
						Session:        sessionID,
						Seed:           seed,
						Round:          round,
						Kind:           kind.String(),
						Length:         params.Length,
						ClassCount:     cc,
						Hysteresis:     hyst,
						ResidualMethod: residualName(method),
						Timestamp:      time.Now().Format(time.RFC3339),
					}

					result, err := rfc.Rfc(data, opts)
					entry.ElapsedS = time.Since(start).Seconds()
					if err != nil {
						entry.Error = err.Error()
					} else {
						entry.ClosedCycles = sumRFM(result)
						entry.Damage = result.Damage
					}

					if r.cfg.LogPath != "" {
						if logErr := r.appendLog(entry); logErr != nil {
							return results, logErr
						}
					}
					results = append(results, entry)
				}
			}
		}
	}
	return results, nil
}

func sumRFM(result *rfc.Result) float64 {
	total := 0.0
	for _, row := range result.RFM {
		for _, v := range row {
			total += v
		}
	}
	return total
}

func residualName(m rfc.ResidualMethod) string {
	switch m {
	case rfc.ResidualNone:
		return "none"
	case rfc.ResidualIgnore:
		return "ignore"
	case rfc.ResidualNoFinalize:
		return "no_finalize"
	case rfc.ResidualDiscard:
		return "discard"
	case rfc.ResidualHalfCycles:
		return "half_cycles"
	case rfc.ResidualFullCycles:
		return "full_cycles"
	case rfc.ResidualClormannSeeger:
		return "clormann_seeger"
	case rfc.ResidualRepeated:
		return "repeated"
	case rfc.ResidualDIN45667:
		return "din45667"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

func (r *Runner) appendLog(entry SweepResult) error {
	if err := os.MkdirAll(filepath.Dir(r.cfg.LogPath), 0755); err != nil {
		return fmt.Errorf("synth: create log dir: %w", err)
	}
	f, err := os.OpenFile(r.cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("synth: open log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("synth: marshal log entry: %w", err)
	}
	_, err = f.WriteString(string(data) + "\n")
	return err
}
