package synth

import (
	"fmt"
	"math"
	"math/rand"
)

// Kind names a synthetic load-history variant, mirroring the shape of
// the teacher's faultTypes catalog (pkg/fuzz/sampler.go) but over
// waveforms instead of fault kinds.
type Kind int

const (
	// KindSine is a sine wave plus additive Gaussian noise, the
	// textbook rainflow worked example (e.g. spec.md §8's sine cases).
	KindSine Kind = iota
	// KindRandomWalk is a Gaussian random walk, producing an
	// irregular turning-point sequence with no dominant period.
	KindRandomWalk
	// KindBlockLoading is a sequence of constant-level blocks (plus
	// noise) at evenly spaced levels rising from Mean-Amplitude to
	// Mean+Amplitude, the shape used for block fatigue-test programs.
	KindBlockLoading
)

func (k Kind) String() string {
	switch k {
	case KindSine:
		return "sine"
	case KindRandomWalk:
		return "random_walk"
	case KindBlockLoading:
		return "block_loading"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Kinds lists every variant Generate supports, for discovery and CLI
// flag validation.
func Kinds() []Kind { return []Kind{KindSine, KindRandomWalk, KindBlockLoading} }

// WaveParams parameterizes one generated load history. Not every field
// applies to every Kind; Generate ignores the ones that don't.
type WaveParams struct {
	Length    int     // number of samples
	Amplitude float64 // peak deviation from Mean
	Mean      float64
	Noise     float64 // standard deviation of additive Gaussian noise
	Periods   float64 // KindSine: number of full cycles across Length
	StepStd   float64 // KindRandomWalk: per-step standard deviation
	Blocks    int     // KindBlockLoading: number of constant-level blocks
}

// Generator produces synthetic load histories from a catalog of
// waveform variants, grounded on the teacher's BuildScenario
// (pkg/fuzz/generator.go): there a set of FaultSpecs is turned into a
// runnable scenario, here a Kind+WaveParams is turned into a runnable
// []float64 load history.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator builds a Generator seeded with seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))} //nolint:gosec
}

// Generate synthesizes one load history of the given kind and params.
func (g *Generator) Generate(kind Kind, p WaveParams) ([]float64, error) {
	if p.Length <= 0 {
		return nil, fmt.Errorf("synth: length must be positive, got %d", p.Length)
	}
	switch kind {
	case KindSine:
		return g.sine(p), nil
	case KindRandomWalk:
		return g.randomWalk(p), nil
	case KindBlockLoading:
		return g.blockLoading(p), nil
	default:
		return nil, fmt.Errorf("synth: unknown kind %v", kind)
	}
}

func (g *Generator) sine(p WaveParams) []float64 {
	out := make([]float64, p.Length)
	for i := range out {
		phase := 2 * math.Pi * p.Periods * float64(i) / float64(p.Length)
		out[i] = p.Mean + p.Amplitude*math.Sin(phase) + g.noise(p.Noise)
	}
	return out
}

func (g *Generator) randomWalk(p WaveParams) []float64 {
	out := make([]float64, p.Length)
	step := p.StepStd
	if step <= 0 {
		step = 1
	}
	v := p.Mean
	for i := range out {
		v += g.rng.NormFloat64() * step
		out[i] = v + g.noise(p.Noise)
	}
	return out
}

func (g *Generator) blockLoading(p WaveParams) []float64 {
	blocks := p.Blocks
	if blocks < 1 {
		blocks = 1
	}
	perBlock := p.Length / blocks
	if perBlock < 1 {
		perBlock = 1
	}
	out := make([]float64, 0, p.Length)
	for b := 0; b < blocks && len(out) < p.Length; b++ {
		frac := float64(b) / float64(blocks-1+boolToInt(blocks == 1))
		level := p.Mean + p.Amplitude*(2*frac-1)
		for i := 0; i < perBlock && len(out) < p.Length; i++ {
			out = append(out, level+g.noise(p.Noise))
		}
	}
	for len(out) < p.Length {
		out = append(out, out[len(out)-1])
	}
	return out
}

func (g *Generator) noise(stddev float64) float64 {
	if stddev <= 0 {
		return 0
	}
	return g.rng.NormFloat64() * stddev
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
