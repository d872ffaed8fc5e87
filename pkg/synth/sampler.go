// Package synth generates synthetic load histories and sweeps counting
// parameters against them, for tests and benchmarks where a real
// measured load history isn't available. Grounded on
// _examples/jhkimqd-chaos-utils pkg/fuzz/sampler.go's seeded-Sampler
// shape: here the RNG drives waveform synthesis instead of fault
// parameter sampling.
package synth

import (
	"math"
	"math/rand"
)

// Sampler holds a seeded RNG and the triangular/log-uniform/weighted
// primitives used to pick waveform parameters.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler builds a Sampler seeded with seed. Two Samplers built from
// the same seed produce identical sequences.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))} //nolint:gosec
}

// triangular samples from a triangular distribution on [lo, hi] with
// the given mode.
func (s *Sampler) triangular(lo, hi, mode float64) float64 {
	u := s.rng.Float64()
	fc := (mode - lo) / (hi - lo)
	if u < fc {
		return lo + math.Sqrt(u*(hi-lo)*(mode-lo))
	}
	return hi - math.Sqrt((1-u)*(hi-lo)*(hi-mode))
}

// logUniform samples uniformly in log-space on [lo, hi], returning the
// sample truncated toward zero to an int.
func (s *Sampler) logUniform(lo, hi float64) int {
	return int(math.Exp(s.rng.Float64()*(math.Log(hi)-math.Log(lo)) + math.Log(lo)))
}

// weightedChoice picks one element from choices according to integer
// weights.
func (s *Sampler) weightedChoice(choices []int, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := s.rng.Intn(total)
	for i, w := range weights {
		r -= w
		if r < 0 {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}

// SampleParams draws a random WaveParams for variant kind. Amplitude
// and noise favor a mode near the low end of their range, the way the
// teacher's fault sampler biases toward near-threshold values; length
// is drawn log-uniformly so short and long histories appear with
// comparable frequency.
func (s *Sampler) SampleParams(kind Kind) WaveParams {
	length := s.logUniform(64, 8192)
	p := WaveParams{
		Length:    length,
		Amplitude: s.triangular(1, 100, 10),
		Mean:      0,
		Noise:     s.triangular(0, 20, 2),
	}
	switch kind {
	case KindSine:
		p.Periods = float64(s.logUniform(2, 200))
	case KindRandomWalk:
		p.StepStd = s.triangular(0.1, 5, 1)
	case KindBlockLoading:
		p.Blocks = s.logUniform(2, 32)
	}
	return p
}

// SampleKind picks a waveform kind, weighting sine+noise heaviest
// since it is the most common real-world load-history shape, the way
// the teacher's compound-vs-single bias weights a scenario catalog.
func (s *Sampler) SampleKind() Kind {
	kinds := []int{int(KindSine), int(KindRandomWalk), int(KindBlockLoading)}
	weights := []int{5, 3, 2}
	return Kind(s.weightedChoice(kinds, weights))
}
