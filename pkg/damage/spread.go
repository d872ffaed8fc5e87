package damage

import "math"

// SpreadMethod selects how a cycle's damage contribution is written back
// onto the original sample timeline (spec.md §4.7). Stable integer values
// reproduced from spec.md §6.
type SpreadMethod int

const (
	SpreadNone SpreadMethod = iota - 1 // -1
	HalfCycles23
	RampAmplitude23
	RampDamage23
	RampAmplitude24
	RampDamage24
	FullP2
	FullP3
	Transient23
	Transient23c
)

// Spreader writes each cycle's damage contribution into a per-sample
// damage-history (DH) buffer, per spec.md §4.7. It needs the raw sample
// series for the amplitude-weighted policies (RAMP_AMPLITUDE_23/24),
// which weight each sample's share by how much the signal moved locally.
type Spreader struct {
	method  SpreadMethod
	samples []float64
	expK    float64 // exponent for RAMP_AMPLITUDE_24's |Δx|^k weighting
}

// NewSpreader builds a Spreader. expK is the S-N curve's K exponent, used
// by RAMP_AMPLITUDE_24 to weight samples by |Δx|^k rather than |Δx|.
func NewSpreader(method SpreadMethod, samples []float64, expK float64) *Spreader {
	return &Spreader{method: method, samples: samples, expK: expK}
}

// Span describes the sample-index range a CycleEvent's damage spreads
// over: i2/i3 are the event's own turning points, i4 is the sample index
// of the TP immediately following i3 in the original TP stream, if any.
type Span struct {
	I2, I3   int64
	I4       int64
	HasI4    bool
}

// Spread adds delta (a cycle's damage contribution) into dh according to
// the configured method and span. dh must already be sized to the input
// sample count; out-of-bounds indices are ignored defensively (callers
// pass a well-formed Span, but this keeps a misconfigured i4 harmless).
func (s *Spreader) Spread(dh []float64, span Span, delta float64) {
	lo, hi := span.I2, span.I3
	if lo > hi {
		lo, hi = hi, lo
	}

	switch s.method {
	case SpreadNone:
		return

	case HalfCycles23:
		addAt(dh, span.I2, 0.5*delta)
		addAt(dh, span.I3, 0.5*delta)

	case RampAmplitude23:
		s.spreadWeighted(dh, lo, hi, delta, 1)

	case RampDamage23:
		s.spreadUniform(dh, lo, hi, delta)

	case RampAmplitude24:
		hi24 := s.extend(hi, span)
		s.spreadWeighted(dh, lo, hi24, delta, s.expK)

	case RampDamage24:
		hi24 := s.extend(hi, span)
		s.spreadUniform(dh, lo, hi24, delta)

	case FullP2:
		addAt(dh, span.I2, delta)

	case FullP3:
		addAt(dh, span.I3, delta)

	case Transient23:
		s.spreadTransient(dh, lo, hi, delta)

	case Transient23c:
		hi24 := s.extend(hi, span)
		s.spreadTransient(dh, lo, hi24, delta)
	}
}

func (s *Spreader) extend(hi int64, span Span) int64 {
	if span.HasI4 && span.I4 > hi {
		return span.I4
	}
	return hi
}

// spreadUniform distributes delta evenly across [lo, hi].
func (s *Spreader) spreadUniform(dh []float64, lo, hi int64, delta float64) {
	n := hi - lo + 1
	if n <= 0 {
		return
	}
	share := delta / float64(n)
	for i := lo; i <= hi; i++ {
		addAt(dh, i, share)
	}
}

// spreadWeighted distributes delta across [lo, hi] proportional to
// |x_k - x_{k-1}|^exp, falling back to uniform when the series has no
// local variation (or isn't available).
func (s *Spreader) spreadWeighted(dh []float64, lo, hi int64, delta, exp float64) {
	weights := s.localWeights(lo, hi, exp)
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		s.spreadUniform(dh, lo, hi, delta)
		return
	}
	for i, w := range weights {
		addAt(dh, lo+int64(i), delta*w/total)
	}
}

func (s *Spreader) localWeights(lo, hi int64, exp float64) []float64 {
	n := hi - lo + 1
	if n <= 0 {
		return nil
	}
	weights := make([]float64, n)
	for i := int64(0); i < n; i++ {
		idx := lo + i
		weights[i] = s.localIncrement(idx, exp)
	}
	return weights
}

// localIncrement reports |x[idx]-x[idx-1]|^exp, or the next available
// increment when idx is the first sample of the series.
func (s *Spreader) localIncrement(idx int64, exp float64) float64 {
	if s.samples == nil || idx < 0 || int(idx) >= len(s.samples) {
		return 0
	}
	if idx == 0 {
		if len(s.samples) > 1 {
			return math.Pow(math.Abs(s.samples[1]-s.samples[0]), exp)
		}
		return 0
	}
	return math.Pow(math.Abs(s.samples[idx]-s.samples[idx-1]), exp)
}

// spreadTransient applies a triangular (ramp-up, ramp-down) weighting
// peaking at the span's midpoint: a documented simplification of the
// Neuber-style partition spec.md §4.7 describes only qualitatively (see
// DESIGN.md).
func (s *Spreader) spreadTransient(dh []float64, lo, hi int64, delta float64) {
	n := hi - lo + 1
	if n <= 0 {
		return
	}
	if n == 1 {
		addAt(dh, lo, delta)
		return
	}
	mid := float64(n-1) / 2
	weights := make([]float64, n)
	total := 0.0
	for i := int64(0); i < n; i++ {
		w := mid + 1 - math.Abs(float64(i)-mid)
		weights[i] = w
		total += w
	}
	for i, w := range weights {
		addAt(dh, lo+int64(i), delta*w/total)
	}
}

func addAt(dh []float64, i int64, v float64) {
	if i < 0 || int(i) >= len(dh) {
		return
	}
	dh[i] += v
}
