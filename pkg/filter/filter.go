// Package filter implements the hysteresis turning-point extractor of
// spec.md §4.2: a single-pass state machine that emits confirmed local
// extrema differing from the previous extremum by more than a hysteresis
// threshold.
package filter

// Direction is the slope direction of the tentative extremum currently
// being tracked.
type Direction int

const (
	// Unknown means no direction has been confirmed yet.
	Unknown Direction = iota
	Up
	Down
)

// TurningPoint is a confirmed local extremum, tagged with its position in
// the original sample stream.
type TurningPoint struct {
	Value       float64
	SampleIndex int64
}

// Filter tracks the tentative extremum and slope direction across a
// single-pass stream of samples, per spec.md §4.2.
//
// Flush always closes the stream by emitting the current tentative
// extremum as a final turning point, which the caller feeds through the
// cycle detector exactly like any other confirmed TP — this is what keeps
// the residue's trailing value coherent with the literal last sample in
// spec.md §8's worked examples (res=[1,4], res=[4,1], res=[...,2]). See
// DESIGN.md for the full discussion of this choice versus the literal
// reading of enforce_margin in spec.md §4.2.
type Filter struct {
	hysteresis    float64
	enforceMargin bool

	started   bool
	refValue  float64
	refIndex  int64
	direction Direction

	lastRaw    float64
	lastIndex  int64
	flushed    bool
}

// New builds a Filter with the given hysteresis threshold H >= 0.
// enforceMargin additionally forces the literal last raw sample into the
// closing turning point when it differs from the tracked extremum (e.g.
// the stream ends mid-trend, short of a new high/low).
func New(hysteresis float64, enforceMargin bool) *Filter {
	return &Filter{hysteresis: hysteresis, enforceMargin: enforceMargin}
}

// Push feeds one sample into the filter and returns zero or more newly
// confirmed turning points, in order.
func (f *Filter) Push(x float64, index int64) []TurningPoint {
	f.lastRaw, f.lastIndex = x, index

	if !f.started {
		f.started = true
		f.refValue, f.refIndex = x, index
		return nil
	}

	var out []TurningPoint

	switch f.direction {
	case Unknown:
		diff := x - f.refValue
		if abs(diff) > f.hysteresis {
			out = append(out, TurningPoint{Value: f.refValue, SampleIndex: f.refIndex})
			if diff > 0 {
				f.direction = Up
			} else {
				f.direction = Down
			}
			f.refValue, f.refIndex = x, index
		}

	case Up:
		if x > f.refValue {
			f.refValue, f.refIndex = x, index
		} else if f.refValue-x > f.hysteresis {
			out = append(out, TurningPoint{Value: f.refValue, SampleIndex: f.refIndex})
			f.direction = Down
			f.refValue, f.refIndex = x, index
		}

	case Down:
		if x < f.refValue {
			f.refValue, f.refIndex = x, index
		} else if x-f.refValue > f.hysteresis {
			out = append(out, TurningPoint{Value: f.refValue, SampleIndex: f.refIndex})
			f.direction = Up
			f.refValue, f.refIndex = x, index
		}
	}

	return out
}

// Flush signals end-of-stream and returns the closing turning point(s).
// The tracked extremum always closes the stream; with enforceMargin, the
// literal last raw sample closes it too when it differs from that
// extremum (the trend was cut short before forming a new high/low).
func (f *Filter) Flush() []TurningPoint {
	if !f.started || f.flushed {
		return nil
	}
	f.flushed = true

	out := []TurningPoint{{Value: f.refValue, SampleIndex: f.refIndex}}
	if f.enforceMargin && f.lastIndex != f.refIndex {
		out = append(out, TurningPoint{Value: f.lastRaw, SampleIndex: f.lastIndex})
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
