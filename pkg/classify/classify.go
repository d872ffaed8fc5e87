// Package classify maps real-valued samples onto a bounded set of integer
// class indices, per spec.md §3/§4.1.
package classify

import (
	"math"

	"github.com/jihwankim/rfc/pkg/rfcerr"
)

// Params is the (offset, width, count) triple that defines a classing.
// Class i represents the half-open interval [Offset+i*Width, Offset+(i+1)*Width).
type Params struct {
	Count  uint32
	Offset float64
	Width  float64
}

// Validate checks the invariants spec.md §3 requires of a classing.
func (p Params) Validate() error {
	if p.Count < 2 {
		return rfcerr.Config("class_count", "must be >= 2, got %d", p.Count)
	}
	if p.Width <= 0 {
		return rfcerr.Config("class_width", "must be > 0, got %g", p.Width)
	}
	return nil
}

// Classifier turns sample values into class indices according to Params.
// With AutoResize, values above the top class grow Count rather than
// failing; values below class 0 still fail with OutOfRange.
type Classifier struct {
	params     Params
	autoResize bool
}

// New builds a Classifier. Returns InvalidConfig if params fails Validate.
func New(params Params, autoResize bool) (*Classifier, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{params: params, autoResize: autoResize}, nil
}

// Params returns the classifier's current (possibly auto-resized) classing.
func (c *Classifier) Params() Params {
	return c.params
}

// ClassOf maps v to a class index in [0, Count). index is the sample's
// original position, used only to attribute errors. When AutoResize grows
// Count to accommodate v, the new Count is reflected in subsequent calls
// to Params().
func (c *Classifier) ClassOf(v float64, index int64) (uint32, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, rfcerr.Sample(rfcerr.NonFinite, index, "non-finite value %v", v)
	}

	raw := math.Floor((v - c.params.Offset) / c.params.Width)

	// AutoResize only ever grows upward: widening the offset downward would
	// retroactively change the class index of every sample classified so
	// far, which the streaming filter/residue already recorded. Growing the
	// top is safe because existing class indices keep their meaning.
	if raw < 0 {
		return 0, rfcerr.Sample(rfcerr.OutOfRange, index, "value %g below class 0", v)
	}
	if raw >= float64(c.params.Count) {
		if !c.autoResize {
			return 0, rfcerr.Sample(rfcerr.OutOfRange, index, "value %g above class %d", v, c.params.Count-1)
		}
		grow := uint32(raw) - c.params.Count + 1
		c.params.Count += grow
		raw = float64(c.params.Count - 1)
	}

	return clip(raw, c.params.Count), nil
}

// clip forces an already-rounded class index into [0, count).
func clip(raw float64, count uint32) uint32 {
	if raw < 0 {
		return 0
	}
	if raw >= float64(count) {
		return count - 1
	}
	return uint32(raw)
}

// Center returns the midpoint value of class i, used to compute cycle
// amplitudes for damage calculation (spec.md §4.6).
func (p Params) Center(i uint32) float64 {
	return p.Offset + (float64(i)+0.5)*p.Width
}

// DefaultParams derives (offset, width) from the sample extrema the way
// spec.md §6 specifies: width = (max-min)/(N-1), offset = min - width/2.
func DefaultParams(min, max float64, count uint32) Params {
	width := 1.0
	if count > 1 {
		width = (max - min) / float64(count-1)
	}
	if width <= 0 {
		width = 1.0
	}
	return Params{Count: count, Offset: min - width/2, Width: width}
}
