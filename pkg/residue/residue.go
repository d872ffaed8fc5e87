// Package residue implements the bounded-depth residue stack and the
// four-point cycle detector of spec.md §4.3/§4.4, plus its ASTM and HCM
// variants.
package residue

import "github.com/jihwankim/rfc/pkg/rfcerr"

// Point is a turning point carrying the class index it was classified
// into, as computed by pkg/classify at the moment it was first sampled.
// The residue stack and cycle detector compare raw Values (per spec.md
// §4.4's r23/r12/r34), but CycleEvents report class indices, so every
// Point pushed here must already carry one.
type Point struct {
	Value       float64
	SampleIndex int64
	ClassIndex  uint32
}

// CycleEvent is emitted each time the cycle detector closes a cycle, or
// the finalizer manufactures one from unclosed residue.
type CycleEvent struct {
	From  Point
	To    Point
	Count float64 // 1.0 for a closed cycle, 0.5 for a finalized half-cycle

	// Next is the TP immediately following To in the original TP stream,
	// when one exists — spec.md §4.7's i4, used by the RAMP_*_24 and
	// TRANSIENT_23c damage-spreading policies. For the four-point rule
	// this is P4; for finalized half/full-cycle events it's whatever
	// residue point follows the pair, if any.
	Next    Point
	HasNext bool
}

// Variant selects the cycle-detection discipline (spec.md §4.4).
type Variant int

const (
	Default Variant = iota
	ASTM
	HCM
)

// Stack is the append-only residue of spec.md §4.3: the cycle detector
// only ever inspects its top four entries, and removal is always of the
// inner two (indices -3, -2 from the top), preserving -4 and -1.
type Stack struct {
	variant Variant
	points  []Point

	astmStartChecked bool
}

// New builds an empty residue stack using the given cycle-detection
// variant. Returns InvalidConfig for an unrecognized variant.
func New(variant Variant) (*Stack, error) {
	if err := validateVariant(variant); err != nil {
		return nil, err
	}
	return &Stack{variant: variant}, nil
}

// Push appends a new turning point and runs the four-point rule (or its
// configured variant) to exhaustion, returning every cycle it closes in
// emission order.
func (s *Stack) Push(p Point) []CycleEvent {
	s.points = append(s.points, p)

	var events []CycleEvent

	if s.variant == ASTM {
		if ev, ok := s.astmStartRule(); ok {
			events = append(events, ev)
		}
	}

	for {
		ev, ok := s.tryClose()
		if !ok {
			break
		}
		events = append(events, ev)
	}

	return events
}

// tryClose applies the four-point rule to the top four residue entries,
// closing and removing the inner pair if the rule fires.
func (s *Stack) tryClose() (CycleEvent, bool) {
	n := len(s.points)
	if n < 4 {
		return CycleEvent{}, false
	}

	p1, p2, p3, p4 := s.points[n-4], s.points[n-3], s.points[n-2], s.points[n-1]
	r23 := absf(p2.Value - p3.Value)
	r12 := absf(p1.Value - p2.Value)
	r34 := absf(p3.Value - p4.Value)

	if r23 > r12 || r23 > r34 {
		return CycleEvent{}, false
	}

	ev := CycleEvent{From: p2, To: p3, Count: 1.0, Next: p4, HasNext: true}
	// Remove the inner pair, keeping P1 and P4 adjacent.
	s.points = append(s.points[:n-3], s.points[n-1])
	return ev, true
}

// astmStartRule admits the ASTM E1049 special-cased closure of the cycle
// involving the very first sample, which the default four-point rule
// cannot see until a fourth point has arrived. It fires at most once, the
// first time the residue holds exactly three points, per spec.md §4.4's
// "also admits closure of the first cycle involving the starting point
// under the standard's endpoint rules" — see DESIGN.md for the documented
// scope of this simplification.
func (s *Stack) astmStartRule() (CycleEvent, bool) {
	if s.astmStartChecked || len(s.points) != 3 {
		return CycleEvent{}, false
	}
	s.astmStartChecked = true

	p1, p2, p3 := s.points[0], s.points[1], s.points[2]
	r12 := absf(p1.Value - p2.Value)
	r23 := absf(p2.Value - p3.Value)
	if r12 > r23 {
		return CycleEvent{}, false
	}

	ev := CycleEvent{From: p1, To: p2, Count: 1.0, Next: p3, HasNext: true}
	s.points = []Point{p3}
	return ev, true
}

// Residue returns the stack's current unclosed entries, in order.
func (s *Stack) Residue() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Len reports the current residue depth.
func (s *Stack) Len() int { return len(s.points) }

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ClassDelta reports the signed class difference between two points;
// kept small so callers (accumulate, damage) don't need to reach into
// Point fields directly for the common case.
func ClassDelta(a, b Point) int64 {
	return int64(a.ClassIndex) - int64(b.ClassIndex)
}

// validateVariant rejects an unrecognized variant at construction sites
// that accept one from configuration.
func validateVariant(v Variant) error {
	switch v {
	case Default, ASTM, HCM:
		return nil
	default:
		return rfcerr.Config("variant", "unrecognized cycle detector variant %d", v)
	}
}
