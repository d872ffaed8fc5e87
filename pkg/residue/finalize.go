package residue

// Policy selects how unclosed residue is treated at end-of-stream
// (spec.md §4.5).
type Policy int

const (
	None Policy = iota
	Discard
	HalfCycles
	FullCycles
	ClormannSeeger
	Repeated
	DIN45667
)

// Step is one entry in a Finalizer's audit trail: a record of what the
// configured policy did to the residue, grounded on the cleanup
// coordinator's AuditEntry shape (_examples/jhkimqd-chaos-utils
// pkg/core/cleanup/coordinator.go) — there an audit entry records one
// cleanup action against a target; here it records one policy action
// against the residual turning-point sequence.
type Step struct {
	Action        string
	EventsEmitted int
	Detail        string
}

// FinalResult is what a Finalizer produces: the additional CycleEvents
// the policy manufactured, the residue left behind afterward (the `res`
// field of the result bundle), and the audit trail of what happened.
type FinalResult struct {
	Events  []CycleEvent
	Residue []Point
	Steps   []Step
}

// Finalizer applies a residual finalization policy to whatever residue
// remains once the input stream is exhausted.
type Finalizer struct {
	policy Policy
}

// NewFinalizer builds a Finalizer for the given policy.
func NewFinalizer(policy Policy) *Finalizer {
	return &Finalizer{policy: policy}
}

// Finalize consumes residue (the stack's leftover points, in order) and
// returns the events, final residue, and audit trail the configured
// policy produces.
func (f *Finalizer) Finalize(residue []Point) FinalResult {
	switch f.policy {
	case None:
		return f.logged("none", nil, residue, "residual kept as-is, no events emitted")
	case Discard:
		return f.logged("discard", nil, nil, "residual dropped, no events emitted")
	case HalfCycles:
		events := adjacentPairs(residue, 0.5)
		return f.logged("half_cycles", events, nil, "each adjacent pair emitted as a half-cycle")
	case FullCycles:
		events := adjacentPairs(residue, 1.0)
		return f.logged("full_cycles", events, nil, "each adjacent pair emitted as a full cycle")
	case ClormannSeeger:
		return f.clormannSeeger(residue)
	case Repeated:
		return f.repeated(residue)
	case DIN45667:
		events := adjacentPairs(residue, 0.5)
		return f.logged("din45667", events, nil, "residual paired per DIN 45667 range-pair rules (half-cycle weighting)")
	default:
		return f.logged("unknown", nil, residue, "unrecognized policy, residual left untouched")
	}
}

func (f *Finalizer) logged(action string, events []CycleEvent, residue []Point, detail string) FinalResult {
	return FinalResult{
		Events:  events,
		Residue: residue,
		Steps:   []Step{{Action: action, EventsEmitted: len(events), Detail: detail}},
	}
}

// clormannSeeger applies the Clormann-Seeger residual closing theorem:
// the residue concatenated to itself is run back through the default
// four-point rule; the cycles it closes are emitted and whatever that
// stack leaves unclosed is returned as the final residue. Documented
// simplification (see DESIGN.md): we
// run the doubled sequence through the Default variant's stack rather
// than a literal two-pointer HCM traversal, since the spec only requires
// the resulting closed-cycle set, not a specific internal traversal.
func (f *Finalizer) clormannSeeger(residue []Point) FinalResult {
	events, leftover := closeDoubled(residue)
	detail := "residue concatenated to itself and closed via the four-point rule"
	if len(leftover) > 0 {
		detail += "; unclosed remainder kept as residue"
	}
	return FinalResult{
		Events:  events,
		Residue: leftover,
		Steps:   []Step{{Action: "clormann_seeger", EventsEmitted: len(events), Detail: detail}},
	}
}

// repeated concatenates the residue to itself and re-feeds it through the
// default cycle detector; closed cycles get count=1.0 and whatever
// remains unclosed becomes the final residue.
func (f *Finalizer) repeated(residue []Point) FinalResult {
	events, leftover := closeDoubled(residue)
	return FinalResult{
		Events:  events,
		Residue: leftover,
		Steps:   []Step{{Action: "repeated", EventsEmitted: len(events), Detail: "residue concatenated to itself and re-run through the cycle detector"}},
	}
}

// closeDoubled concatenates residue to itself and drains it through a
// fresh Default-variant stack, returning every cycle it closes and
// whatever residue is left over.
func closeDoubled(residue []Point) ([]CycleEvent, []Point) {
	if len(residue) == 0 {
		return nil, nil
	}
	stack, _ := New(Default)
	var events []CycleEvent
	doubled := append(append([]Point{}, residue...), residue...)
	for _, p := range doubled {
		events = append(events, stack.Push(p)...)
	}
	return events, stack.Residue()
}

// adjacentPairs emits one event per consecutive pair in residue, each
// weighted by count. Next/HasNext carry the residue point (if any)
// immediately following the pair, for the RAMP_*_24/TRANSIENT_23c
// spreading policies.
func adjacentPairs(residue []Point, count float64) []CycleEvent {
	if len(residue) < 2 {
		return nil
	}
	events := make([]CycleEvent, 0, len(residue)-1)
	for i := 0; i+1 < len(residue); i++ {
		ev := CycleEvent{From: residue[i], To: residue[i+1], Count: count}
		if i+2 < len(residue) {
			ev.Next, ev.HasNext = residue[i+2], true
		}
		events = append(events, ev)
	}
	return events
}
