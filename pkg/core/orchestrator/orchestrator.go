// Package orchestrator drives one counting run through
// Classifier -> Filter -> Residue/CycleDetector -> Accumulators -> Finalizer,
// per spec.md §2's dependency order, and assembles the Result bundle.
//
// Grounded on _examples/jhkimqd-chaos-utils pkg/core/orchestrator's
// TestState enum and transitionState/failTest pattern: a chaos test's
// PARSE->DISCOVER->...->REPORT phases become a counting run's
// RunState phases, and the teacher's cleanup-on-exit defer becomes the
// (optional, caller-invoked) verification pass in pkg/verify rather than
// container cleanup.
package orchestrator

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jihwankim/rfc/pkg/accumulate"
	"github.com/jihwankim/rfc/pkg/classify"
	"github.com/jihwankim/rfc/pkg/damage"
	"github.com/jihwankim/rfc/pkg/filter"
	"github.com/jihwankim/rfc/pkg/residue"
	"github.com/jihwankim/rfc/pkg/rfcerr"
)

// RunState is the phase a counting run is currently in.
type RunState int

const (
	StateClassify RunState = iota
	StateFilter
	StateDetect
	StateAccumulate
	StateFinalize
	StateReport
	StateCompleted
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateClassify:
		return "CLASSIFY"
	case StateFilter:
		return "FILTER"
	case StateDetect:
		return "DETECT"
	case StateAccumulate:
		return "ACCUMULATE"
	case StateFinalize:
		return "FINALIZE"
	case StateReport:
		return "REPORT"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Curve is re-exported so callers building Options don't need to import
// pkg/damage directly for the common case.
type Curve = damage.Curve

// Options is the full set of inputs to one counting run, per spec.md §6.
type Options struct {
	ClassCount  uint32
	ClassWidth  float64
	ClassOffset float64
	Hysteresis  float64

	ResidualMethod ResidualMethod
	SpreadDamage   SDMethod
	LCMethod       LCMethod

	UseHCM        bool
	UseASTM       bool
	EnforceMargin bool
	AutoResize    bool

	Curve Curve
}

// DefaultOptions derives spec.md §6's documented defaults from the input
// data: class_count=100, class_width=(max-min)/(N-1),
// class_offset=min-W/2, hysteresis=W, residual_method=REPEATED,
// spread_damage=TRANSIENT_23c, lc_method=SLOPES_UP, wl={1e3,1e7,5,5}.
func DefaultOptions(data []float64) Options {
	opts := Options{
		ClassCount:     100,
		ResidualMethod: ResidualRepeated,
		SpreadDamage:   SDTransient23c,
		LCMethod:       SlopesUp,
		Curve:          damage.DefaultCurve(),
	}
	if len(data) == 0 {
		opts.ClassWidth = 1
		opts.ClassOffset = -0.5
		opts.Hysteresis = 1
		return opts
	}
	min, max := data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	p := classify.DefaultParams(min, max, opts.ClassCount)
	opts.ClassWidth = p.Width
	opts.ClassOffset = p.Offset
	opts.Hysteresis = p.Width
	return opts
}

// TPResult is one entry of the Result bundle's `tp` output.
type TPResult struct {
	Value       float64
	SampleIndex int64
	ClassIndex  uint32
	Damage      float64
}

// Result is the output bundle of one counting run, per spec.md §3.
type Result struct {
	RFM    [][]float64
	RP     []accumulate.RangePairCell
	LC     []float64
	TP     []TPResult
	Res    []float64
	DH     []float64
	Damage float64

	ClassCount uint32 // final (possibly auto-resized) class count

	// ClosedCycles, HalfCycles and ResidueDepth are not part of spec.md
	// §3's result bundle; they exist so callers (pkg/metrics) can report
	// on a run without re-deriving counts the orchestrator already has in
	// hand while it's assembling the bundle.
	ClosedCycles float64 // events with CycleEvent.Count == 1.0
	HalfCycles   float64 // events with CycleEvent.Count == 0.5
	ResidueDepth int     // residue stack depth before finalization
}

// Run executes one counting run over data with the given (already
// defaulted) options.
func Run(data []float64, opts Options) (*Result, error) {
	logger := log.With().Str("component", "orchestrator").Logger()

	if len(data) == 0 {
		return emptyResult(opts), nil
	}

	state := StateClassify
	logState(logger, state)

	classifier, err := classify.New(classify.Params{
		Count:  opts.ClassCount,
		Offset: opts.ClassOffset,
		Width:  opts.ClassWidth,
	}, opts.AutoResize)
	if err != nil {
		logState(logger, StateFailed)
		return nil, err
	}
	if opts.Hysteresis < 0 {
		logState(logger, StateFailed)
		return nil, rfcerr.Config("hysteresis", "must be >= 0, got %g", opts.Hysteresis)
	}
	if err := opts.Curve.Validate(); err != nil {
		logState(logger, StateFailed)
		return nil, err
	}

	state = StateFilter
	logState(logger, state)
	filt := filter.New(opts.Hysteresis, opts.EnforceMargin)

	variant := residue.Default
	switch {
	case opts.UseASTM:
		variant = residue.ASTM
	case opts.UseHCM:
		variant = residue.HCM
	}
	stack, err := residue.New(variant)
	if err != nil {
		logState(logger, StateFailed)
		return nil, err
	}

	accs := accumulate.New(accumulate.Config{
		ClassCount: opts.ClassCount,
		ClassWidth: opts.ClassWidth,
		LCMethod:   opts.LCMethod.toAccumulate(),
		Curve:      opts.Curve,
	})
	spreader := damage.NewSpreader(opts.SpreadDamage.toDamage(), data, opts.Curve.K)

	dh := make([]float64, len(data))
	tpDamage := make(map[int64]float64)
	classAt := make([]uint32, len(data))
	var tpList []residue.Point
	var prevPoint residue.Point
	havePrev := false
	var closedCycles, halfCycles float64

	tallyEvent := func(ev residue.CycleEvent) {
		if ev.Count >= 1.0 {
			closedCycles += ev.Count
		} else {
			halfCycles += ev.Count
		}
	}

	state = StateDetect
	logState(logger, state)

	// creditTP books a closed or finalized cycle's full Miner's-rule
	// damage onto its own From/To turning points, split evenly between
	// them, independent of how SpreadDamage distributes it across dh.
	// This keeps sum(tp[:].Damage) == total damage for every spread
	// policy, matching the upstream rfcnt conformance test, whereas
	// reading dh[p.SampleIndex] back out only recovers the TP's own
	// share of a policy that happens to spread no further than its
	// immediate neighbours.
	creditTP := func(ev residue.CycleEvent, dmg float64) {
		half := dmg / 2
		tpDamage[ev.From.SampleIndex] += half
		tpDamage[ev.To.SampleIndex] += half
	}

	processTP := func(tp filter.TurningPoint) {
		p := residue.Point{Value: tp.Value, SampleIndex: tp.SampleIndex, ClassIndex: classAt[tp.SampleIndex]}
		tpList = append(tpList, p)

		if havePrev {
			accs.AddLevelCrossing(prevPoint, p)
		}
		prevPoint, havePrev = p, true

		events := stack.Push(p)
		for _, ev := range events {
			dmg := accs.AddEvent(ev)
			spreader.Spread(dh, spanOf(ev), dmg)
			creditTP(ev, dmg)
			tallyEvent(ev)
		}
	}

	for i, v := range data {
		idx := int64(i)
		cls, err := classifier.ClassOf(v, idx)
		if err != nil {
			logState(logger, StateFailed)
			return nil, err
		}
		classAt[i] = cls
		if classifier.Params().Count > accs.ClassCount() {
			accs.Resize(classifier.Params().Count)
		}

		for _, tp := range filt.Push(v, idx) {
			processTP(tp)
		}
	}
	for _, tp := range filt.Flush() {
		processTP(tp)
	}

	state = StateFinalize
	logState(logger, state)

	residueDepth := stack.Len()
	finalizer := residue.NewFinalizer(opts.ResidualMethod.toResidue())
	final := finalizer.Finalize(stack.Residue())
	for _, ev := range final.Events {
		dmg := accs.AddEvent(ev)
		spreader.Spread(dh, spanOf(ev), dmg)
		creditTP(ev, dmg)
		tallyEvent(ev)
	}

	state = StateReport
	logState(logger, state)

	tpOut := make([]TPResult, len(tpList))
	for i, p := range tpList {
		tpOut[i] = TPResult{Value: p.Value, SampleIndex: p.SampleIndex, ClassIndex: p.ClassIndex, Damage: tpDamage[p.SampleIndex]}
	}
	res := make([]float64, len(final.Residue))
	for i, p := range final.Residue {
		res[i] = p.Value
	}

	logState(logger, StateCompleted)

	return &Result{
		RFM:          accs.RFM(),
		RP:           accs.RP(),
		LC:           accs.LC(),
		TP:           tpOut,
		Res:          res,
		DH:           dh,
		Damage:       accs.Damage(),
		ClassCount:   accs.ClassCount(),
		ClosedCycles: closedCycles,
		HalfCycles:   halfCycles,
		ResidueDepth: residueDepth,
	}, nil
}

// emptyResult satisfies property P8: empty input yields an all-zero
// bundle, dh length 0, res empty.
func emptyResult(opts Options) *Result {
	rfm := make([][]float64, opts.ClassCount)
	for i := range rfm {
		rfm[i] = make([]float64, opts.ClassCount)
	}
	return &Result{
		RFM:        rfm,
		LC:         make([]float64, opts.ClassCount),
		DH:         []float64{},
		ClassCount: opts.ClassCount,
	}
}

// spanOf converts a residue.CycleEvent into the damage.Span its Spreader
// needs.
func spanOf(ev residue.CycleEvent) damage.Span {
	return damage.Span{
		I2:    ev.From.SampleIndex,
		I3:    ev.To.SampleIndex,
		I4:    ev.Next.SampleIndex,
		HasI4: ev.HasNext,
	}
}

func logState(logger zerolog.Logger, s RunState) {
	logger.Debug().Str("state", s.String()).Msg("state transition")
}
