// Package accumulate implements the on-the-fly histograms fed by
// CycleEvents and the filtered turning-point stream: the rainflow matrix,
// range-pair histogram, and level-crossing counter of spec.md §3/§4.8.
//
// Grounded on the shape of _examples/jhkimqd-chaos-utils
// pkg/monitoring/collector/collector.go's Collector: a Config-constructed
// struct accumulating pushed samples with plain accessor methods. That
// collector polls an external Prometheus server on a ticker and guards
// its maps with a mutex; a counting run is single-threaded and
// synchronous (spec.md §5), so the concurrency and polling machinery is
// dropped and the accumulation targets are histogram cells instead of
// time-series samples.
package accumulate

import (
	"github.com/jihwankim/rfc/pkg/damage"
	"github.com/jihwankim/rfc/pkg/residue"
)

// LCMethod selects which slope direction(s) the level-crossing counter
// tallies. Stable integer values reproduced from spec.md §6 — note the
// gap at 2, which the original library's bitmask-style encoding leaves
// unused.
type LCMethod int

const (
	SlopesUp   LCMethod = 0
	SlopesDown LCMethod = 1
	SlopesAll  LCMethod = 3
)

// Config configures a fresh set of accumulators.
type Config struct {
	ClassCount uint32
	ClassWidth float64
	LCMethod   LCMethod
	Curve      damage.Curve
}

// RangePairCell is one entry of the RP histogram's N×2 output shape:
// class-difference index and accumulated count.
type RangePairCell struct {
	ClassDelta uint32
	Count      float64
}

// Accumulators holds the RFM, RP, and LC histograms and the running
// Miner's-rule damage total for one counting run.
type Accumulators struct {
	n        uint32
	width    float64
	curve    damage.Curve
	lcMethod LCMethod

	rfm    []float64 // row-major, n*n, index = from*n+to
	rp     []float64 // index = class delta, 0..n-1
	lc     []float64 // index = class boundary, 0..n-1
	damage float64
}

// New builds an empty Accumulators for the given classing.
func New(cfg Config) *Accumulators {
	return &Accumulators{
		n:        cfg.ClassCount,
		width:    cfg.ClassWidth,
		curve:    cfg.Curve,
		lcMethod: cfg.LCMethod,
		rfm:      make([]float64, uint64(cfg.ClassCount)*uint64(cfg.ClassCount)),
		rp:       make([]float64, cfg.ClassCount),
		lc:       make([]float64, cfg.ClassCount),
	}
}

// Resize grows the accumulators to a larger class count, preserving
// existing cell values at their original (from, to) / delta / boundary
// indices — the counterpart to classify.Classifier's auto_resize, which
// only ever grows the class range upward (see DESIGN.md).
func (a *Accumulators) Resize(newCount uint32) {
	if newCount <= a.n {
		return
	}
	newRFM := make([]float64, uint64(newCount)*uint64(newCount))
	for from := uint32(0); from < a.n; from++ {
		copy(newRFM[uint64(from)*uint64(newCount):], a.rfm[uint64(from)*uint64(a.n):uint64(from+1)*uint64(a.n)])
	}
	newRP := make([]float64, newCount)
	copy(newRP, a.rp)
	newLC := make([]float64, newCount)
	copy(newLC, a.lc)

	a.rfm, a.rp, a.lc, a.n = newRFM, newRP, newLC, newCount
}

// AddEvent folds one CycleEvent into the RFM, RP, and damage total, per
// spec.md §4.4/§4.6, returning the damage contribution so the caller can
// hand it to a damage.Spreader.
func (a *Accumulators) AddEvent(ev residue.CycleEvent) float64 {
	from, to := ev.From.ClassIndex, ev.To.ClassIndex
	a.rfm[uint64(from)*uint64(a.n)+uint64(to)] += ev.Count

	d := classDelta(from, to)
	a.rp[d] += ev.Count

	amplitude := a.width * float64(d) / 2
	dmg := damage.FromCycle(a.curve, amplitude, ev.Count)
	a.damage += dmg
	return dmg
}

// AddLevelCrossing folds one consecutive pair of filtered turning points
// into the LC histogram, per spec.md §4.8.
func (a *Accumulators) AddLevelCrossing(x, y residue.Point) {
	lo, hi := x.ClassIndex, y.ClassIndex
	up := hi > lo
	if !up {
		lo, hi = hi, lo
	}
	if !a.crosses(up) {
		return
	}
	for c := lo + 1; c <= hi; c++ {
		if int(c) < len(a.lc) {
			a.lc[c]++
		}
	}
}

func (a *Accumulators) crosses(up bool) bool {
	switch a.lcMethod {
	case SlopesUp:
		return up
	case SlopesDown:
		return !up
	case SlopesAll:
		return true
	default:
		return false
	}
}

// RFM returns the N×N rainflow matrix as a dense slice of rows.
func (a *Accumulators) RFM() [][]float64 {
	out := make([][]float64, a.n)
	for from := uint32(0); from < a.n; from++ {
		row := make([]float64, a.n)
		copy(row, a.rfm[uint64(from)*uint64(a.n):uint64(from+1)*uint64(a.n)])
		out[from] = row
	}
	return out
}

// RFMSum returns the total event count recorded in the RFM, used by
// property P3 (count conservation).
func (a *Accumulators) RFMSum() float64 {
	var sum float64
	for _, v := range a.rfm {
		sum += v
	}
	return sum
}

// RP returns the range-pair histogram as (class-delta, count) cells,
// skipping deltas with zero count, matching the Result bundle's `rp`
// output shape.
func (a *Accumulators) RP() []RangePairCell {
	var out []RangePairCell
	for d, count := range a.rp {
		if count == 0 {
			continue
		}
		out = append(out, RangePairCell{ClassDelta: uint32(d), Count: count})
	}
	return out
}

// LC returns the level-crossing histogram.
func (a *Accumulators) LC() []float64 {
	out := make([]float64, len(a.lc))
	copy(out, a.lc)
	return out
}

// Damage returns the cumulative Miner's-rule damage from closed and
// finalized cycles folded in so far.
func (a *Accumulators) Damage() float64 {
	return a.damage
}

// ClassCount returns the accumulators' current (possibly resized) class
// count.
func (a *Accumulators) ClassCount() uint32 {
	return a.n
}

func classDelta(from, to uint32) uint32 {
	if from > to {
		return from - to
	}
	return to - from
}
