package accumulate_test

import (
	"math"
	"testing"

	"github.com/jihwankim/rfc/pkg/accumulate"
	"github.com/jihwankim/rfc/pkg/damage"
	"github.com/jihwankim/rfc/pkg/residue"
)

func ptr(idx uint32) residue.Point {
	return residue.Point{ClassIndex: idx}
}

func newAccum(n uint32) *accumulate.Accumulators {
	return accumulate.New(accumulate.Config{
		ClassCount: n,
		ClassWidth: 1,
		LCMethod:   accumulate.SlopesAll,
		Curve:      damage.DefaultCurve(),
	})
}

func TestAddEventFillsRFMCell(t *testing.T) {
	a := newAccum(10)
	ev := residue.CycleEvent{From: ptr(2), To: ptr(7), Count: 1.0}
	a.AddEvent(ev)

	rfm := a.RFM()
	if rfm[2][7] != 1.0 {
		t.Fatalf("RFM[2][7] = %g, want 1.0", rfm[2][7])
	}
	if a.RFMSum() != 1.0 {
		t.Fatalf("RFMSum = %g, want 1.0", a.RFMSum())
	}
}

func TestAddEventAccumulatesRP(t *testing.T) {
	a := newAccum(10)
	a.AddEvent(residue.CycleEvent{From: ptr(2), To: ptr(7), Count: 1.0})
	a.AddEvent(residue.CycleEvent{From: ptr(7), To: ptr(2), Count: 0.5})

	rp := a.RP()
	var total float64
	for _, cell := range rp {
		if cell.ClassDelta != 5 {
			t.Fatalf("unexpected class delta %d in %+v", cell.ClassDelta, rp)
		}
		total += cell.Count
	}
	if total != 1.5 {
		t.Fatalf("RP total = %g, want 1.5", total)
	}
}

func TestAddEventSkipsZeroCountCellsInRP(t *testing.T) {
	a := newAccum(10)
	if len(a.RP()) != 0 {
		t.Fatalf("expected empty RP for fresh accumulators, got %+v", a.RP())
	}
}

func TestAddEventAccruesDamage(t *testing.T) {
	a := newAccum(10)
	a.AddEvent(residue.CycleEvent{From: ptr(0), To: ptr(5), Count: 2.0})
	if a.Damage() <= 0 {
		t.Fatalf("Damage() = %g, want > 0", a.Damage())
	}
}

func TestAddLevelCrossingSlopesAll(t *testing.T) {
	a := newAccum(10)
	a.AddLevelCrossing(ptr(2), ptr(5))
	lc := a.LC()
	for c := 3; c <= 5; c++ {
		if lc[c] != 1 {
			t.Fatalf("LC[%d] = %g, want 1", c, lc[c])
		}
	}
	if lc[2] != 0 || lc[6] != 0 {
		t.Fatalf("LC boundary crossed outside [3,5]: %v", lc)
	}
}

func TestAddLevelCrossingSlopesUpIgnoresDownCrossing(t *testing.T) {
	a := accumulate.New(accumulate.Config{ClassCount: 10, ClassWidth: 1, LCMethod: accumulate.SlopesUp, Curve: damage.DefaultCurve()})
	a.AddLevelCrossing(ptr(5), ptr(2)) // downward
	for _, v := range a.LC() {
		if v != 0 {
			t.Fatalf("SlopesUp counted a downward crossing: %v", a.LC())
		}
	}
}

func TestAddLevelCrossingSlopesDownIgnoresUpCrossing(t *testing.T) {
	a := accumulate.New(accumulate.Config{ClassCount: 10, ClassWidth: 1, LCMethod: accumulate.SlopesDown, Curve: damage.DefaultCurve()})
	a.AddLevelCrossing(ptr(2), ptr(5)) // upward
	for _, v := range a.LC() {
		if v != 0 {
			t.Fatalf("SlopesDown counted an upward crossing: %v", a.LC())
		}
	}
}

func TestResizePreservesCells(t *testing.T) {
	a := newAccum(5)
	a.AddEvent(residue.CycleEvent{From: ptr(1), To: ptr(3), Count: 1.0})
	a.Resize(10)

	if a.ClassCount() != 10 {
		t.Fatalf("ClassCount() = %d, want 10", a.ClassCount())
	}
	rfm := a.RFM()
	if rfm[1][3] != 1.0 {
		t.Fatalf("RFM[1][3] = %g after resize, want 1.0", rfm[1][3])
	}
	rp := a.RP()
	if len(rp) != 1 || rp[0].ClassDelta != 2 || rp[0].Count != 1.0 {
		t.Fatalf("RP after resize = %+v, want one cell delta=2 count=1", rp)
	}
}

func TestResizeNoopWhenSmallerOrEqual(t *testing.T) {
	a := newAccum(10)
	a.Resize(5)
	if a.ClassCount() != 10 {
		t.Fatalf("ClassCount() = %d, want unchanged 10", a.ClassCount())
	}
	a.Resize(10)
	if a.ClassCount() != 10 {
		t.Fatalf("ClassCount() = %d, want unchanged 10", a.ClassCount())
	}
}

func TestClassDeltaSymmetry(t *testing.T) {
	a := newAccum(10)
	a.AddEvent(residue.CycleEvent{From: ptr(8), To: ptr(1), Count: 1})
	rp := a.RP()
	if len(rp) != 1 || rp[0].ClassDelta != 7 {
		t.Fatalf("RP = %+v, want one cell with delta 7", rp)
	}
}

func TestDamageMonotonicWithAmplitude(t *testing.T) {
	a1 := newAccum(20)
	a1.AddEvent(residue.CycleEvent{From: ptr(9), To: ptr(10), Count: 1})
	a2 := newAccum(20)
	a2.AddEvent(residue.CycleEvent{From: ptr(0), To: ptr(19), Count: 1})
	if !(a2.Damage() > a1.Damage()) {
		t.Fatalf("expected larger-amplitude cycle to accrue more damage: small=%g large=%g", a1.Damage(), a2.Damage())
	}
	if math.IsNaN(a2.Damage()) || math.IsInf(a2.Damage(), 0) {
		t.Fatalf("Damage() is not finite: %g", a2.Damage())
	}
}
