package orchestrator_test

import (
	"math"
	"testing"

	"github.com/jihwankim/rfc/pkg/core/orchestrator"
)

func baseOptions(classCount uint32, width, offset, hysteresis float64) orchestrator.Options {
	return orchestrator.Options{
		ClassCount:     classCount,
		ClassWidth:     width,
		ClassOffset:    offset,
		Hysteresis:     hysteresis,
		ResidualMethod: orchestrator.ResidualNone,
		SpreadDamage:   orchestrator.SDNone,
		LCMethod:       orchestrator.SlopesUp,
		Curve:          orchestrator.Curve{SD: 1e3, ND: 1e7, K: 5, K2: 5},
	}
}

func sumRFM(rfm [][]float64) float64 {
	var sum float64
	for _, row := range rfm {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

func TestRunEmptyInput(t *testing.T) {
	res, err := orchestrator.Run(nil, baseOptions(100, 1, -0.5, 1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sumRFM(res.RFM) != 0 {
		t.Fatalf("RFM sum = %g, want 0", sumRFM(res.RFM))
	}
	if len(res.Res) != 0 {
		t.Fatalf("res = %v, want empty", res.Res)
	}
	if len(res.DH) != 0 {
		t.Fatalf("dh length = %d, want 0", len(res.DH))
	}
	if res.Damage != 0 {
		t.Fatalf("damage = %g, want 0", res.Damage)
	}
}

func TestRunSingleUpCycle(t *testing.T) {
	data := []float64{1, 3, 2, 4}
	res, err := orchestrator.Run(data, baseOptions(4, 1, 0.5, 0.99))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sumRFM(res.RFM) != 1 {
		t.Fatalf("RFM sum = %g, want 1", sumRFM(res.RFM))
	}
	if res.RFM[2][1] != 1 {
		t.Fatalf("RFM[2][1] = %g, want 1", res.RFM[2][1])
	}
	if !floatsEqual(res.Res, []float64{1, 4}) {
		t.Fatalf("res = %v, want [1 4]", res.Res)
	}
}

func TestRunSingleDownCycle(t *testing.T) {
	data := []float64{4, 2, 3, 1}
	res, err := orchestrator.Run(data, baseOptions(4, 1, 0.5, 0.99))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sumRFM(res.RFM) != 1 {
		t.Fatalf("RFM sum = %g, want 1", sumRFM(res.RFM))
	}
	if res.RFM[1][2] != 1 {
		t.Fatalf("RFM[1][2] = %g, want 1", res.RFM[1][2])
	}
	if !floatsEqual(res.Res, []float64{4, 1}) {
		t.Fatalf("res = %v, want [4 1]", res.Res)
	}
}

func TestRunSmallMixedSeries(t *testing.T) {
	data := []float64{2, 5, 3, 6, 2, 4, 1, 6, 1, 4, 1, 5, 3, 6, 3, 6, 1, 5, 2}
	res, err := orchestrator.Run(data, baseOptions(6, 1, 0.5, 1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sumRFM(res.RFM) != 7 {
		t.Fatalf("RFM sum = %g, want 7", sumRFM(res.RFM))
	}
	cases := []struct {
		from, to int
		want     float64
	}{
		{4, 2, 2},
		{5, 2, 1},
		{0, 3, 1},
		{1, 3, 1},
		{0, 5, 2},
	}
	for _, c := range cases {
		if got := res.RFM[c.from][c.to]; got != c.want {
			t.Fatalf("RFM[%d][%d] = %g, want %g", c.from, c.to, got, c.want)
		}
	}
	if !floatsEqual(res.Res, []float64{2, 6, 1, 5, 2}) {
		t.Fatalf("res = %v, want [2 6 1 5 2]", res.Res)
	}
}

func TestRunDHLengthMatchesInput(t *testing.T) {
	data := []float64{2, 5, 3, 6, 2, 4, 1, 6, 1, 4}
	opts := baseOptions(6, 1, 0.5, 1)
	opts.SpreadDamage = orchestrator.SDTransient23c
	opts.ResidualMethod = orchestrator.ResidualRepeated
	res, err := orchestrator.Run(data, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.DH) != len(data) {
		t.Fatalf("len(dh) = %d, want %d", len(res.DH), len(data))
	}
}

func TestRunDHSumMatchesDamageUnderSpread(t *testing.T) {
	data := []float64{2, 5, 3, 6, 2, 4, 1, 6, 1, 4, 1, 5, 3, 6, 3, 6, 1, 5, 2}
	opts := baseOptions(6, 1, 0.5, 1)
	opts.SpreadDamage = orchestrator.SDTransient23c
	opts.ResidualMethod = orchestrator.ResidualRepeated
	res, err := orchestrator.Run(data, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var sum float64
	for _, v := range res.DH {
		sum += v
	}
	if res.Damage == 0 {
		t.Fatal("expected nonzero damage")
	}
	if rel := math.Abs(sum-res.Damage) / res.Damage; rel > 1e-9 {
		t.Fatalf("sum(dh)=%g, damage=%g, relative diff %g exceeds tolerance", sum, res.Damage, rel)
	}
}

// TestRunTPDamageCoherenceUnderNonAdjacentSpread exercises a cycle whose
// P2/P3 turning points aren't adjacent raw samples (index 5, value 8, is
// filtered out by the hysteresis filter and is not itself a TP), so
// SDRampDamage23 spreads part of the cycle's damage onto a non-TP sample.
// sum(tp[:].Damage) must still equal total damage regardless.
func TestRunTPDamageCoherenceUnderNonAdjacentSpread(t *testing.T) {
	data := []float64{0, 2, 4, 10, 12, 8, 3, 9, 11, 25, 5}
	opts := baseOptions(30, 1, -0.5, 5)
	opts.SpreadDamage = orchestrator.SDRampDamage23
	res, err := orchestrator.Run(data, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Damage == 0 {
		t.Fatal("expected nonzero damage")
	}
	var tpSum float64
	for _, p := range res.TP {
		tpSum += p.Damage
	}
	if rel := math.Abs(tpSum-res.Damage) / res.Damage; rel > 1e-9 {
		t.Fatalf("sum(tp.Damage)=%g, damage=%g, relative diff %g exceeds tolerance", tpSum, res.Damage, rel)
	}
}

func TestDefaultOptionsEmptyData(t *testing.T) {
	opts := orchestrator.DefaultOptions(nil)
	if opts.ClassWidth != 1 || opts.ClassOffset != -0.5 || opts.Hysteresis != 1 {
		t.Fatalf("DefaultOptions(nil) = %+v, want width=1 offset=-0.5 hysteresis=1", opts)
	}
	if opts.ClassCount != 100 {
		t.Fatalf("ClassCount = %d, want 100", opts.ClassCount)
	}
}

func TestDefaultOptionsDerivesFromExtrema(t *testing.T) {
	opts := orchestrator.DefaultOptions([]float64{1, 3, 2, 4})
	wantWidth := 3.0 / 99.0
	if math.Abs(opts.ClassWidth-wantWidth) > 1e-12 {
		t.Fatalf("ClassWidth = %g, want %g", opts.ClassWidth, wantWidth)
	}
	wantOffset := 1 - wantWidth/2
	if math.Abs(opts.ClassOffset-wantOffset) > 1e-12 {
		t.Fatalf("ClassOffset = %g, want %g", opts.ClassOffset, wantOffset)
	}
	if opts.Hysteresis != opts.ClassWidth {
		t.Fatalf("Hysteresis = %g, want equal to ClassWidth %g", opts.Hysteresis, opts.ClassWidth)
	}
}

func TestRunPropagatesInvalidClassParams(t *testing.T) {
	// class_width <= 0 is rejected by classify.Params.Validate before any
	// sample is processed.
	_, err := orchestrator.Run([]float64{1, 2, 3}, baseOptions(4, 0, 0, 1))
	if err == nil {
		t.Fatal("expected error for invalid class width")
	}
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
