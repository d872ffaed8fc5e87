package damage

import "testing"

func sumDH(dh []float64) float64 {
	var total float64
	for _, v := range dh {
		total += v
	}
	return total
}

func TestSpreadNoneLeavesDHUntouched(t *testing.T) {
	dh := make([]float64, 5)
	s := NewSpreader(SpreadNone, nil, 5)
	s.Spread(dh, Span{I2: 1, I3: 3}, 10)
	if sumDH(dh) != 0 {
		t.Fatalf("SpreadNone modified dh: %v", dh)
	}
}

func TestHalfCycles23SplitsEvenlyBetweenEndpoints(t *testing.T) {
	dh := make([]float64, 5)
	s := NewSpreader(HalfCycles23, nil, 5)
	s.Spread(dh, Span{I2: 1, I3: 3}, 10)
	if dh[1] != 5 || dh[3] != 5 {
		t.Fatalf("dh = %v, want dh[1]=5, dh[3]=5", dh)
	}
	if dh[0] != 0 || dh[2] != 0 || dh[4] != 0 {
		t.Fatalf("dh = %v, want other indices untouched", dh)
	}
}

func TestFullP2CreditsLeftEndpointOnly(t *testing.T) {
	dh := make([]float64, 5)
	s := NewSpreader(FullP2, nil, 5)
	s.Spread(dh, Span{I2: 1, I3: 3}, 10)
	if dh[1] != 10 || sumDH(dh) != 10 {
		t.Fatalf("dh = %v, want all credit at index 1", dh)
	}
}

func TestFullP3CreditsRightEndpointOnly(t *testing.T) {
	dh := make([]float64, 5)
	s := NewSpreader(FullP3, nil, 5)
	s.Spread(dh, Span{I2: 1, I3: 3}, 10)
	if dh[3] != 10 || sumDH(dh) != 10 {
		t.Fatalf("dh = %v, want all credit at index 3", dh)
	}
}

func TestRampDamage23SpreadsUniformlyAcrossSpan(t *testing.T) {
	dh := make([]float64, 5)
	s := NewSpreader(RampDamage23, nil, 5)
	s.Spread(dh, Span{I2: 1, I3: 3}, 9)
	for i := int64(1); i <= 3; i++ {
		if dh[i] != 3 {
			t.Fatalf("dh = %v, want 3 at each of indices 1..3", dh)
		}
	}
	if dh[0] != 0 || dh[4] != 0 {
		t.Fatalf("dh = %v, want indices outside span untouched", dh)
	}
}

func TestRampDamage23HandlesReversedSpan(t *testing.T) {
	dh := make([]float64, 5)
	s := NewSpreader(RampDamage23, nil, 5)
	s.Spread(dh, Span{I2: 3, I3: 1}, 9)
	for i := int64(1); i <= 3; i++ {
		if dh[i] != 3 {
			t.Fatalf("dh = %v, want reversed span normalized", dh)
		}
	}
}

func TestRampAmplitude23WeightsByLocalSampleMovement(t *testing.T) {
	// local increments over [1,3] are |1-0|=1, |1-1|=0, |10-1|=9, so
	// index 3 should carry the most weight and index 2 none at all.
	samples := []float64{0, 1, 1, 10}
	dh := make([]float64, 4)
	s := NewSpreader(RampAmplitude23, samples, 1)
	s.Spread(dh, Span{I2: 1, I3: 3}, 10)
	if dh[2] != 0 {
		t.Fatalf("dh = %v, want index 2 untouched (zero local increment)", dh)
	}
	if dh[3] <= dh[1] {
		t.Fatalf("dh = %v, want index 3 to carry more weight than index 1", dh)
	}
	if got := sumDH(dh); got < 9.999 || got > 10.001 {
		t.Fatalf("sum(dh) = %v, want 10", got)
	}
}

func TestRampAmplitude23FallsBackToUniformWithoutVariation(t *testing.T) {
	samples := []float64{5, 5, 5, 5}
	dh := make([]float64, 4)
	s := NewSpreader(RampAmplitude23, samples, 1)
	s.Spread(dh, Span{I2: 1, I3: 3}, 9)
	for i := 1; i <= 3; i++ {
		if dh[i] != 3 {
			t.Fatalf("dh = %v, want uniform fallback of 3 per index", dh)
		}
	}
}

func TestRampAmplitude24ExtendsToI4WhenPresent(t *testing.T) {
	samples := []float64{0, 1, 2, 3, 4}
	dh := make([]float64, 5)
	s := NewSpreader(RampAmplitude24, samples, 1)
	s.Spread(dh, Span{I2: 1, I3: 2, I4: 4, HasI4: true}, 10)
	if dh[3] == 0 || dh[4] == 0 {
		t.Fatalf("dh = %v, want the span extended through index 4", dh)
	}
}

func TestRampAmplitude24IgnoresI4WhenAbsent(t *testing.T) {
	samples := []float64{0, 1, 2, 3, 4}
	dh := make([]float64, 5)
	s := NewSpreader(RampAmplitude24, samples, 1)
	s.Spread(dh, Span{I2: 1, I3: 2, HasI4: false}, 10)
	if dh[3] != 0 || dh[4] != 0 {
		t.Fatalf("dh = %v, want nothing spread past i3 without i4", dh)
	}
}

func TestTransient23PeaksAtMidpoint(t *testing.T) {
	dh := make([]float64, 5)
	s := NewSpreader(Transient23, nil, 5)
	s.Spread(dh, Span{I2: 0, I3: 4}, 10)
	if dh[2] <= dh[0] || dh[2] <= dh[4] {
		t.Fatalf("dh = %v, want the midpoint to carry the most weight", dh)
	}
	if got := sumDH(dh); got < 9.999 || got > 10.001 {
		t.Fatalf("sum(dh) = %v, want 10", got)
	}
}

func TestTransient23SingleSampleSpanTakesAllDelta(t *testing.T) {
	dh := make([]float64, 3)
	s := NewSpreader(Transient23, nil, 5)
	s.Spread(dh, Span{I2: 1, I3: 1}, 7)
	if dh[1] != 7 {
		t.Fatalf("dh = %v, want all delta at the single-sample span", dh)
	}
}

func TestSpreadIgnoresOutOfBoundsIndices(t *testing.T) {
	dh := make([]float64, 2)
	s := NewSpreader(FullP2, nil, 5)
	s.Spread(dh, Span{I2: 100, I3: 101}, 10)
	if sumDH(dh) != 0 {
		t.Fatalf("dh = %v, want out-of-bounds span to be a no-op", dh)
	}
}
