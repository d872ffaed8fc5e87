package classify_test

import (
	"math"
	"testing"

	"github.com/jihwankim/rfc/pkg/classify"
	"github.com/jihwankim/rfc/pkg/rfcerr"
)

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name    string
		params  classify.Params
		wantErr bool
	}{
		{"ok", classify.Params{Count: 2, Width: 1}, false},
		{"too few classes", classify.Params{Count: 1, Width: 1}, true},
		{"zero width", classify.Params{Count: 10, Width: 0}, true},
		{"negative width", classify.Params{Count: 10, Width: -1}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.params.Validate()
			if (err != nil) != c.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestNewRejectsInvalidParams(t *testing.T) {
	if _, err := classify.New(classify.Params{Count: 1, Width: 1}, false); err == nil {
		t.Fatal("expected error for count < 2")
	}
}

func TestClassOfBasic(t *testing.T) {
	c, err := classify.New(classify.Params{Count: 10, Offset: 0, Width: 1}, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	idx, err := c.ClassOf(3.5, 0)
	if err != nil {
		t.Fatalf("ClassOf: %v", err)
	}
	if idx != 3 {
		t.Fatalf("got class %d, want 3", idx)
	}
}

func TestClassOfNonFinite(t *testing.T) {
	c, _ := classify.New(classify.Params{Count: 10, Offset: 0, Width: 1}, false)
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := c.ClassOf(v, 0)
		rerr, ok := err.(*rfcerr.Error)
		if !ok || rerr.Kind != rfcerr.NonFinite {
			t.Fatalf("ClassOf(%v) = %v, want NonFinite error", v, err)
		}
	}
}

func TestClassOfOutOfRangeWithoutAutoResize(t *testing.T) {
	c, _ := classify.New(classify.Params{Count: 10, Offset: 0, Width: 1}, false)
	if _, err := c.ClassOf(-1, 0); err == nil {
		t.Fatal("expected OutOfRange error for value below class 0")
	}
	if _, err := c.ClassOf(11, 0); err == nil {
		t.Fatal("expected OutOfRange error for value above top class")
	}
}

func TestClassOfAutoResizeGrows(t *testing.T) {
	c, _ := classify.New(classify.Params{Count: 10, Offset: 0, Width: 1}, true)
	idx, err := c.ClassOf(15.5, 0)
	if err != nil {
		t.Fatalf("ClassOf: %v", err)
	}
	if idx != 15 {
		t.Fatalf("got class %d, want 15", idx)
	}
	if c.Params().Count != 16 {
		t.Fatalf("Count after grow = %d, want 16", c.Params().Count)
	}

	// A subsequent lower value keeps the meaning of earlier class indices.
	idx2, err := c.ClassOf(3.5, 1)
	if err != nil {
		t.Fatalf("ClassOf: %v", err)
	}
	if idx2 != 3 {
		t.Fatalf("got class %d, want 3 (unchanged by growth)", idx2)
	}
}

func TestClassOfAutoResizeStillRejectsBelowZero(t *testing.T) {
	c, _ := classify.New(classify.Params{Count: 10, Offset: 0, Width: 1}, true)
	if _, err := c.ClassOf(-5, 0); err == nil {
		t.Fatal("expected OutOfRange error for value below class 0 even with AutoResize")
	}
}

func TestCenter(t *testing.T) {
	p := classify.Params{Count: 10, Offset: 0, Width: 2}
	if got := p.Center(0); got != 1 {
		t.Fatalf("Center(0) = %g, want 1", got)
	}
	if got := p.Center(4); got != 9 {
		t.Fatalf("Center(4) = %g, want 9", got)
	}
}

func TestDefaultParams(t *testing.T) {
	p := classify.DefaultParams(0, 100, 101)
	if p.Width != 1 {
		t.Fatalf("Width = %g, want 1", p.Width)
	}
	if p.Offset != -0.5 {
		t.Fatalf("Offset = %g, want -0.5", p.Offset)
	}
}

func TestDefaultParamsDegenerateCount(t *testing.T) {
	p := classify.DefaultParams(5, 5, 1)
	if p.Width != 1 {
		t.Fatalf("Width = %g, want fallback of 1", p.Width)
	}
}
