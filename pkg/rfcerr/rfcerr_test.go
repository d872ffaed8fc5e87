package rfcerr_test

import (
	"strings"
	"testing"

	"github.com/jihwankim/rfc/pkg/rfcerr"
)

func TestConfigErrorMessage(t *testing.T) {
	err := rfcerr.Config("class_count", "must be >= 2, got %d", 1)
	if err.Kind != rfcerr.InvalidConfig {
		t.Fatalf("Kind = %v, want InvalidConfig", err.Kind)
	}
	if !strings.Contains(err.Error(), "class_count") {
		t.Fatalf("Error() = %q, want to mention the field", err.Error())
	}
}

func TestSampleErrorMessage(t *testing.T) {
	err := rfcerr.Sample(rfcerr.NonFinite, 42, "non-finite value %v", "NaN")
	if err.Kind != rfcerr.NonFinite {
		t.Fatalf("Kind = %v, want NonFinite", err.Kind)
	}
	if !strings.Contains(err.Error(), "sample[42]") {
		t.Fatalf("Error() = %q, want to mention sample index", err.Error())
	}
}

func TestInternalErrMessage(t *testing.T) {
	err := rfcerr.InternalErr("residue invariant violated")
	if err.Kind != rfcerr.Internal {
		t.Fatalf("Kind = %v, want Internal", err.Kind)
	}
	if err.Field != "" || err.SampleIndex >= 0 {
		t.Fatalf("expected no field/sample attribution, got %+v", err)
	}
}

func TestKindString(t *testing.T) {
	cases := map[rfcerr.Kind]string{
		rfcerr.InvalidConfig: "InvalidConfig",
		rfcerr.NonFinite:     "NonFinite",
		rfcerr.OutOfRange:    "OutOfRange",
		rfcerr.Internal:      "Internal",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
