package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jihwankim/rfc/pkg/metrics"
)

func TestNewRejectsEmptyAddr(t *testing.T) {
	if _, err := metrics.New(metrics.Config{}); err == nil {
		t.Fatal("expected error for empty bind address")
	}
}

func TestNewRegistersEveryCollector(t *testing.T) {
	exp, err := metrics.New(metrics.Config{Addr: ":0"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if exp.Defs == nil {
		t.Fatal("Defs is nil")
	}
}

func TestObserveRunUpdatesCollectors(t *testing.T) {
	exp, err := metrics.New(metrics.Config{Addr: ":0"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	exp.Defs.ObserveRun(3, 1, 2, 0.01, "completed")

	if got := testutil.ToFloat64(exp.Defs.CyclesClosed); got != 3 {
		t.Fatalf("CyclesClosed = %g, want 3", got)
	}
	if got := testutil.ToFloat64(exp.Defs.HalfCycles); got != 1 {
		t.Fatalf("HalfCycles = %g, want 1", got)
	}
	if got := testutil.ToFloat64(exp.Defs.ResidueDepth); got != 2 {
		t.Fatalf("ResidueDepth = %g, want 2", got)
	}
	if got := testutil.ToFloat64(exp.Defs.RunsTotal.WithLabelValues("completed")); got != 1 {
		t.Fatalf("RunsTotal{completed} = %g, want 1", got)
	}
}

func TestAllMetricsListsEveryCatalogEntry(t *testing.T) {
	defs := metrics.AllMetrics()
	if len(defs) != 6 {
		t.Fatalf("got %d metric definitions, want 6", len(defs))
	}
	names := map[string]bool{}
	for _, d := range defs {
		names[d.Name] = true
	}
	for _, want := range []string{
		"rfc_cycles_closed_total",
		"rfc_half_cycles_total",
		"rfc_damage_per_run",
		"rfc_residue_depth",
		"rfc_out_of_range_samples_total",
		"rfc_runs_total",
	} {
		if !names[want] {
			t.Fatalf("AllMetrics() missing %q: %+v", want, defs)
		}
	}
}
