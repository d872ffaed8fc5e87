// Package metrics defines and exports Prometheus metrics describing a
// counting run, grounded on _examples/jhkimqd-chaos-utils
// pkg/monitoring/metrics/polygon_pos.go's named-metric-catalog shape and
// pkg/monitoring/prometheus/client.go's Config/New constructor-with-error
// shape. Direction is inverted from the teacher: there, the client
// queries an already-running Prometheus server for externally-scraped
// SLIs; here, an offline counting run has no such external system to
// query, so Exporter produces metrics about its own runs instead.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Definition describes one exported metric, mirroring the teacher's
// MetricDefinition catalog entries (Name/Description/Type), minus the
// PromQL Query field that made sense only for an externally scraped SLI.
type Definition struct {
	Name        string
	Description string
	Type        string // counter, gauge, histogram
}

// AllMetrics lists every metric Definitions registers, for discovery and
// documentation purposes.
func AllMetrics() []Definition {
	return []Definition{
		{Name: "rfc_cycles_closed_total", Description: "cycles closed by the four-point rule or finalization", Type: "counter"},
		{Name: "rfc_half_cycles_total", Description: "half-cycles emitted during residual finalization", Type: "counter"},
		{Name: "rfc_damage_per_run", Description: "total Miner's-rule damage of a completed run", Type: "histogram"},
		{Name: "rfc_residue_depth", Description: "residue stack depth at end of stream, before finalization", Type: "gauge"},
		{Name: "rfc_out_of_range_samples_total", Description: "input samples rejected for falling outside the classifier range", Type: "counter"},
		{Name: "rfc_runs_total", Description: "counting runs completed, partitioned by outcome", Type: "counter"},
	}
}

// Definitions holds the live collector handles for the metrics above.
type Definitions struct {
	CyclesClosed     prometheus.Counter
	HalfCycles       prometheus.Counter
	DamagePerRun     prometheus.Histogram
	ResidueDepth     prometheus.Gauge
	OutOfRangeTotal  prometheus.Counter
	RunsTotal        *prometheus.CounterVec
}

func newDefinitions() *Definitions {
	return &Definitions{
		CyclesClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rfc_cycles_closed_total",
			Help: "cycles closed by the four-point rule or finalization",
		}),
		HalfCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rfc_half_cycles_total",
			Help: "half-cycles emitted during residual finalization",
		}),
		DamagePerRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rfc_damage_per_run",
			Help:    "total Miner's-rule damage of a completed run",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, 12),
		}),
		ResidueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rfc_residue_depth",
			Help: "residue stack depth at end of stream, before finalization",
		}),
		OutOfRangeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rfc_out_of_range_samples_total",
			Help: "input samples rejected for falling outside the classifier range",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rfc_runs_total",
			Help: "counting runs completed, partitioned by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveRun records one completed run's closed-cycle, half-cycle,
// residue-depth, and damage metrics in a single call.
func (d *Definitions) ObserveRun(closed, half float64, residueDepth int, damage float64, outcome string) {
	d.CyclesClosed.Add(closed)
	d.HalfCycles.Add(half)
	d.ResidueDepth.Set(float64(residueDepth))
	d.DamagePerRun.Observe(damage)
	d.RunsTotal.WithLabelValues(outcome).Inc()
}

// Config configures an Exporter.
type Config struct {
	Addr string // bind address for the /metrics endpoint, e.g. ":9090"
}

// Exporter registers Definitions against its own prometheus.Registry and
// serves them over HTTP.
type Exporter struct {
	cfg    Config
	reg    *prometheus.Registry
	Defs   *Definitions
	server *http.Server
}

// New builds an Exporter and registers every Definitions collector.
func New(cfg Config) (*Exporter, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("metrics: addr is required")
	}

	reg := prometheus.NewRegistry()
	defs := newDefinitions()
	for _, c := range []prometheus.Collector{defs.CyclesClosed, defs.HalfCycles, defs.DamagePerRun, defs.ResidueDepth, defs.OutOfRangeTotal, defs.RunsTotal} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &Exporter{
		cfg:  cfg,
		reg:  reg,
		Defs: defs,
		server: &http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		},
	}, nil
}

// ListenAndServe starts the /metrics HTTP server; it blocks until the
// server stops or ctx is cancelled.
func (e *Exporter) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- e.server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return e.server.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
