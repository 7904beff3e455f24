// Package perfmon instruments the query engine with OpenTelemetry metrics:
// a per-query-kind latency histogram and hit/miss counters, plus a
// rolling percentile tracker so a caller can check the p50/p95/p99 budget
// guardrails without standing up a metrics backend.
//
// Instruments are registered against the global otel provider at package
// init time, using the package-level-meter/delegating-provider pattern:
// they forward to a real exporter only once one is installed, so this
// package works whether or not telemetry is ever configured.
package perfmon

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/janus-lang/astdb/internal/query"
)

var tracerName = "github.com/janus-lang/astdb/internal/perfmon"

var instruments struct {
	latency metric.Float64Histogram
	hits    metric.Int64Counter
	misses  metric.Int64Counter
}

func init() {
	m := otel.Meter(tracerName)
	instruments.latency, _ = m.Float64Histogram("janus.query.latency_ms",
		metric.WithDescription("Query engine compute latency by query kind"),
		metric.WithUnit("ms"),
	)
	instruments.hits, _ = m.Int64Counter("janus.query.memo_hits",
		metric.WithDescription("Queries served from the memo cache without recomputation"),
		metric.WithUnit("{query}"),
	)
	instruments.misses, _ = m.Int64Counter("janus.query.memo_misses",
		metric.WithDescription("Queries that required a fresh computation"),
		metric.WithUnit("{query}"),
	)
}

// Budget is the p95 latency ceiling a Monitor checks its samples against.
const Budget = 10 * time.Millisecond

// Monitor records query latencies in memory (for percentile reporting)
// while also emitting them as OTel metrics. Instrument wraps a
// query.Compute so its latency is recorded on every run.
type Monitor struct {
	mu      sync.Mutex
	samples map[query.Kind][]time.Duration
	log     *slog.Logger
}

// NewMonitor creates an empty perfmon Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		samples: make(map[query.Kind][]time.Duration),
		log:     slog.Default().With("component", "perfmon"),
	}
}

// Record stores one latency observation for kind and emits it as an OTel
// histogram data point tagged with the query kind.
func (m *Monitor) Record(ctx context.Context, kind query.Kind, d time.Duration) {
	m.mu.Lock()
	m.samples[kind] = append(m.samples[kind], d)
	m.mu.Unlock()

	instruments.latency.Record(ctx, float64(d.Microseconds())/1000,
		metric.WithAttributes(attribute.String("query.kind", kind.String())))
}

// RecordHit increments the memo-hit counter for kind.
func (m *Monitor) RecordHit(ctx context.Context, kind query.Kind) {
	instruments.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("query.kind", kind.String())))
}

// RecordMiss increments the memo-miss counter for kind.
func (m *Monitor) RecordMiss(ctx context.Context, kind query.Kind) {
	instruments.misses.Add(ctx, 1, metric.WithAttributes(attribute.String("query.kind", kind.String())))
}

// Instrument wraps compute so every invocation's wall-clock latency is
// recorded against kind, regardless of whether it ultimately succeeds.
// Callers pass the result to query.Engine.Query in place of a bare
// compute function.
func (m *Monitor) Instrument(ctx context.Context, kind query.Kind, compute query.Compute) query.Compute {
	return func(qc *query.Context) (any, error) {
		start := time.Now()
		v, err := compute(qc)
		m.Record(ctx, kind, time.Since(start))
		return v, err
	}
}

// Percentiles reports the p50/p95/p99 latency observed for kind so far.
// A kind with no samples reports all-zero percentiles.
type Percentiles struct {
	P50, P95, P99 time.Duration
	Count         int
}

// WithinBudget reports whether P95 is at or under Budget.
func (p Percentiles) WithinBudget() bool { return p.P95 <= Budget }

// Percentiles computes p50/p95/p99 over every sample recorded for kind.
func (m *Monitor) Percentiles(kind query.Kind) Percentiles {
	m.mu.Lock()
	raw := append([]time.Duration(nil), m.samples[kind]...)
	m.mu.Unlock()

	if len(raw) == 0 {
		return Percentiles{}
	}
	sort.Slice(raw, func(i, j int) bool { return raw[i] < raw[j] })

	p := Percentiles{
		P50:   percentileOf(raw, 0.50),
		P95:   percentileOf(raw, 0.95),
		P99:   percentileOf(raw, 0.99),
		Count: len(raw),
	}
	if !p.WithinBudget() {
		m.log.Warn("query kind exceeded latency budget", "kind", kind.String(), "p95", p.P95, "budget", Budget)
	}
	return p
}

// percentileOf returns the element of a sorted slice at index
// floor(p*(n-1)) for p in 0..1, with no interpolation between neighbours,
// which is adequate for an in-process guardrail check rather than a
// precision SLO report.
func percentileOf(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// Reset clears all recorded samples, used between benchmark runs.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = make(map[query.Kind][]time.Duration)
}
