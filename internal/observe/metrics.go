// Package observe provides application-wide observability primitives for
// tutorcore: OpenTelemetry metrics, distributed tracing, and structured
// logging glue.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all tutorcore metrics.
const meterName = "github.com/fluentbyte/tutorcore"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// CapabilityDuration tracks capability invocation latency. Use with
	// attribute: attribute.String("capability", ...)
	CapabilityDuration metric.Float64Histogram

	// TurnDuration tracks end-to-end turn latency by entry point. Use with
	// attribute: attribute.String("input", "text"|"audio")
	TurnDuration metric.Float64Histogram

	// --- Counters ---

	// CapabilityRequests counts capability calls. Use with attributes:
	//   attribute.String("capability", ...), attribute.String("status", ...)
	CapabilityRequests metric.Int64Counter

	// Turns counts completed turns. Use with attribute:
	//   attribute.String("outcome", "done"|"degraded"|"failed")
	Turns metric.Int64Counter

	// --- Error counters ---

	// CapabilityErrors counts capability failures. Use with attributes:
	//   attribute.String("capability", ...), attribute.String("kind", ...)
	CapabilityErrors metric.Int64Counter

	// --- Distributions ---

	// Confidence tracks the per-turn confidence score distribution.
	Confidence metric.Float64Histogram

	// --- Gauges ---

	// ActiveSessions tracks the number of live tutoring sessions.
	ActiveSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// the per-call and whole-turn budgets.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 2.5, 5,
}

// confidenceBuckets covers the [0,1] confidence range.
var confidenceBuckets = []float64{
	0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.CapabilityDuration, err = m.Float64Histogram("tutorcore.capability.duration",
		metric.WithDescription("Latency of capability invocations by capability."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TurnDuration, err = m.Float64Histogram("tutorcore.turn.duration",
		metric.WithDescription("End-to-end turn latency by input type."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Confidence, err = m.Float64Histogram("tutorcore.turn.confidence",
		metric.WithDescription("Distribution of per-turn confidence scores."),
		metric.WithExplicitBucketBoundaries(confidenceBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.CapabilityRequests, err = m.Int64Counter("tutorcore.capability.requests",
		metric.WithDescription("Total capability invocations by capability and status."),
	); err != nil {
		return nil, err
	}
	if met.Turns, err = m.Int64Counter("tutorcore.turns",
		metric.WithDescription("Total completed turns by outcome."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.CapabilityErrors, err = m.Int64Counter("tutorcore.capability.errors",
		metric.WithDescription("Total capability failures by capability and error kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("tutorcore.active_sessions",
		metric.WithDescription("Number of live tutoring sessions."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordCapabilityRequest is a convenience method that records a capability
// request counter increment with the standard attribute set.
func (m *Metrics) RecordCapabilityRequest(ctx context.Context, capability, status string) {
	m.CapabilityRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("capability", capability),
			attribute.String("status", status),
		),
	)
}

// RecordCapabilityDuration is a convenience method that records a capability
// latency observation.
func (m *Metrics) RecordCapabilityDuration(ctx context.Context, capability string, seconds float64) {
	m.CapabilityDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("capability", capability)),
	)
}

// RecordCapabilityError is a convenience method that records a capability
// error counter increment.
func (m *Metrics) RecordCapabilityError(ctx context.Context, capability, kind string) {
	m.CapabilityErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("capability", capability),
			attribute.String("kind", kind),
		),
	)
}

// RecordTurn is a convenience method that records one completed turn with its
// outcome, latency, and confidence.
func (m *Metrics) RecordTurn(ctx context.Context, input, outcome string, seconds, confidence float64) {
	m.Turns.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
	m.TurnDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("input", input)),
	)
	m.Confidence.Record(ctx, confidence)
}
