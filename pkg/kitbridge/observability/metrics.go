package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Delivery outcomes.
const (
	OutcomeSent    = "sent"
	OutcomeQueued  = "queued"
	OutcomeDropped = "dropped"
	OutcomeFailed  = "failed"
)

// MetricsRecorder records kit metrics.
// Use NewMetricsRecorder() for OTel metrics, NewPrometheusMetrics for a
// Prometheus registry, or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDelivery records one record reaching the gate with its outcome.
	RecordDelivery(ctx context.Context, outcome string)

	// RecordEviction records a pending record dropped because the queue was full.
	RecordEviction(ctx context.Context)

	// RecordDrain records records replayed when a client became available.
	RecordDrain(ctx context.Context, count int)

	// RecordListenersNotified records listeners fired on availability.
	RecordListenersNotified(ctx context.Context, count int)

	// RecordOverrideSkipped records an override that failed to parse.
	RecordOverrideSkipped(ctx context.Context, override string)

	// RecordTranslation records one host event translated into produced records.
	RecordTranslation(ctx context.Context, kind string, produced int, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	delivered        metric.Int64Counter
	evicted          metric.Int64Counter
	drained          metric.Int64Counter
	listeners        metric.Int64Counter
	overridesSkipped metric.Int64Counter
	produced         metric.Int64Counter
	translateLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter(instrumentationName)

	delivered, err := meter.Int64Counter("kitbridge.records.delivered",
		metric.WithDescription("Records handed to the gate, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	evicted, err := meter.Int64Counter("kitbridge.records.evicted",
		metric.WithDescription("Pending records evicted because the queue was full"),
	)
	if err != nil {
		return nil, err
	}

	drained, err := meter.Int64Counter("kitbridge.queue.drained",
		metric.WithDescription("Pending records replayed through a newly available client"),
	)
	if err != nil {
		return nil, err
	}

	listeners, err := meter.Int64Counter("kitbridge.listeners.notified",
		metric.WithDescription("Client listeners notified"),
	)
	if err != nil {
		return nil, err
	}

	overridesSkipped, err := meter.Int64Counter("kitbridge.overrides.skipped",
		metric.WithDescription("Overrides skipped because their value did not parse"),
	)
	if err != nil {
		return nil, err
	}

	produced, err := meter.Int64Counter("kitbridge.records.produced",
		metric.WithDescription("Records produced by translation"),
	)
	if err != nil {
		return nil, err
	}

	translateLatency, err := meter.Float64Histogram("kitbridge.translate.latency_ms",
		metric.WithDescription("Translation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		delivered:        delivered,
		evicted:          evicted,
		drained:          drained,
		listeners:        listeners,
		overridesSkipped: overridesSkipped,
		produced:         produced,
		translateLatency: translateLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDelivery records a delivery outcome.
func (m *otelMetrics) RecordDelivery(ctx context.Context, outcome string) {
	m.delivered.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordEviction records an eviction.
func (m *otelMetrics) RecordEviction(ctx context.Context) {
	m.evicted.Add(ctx, 1)
}

// RecordDrain records a queue drain.
func (m *otelMetrics) RecordDrain(ctx context.Context, count int) {
	m.drained.Add(ctx, int64(count))
}

// RecordListenersNotified records listener notifications.
func (m *otelMetrics) RecordListenersNotified(ctx context.Context, count int) {
	m.listeners.Add(ctx, int64(count))
}

// RecordOverrideSkipped records a skipped override.
func (m *otelMetrics) RecordOverrideSkipped(ctx context.Context, override string) {
	m.overridesSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("override", override)))
}

// RecordTranslation records a translation.
func (m *otelMetrics) RecordTranslation(ctx context.Context, kind string, produced int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
	}
	m.produced.Add(ctx, int64(produced), metric.WithAttributes(attrs...))
	m.translateLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}
