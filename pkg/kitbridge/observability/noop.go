package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics discards every measurement. It is the kit default.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordDelivery does nothing.
func (NoopMetrics) RecordDelivery(_ context.Context, _ string) {}

// RecordEviction does nothing.
func (NoopMetrics) RecordEviction(_ context.Context) {}

// RecordDrain does nothing.
func (NoopMetrics) RecordDrain(_ context.Context, _ int) {}

// RecordListenersNotified does nothing.
func (NoopMetrics) RecordListenersNotified(_ context.Context, _ int) {}

// RecordOverrideSkipped does nothing.
func (NoopMetrics) RecordOverrideSkipped(_ context.Context, _ string) {}

// RecordTranslation does nothing.
func (NoopMetrics) RecordTranslation(_ context.Context, _ string, _ int, _ time.Duration) {}

// NoopSpanManager starts no spans. It is the kit default.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

var noopSpan trace.Span = noop.Span{}

// StartLogSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartLogSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
