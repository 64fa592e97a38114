package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName scopes kitbridge tracers and meters.
const instrumentationName = "kitbridge"

// Span kinds for kit entry points.
const (
	SpanLogEvent         = "log_event"
	SpanLogCommerceEvent = "log_commerce_event"
)

// tracer backs the package-level span helpers. It follows the global
// provider.
var tracer = otel.Tracer(instrumentationName)

// SpanManager opens and closes the span around one kit entry point call.
// Use NewSpanManager for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartLogSpan starts a span for one kit entry point call.
	StartLogSpan(ctx context.Context, kind, eventName string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct {
	tracer trace.Tracer // nil follows the package tracer
}

// NewSpanManager returns a SpanManager on the global OTel tracer provider.
// Set the provider with otel.SetTracerProvider before spans are started.
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// NewSpanManagerFromProvider returns a SpanManager bound to tp instead of
// the global provider.
func NewSpanManagerFromProvider(tp trace.TracerProvider) SpanManager {
	return &otelSpanManager{tracer: tp.Tracer(instrumentationName)}
}

func (m *otelSpanManager) StartLogSpan(ctx context.Context, kind, eventName string) (context.Context, trace.Span) {
	t := m.tracer
	if t == nil {
		t = tracer
	}
	return startLogSpan(ctx, t, kind, eventName)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartLogSpan starts a "kitbridge.<kind>" span on the package tracer.
func StartLogSpan(ctx context.Context, kind, eventName string) (context.Context, trace.Span) {
	return startLogSpan(ctx, tracer, kind, eventName)
}

func startLogSpan(ctx context.Context, t trace.Tracer, kind, eventName string) (context.Context, trace.Span) {
	return t.Start(ctx, instrumentationName+"."+kind,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("kit.entry", kind),
			attribute.String("event.name", eventName),
		),
	)
}

// EndSpanWithError ends span with an Ok status, or records err and sets
// an Error status. A nil span is ignored.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	defer span.End()

	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddSpanEvent records an event on the recording span in ctx, if any.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}
