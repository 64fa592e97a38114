package kitbridge

import (
	"log/slog"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/destination"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/gate"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/host"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/observability"
)

// kitConfig holds kit construction options.
type kitConfig struct {
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	starter  destination.Starter
	gate     *gate.Gate
	expander host.Expander
	capacity int
}

// defaultKitConfig returns the default kit configuration: no logging,
// no-op metrics and tracing, no starter, a private gate.
func defaultKitConfig() kitConfig {
	return kitConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Kit.
type Option func(*kitConfig)

// WithLogger sets the kit logger. Nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *kitConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
//
// Example:
//
//	kit := kitbridge.New(h, kitbridge.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *kitConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans for LogEvent and LogCommerceEvent
// using the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *kitConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(c *kitConfig) {
		if sm != nil {
			c.spans = sm
		}
	}
}

// WithStarter sets how Create starts the destination client.
func WithStarter(s destination.Starter) Option {
	return func(c *kitConfig) {
		c.starter = s
	}
}

// WithGate shares an existing gate instead of creating one. Kits sharing a
// gate share its client, pending queue and listeners.
func WithGate(g *gate.Gate) Option {
	return func(c *kitConfig) {
		c.gate = g
	}
}

// WithExpander sets the commerce event expander.
// Default: host.DefaultExpander{}
func WithExpander(e host.Expander) Option {
	return func(c *kitConfig) {
		c.expander = e
	}
}

// WithQueueCapacity bounds the pending queue of a kit-created gate.
// Default: 10
func WithQueueCapacity(n int) Option {
	return func(c *kitConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}
