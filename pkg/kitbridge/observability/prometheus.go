package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements MetricsRecorder with Prometheus collectors.
type PrometheusMetrics struct {
	Delivered        *prometheus.CounterVec
	Evicted          prometheus.Counter
	Drained          prometheus.Counter
	Listeners        prometheus.Counter
	OverridesSkipped *prometheus.CounterVec
	Produced         *prometheus.CounterVec
	TranslateSeconds *prometheus.HistogramVec
}

// Compile-time interface check.
var _ MetricsRecorder = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates the kit collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default handler.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		Delivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kitbridge_records_delivered_total",
				Help: "Records handed to the gate, by outcome",
			},
			[]string{"outcome"},
		),
		Evicted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kitbridge_records_evicted_total",
				Help: "Pending records evicted because the queue was full",
			},
		),
		Drained: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kitbridge_queue_drained_total",
				Help: "Pending records replayed through a newly available client",
			},
		),
		Listeners: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kitbridge_listeners_notified_total",
				Help: "Client listeners notified",
			},
		),
		OverridesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kitbridge_overrides_skipped_total",
				Help: "Overrides skipped because their value did not parse",
			},
			[]string{"override"},
		),
		Produced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kitbridge_records_produced_total",
				Help: "Records produced by translation",
			},
			[]string{"kind"},
		),
		TranslateSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kitbridge_translate_duration_seconds",
				Help:    "Duration of event translation in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
	}

	collectors := []prometheus.Collector{
		m.Delivered, m.Evicted, m.Drained, m.Listeners,
		m.OverridesSkipped, m.Produced, m.TranslateSeconds,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordDelivery implements MetricsRecorder.
func (m *PrometheusMetrics) RecordDelivery(_ context.Context, outcome string) {
	m.Delivered.WithLabelValues(outcome).Inc()
}

// RecordEviction implements MetricsRecorder.
func (m *PrometheusMetrics) RecordEviction(_ context.Context) {
	m.Evicted.Inc()
}

// RecordDrain implements MetricsRecorder.
func (m *PrometheusMetrics) RecordDrain(_ context.Context, count int) {
	m.Drained.Add(float64(count))
}

// RecordListenersNotified implements MetricsRecorder.
func (m *PrometheusMetrics) RecordListenersNotified(_ context.Context, count int) {
	m.Listeners.Add(float64(count))
}

// RecordOverrideSkipped implements MetricsRecorder.
func (m *PrometheusMetrics) RecordOverrideSkipped(_ context.Context, override string) {
	m.OverridesSkipped.WithLabelValues(override).Inc()
}

// RecordTranslation implements MetricsRecorder.
func (m *PrometheusMetrics) RecordTranslation(_ context.Context, kind string, produced int, duration time.Duration) {
	m.Produced.WithLabelValues(kind).Add(float64(produced))
	m.TranslateSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}
