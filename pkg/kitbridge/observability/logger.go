// Package observability provides structured logging, metrics, and tracing
// for the kit pipeline.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry, or Prometheus through PrometheusMetrics
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"fmt"
	"log/slog"
	"time"
)

// EnrichLogger adds kit context to a logger.
// Returns a new logger with kit and event_name fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "Optimizely", "signup")
//	enriched.Debug("translating") // includes kit, event_name
func EnrichLogger(logger *slog.Logger, kit, eventName string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("kit", kit),
		slog.String("event_name", eventName),
	)
}

// LogRecordSent logs a record handed to the destination client.
func LogRecordSent(logger *slog.Logger, recordID, eventName string) {
	if logger == nil {
		return
	}
	logger.Debug("record sent",
		slog.String("record_id", recordID),
		slog.String("event_name", eventName),
	)
}

// LogRecordQueued logs a record buffered while the client is unavailable.
func LogRecordQueued(logger *slog.Logger, recordID, eventName string, depth int) {
	if logger == nil {
		return
	}
	logger.Debug("record queued, destination client unavailable",
		slog.String("record_id", recordID),
		slog.String("event_name", eventName),
		slog.Int("queue_depth", depth),
	)
}

// LogRecordEvicted logs the oldest pending record dropped to make room.
func LogRecordEvicted(logger *slog.Logger, recordID, eventName string) {
	if logger == nil {
		return
	}
	logger.Warn("pending queue full, oldest record evicted",
		slog.String("record_id", recordID),
		slog.String("event_name", eventName),
	)
}

// LogRecordDropped logs a record or event that produced no delivery.
func LogRecordDropped(logger *slog.Logger, eventName, reason string) {
	if logger == nil {
		return
	}
	logger.Debug("record dropped",
		slog.String("event_name", eventName),
		slog.String("reason", reason),
	)
}

// LogTrackFailed logs an error returned by the destination client.
func LogTrackFailed(logger *slog.Logger, recordID, eventName string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("destination track failed",
		slog.String("record_id", recordID),
		slog.String("event_name", eventName),
		slog.String("error", err.Error()),
	)
}

// LogOverrideApplied logs a custom flag override applied to a record.
func LogOverrideApplied(logger *slog.Logger, override, value string) {
	if logger == nil {
		return
	}
	logger.Debug("override applied",
		slog.String("override", override),
		slog.String("value", value),
	)
}

// LogOverrideSkipped logs an override whose value could not be used (non-fatal).
func LogOverrideSkipped(logger *slog.Logger, override, raw string, err error) {
	if logger == nil {
		return
	}
	logger.Error("override skipped",
		slog.String("override", override),
		slog.String("raw", raw),
		slog.String("error", err.Error()),
	)
}

// LogUserIDFallback logs that the device application stamp was used as user id.
func LogUserIDFallback(logger *slog.Logger, policy string) {
	if logger == nil {
		return
	}
	logger.Debug("user id not found, using device application stamp",
		slog.String("policy", policy),
	)
}

// LogClientAvailable logs a destination client becoming available.
func LogClientAvailable(logger *slog.Logger, pinned bool, drained, listeners int) {
	if logger == nil {
		return
	}
	logger.Info("destination client available",
		slog.Bool("pinned", pinned),
		slog.Int("drained", drained),
		slog.Int("listeners", listeners),
	)
}

// LogClientIgnored logs an asynchronous client that was not accepted.
func LogClientIgnored(logger *slog.Logger, reason string) {
	if logger == nil {
		return
	}
	logger.Debug("destination client ignored",
		slog.String("reason", reason),
	)
}

// LogListenerPanic logs a listener that panicked during notification.
func LogListenerPanic(logger *slog.Logger, recovered any) {
	if logger == nil {
		return
	}
	logger.Error("client listener panicked",
		slog.String("panic", fmt.Sprint(recovered)),
	)
}

// LogSettingSkipped logs a setting that could not be parsed (non-fatal).
func LogSettingSkipped(logger *slog.Logger, key, raw string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("setting skipped",
		slog.String("setting", key),
		slog.String("raw", raw),
		slog.String("error", err.Error()),
	)
}

// LogEntryPanic logs a panic recovered at a kit entry point.
func LogEntryPanic(logger *slog.Logger, entry string, err error) {
	if logger == nil {
		return
	}
	logger.Error("kit entry point recovered from panic",
		slog.String("entry", entry),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	elapsed := done()
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
