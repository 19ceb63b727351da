// Package observability provides opt-in observability for the formula
// engine: structured logging via slog, metrics and tracing via
// OpenTelemetry. All features have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds evaluation context to a logger. Returns a new logger
// with eval_id and expression fields.
func EnrichLogger(logger *slog.Logger, evalID, expression string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("eval_id", evalID),
		slog.String("expression", expression),
	)
}

// LogEvalStart logs the start of an expression evaluation.
func LogEvalStart(logger *slog.Logger, evalID, expression string) {
	if logger == nil {
		return
	}
	logger.Debug("evaluation starting",
		slog.String("eval_id", evalID),
		slog.String("expression", expression),
	)
}

// LogEvalComplete logs successful evaluation.
func LogEvalComplete(logger *slog.Logger, evalID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("evaluation completed",
		slog.String("eval_id", evalID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEvalError logs evaluation failure.
func LogEvalError(logger *slog.Logger, evalID string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("evaluation failed",
		slog.String("eval_id", evalID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogParseError logs tokenization or tree-building failure.
func LogParseError(logger *slog.Logger, evalID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("parse failed",
		slog.String("eval_id", evalID),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation. It returns a
// function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
