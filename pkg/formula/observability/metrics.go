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

// MetricsRecorder records formula engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordParse records a parse (tokenize + build) with its duration and
	// error status.
	RecordParse(ctx context.Context, duration time.Duration, err error)

	// RecordEvaluation records a full expression evaluation.
	RecordEvaluation(ctx context.Context, duration time.Duration, err error)

	// RecordFunctionCall records a call to a built-in or custom function.
	RecordFunctionCall(ctx context.Context, name string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	parses        metric.Int64Counter
	parseLatency  metric.Float64Histogram
	parseErrors   metric.Int64Counter
	evaluations   metric.Int64Counter
	evalLatency   metric.Float64Histogram
	evalErrors    metric.Int64Counter
	functionCalls metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("formula")

	parses, err := meter.Int64Counter("formula.parses",
		metric.WithDescription("Number of expression parses"),
	)
	if err != nil {
		return nil, err
	}

	parseLatency, err := meter.Float64Histogram("formula.parse.latency_ms",
		metric.WithDescription("Parse latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	parseErrors, err := meter.Int64Counter("formula.parse.errors",
		metric.WithDescription("Number of parse errors"),
	)
	if err != nil {
		return nil, err
	}

	evaluations, err := meter.Int64Counter("formula.evaluations",
		metric.WithDescription("Number of expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("formula.eval.latency_ms",
		metric.WithDescription("Evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evalErrors, err := meter.Int64Counter("formula.eval.errors",
		metric.WithDescription("Number of evaluation errors"),
	)
	if err != nil {
		return nil, err
	}

	functionCalls, err := meter.Int64Counter("formula.function.calls",
		metric.WithDescription("Number of function calls by name"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		parses:        parses,
		parseLatency:  parseLatency,
		parseErrors:   parseErrors,
		evaluations:   evaluations,
		evalLatency:   evalLatency,
		evalErrors:    evalErrors,
		functionCalls: functionCalls,
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

// RecordParse records a parse.
func (m *otelMetrics) RecordParse(ctx context.Context, duration time.Duration, err error) {
	m.parses.Add(ctx, 1)
	m.parseLatency.Record(ctx, float64(duration.Microseconds())/1000)
	if err != nil {
		m.parseErrors.Add(ctx, 1)
	}
}

// RecordEvaluation records a full evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, duration time.Duration, err error) {
	m.evaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", err == nil),
	))
	m.evalLatency.Record(ctx, float64(duration.Microseconds())/1000)
	if err != nil {
		m.evalErrors.Add(ctx, 1)
	}
}

// RecordFunctionCall records a function call.
func (m *otelMetrics) RecordFunctionCall(ctx context.Context, name string) {
	m.functionCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("function", name),
	))
}
