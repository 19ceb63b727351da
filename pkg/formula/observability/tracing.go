package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the formula tracer instance. Uses the global OTel tracer
// provider.
var tracer = otel.Tracer("formula")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartEvalSpan starts a span for a full expression evaluation.
	StartEvalSpan(ctx context.Context, evalID, expression string) (context.Context, trace.Span)

	// StartParseSpan starts a span for tokenizing and building one
	// expression; a child of the evaluation span when one is active.
	StartParseSpan(ctx context.Context) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartEvalSpan starts a span for a full expression evaluation.
func (m *otelSpanManager) StartEvalSpan(ctx context.Context, evalID, expression string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "formula.evaluate",
		trace.WithAttributes(
			attribute.String("eval.id", evalID),
			attribute.String("expression", expression),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartParseSpan starts a span for one parse.
func (m *otelSpanManager) StartParseSpan(ctx context.Context) (context.Context, trace.Span) {
	return tracer.Start(ctx, "formula.parse",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
