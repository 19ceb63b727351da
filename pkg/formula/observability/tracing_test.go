package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest creates a test tracer provider with an in-memory span recorder.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	// Update the package-level tracer
	tracer = otel.Tracer("formula")

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	}

	return exporter, cleanup
}

func TestStartEvalSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()

	t.Run("creates span with correct name and attributes", func(t *testing.T) {
		ctx := context.Background()
		_, span := sm.StartEvalSpan(ctx, "eval-123", "[x] + 1")
		require.NotNil(t, span)

		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, "formula.evaluate", s.Name)

		var evalID, expression string
		for _, attr := range s.Attributes {
			switch attr.Key {
			case "eval.id":
				evalID = attr.Value.AsString()
			case "expression":
				expression = attr.Value.AsString()
			}
		}
		assert.Equal(t, "eval-123", evalID)
		assert.Equal(t, "[x] + 1", expression)
	})

	t.Run("returns context with span", func(t *testing.T) {
		exporter.Reset()

		ctx := context.Background()
		newCtx, span := sm.StartEvalSpan(ctx, "eval-456", "1 + 1")
		assert.NotEqual(t, ctx, newCtx)

		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
	})
}

func TestStartParseSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()

	t.Run("parse span is a child of the eval span", func(t *testing.T) {
		ctx := context.Background()
		ctx, evalSpan := sm.StartEvalSpan(ctx, "eval-1", "2 * 3")

		_, parseSpan := sm.StartParseSpan(ctx)
		parseSpan.End()
		evalSpan.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 2)

		var parseData *tracetest.SpanStub
		for i := range spans {
			if spans[i].Name == "formula.parse" {
				parseData = &spans[i]
				break
			}
		}
		require.NotNil(t, parseData)
		assert.True(t, parseData.Parent.IsValid())
	})
}

func TestEndSpanWithError(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()

	t.Run("sets OK status for nil error", func(t *testing.T) {
		_, span := sm.StartEvalSpan(context.Background(), "eval-1", "1")

		sm.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		assert.Equal(t, codes.Ok, spans[0].Status.Code)
		assert.Equal(t, "", spans[0].Status.Description)
	})

	t.Run("sets Error status and records error", func(t *testing.T) {
		exporter.Reset()

		_, span := sm.StartEvalSpan(context.Background(), "eval-2", "1 / 0")
		testErr := errors.New("division by zero")

		sm.EndSpanWithError(span, testErr)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		assert.Equal(t, codes.Error, s.Status.Code)
		assert.Equal(t, "division by zero", s.Status.Description)

		require.NotEmpty(t, s.Events)
		found := false
		for _, event := range s.Events {
			if event.Name == "exception" {
				found = true
			}
		}
		assert.True(t, found, "Expected exception event")
	})

	t.Run("nil span does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			sm.EndSpanWithError(nil, nil)
		})
		assert.NotPanics(t, func() {
			sm.EndSpanWithError(nil, errors.New("test"))
		})
	})
}

func TestAddSpanEvent(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()

	t.Run("adds event to current span", func(t *testing.T) {
		ctx := context.Background()
		ctx, span := sm.StartEvalSpan(ctx, "eval-1", "sum(1, 2)")

		sm.AddSpanEvent(ctx, "function_called",
			attribute.String("function", "sum"),
			attribute.Int64("args", 2),
		)

		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)

		s := spans[0]
		require.NotEmpty(t, s.Events)

		var found bool
		for _, event := range s.Events {
			if event.Name == "function_called" {
				found = true
				var name string
				var args int64
				for _, attr := range event.Attributes {
					switch attr.Key {
					case "function":
						name = attr.Value.AsString()
					case "args":
						args = attr.Value.AsInt64()
					}
				}
				assert.Equal(t, "sum", name)
				assert.Equal(t, int64(2), args)
			}
		}
		assert.True(t, found, "Expected to find function_called event")
	})

	t.Run("no panic with no current span", func(t *testing.T) {
		assert.NotPanics(t, func() {
			sm.AddSpanEvent(context.Background(), "test_event")
		})
	})
}
