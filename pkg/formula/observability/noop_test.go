package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordParse(ctx, time.Millisecond, nil)
		m.RecordParse(ctx, time.Millisecond, errors.New("x"))
		m.RecordEvaluation(ctx, time.Millisecond, nil)
		m.RecordEvaluation(ctx, time.Millisecond, errors.New("x"))
		m.RecordFunctionCall(ctx, "sum")
	})
}

func TestNoopSpanManager(t *testing.T) {
	sm := NoopSpanManager{}
	ctx := context.Background()

	newCtx, span := sm.StartEvalSpan(ctx, "eval-1", "1 + 1")
	assert.Equal(t, ctx, newCtx, "noop span manager should not touch the context")
	assert.NotNil(t, span)

	newCtx, span = sm.StartParseSpan(ctx)
	assert.Equal(t, ctx, newCtx)
	assert.NotNil(t, span)

	assert.NotPanics(t, func() {
		sm.EndSpanWithError(span, nil)
		sm.EndSpanWithError(span, errors.New("x"))
		sm.EndSpanWithError(nil, errors.New("x"))
		sm.AddSpanEvent(ctx, "event", attribute.String("k", "v"))
	})
}
