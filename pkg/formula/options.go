package formula

import (
	"log/slog"
	"strings"
	"time"

	"github.com/randalmurphal/formula/pkg/formula/config"
	"github.com/randalmurphal/formula/pkg/formula/observability"
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall-clock source used by today().
// Useful for deterministic tests.
//
// Example:
//
//	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
//	eng := formula.New(formula.WithClock(func() time.Time { return fixed }))
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithDateFormat sets the default strftime-style format used by the
// single-argument form of asDate. Default: %m/%d/%Y
func WithDateFormat(format string) Option {
	return func(e *Engine) {
		if format != "" {
			e.dateFormat = format
		}
	}
}

// WithConstant registers a named constant resolvable from expressions.
// Names fold case and shadow nothing: built-in constants win.
func WithConstant(name string, value any) Option {
	return func(e *Engine) {
		e.constants[strings.ToLower(name)] = value
	}
}

// WithFunction registers a custom function. The name should not collide
// with a built-in function; built-ins win during resolution.
//
// Example:
//
//	eng := formula.New(formula.WithFunction("double", func(args []any) (any, error) {
//	    ...
//	}))
//	v, err := eng.Evaluate(ctx, "double(21)", nil)
func WithFunction(name string, fn Func) Option {
	return func(e *Engine) {
		if fn != nil {
			e.funcs.Register(strings.ToLower(name), fn)
		}
	}
}

// WithLogger enables structured logging of evaluations.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithTracing sets the span manager. Default: no-op.
func WithTracing(sm observability.SpanManager) Option {
	return func(e *Engine) {
		if sm != nil {
			e.spans = sm
		}
	}
}

// FromConfig applies engine settings from a Config. Recognized keys:
//
//	date_format: strftime-style default for asDate
//	constants:   map of constant name to value
func FromConfig(cfg config.Config) Option {
	return func(e *Engine) {
		if format := cfg.String("date_format", ""); format != "" {
			e.dateFormat = format
		}
		for name, value := range cfg.Map("constants") {
			e.constants[strings.ToLower(name)] = value
		}
	}
}
