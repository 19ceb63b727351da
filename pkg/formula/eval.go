package formula

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/formula/pkg/formula/observability"
	"github.com/randalmurphal/formula/pkg/formula/registry"
)

// Func is a custom function callable from expressions. It receives the
// evaluated argument values in order.
type Func func(args []any) (any, error)

// Engine parses and evaluates expressions. A zero-option engine speaks the
// built-in language; options add constants, custom functions, a fixed
// clock, and observability. An Engine is safe for concurrent use once
// constructed.
type Engine struct {
	now        func() time.Time
	dateFormat string
	constants  map[string]any
	funcs      *registry.Registry[string, Func]
	logger     *slog.Logger
	metrics    observability.MetricsRecorder
	spans      observability.SpanManager
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:        time.Now,
		dateFormat: defaultDateFormat,
		constants:  make(map[string]any),
		funcs:      registry.New[string, Func](),
		metrics:    observability.NoopMetrics{},
		spans:      observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eval is a convenience function that evaluates an expression against vars
// using a default engine.
func Eval(text string, vars map[string]any) (any, error) {
	return New().Evaluate(context.Background(), text, vars)
}

// Parse tokenizes and builds text into an expression tree. The returned
// tree is read-only and may be evaluated repeatedly, concurrently.
func (e *Engine) Parse(text string) (*Node, error) {
	toks, err := e.tokenize(text)
	if err != nil {
		return nil, err
	}
	return e.build(toks)
}

// Evaluate parses text and evaluates the resulting tree against vars.
// vars maps variable names to values; an unbound name evaluates to the
// nil sentinel, not an error. The returned value is a float64, string,
// bool, time.Time, time.Duration, or CalendarDelta.
func (e *Engine) Evaluate(ctx context.Context, text string, vars map[string]any) (any, error) {
	evalID := uuid.New().String()[:8]
	ctx, span := e.spans.StartEvalSpan(ctx, evalID, text)
	start := time.Now()

	observability.LogEvalStart(e.logger, evalID, text)

	root, err := e.parseObserved(ctx, text)
	if err != nil {
		observability.LogParseError(e.logger, evalID, err)
		e.metrics.RecordEvaluation(ctx, time.Since(start), err)
		e.spans.EndSpanWithError(span, err)
		return nil, err
	}

	value, err := root.eval(&evalState{ctx: ctx, engine: e, vars: vars})
	duration := time.Since(start)
	e.metrics.RecordEvaluation(ctx, duration, err)
	e.spans.EndSpanWithError(span, err)

	durationMs := float64(duration.Microseconds()) / 1000
	if err != nil {
		observability.LogEvalError(e.logger, evalID, err, durationMs)
		return nil, err
	}
	observability.LogEvalComplete(e.logger, evalID, durationMs)
	return value, nil
}

// EvaluateTree evaluates an already-parsed tree against vars. The tree is
// not mutated; repeated calls with the same environment yield identical
// results, apart from functions that read the clock.
func (e *Engine) EvaluateTree(ctx context.Context, root *Node, vars map[string]any) (any, error) {
	return root.eval(&evalState{ctx: ctx, engine: e, vars: vars})
}

// parseObserved wraps Parse with a span and parse metrics.
func (e *Engine) parseObserved(ctx context.Context, text string) (*Node, error) {
	ctx, span := e.spans.StartParseSpan(ctx)
	start := time.Now()
	root, err := e.Parse(text)
	e.metrics.RecordParse(ctx, time.Since(start), err)
	e.spans.EndSpanWithError(span, err)
	return root, err
}

// constant resolves a bare name against the built-in constants and the
// engine's registered constants.
func (e *Engine) constant(name string) (any, error) {
	key := strings.ToLower(name)
	if v, ok := builtinConstants[key]; ok {
		return v, nil
	}
	if v, ok := e.constants[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUndefinedConstant, name)
}

var builtinConstants = map[string]any{
	"pi": math.Pi,
	"e":  math.E,
}

// evalState carries per-call evaluation context. The tree itself holds no
// mutable state, so one tree may be evaluated from many goroutines with
// independent states.
type evalState struct {
	ctx    context.Context
	engine *Engine
	vars   map[string]any
}

// eval computes the node's value. Evaluation is synchronous, recursive,
// and never memoized; every call recomputes the full subtree.
func (n *Node) eval(s *evalState) (any, error) {
	switch n.Kind {
	case KindEmpty:
		if n.Left != nil && n.Right == nil {
			return n.Left.eval(s)
		}
		return nil, fmt.Errorf("%w: cannot evaluate an empty expression", ErrSyntax)
	case KindString:
		return n.Value, nil
	case KindNumber:
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed number %q", ErrSyntax, n.Value)
		}
		return f, nil
	case KindVariable:
		// An unbound name yields the nil sentinel, not an error.
		return s.vars[n.Value], nil
	case KindConstant:
		return s.engine.constant(n.Value)
	case KindOperator:
		return n.evalOperator(s)
	case KindComparator:
		return n.evalComparator(s)
	case KindFunction:
		return n.evalFunction(s)
	case KindGroup:
		return n.evalGroup(s)
	default:
		return nil, fmt.Errorf("%w: unknown node kind %d", ErrSyntax, int(n.Kind))
	}
}

// evalGroup evaluates the group's stored text as an independent expression.
// The builder parses every group it attaches, so sub is normally set. A
// detached group constructed by hand is parsed per call into a local,
// leaving the node untouched so concurrent evaluation stays race-free.
func (n *Node) evalGroup(s *evalState) (any, error) {
	sub := n.sub
	if sub == nil {
		toks, err := s.engine.tokenize(n.Value)
		if err != nil {
			return nil, err
		}
		if sub, err = s.engine.build(toks); err != nil {
			return nil, err
		}
	}
	return sub.eval(s)
}

// vacant reports whether an operand slot is absent or holds a valueless
// placeholder, as happens with unary forms like -5 where the left slot
// carries the initial empty base.
func vacant(n *Node) bool {
	return n == nil || (n.Kind == KindEmpty && n.Left == nil)
}

func (n *Node) evalOperator(s *evalState) (any, error) {
	if vacant(n.Left) && vacant(n.Right) {
		return nil, fmt.Errorf("%w: operator %q has no operands", ErrMissingOperand, n.Value)
	}

	switch n.Op {
	case OpAdd:
		// A vacant left slot makes + the absolute-value form.
		if vacant(n.Left) {
			v, err := evalNumber(n.Right, s)
			if err != nil {
				return nil, err
			}
			return math.Abs(v), nil
		}
		if vacant(n.Right) {
			return nil, fmt.Errorf("%w: operator %q requires a right operand", ErrMissingOperand, n.Value)
		}
		l, err := n.Left.eval(s)
		if err != nil {
			return nil, err
		}
		r, err := n.Right.eval(s)
		if err != nil {
			return nil, err
		}
		return addValues(l, r)

	case OpSubtract:
		// A vacant left slot makes - numeric negation.
		if vacant(n.Left) {
			v, err := evalNumber(n.Right, s)
			if err != nil {
				return nil, err
			}
			return -v, nil
		}
		if vacant(n.Right) {
			return nil, fmt.Errorf("%w: operator %q requires a right operand", ErrMissingOperand, n.Value)
		}
		l, err := n.Left.eval(s)
		if err != nil {
			return nil, err
		}
		r, err := n.Right.eval(s)
		if err != nil {
			return nil, err
		}
		return subtractValues(l, r)

	case OpFactorial:
		if n.Right != nil {
			return nil, fmt.Errorf("%w: factorial takes a single left operand", ErrExtraOperand)
		}
		v, err := evalNumber(n.Left, s)
		if err != nil {
			return nil, err
		}
		return factorial(v)
	}

	// The remaining operators require both operands.
	if vacant(n.Left) || vacant(n.Right) {
		return nil, fmt.Errorf("%w: operator %q requires two operands", ErrMissingOperand, n.Value)
	}
	l, err := evalNumber(n.Left, s)
	if err != nil {
		return nil, err
	}
	r, err := evalNumber(n.Right, s)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case OpMultiply:
		return l * r, nil
	case OpDivide:
		if r == 0 {
			return nil, fmt.Errorf("%w: %v / 0", ErrDivisionByZero, l)
		}
		return l / r, nil
	case OpModulus:
		if r == 0 {
			return nil, fmt.Errorf("%w: %v %% 0", ErrDivisionByZero, l)
		}
		// Floored modulo: the result carries the divisor's sign, matching
		// the floor semantics of //.
		m := math.Mod(l, r)
		if m != 0 && (m < 0) != (r < 0) {
			m += r
		}
		return m, nil
	case OpIntDivide:
		if r == 0 {
			return nil, fmt.Errorf("%w: %v // 0", ErrDivisionByZero, l)
		}
		return math.Floor(l / r), nil
	case OpPower:
		return math.Pow(l, r), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOperator, n.Value)
	}
}

func (n *Node) evalComparator(s *evalState) (any, error) {
	if vacant(n.Left) || vacant(n.Right) {
		return nil, fmt.Errorf("%w: comparator %q requires two operands", ErrMissingOperand, n.Value)
	}
	l, err := n.Left.eval(s)
	if err != nil {
		return nil, err
	}
	r, err := n.Right.eval(s)
	if err != nil {
		return nil, err
	}

	switch n.Cmp {
	case CmpEqual:
		return looseEqual(l, r), nil
	case CmpNotEqual:
		return !looseEqual(l, r), nil
	case CmpLess, CmpLessEqual, CmpGreater, CmpGreaterEqual:
		ord, err := compareValues(l, r)
		if err != nil {
			return nil, err
		}
		switch n.Cmp {
		case CmpLess:
			return ord < 0, nil
		case CmpLessEqual:
			return ord <= 0, nil
		case CmpGreater:
			return ord > 0, nil
		default:
			return ord >= 0, nil
		}
	case CmpLooseOr:
		// Loose forms return the deciding operand value.
		if IsTruthy(l) {
			return l, nil
		}
		return r, nil
	case CmpLooseAnd:
		if !IsTruthy(l) {
			return l, nil
		}
		return r, nil
	case CmpStrictOr:
		return IsTruthy(l) || IsTruthy(r), nil
	case CmpStrictAnd:
		return IsTruthy(l) && IsTruthy(r), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidComparator, n.Value)
	}
}

// evalNumber evaluates a node and coerces the result to a float64.
func evalNumber(n *Node, s *evalState) (float64, error) {
	if n == nil {
		return 0, fmt.Errorf("%w: operand is absent", ErrMissingOperand)
	}
	v, err := n.eval(s)
	if err != nil {
		return 0, err
	}
	return toNumber(v)
}

// maxFactorialOperand is the largest n for which n! fits in a float64;
// 171! overflows to +Inf.
const maxFactorialOperand = 170

// factorial computes v! for non-negative integral v up to
// maxFactorialOperand. Larger operands are rejected up front rather than
// looped over, so evaluation stays bounded on inputs like 1e14!.
func factorial(v float64) (any, error) {
	if v < 0 || v != math.Trunc(v) {
		return nil, fmt.Errorf("%w: factorial requires a non-negative integer, got %v", ErrMathDomain, v)
	}
	if v > maxFactorialOperand {
		return nil, fmt.Errorf("%w: %v! exceeds the float64 range", ErrMathDomain, v)
	}
	result := 1.0
	for i := 2.0; i <= v; i++ {
		result *= i
	}
	return result, nil
}
