package formula

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ncruces/go-strftime"
)

// defaultDateFormat is the strftime-style format asDate assumes when no
// second argument is given. Override per engine with WithDateFormat.
const defaultDateFormat = "%m/%d/%Y"

func (n *Node) evalFunction(s *evalState) (any, error) {
	s.engine.metrics.RecordFunctionCall(s.ctx, strings.ToLower(n.Value))

	if n.Fn == FnCustom {
		return n.evalCustomFunction(s)
	}
	if n.Fn == FnToday {
		return s.engine.now(), nil
	}
	if len(n.Args) == 0 {
		return nil, fmt.Errorf("%w: %s requires at least one argument", ErrMissingArgument, n.Value)
	}

	switch n.Fn {
	case FnAsDate:
		return n.evalAsDate(s)

	case FnSeconds:
		return n.argDuration(s, float64(time.Second))
	case FnMinutes:
		return n.argDuration(s, float64(time.Minute))
	case FnHours:
		return n.argDuration(s, float64(time.Hour))
	case FnDays:
		return n.argDuration(s, float64(24*time.Hour))
	case FnWeeks:
		return n.argDuration(s, float64(7*24*time.Hour))

	case FnMonths:
		v, err := n.argNumber(s, 0)
		if err != nil {
			return nil, err
		}
		return CalendarDelta{Months: int(v)}, nil
	case FnYears:
		v, err := n.argNumber(s, 0)
		if err != nil {
			return nil, err
		}
		return CalendarDelta{Years: int(v)}, nil

	case FnSum:
		total, err := n.sumArgs(s)
		if err != nil {
			return nil, err
		}
		return total, nil
	case FnAvg:
		total, err := n.sumArgs(s)
		if err != nil {
			return nil, err
		}
		return total / float64(len(n.Args)), nil

	case FnLog10:
		v, err := n.argNumber(s, 0)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("%w: log10 of %v", ErrMathDomain, v)
		}
		return math.Log10(v), nil
	case FnLn:
		v, err := n.argNumber(s, 0)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			return nil, fmt.Errorf("%w: ln of %v", ErrMathDomain, v)
		}
		return math.Log(v), nil
	case FnLog:
		v, err := n.argNumber(s, 0)
		if err != nil {
			return nil, err
		}
		base := 10.0
		if len(n.Args) > 1 {
			if base, err = n.argNumber(s, 1); err != nil {
				return nil, err
			}
		}
		if v <= 0 || base <= 0 || base == 1 {
			return nil, fmt.Errorf("%w: log base %v of %v", ErrMathDomain, base, v)
		}
		return math.Log(v) / math.Log(base), nil
	case FnSqrt:
		v, err := n.argNumber(s, 0)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: sqrt of %v", ErrMathDomain, v)
		}
		return math.Pow(v, 0.5), nil

	case FnNchar:
		str, err := n.argString(s, 0)
		if err != nil {
			return nil, err
		}
		return float64(utf8.RuneCountInString(str)), nil

	case FnIsNull:
		v, err := n.Args[0].eval(s)
		if err != nil {
			return nil, err
		}
		return v == nil || v == "", nil

	case FnIn:
		needle, err := n.Args[0].eval(s)
		if err != nil {
			return nil, err
		}
		for _, arg := range n.Args[1:] {
			v, err := arg.eval(s)
			if err != nil {
				return nil, err
			}
			if looseEqual(needle, v) {
				return true, nil
			}
		}
		return false, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFunction, n.Value)
	}
}

// evalAsDate parses the first argument as a date using the strftime-style
// format in the second argument, or the engine default.
func (n *Node) evalAsDate(s *evalState) (any, error) {
	str, err := n.argString(s, 0)
	if err != nil {
		return nil, err
	}
	format := s.engine.dateFormat
	if len(n.Args) > 1 {
		if format, err = n.argString(s, 1); err != nil {
			return nil, err
		}
	}
	layout, err := strftime.Layout(format)
	if err != nil {
		return nil, fmt.Errorf("%w: date format %q: %v", ErrTypeMismatch, format, err)
	}
	t, err := time.Parse(layout, str)
	if err != nil {
		return nil, fmt.Errorf("%w: %q does not match format %q", ErrTypeMismatch, str, format)
	}
	return t, nil
}

// evalCustomFunction dispatches against the engine's custom registry with
// all arguments evaluated eagerly.
func (n *Node) evalCustomFunction(s *evalState) (any, error) {
	fn, ok := s.engine.funcs.Get(strings.ToLower(n.Value))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFunction, n.Value)
	}
	args := make([]any, len(n.Args))
	for i, arg := range n.Args {
		v, err := arg.eval(s)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return fn(args)
}

// argNumber evaluates argument i and coerces it to a number.
func (n *Node) argNumber(s *evalState, i int) (float64, error) {
	if i >= len(n.Args) {
		return 0, fmt.Errorf("%w: %s argument %d", ErrMissingArgument, n.Value, i+1)
	}
	v, err := n.Args[i].eval(s)
	if err != nil {
		return 0, err
	}
	f, err := toNumber(v)
	if err != nil {
		return 0, fmt.Errorf("%s argument %d: %w", n.Value, i+1, err)
	}
	return f, nil
}

// argString evaluates argument i and requires a string.
func (n *Node) argString(s *evalState, i int) (string, error) {
	if i >= len(n.Args) {
		return "", fmt.Errorf("%w: %s argument %d", ErrMissingArgument, n.Value, i+1)
	}
	v, err := n.Args[i].eval(s)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s argument %d: expected string, got %T", ErrTypeMismatch, n.Value, i+1, v)
	}
	return str, nil
}

// argDuration evaluates the first argument and scales it by unit.
func (n *Node) argDuration(s *evalState, unit float64) (any, error) {
	v, err := n.argNumber(s, 0)
	if err != nil {
		return nil, err
	}
	return time.Duration(v * unit), nil
}

// sumArgs evaluates every argument as a number and totals them.
func (n *Node) sumArgs(s *evalState) (float64, error) {
	total := 0.0
	for i := range n.Args {
		v, err := n.argNumber(s, i)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}
