package formula

import (
	"fmt"
	"strings"
	"time"
)

// CalendarDelta is a calendar-aware offset in months and years, produced by
// the months() and years() functions. Unlike time.Duration it follows
// calendar arithmetic: adding one month to January 14 gives February 14.
type CalendarDelta struct {
	Months int
	Years  int
}

// AddTo applies the offset to a point in time.
func (d CalendarDelta) AddTo(t time.Time) time.Time {
	return t.AddDate(d.Years, d.Months, 0)
}

// String renders the delta in a compact form like "2mo" or "1y6mo".
func (d CalendarDelta) String() string {
	var b strings.Builder
	if d.Years != 0 {
		fmt.Fprintf(&b, "%dy", d.Years)
	}
	if d.Months != 0 || d.Years == 0 {
		fmt.Fprintf(&b, "%dmo", d.Months)
	}
	return b.String()
}

// IsTruthy reports whether a value is truthy: nil is false, bools are
// themselves, empty strings are false, zero numbers, durations, and deltas
// are false, everything else is true.
func IsTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case float32:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case int32:
		return val != 0
	case time.Duration:
		return val != 0
	case time.Time:
		return !val.IsZero()
	case CalendarDelta:
		return val != CalendarDelta{}
	default:
		return true
	}
}

// asNumber converts native numeric values to float64. Strings are not
// coerced; booleans count as 0 or 1.
func asNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// toNumber converts a value to float64 for arithmetic, or reports a type
// mismatch. An unbound variable surfaces here as a null operand.
func toNumber(v any) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: operand is null", ErrTypeMismatch)
	}
	if f, ok := asNumber(v); ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: cannot use %T as a number", ErrTypeMismatch, v)
}

// addValues implements the + operator across the value domain: numbers,
// string concatenation, and date/duration/delta arithmetic.
func addValues(l, r any) (any, error) {
	switch lv := l.(type) {
	case string:
		if rv, ok := r.(string); ok {
			return lv + rv, nil
		}
	case time.Time:
		switch rv := r.(type) {
		case time.Duration:
			return lv.Add(rv), nil
		case CalendarDelta:
			return rv.AddTo(lv), nil
		}
	case time.Duration:
		switch rv := r.(type) {
		case time.Duration:
			return lv + rv, nil
		case time.Time:
			return rv.Add(lv), nil
		}
	case CalendarDelta:
		switch rv := r.(type) {
		case CalendarDelta:
			return CalendarDelta{Months: lv.Months + rv.Months, Years: lv.Years + rv.Years}, nil
		case time.Time:
			return lv.AddTo(rv), nil
		}
	}
	lf, err := toNumber(l)
	if err != nil {
		return nil, err
	}
	rf, err := toNumber(r)
	if err != nil {
		return nil, err
	}
	return lf + rf, nil
}

// subtractValues implements the binary - operator across the value domain.
// Subtracting two points in time yields a duration.
func subtractValues(l, r any) (any, error) {
	switch lv := l.(type) {
	case time.Time:
		switch rv := r.(type) {
		case time.Duration:
			return lv.Add(-rv), nil
		case CalendarDelta:
			return CalendarDelta{Months: -rv.Months, Years: -rv.Years}.AddTo(lv), nil
		case time.Time:
			return lv.Sub(rv), nil
		}
	case time.Duration:
		if rv, ok := r.(time.Duration); ok {
			return lv - rv, nil
		}
	}
	lf, err := toNumber(l)
	if err != nil {
		return nil, err
	}
	rf, err := toNumber(r)
	if err != nil {
		return nil, err
	}
	return lf - rf, nil
}

// looseEqual compares two values for equality: numerics compare by value,
// times by instant, other comparable kinds by identity. Mismatched,
// non-numeric types are unequal rather than an error.
func looseEqual(l, r any) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	if lf, ok := asNumber(l); ok {
		if rf, ok := asNumber(r); ok {
			return lf == rf
		}
		return false
	}
	switch lv := l.(type) {
	case time.Time:
		rv, ok := r.(time.Time)
		return ok && lv.Equal(rv)
	case string, time.Duration, CalendarDelta:
		return l == r
	}
	return false
}

// compareValues orders two values for <, <=, >, >=. Supported pairings are
// numbers, strings, durations, and points in time.
func compareValues(l, r any) (int, error) {
	if lf, ok := asNumber(l); ok {
		if rf, ok := asNumber(r); ok {
			switch {
			case lf < rf:
				return -1, nil
			case lf > rf:
				return 1, nil
			}
			return 0, nil
		}
	}
	switch lv := l.(type) {
	case string:
		if rv, ok := r.(string); ok {
			return strings.Compare(lv, rv), nil
		}
	case time.Time:
		if rv, ok := r.(time.Time); ok {
			switch {
			case lv.Before(rv):
				return -1, nil
			case lv.After(rv):
				return 1, nil
			}
			return 0, nil
		}
	case time.Duration:
		if rv, ok := r.(time.Duration); ok {
			switch {
			case lv < rv:
				return -1, nil
			case lv > rv:
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, fmt.Errorf("%w: cannot order %T against %T", ErrTypeMismatch, l, r)
}
