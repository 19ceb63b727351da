package formula

import "errors"

// Sentinel errors for symbol validation at node construction.
var (
	// ErrInvalidOperator indicates an unknown operator symbol.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrInvalidComparator indicates an unknown comparator symbol.
	ErrInvalidComparator = errors.New("invalid comparator")

	// ErrInvalidFunction indicates an unknown function name.
	ErrInvalidFunction = errors.New("invalid function")
)

// Sentinel errors for tree building and evaluation.
var (
	// ErrSyntax indicates a malformed expression: an unterminated literal,
	// unbalanced parentheses, or a token with no valid attachment point.
	ErrSyntax = errors.New("invalid syntax")

	// ErrMissingOperand indicates an operator or comparator evaluated
	// without a required operand.
	ErrMissingOperand = errors.New("missing operand")

	// ErrExtraOperand indicates an operand where none is allowed, such as
	// a factorial given a second operand.
	ErrExtraOperand = errors.New("extra operand")

	// ErrMissingArgument indicates a function called with fewer arguments
	// than it requires.
	ErrMissingArgument = errors.New("missing argument")

	// ErrUndefinedConstant indicates a bare name that resolves to neither a
	// built-in nor an engine-registered constant.
	ErrUndefinedConstant = errors.New("undefined constant")

	// ErrDivisionByZero indicates division, modulus, or integer division
	// with a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrMathDomain indicates an argument outside a function's numeric
	// domain, such as the logarithm of a non-positive number.
	ErrMathDomain = errors.New("math domain error")

	// ErrTypeMismatch indicates operand types that do not support the
	// requested operation, including arithmetic on an unbound variable.
	ErrTypeMismatch = errors.New("type mismatch")
)
