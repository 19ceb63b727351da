/*
Package formula implements a small expression-language engine: it scans a
textual formula into typed tokens, assembles them into an expression tree
that respects operator precedence and parenthesized grouping, and evaluates
the tree against a caller-supplied variable environment.

# Overview

The engine has four stages, each usable on its own through Engine:

	text --tokenize--> token sequence --build--> tree --evaluate--> value

Values are float64, string, bool, time.Time, time.Duration, or
CalendarDelta. Variables are written in brackets and resolved from the
environment map at evaluation time; an unbound variable evaluates to nil.

# Expression Syntax

	<expr>  := <value> | <expr> <op> <expr> | <expr> <cmp> <expr>
	         | '(' <expr> ')' | <name> '(' <expr> {',' <expr>} ')'
	<value> := "string" | number | [variable] | constant

Operators, by precedence weight (low to high):

	+ -        additive (weight 0); unary + is absolute value, unary - negates
	* / % //   multiplicative (weight 1); // is integer division
	^          exponentiation (weight 2)
	!          factorial (weight 3, postfix)

Comparators bind looser than every operator:

	== != < <= > >=   comparison
	| &               loose OR / AND (truthiness, returns the deciding operand)
	|| &&             strict OR / AND (both sides coerced to bool)

Chained comparators associate right-to-left: a comparator's right side
consumes every token that follows it at the same nesting level.

# Functions

	today()                    current time from the engine clock
	asDate(s [, format])       parse a date; strftime-style format
	seconds/minutes/hours/days/weeks(n)   durations
	months/years(n)            calendar offsets
	sum(a, b, ...) avg(a, b, ...)
	log10(x) ln(x) log(x [, base]) sqrt(x)
	nchar(s)                   character count
	isNull(x)                  true for nil or empty string
	in(x, a, b, ...)           membership test

# Basic Usage

	value, err := formula.Eval("[x] + 1", map[string]any{"x": 4.0})
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(value) // 5

Reuse a parsed tree and configure the engine:

	eng := formula.New(
	    formula.WithConstant("rate", 0.21),
	    formula.WithFunction("double", func(args []any) (any, error) {
	        ...
	    }),
	)
	tree, err := eng.Parse("double([net]) * (1 + rate)")
	if err != nil {
	    log.Fatal(err)
	}
	value, err = eng.EvaluateTree(ctx, tree, map[string]any{"net": 100.0})

Trees are immutable after Parse, so one tree may be evaluated concurrently
from many goroutines as long as each environment map is not mutated while
in use. Evaluation is never memoized; every call recomputes the subtree.
*/
package formula
