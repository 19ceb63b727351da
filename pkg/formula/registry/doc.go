// Package registry provides a generic thread-safe table for values indexed
// by key.
//
// The formula engine keeps its built-in operator, comparator, and function
// tables as immutable package-level maps; Registry covers the per-engine
// extensions layered on top of them: custom functions and custom constants
// registered through engine options.
//
// Typical use:
//
//	funcs := registry.New[string, formula.Func]()
//	funcs.Register("double", func(args []any) (any, error) { ... })
//
//	fn, ok := funcs.Get("double")
//	if ok {
//	    result, err := fn(args)
//	    // use result...
//	}
//
// All methods are safe for concurrent use, so one engine may serve many
// goroutines evaluating expressions at once.
package registry
