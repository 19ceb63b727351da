package formula

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindVariable
	KindConstant
	KindOperator
	KindComparator
	KindFunction
	KindGroup
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindVariable:
		return "variable"
	case KindConstant:
		return "constant"
	case KindOperator:
		return "operator"
	case KindComparator:
		return "comparator"
	case KindFunction:
		return "function"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is a single vertex in a parsed expression tree. Nodes are created
// unlinked by the tokenizer, linked into a tree by the builder, and
// read-only thereafter. Each child is exclusively owned by its parent;
// child slots are assigned at most once.
type Node struct {
	// Kind is the variant tag; the remaining fields are valid per kind.
	Kind Kind

	// Value is the original textual value (quotes stripped for strings,
	// enclosing parentheses stripped for groups).
	Value string

	// Left and Right are the two child slots of binary-shaped nodes.
	Left  *Node
	Right *Node

	// Op and Weight are set for operator nodes.
	Op     OperatorID
	Weight int

	// Cmp is set for comparator nodes.
	Cmp ComparatorID

	// Fn is set for function nodes; Args holds one Group node per argument.
	Fn   FunctionID
	Args []*Node

	// sub is a group's built subtree, parsed once by the builder.
	sub *Node
}

func newEmpty() *Node { return &Node{Kind: KindEmpty} }

// NewString creates a string literal node, stripping exactly one leading
// and one trailing double quote if present.
func NewString(value string) *Node {
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimSuffix(value, `"`)
	return &Node{Kind: KindString, Value: value}
}

// NewNumber creates a numeric literal node. The literal text is stored
// as-is and parsed at evaluation time.
func NewNumber(value string) *Node {
	return &Node{Kind: KindNumber, Value: value}
}

// NewVariable creates a variable reference node for a bracket-delimited
// name. The name is resolved against the environment at evaluation time.
func NewVariable(name string) *Node {
	return &Node{Kind: KindVariable, Value: name}
}

// NewConstant creates a named constant node. The name is resolved lazily
// at evaluation time.
func NewConstant(name string) *Node {
	return &Node{Kind: KindConstant, Value: name}
}

// NewOperator creates an operator node, validating the symbol against the
// operator table.
func NewOperator(sym string) (*Node, error) {
	entry, ok := operatorTable[sym]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOperator, sym)
	}
	return &Node{Kind: KindOperator, Value: sym, Op: entry.id, Weight: entry.weight}, nil
}

// NewComparator creates a comparator node, validating the symbol against
// the comparator table.
func NewComparator(sym string) (*Node, error) {
	id, ok := comparatorTable[sym]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidComparator, sym)
	}
	return &Node{Kind: KindComparator, Value: sym, Cmp: id}, nil
}

// NewGroup creates a group node holding raw, unparsed inner text with the
// enclosing parentheses already stripped.
func NewGroup(text string) *Node {
	return &Node{Kind: KindGroup, Value: text}
}

// newFunction creates a function node. Built-in names resolve against the
// function table; remaining names resolve against the engine's custom
// function registry. Lookups fold case.
func (e *Engine) newFunction(name string) (*Node, error) {
	key := strings.ToLower(name)
	if id, ok := functionTable[key]; ok {
		return &Node{Kind: KindFunction, Value: name, Fn: id}, nil
	}
	if e.funcs != nil && e.funcs.Has(key) {
		return &Node{Kind: KindFunction, Value: name, Fn: FnCustom}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidFunction, name)
}

// parseGroup tokenizes and builds a group's raw text, caching the subtree.
// Called once per group during tree building.
func (e *Engine) parseGroup(g *Node) error {
	toks, err := e.tokenize(g.Value)
	if err != nil {
		return err
	}
	sub, err := e.build(toks)
	if err != nil {
		return err
	}
	g.sub = sub
	return nil
}

// splitGroup splits a group's raw text on top-level commas into sibling
// group nodes, building each as an independent expression. Used to turn a
// parenthesized list into a function argument list.
func (e *Engine) splitGroup(g *Node) ([]*Node, error) {
	parts := splitTopLevel(g.Value)
	args := make([]*Node, 0, len(parts))
	for _, part := range parts {
		arg := NewGroup(strings.TrimSpace(part))
		if err := e.parseGroup(arg); err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

// splitTopLevel splits s on commas that are not nested inside parentheses
// or double-quoted strings.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			inString = !inString
		case inString:
		case s[i] == '(':
			depth++
		case s[i] == ')':
			depth--
		case s[i] == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
