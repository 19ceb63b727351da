package formula

import "fmt"

// tokenQueue is the mutable view over the token sequence shared across
// recursive build calls; inner calls consume tokens the outer call then
// no longer sees.
type tokenQueue struct {
	toks []*Node
}

func (q *tokenQueue) empty() bool { return len(q.toks) == 0 }

func (q *tokenQueue) pop() *Node {
	n := q.toks[0]
	q.toks = q.toks[1:]
	return n
}

// build consumes the token sequence strictly left-to-right and grafts each
// token onto a growing tree, resolving precedence and grouping. It returns
// the single root of the completed tree.
func (e *Engine) build(toks []*Node) (*Node, error) {
	return e.buildFrom(newEmpty(), &tokenQueue{toks: toks})
}

func (e *Engine) buildFrom(base *Node, q *tokenQueue) (*Node, error) {
	for !q.empty() {
		node := q.pop()
		switch node.Kind {
		case KindOperator:
			next, err := e.graftOperator(base, node, q)
			if err != nil {
				return nil, err
			}
			base = next

		case KindComparator:
			// A comparator always becomes the new root; its right side
			// consumes every remaining token at this nesting level, so
			// chained comparators associate right-to-left.
			node.Left = base
			right, err := e.buildFrom(newEmpty(), q)
			if err != nil {
				return nil, err
			}
			node.Right = right
			base = node

		case KindGroup:
			if err := e.graftGroup(base, node); err != nil {
				return nil, err
			}
			if base.Kind == KindEmpty && base.Left == nil && base.Right == nil {
				base = node
			}

		default:
			// Leaf kinds: String, Number, Variable, Constant, Function.
			switch {
			case base.Kind == KindEmpty && base.Left == nil && base.Right == nil:
				base = node
			case base.Left == nil:
				base.Left = node
			case base.Right == nil:
				base.Right = node
			default:
				return nil, fmt.Errorf("%w: no slot for %s %q", ErrSyntax, node.Kind, node.Value)
			}
		}
	}
	return base, nil
}

// graftOperator attaches an operator token and returns the new current tree.
func (e *Engine) graftOperator(base, node *Node, q *tokenQueue) (*Node, error) {
	switch {
	case node.Op == OpFactorial && base.Kind == KindOperator && base.Op == OpFactorial:
		// Factorial is postfix and complete without a right child; a second
		// factorial directly after it has nothing left to consume.
		return nil, fmt.Errorf("%w: repeated factorial", ErrExtraOperand)

	case base.Kind == KindOperator && base.Op != OpFactorial && base.Right == nil:
		// base is still waiting on its right operand, so this operator is
		// unary: it roots the right-hand subtree (e.g. 2 * -3, +-5). The
		// placeholder keeps the operand out of the unary left slot.
		node.Left = newEmpty()
		sub, err := e.buildFrom(node, q)
		if err != nil {
			return nil, err
		}
		base.Right = sub
		return base, nil

	case base.Kind == KindOperator && node.Weight > base.Weight:
		// Right rotation: the tighter-binding operator captures the most
		// recently produced operand. Equal weights fold left.
		node.Left = base.Right
		sub, err := e.buildFrom(node, q)
		if err != nil {
			return nil, err
		}
		base.Right = sub
		return base, nil

	default:
		node.Left = base
		return node, nil
	}
}

// graftGroup attaches a group token, choosing the target by inspecting the
// current tree's shape. Function operands receive the group as an argument
// list; otherwise the group fills the first open child slot. The group's
// subtree is built exactly once, here.
func (e *Engine) graftGroup(base, node *Node) error {
	switch {
	case base.Right != nil && base.Right.Kind == KindFunction:
		args, err := e.splitGroup(node)
		if err != nil {
			return err
		}
		base.Right.Args = args

	case base.Left != nil && base.Left.Kind == KindFunction:
		args, err := e.splitGroup(node)
		if err != nil {
			return err
		}
		base.Left.Args = args

	case base.Kind == KindFunction:
		args, err := e.splitGroup(node)
		if err != nil {
			return err
		}
		base.Args = args

	case base.Kind == KindEmpty && base.Left == nil && base.Right == nil:
		// Bare base: the caller promotes the group to the tree itself.
		if err := e.parseGroup(node); err != nil {
			return err
		}

	case base.Left == nil:
		if err := e.parseGroup(node); err != nil {
			return err
		}
		base.Left = node

	case base.Right == nil:
		if err := e.parseGroup(node); err != nil {
			return err
		}
		base.Right = node

	default:
		return fmt.Errorf("%w: no attachment point for group %q", ErrSyntax, node.Value)
	}
	return nil
}
