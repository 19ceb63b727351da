package formula

import (
	"fmt"
	"strings"
)

// tokenize scans raw expression text into an ordered sequence of typed,
// unlinked nodes. Token classes, in matching priority order: double-quoted
// string, bracket-delimited variable, balanced parenthesized group,
// comparator symbol, function name (identifier immediately followed by a
// parenthesis), bare identifier, numeric literal, operator symbol.
// Identifier matching folds case.
func (e *Engine) tokenize(src string) ([]*Node, error) {
	var toks []*Node
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case isSpace(c):
			i++

		case c == '"':
			end := strings.IndexByte(src[i+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string literal", ErrSyntax)
			}
			toks = append(toks, NewString(src[i:i+end+2]))
			i += end + 2

		case c == '[':
			end := strings.IndexByte(src[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated variable reference", ErrSyntax)
			}
			name := src[i+1 : i+1+end]
			if name == "" {
				return nil, fmt.Errorf("%w: empty variable reference", ErrSyntax)
			}
			toks = append(toks, NewVariable(name))
			i += end + 2

		case c == '(':
			inner, next, err := scanGroup(src, i)
			if err != nil {
				return nil, err
			}
			i = next
			// An empty group is an empty argument list, not an error.
			if strings.TrimSpace(inner) != "" {
				toks = append(toks, NewGroup(inner))
			}

		case isLetter(c):
			end := i + 1
			for end < len(src) && isIdentChar(src[end]) {
				end++
			}
			name := src[i:end]
			if end < len(src) && src[end] == '(' {
				node, err := e.newFunction(name)
				if err != nil {
					return nil, err
				}
				toks = append(toks, node)
			} else {
				toks = append(toks, NewConstant(name))
			}
			i = end

		case isDigit(c) || c == '.':
			end := i
			seenDot := false
			for end < len(src) && (isDigit(src[end]) || (src[end] == '.' && !seenDot)) {
				if src[end] == '.' {
					seenDot = true
				}
				end++
			}
			toks = append(toks, NewNumber(src[i:end]))
			i = end

		default:
			node, width, err := scanSymbol(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, node)
			i += width
		}
	}
	return toks, nil
}

// scanSymbol matches a comparator or operator at src[i], longest known
// symbol first so that != beats !, <= beats <, and // beats /.
func scanSymbol(src string, i int) (*Node, int, error) {
	if i+1 < len(src) {
		if _, ok := comparatorTable[src[i:i+2]]; ok {
			node, err := NewComparator(src[i : i+2])
			return node, 2, err
		}
	}
	if _, ok := comparatorTable[src[i:i+1]]; ok {
		node, err := NewComparator(src[i : i+1])
		return node, 1, err
	}
	if i+1 < len(src) {
		if _, ok := operatorTable[src[i:i+2]]; ok {
			node, err := NewOperator(src[i : i+2])
			return node, 2, err
		}
	}
	if _, ok := operatorTable[src[i:i+1]]; ok {
		node, err := NewOperator(src[i : i+1])
		return node, 1, err
	}
	// Unknown symbol: report the whole run so errors read naturally.
	end := i
	for end < len(src) && isSymbolChar(src[end]) {
		end++
	}
	return nil, 0, fmt.Errorf("%w: %q", ErrInvalidOperator, src[i:end])
}

// scanGroup returns the text inside the balanced parenthesized group
// starting at src[start] and the index just past its closing parenthesis.
// Parentheses inside double-quoted strings do not count toward nesting.
func scanGroup(src string, start int) (string, int, error) {
	depth := 0
	inString := false
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '"':
			inString = !inString
		case '(':
			if !inString {
				depth++
			}
		case ')':
			if inString {
				continue
			}
			depth--
			if depth == 0 {
				return src[start+1 : i], i + 1, nil
			}
		}
	}
	return "", 0, fmt.Errorf("%w: unbalanced parentheses", ErrSyntax)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

func isSymbolChar(c byte) bool {
	switch {
	case isLetter(c), isDigit(c), isSpace(c):
		return false
	case c == '(', c == ')', c == '[', c == ']', c == '"':
		return false
	}
	return true
}
