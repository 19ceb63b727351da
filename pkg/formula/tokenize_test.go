package formula

import (
	"errors"
	"testing"
)

func kindsOf(toks []*Node) []Kind {
	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	return kinds
}

func kindsEqual(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenize_Kinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Kind
	}{
		{"number operator number", "2 + 3", []Kind{KindNumber, KindOperator, KindNumber}},
		{"no whitespace needed", "2+3*4", []Kind{KindNumber, KindOperator, KindNumber, KindOperator, KindNumber}},
		{"string literal", `"hello world"`, []Kind{KindString}},
		{"variable reference", "[total] * 2", []Kind{KindVariable, KindOperator, KindNumber}},
		{"bare identifier is constant", "pi * 2", []Kind{KindConstant, KindOperator, KindNumber}},
		{"identifier before paren is function", "sqrt(2)", []Kind{KindFunction, KindGroup}},
		{"empty group discarded", "today()", []Kind{KindFunction}},
		{"group keeps nesting", "((1 + 2))", []Kind{KindGroup}},
		{"two char comparator", "1 <= 2", []Kind{KindNumber, KindComparator, KindNumber}},
		{"two char operator", "7 // 2", []Kind{KindNumber, KindOperator, KindNumber}},
		{"adjacent operators split", "2*-3", []Kind{KindNumber, KindOperator, KindOperator, KindNumber}},
		{"leading sign run", "+-5", []Kind{KindOperator, KindOperator, KindNumber}},
		{"postfix factorial", "5!", []Kind{KindNumber, KindOperator}},
		{"not equal beats factorial", "1 != 2", []Kind{KindNumber, KindComparator, KindNumber}},
		{"function call in expression", `asDate("1995-02-14","%Y-%m-%d") + months(2)`,
			[]Kind{KindFunction, KindGroup, KindOperator, KindFunction, KindGroup}},
	}

	eng := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := eng.tokenize(tt.src)
			if err != nil {
				t.Fatalf("tokenize(%q): %v", tt.src, err)
			}
			if got := kindsOf(toks); !kindsEqual(got, tt.want) {
				t.Errorf("tokenize(%q) kinds = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestTokenize_Values(t *testing.T) {
	eng := New()

	toks, err := eng.tokenize(`asDate("1995-02-14","%Y-%m-%d")`)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2", len(toks))
	}
	if toks[0].Value != "asDate" || toks[0].Fn != FnAsDate {
		t.Errorf("function token = %q (%v)", toks[0].Value, toks[0].Fn)
	}
	if toks[1].Value != `"1995-02-14","%Y-%m-%d"` {
		t.Errorf("group text = %q", toks[1].Value)
	}

	toks, err = eng.tokenize(`"say (hi)"`)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(toks) != 1 || toks[0].Value != "say (hi)" {
		t.Errorf("quoted parens mishandled: %+v", toks)
	}

	toks, err = eng.tokenize("(((1 + 2)))")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(toks) != 1 || toks[0].Value != "((1 + 2))" {
		t.Errorf("nested group text = %q", toks[0].Value)
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"unterminated string", `"abc`, ErrSyntax},
		{"unterminated variable", "[abc", ErrSyntax},
		{"empty variable", "[] + 1", ErrSyntax},
		{"unbalanced group", "(1 + 2", ErrSyntax},
		{"unknown symbol", "2 $ 3", ErrInvalidOperator},
		{"unknown symbol run", "2 @# 3", ErrInvalidOperator},
		{"unknown function", "nope(1)", ErrInvalidFunction},
	}

	eng := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.tokenize(tt.src)
			if err == nil {
				t.Fatalf("tokenize(%q) succeeded, want %v", tt.src, tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("tokenize(%q) error = %v, want %v", tt.src, err, tt.wantErr)
			}
		})
	}
}

func TestTokenize_CustomFunctionName(t *testing.T) {
	eng := New(WithFunction("double", func(args []any) (any, error) {
		return nil, nil
	}))

	toks, err := eng.tokenize("double(3)")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if toks[0].Kind != KindFunction || toks[0].Fn != FnCustom {
		t.Errorf("custom function token = %+v", toks[0])
	}

	// Resolution folds case.
	toks, err = eng.tokenize("DOUBLE(3)")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if toks[0].Fn != FnCustom {
		t.Errorf("case-folded lookup failed: %+v", toks[0])
	}
}

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"flat list", "1, 2, 3", []string{"1", " 2", " 3"}},
		{"nested call stays whole", "a, g(b,c), d", []string{"a", " g(b,c)", " d"}},
		{"comma inside string", `"a,b", 2`, []string{`"a,b"`, " 2"}},
		{"single part", "1 + 2", []string{"1 + 2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitTopLevel(tt.src)
			if len(got) != len(tt.want) {
				t.Fatalf("splitTopLevel(%q) = %q, want %q", tt.src, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("part %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
