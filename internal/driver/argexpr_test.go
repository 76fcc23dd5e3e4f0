package driver

import (
	"strings"
	"testing"

	"declattr/internal/ast"
	"declattr/internal/source"
)

// tree prints binary nodes fully parenthesized so precedence is visible.
func tree(b *ast.Builder, id ast.ExprID) string {
	if bin, ok := b.Exprs.Binary(id); ok {
		return "[" + tree(b, bin.Left) + " " + bin.Op.String() + " " + tree(b, bin.Right) + "]"
	}
	if un, ok := b.Exprs.Unary(id); ok {
		return un.Op.String() + tree(b, un.Operand)
	}
	if g, ok := b.Exprs.Group(id); ok {
		return "(" + tree(b, g.Inner) + ")"
	}
	return b.Exprs.Render(b.StringsInterner, id)
}

func TestParseArg(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"4", "4"},
		{"0x10u", "0x10u"},
		{"1 + 2 * 3", "[1 + [2 * 3]]"},
		{"1 << N - 1", "[1 << [N - 1]]"},
		{"(1 + 2) * 3", "[([1 + 2]) * 3]"},
		{"-N", "-N"},
		{"!a && b || c", "[[!a && b] || c]"},
		{"a == b < c", "[a == [b < c]]"},
		{"sizeof(unsigned long) * 2", "[sizeof(unsigned long) * 2]"},
		{`"abc" "def"`, `"abcdef"`},
		{"intel::max_size", "intel::max_size"},
		{"true", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			b := ast.NewBuilder(nil)
			id, err := ParseArg(b, 0, 0, tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if got := tree(b, id); got != tt.want {
				t.Fatalf("tree = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseArgErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"", "empty"},
		{"1 +", "ends early"},
		{"(1", "missing )"},
		{"1 2", "unexpected"},
		{`"open`, "unterminated"},
		{"a = 1", "unexpected character"},
		{"sizeof int", "parenthesized"},
		{"sizeof()", "without a type"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := ParseArg(ast.NewBuilder(nil), 0, 0, tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestParseArgSpans(t *testing.T) {
	b := ast.NewBuilder(nil)
	id, err := ParseArg(b, 3, 100, "N * 2")
	if err != nil {
		t.Fatal(err)
	}
	want := source.Span{File: 3, Start: 100, End: 105}
	if got := b.Exprs.Span(id); got != want {
		t.Fatalf("span = %+v, want %+v", got, want)
	}
	bin, _ := b.Exprs.Binary(id)
	if got := b.Exprs.Span(bin.Right); got.Start != 104 || got.End != 105 {
		t.Fatalf("right span = %+v", got)
	}
}
