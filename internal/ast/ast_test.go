package ast

import (
	"testing"

	"declattr/internal/source"
)

func TestArenaIsOneBased(t *testing.T) {
	a := NewArena[int](2)
	if a.Get(0) != nil || a.Get(1) != nil {
		t.Fatalf("empty arena must return nil")
	}
	id := a.Allocate(42)
	if id != 1 || *a.Get(id) != 42 || a.Len() != 1 {
		t.Fatalf("unexpected arena state id=%d len=%d", id, a.Len())
	}
}

func TestExprsSameIgnoresSpans(t *testing.T) {
	b := NewBuilder(nil)
	x := b.Exprs.NewBinary(source.Span{Start: 1, End: 5}, ExprBinaryMul,
		b.Ident(source.Span{Start: 1, End: 2}, "N"),
		b.Int(source.Span{Start: 4, End: 5}, "2"))
	y := b.Exprs.NewBinary(source.Span{Start: 20, End: 24}, ExprBinaryMul,
		b.Ident(source.Span{Start: 20, End: 21}, "N"),
		b.Int(source.Span{Start: 23, End: 24}, "2"))
	z := b.Exprs.NewBinary(source.Span{}, ExprBinaryAdd,
		b.Ident(source.Span{}, "N"),
		b.Int(source.Span{}, "2"))
	if !b.Exprs.Same(x, y) {
		t.Fatalf("structurally equal trees must compare equal")
	}
	if b.Exprs.Same(x, z) {
		t.Fatalf("different operators must not compare equal")
	}
	if !b.Exprs.SameList([]ExprID{x, z}, []ExprID{y, z}) {
		t.Fatalf("SameList mismatch")
	}
}

func TestRender(t *testing.T) {
	b := NewBuilder(nil)
	e := b.Exprs.NewGroup(source.Span{}, b.Exprs.NewBinary(source.Span{}, ExprBinaryShiftLeft,
		b.Int(source.Span{}, "1"),
		b.Exprs.NewUnary(source.Span{}, ExprUnaryNeg, b.Ident(source.Span{}, "N"))))
	if got := b.Exprs.Render(b.StringsInterner, e); got != "(1 << -N)" {
		t.Fatalf("Render = %q", got)
	}
	s := b.Sizeof(source.Span{}, "int")
	if got := b.Exprs.Render(b.StringsInterner, s); got != "sizeof(int)" {
		t.Fatalf("Render = %q", got)
	}
}

func TestAttrScopeSplit(t *testing.T) {
	b := NewBuilder(nil)
	pa := b.Attr(source.Span{}, SpellingBracket, "intel::num_banks", b.Int(source.Span{}, "4"))
	if b.StringsInterner.MustLookup(pa.Name) != "num_banks" {
		t.Fatalf("name not split")
	}
	if got := b.FullName(&pa); got != "intel::num_banks" {
		t.Fatalf("FullName = %q", got)
	}
	plain := b.Attr(source.Span{}, SpellingLegacy, "aligned")
	if plain.Scope != source.NoStringID || b.FullName(&plain) != "aligned" {
		t.Fatalf("unscoped attribute got a scope")
	}
}

func TestParseOps(t *testing.T) {
	for _, s := range []string{"+", "<<", ">=", "&&"} {
		op, ok := ParseBinaryOp(s)
		if !ok || op.String() != s {
			t.Errorf("ParseBinaryOp(%q) = %v, %v", s, op, ok)
		}
	}
	if _, ok := ParseBinaryOp("=>"); ok {
		t.Errorf("=> is not an operator")
	}
	if op, ok := ParseUnaryOp("~"); !ok || op != ExprUnaryBitNot {
		t.Errorf("ParseUnaryOp(~) = %v, %v", op, ok)
	}
}

func TestSpellingMask(t *testing.T) {
	if !SpellGNU.Has(SpellingLegacy) || SpellGNU.Has(SpellingPlatform) {
		t.Fatalf("SpellGNU mask wrong")
	}
	if s, ok := ParseSpelling("declspec"); !ok || s != SpellingPlatform {
		t.Fatalf("ParseSpelling(declspec) = %v, %v", s, ok)
	}
}
