package ast

import (
	"strings"

	"declattr/internal/source"
)

// Exprs manages allocation of argument expressions.
type Exprs struct {
	Arena    *Arena[Expr]
	Idents   *Arena[ExprIdentData]
	Literals *Arena[ExprLiteralData]
	Binaries *Arena[ExprBinaryData]
	Unaries  *Arena[ExprUnaryData]
	Groups   *Arena[ExprGroupData]
	Sizeofs  *Arena[ExprSizeofData]
}

// NewExprs creates expression arenas with capHint preallocated slots (default 1<<8).
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:    NewArena[Expr](capHint),
		Idents:   NewArena[ExprIdentData](capHint),
		Literals: NewArena[ExprLiteralData](capHint),
		Binaries: NewArena[ExprBinaryData](capHint / 4),
		Unaries:  NewArena[ExprUnaryData](capHint / 4),
		Groups:   NewArena[ExprGroupData](capHint / 8),
		Sizeofs:  NewArena[ExprSizeofData](capHint / 8),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: payload}))
}

// NewIdent allocates an identifier expression.
func (e *Exprs) NewIdent(span source.Span, name source.StringID) ExprID {
	payload := PayloadID(e.Idents.Allocate(ExprIdentData{Name: name}))
	return e.new(ExprIdent, span, payload)
}

// NewLiteral allocates a literal expression.
func (e *Exprs) NewLiteral(span source.Span, kind ExprLitKind, value source.StringID) ExprID {
	payload := PayloadID(e.Literals.Allocate(ExprLiteralData{Kind: kind, Value: value}))
	return e.new(ExprLit, span, payload)
}

// NewBinary allocates a binary expression.
func (e *Exprs) NewBinary(span source.Span, op ExprBinaryOp, left, right ExprID) ExprID {
	payload := PayloadID(e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
	return e.new(ExprBinary, span, payload)
}

// NewUnary allocates a unary expression.
func (e *Exprs) NewUnary(span source.Span, op ExprUnaryOp, operand ExprID) ExprID {
	payload := PayloadID(e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand}))
	return e.new(ExprUnary, span, payload)
}

// NewGroup allocates a parenthesized expression.
func (e *Exprs) NewGroup(span source.Span, inner ExprID) ExprID {
	payload := PayloadID(e.Groups.Allocate(ExprGroupData{Inner: inner}))
	return e.new(ExprGroup, span, payload)
}

// NewSizeof allocates sizeof(typeName).
func (e *Exprs) NewSizeof(span source.Span, typeName source.StringID) ExprID {
	payload := PayloadID(e.Sizeofs.Allocate(ExprSizeofData{Type: typeName}))
	return e.new(ExprSizeof, span, payload)
}

// Get returns the expression node for id.
func (e *Exprs) Get(id ExprID) *Expr {
	if !id.IsValid() {
		return nil
	}
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIdent {
		return nil, false
	}
	return e.Idents.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLit {
		return nil, false
	}
	return e.Literals.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Group(id ExprID) (*ExprGroupData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprGroup {
		return nil, false
	}
	return e.Groups.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Sizeof(id ExprID) (*ExprSizeofData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprSizeof {
		return nil, false
	}
	return e.Sizeofs.Get(uint32(expr.Payload)), true
}

// Span returns the source span of id, or the zero span.
func (e *Exprs) Span(id ExprID) source.Span {
	if expr := e.Get(id); expr != nil {
		return expr.Span
	}
	return source.Span{}
}

// Same reports structural equality of two expression trees, ignoring spans.
// Identifiers and literals compare by interned text.
func (e *Exprs) Same(a, b ExprID) bool {
	if a == b {
		return true
	}
	ea, eb := e.Get(a), e.Get(b)
	if ea == nil || eb == nil || ea.Kind != eb.Kind {
		return false
	}
	switch ea.Kind {
	case ExprIdent:
		ia, _ := e.Ident(a)
		ib, _ := e.Ident(b)
		return ia.Name == ib.Name
	case ExprLit:
		la, _ := e.Literal(a)
		lb, _ := e.Literal(b)
		return la.Kind == lb.Kind && la.Value == lb.Value
	case ExprBinary:
		ba, _ := e.Binary(a)
		bb, _ := e.Binary(b)
		return ba.Op == bb.Op && e.Same(ba.Left, bb.Left) && e.Same(ba.Right, bb.Right)
	case ExprUnary:
		ua, _ := e.Unary(a)
		ub, _ := e.Unary(b)
		return ua.Op == ub.Op && e.Same(ua.Operand, ub.Operand)
	case ExprGroup:
		ga, _ := e.Group(a)
		gb, _ := e.Group(b)
		return e.Same(ga.Inner, gb.Inner)
	case ExprSizeof:
		sa, _ := e.Sizeof(a)
		sb, _ := e.Sizeof(b)
		return sa.Type == sb.Type
	}
	return false
}

// SameList compares two argument lists element-wise with Same.
func (e *Exprs) SameList(a, b []ExprID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !e.Same(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Render prints id back in C-like syntax; used for pending values in
// snapshots and diagnostics arguments.
func (e *Exprs) Render(strs *source.Interner, id ExprID) string {
	var sb strings.Builder
	e.render(&sb, strs, id)
	return sb.String()
}

func (e *Exprs) render(sb *strings.Builder, strs *source.Interner, id ExprID) {
	expr := e.Get(id)
	if expr == nil {
		sb.WriteString("<?>")
		return
	}
	switch expr.Kind {
	case ExprIdent:
		data, _ := e.Ident(id)
		sb.WriteString(strs.MustLookup(data.Name))
	case ExprLit:
		data, _ := e.Literal(id)
		switch data.Kind {
		case ExprLitTrue:
			sb.WriteString("true")
		case ExprLitFalse:
			sb.WriteString("false")
		default:
			sb.WriteString(strs.MustLookup(data.Value))
		}
	case ExprBinary:
		data, _ := e.Binary(id)
		e.render(sb, strs, data.Left)
		sb.WriteByte(' ')
		sb.WriteString(data.Op.String())
		sb.WriteByte(' ')
		e.render(sb, strs, data.Right)
	case ExprUnary:
		data, _ := e.Unary(id)
		sb.WriteString(data.Op.String())
		e.render(sb, strs, data.Operand)
	case ExprGroup:
		data, _ := e.Group(id)
		sb.WriteByte('(')
		e.render(sb, strs, data.Inner)
		sb.WriteByte(')')
	case ExprSizeof:
		data, _ := e.Sizeof(id)
		sb.WriteString("sizeof(")
		sb.WriteString(strs.MustLookup(data.Type))
		sb.WriteByte(')')
	}
}
