package sema

import (
	"math"
	"math/bits"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"declattr/internal/ast"
	"declattr/internal/attrs"
	"declattr/internal/decl"
	"declattr/internal/diag"
	"declattr/internal/source"
	"declattr/internal/types"
)

// EvalState is the outcome of evaluating an attribute's arguments.
type EvalState uint8

const (
	EvalResolved EvalState = iota
	EvalPending
	EvalError
)

func (s EvalState) String() string {
	switch s {
	case EvalPending:
		return "pending"
	case EvalError:
		return "error"
	}
	return "resolved"
}

// ValueKind tags an evaluated argument.
type ValueKind uint8

const (
	ValInt ValueKind = iota
	ValString
	ValIdent
)

// Value is one evaluated argument.
type Value struct {
	Kind ValueKind
	Int  int64
	Str  string // string contents or identifier spelling
	Expr ast.ExprID
	Span source.Span
}

// Text renders the value the way it is quoted in diagnostics.
func (v Value) Text() string {
	switch v.Kind {
	case ValString:
		return strconv.Quote(v.Str)
	case ValIdent:
		return v.Str
	}
	return strconv.FormatInt(v.Int, 10)
}

// EvalResult carries either the evaluated values, the original expressions
// of a dependent attribute, or the code of the first error.
type EvalResult struct {
	State   EvalState
	Values  []Value
	Pending []ast.ExprID
	Code    diag.Code
}

// Evaluator folds attribute arguments to canonical values.
type Evaluator struct {
	Exprs   *ast.Exprs
	Strings *source.Interner
	Types   *types.Interner
	Decls   *decl.Table
	Model   types.DataModel
}

type foldStatus uint8

const (
	foldOK foldStatus = iota
	foldDependent
	foldNotConst
)

// evalCall is the state of one Evaluate call.
type evalCall struct {
	ev    *Evaluator
	owner decl.ID
	subst *decl.Substitution
}

// Evaluate checks arity and evaluates args against sh. owner is the
// declaration the attribute is written on; it decides which template
// parameters are visible. subst, when non-nil, binds them.
func (ev *Evaluator) Evaluate(r diag.Reporter, attr string, span source.Span, owner decl.ID, args []ast.ExprID, sh attrs.Shape, subst *decl.Substitution) EvalResult {
	if !sh.Accepts(len(args)) {
		maxArgs := "*"
		if sh.Max != attrs.Unbounded {
			maxArgs = strconv.Itoa(sh.Max)
		}
		diag.ReportError(r, diag.ArgArity, span, attr, strconv.Itoa(len(args)), strconv.Itoa(sh.Min), maxArgs).Emit()
		return EvalResult{State: EvalError, Code: diag.ArgArity}
	}
	call := evalCall{ev: ev, owner: owner, subst: subst}
	values := make([]Value, 0, len(args))
	dependent := false
	for i, arg := range args {
		v, st := call.arg(r, attr, i, arg, sh.At(i))
		switch st {
		case foldDependent:
			dependent = true
		case foldNotConst:
			return EvalResult{State: EvalError, Code: diag.ArgType}
		}
		values = append(values, v)
	}
	if dependent {
		return EvalResult{State: EvalPending, Pending: args}
	}
	return EvalResult{State: EvalResolved, Values: values}
}

func (c *evalCall) arg(r diag.Reporter, attr string, i int, id ast.ExprID, kind attrs.ArgKind) (Value, foldStatus) {
	ev := c.ev
	v := Value{Expr: id, Span: ev.Exprs.Span(id)}
	idx := strconv.Itoa(i + 1)
	typeError := func() (Value, foldStatus) {
		diag.ReportError(r, diag.ArgType, v.Span, attr, idx, kind.String()).Emit()
		return v, foldNotConst
	}

	if lit, ok := ev.Exprs.Literal(id); ok && lit.Kind == ast.ExprLitString {
		switch kind {
		case attrs.ArgString, attrs.ArgIdent, attrs.ArgAny:
			s, ok := unquote(ev.Strings.MustLookup(lit.Value))
			if !ok {
				return typeError()
			}
			v.Kind, v.Str = ValString, s
			if kind == attrs.ArgIdent {
				v.Kind = ValIdent
			}
			return v, foldOK
		}
		return typeError()
	}

	if ident, ok := ev.Exprs.Ident(id); ok {
		name := ev.Strings.MustLookup(ident.Name)
		switch kind {
		case attrs.ArgString:
			diag.ReportWarning(r, diag.ArgNormalized, v.Span, attr, idx, name).Emit()
			v.Kind, v.Str = ValString, name
			return v, foldOK
		case attrs.ArgIdent, attrs.ArgFunc:
			v.Kind, v.Str = ValIdent, name
			return v, foldOK
		}
	}

	switch kind {
	case attrs.ArgInt, attrs.ArgAny:
		n, st := c.fold(id)
		switch st {
		case foldOK:
			v.Kind, v.Int = ValInt, n
			return v, foldOK
		case foldDependent:
			return v, foldDependent
		}
	}
	return typeError()
}

// fold evaluates an integer constant expression.
func (c *evalCall) fold(id ast.ExprID) (int64, foldStatus) {
	ev := c.ev
	node := ev.Exprs.Get(id)
	if node == nil {
		return 0, foldNotConst
	}
	switch node.Kind {
	case ast.ExprLit:
		lit, _ := ev.Exprs.Literal(id)
		switch lit.Kind {
		case ast.ExprLitInt:
			n, ok := parseIntLiteral(ev.Strings.MustLookup(lit.Value))
			if !ok {
				return 0, foldNotConst
			}
			return n, foldOK
		case ast.ExprLitTrue:
			return 1, foldOK
		case ast.ExprLitFalse:
			return 0, foldOK
		}
		return 0, foldNotConst
	case ast.ExprGroup:
		g, _ := ev.Exprs.Group(id)
		return c.fold(g.Inner)
	case ast.ExprUnary:
		u, _ := ev.Exprs.Unary(id)
		x, st := c.fold(u.Operand)
		if st != foldOK {
			return 0, st
		}
		switch u.Op {
		case ast.ExprUnaryNeg:
			if x == math.MinInt64 {
				return 0, foldNotConst
			}
			return -x, foldOK
		case ast.ExprUnaryPlus:
			return x, foldOK
		case ast.ExprUnaryBitNot:
			return ^x, foldOK
		case ast.ExprUnaryNot:
			return boolInt(x == 0), foldOK
		}
	case ast.ExprBinary:
		b, _ := ev.Exprs.Binary(id)
		x, st := c.fold(b.Left)
		if st == foldNotConst {
			return 0, st
		}
		y, st2 := c.fold(b.Right)
		if st2 == foldNotConst {
			return 0, st2
		}
		if st == foldDependent || st2 == foldDependent {
			return 0, foldDependent
		}
		if n, ok := binaryOp(b.Op, x, y); ok {
			return n, foldOK
		}
	case ast.ExprIdent:
		ident, _ := ev.Exprs.Ident(id)
		return c.ident(ident.Name)
	case ast.ExprSizeof:
		s, _ := ev.Exprs.Sizeof(id)
		return c.sizeof(s.Type)
	}
	return 0, foldNotConst
}

func (c *evalCall) ident(name source.StringID) (int64, foldStatus) {
	ev := c.ev
	if tp, ok := ev.Decls.TemplateParam(c.owner, name); ok {
		if tp.Kind != decl.TParamValue {
			return 0, foldNotConst
		}
		if c.subst != nil {
			if v, ok := c.subst.Values[name]; ok {
				return v, foldOK
			}
		}
		return 0, foldDependent
	}
	if id, ok := ev.Decls.LookupCategory(name, decl.CatEnumConst); ok {
		return ev.Decls.Get(id).Value, foldOK
	}
	if id, ok := ev.Decls.LookupCategory(name, decl.CatVariable); ok {
		if d := ev.Decls.Get(id); d.Has(decl.FlagConstexpr) {
			return d.Value, foldOK
		}
	}
	return 0, foldNotConst
}

func (c *evalCall) sizeof(typeName source.StringID) (int64, foldStatus) {
	ev := c.ev
	var ty types.TypeID
	if tp, ok := ev.Decls.TemplateParam(c.owner, typeName); ok {
		if tp.Kind != decl.TParamType {
			return 0, foldNotConst
		}
		if c.subst == nil {
			return 0, foldDependent
		}
		bound, ok := c.subst.Types[typeName]
		if !ok {
			return 0, foldDependent
		}
		ty = bound
	} else {
		parsed, err := ev.Types.Parse(ev.Strings.MustLookup(typeName))
		if err != nil {
			return 0, foldNotConst
		}
		ty = parsed
	}
	size, ok := ev.Types.SizeOf(ty, ev.Model)
	if !ok {
		return 0, foldNotConst
	}
	n, err := safecast.Conv[int64](size)
	if err != nil {
		return 0, foldNotConst
	}
	return n, foldOK
}

func binaryOp(op ast.ExprBinaryOp, x, y int64) (int64, bool) {
	switch op {
	case ast.ExprBinaryAdd:
		r := x + y
		if (r > x) != (y > 0) {
			return 0, false
		}
		return r, true
	case ast.ExprBinarySub:
		r := x - y
		if (r < x) != (y > 0) {
			return 0, false
		}
		return r, true
	case ast.ExprBinaryMul:
		if x == 0 || y == 0 {
			return 0, true
		}
		r := x * y
		if r/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
			return 0, false
		}
		return r, true
	case ast.ExprBinaryDiv:
		if y == 0 || (x == math.MinInt64 && y == -1) {
			return 0, false
		}
		return x / y, true
	case ast.ExprBinaryMod:
		if y == 0 || (x == math.MinInt64 && y == -1) {
			return 0, false
		}
		return x % y, true
	case ast.ExprBinaryBitAnd:
		return x & y, true
	case ast.ExprBinaryBitOr:
		return x | y, true
	case ast.ExprBinaryBitXor:
		return x ^ y, true
	case ast.ExprBinaryShiftLeft:
		if y < 0 || y >= 63 || x < 0 || bits.Len64(uint64(x))+int(y) > 63 {
			return 0, false
		}
		return x << uint(y), true
	case ast.ExprBinaryShiftRight:
		if y < 0 || y >= 64 {
			return 0, false
		}
		return x >> uint(y), true
	case ast.ExprBinaryLogicalAnd:
		return boolInt(x != 0 && y != 0), true
	case ast.ExprBinaryLogicalOr:
		return boolInt(x != 0 || y != 0), true
	case ast.ExprBinaryEq:
		return boolInt(x == y), true
	case ast.ExprBinaryNotEq:
		return boolInt(x != y), true
	case ast.ExprBinaryLess:
		return boolInt(x < y), true
	case ast.ExprBinaryLessEq:
		return boolInt(x <= y), true
	case ast.ExprBinaryGreater:
		return boolInt(x > y), true
	case ast.ExprBinaryGreaterEq:
		return boolInt(x >= y), true
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// parseIntLiteral accepts C integer literals: decimal, 0x, 0b and leading-0
// octal, digit separators and u/l suffixes.
func parseIntLiteral(raw string) (int64, bool) {
	clean := strings.ReplaceAll(raw, "'", "")
	clean = strings.TrimRight(clean, "uUlLzZ")
	if clean == "" {
		return 0, false
	}
	base := 10
	switch {
	case len(clean) > 2 && (clean[:2] == "0x" || clean[:2] == "0X"):
		base, clean = 16, clean[2:]
	case len(clean) > 2 && (clean[:2] == "0b" || clean[:2] == "0B"):
		base, clean = 2, clean[2:]
	case len(clean) > 1 && clean[0] == '0':
		base, clean = 8, clean[1:]
	}
	u, err := strconv.ParseUint(clean, base, 64)
	if err != nil {
		return 0, false
	}
	v, err := safecast.Conv[int64](u)
	if err != nil {
		return 0, false
	}
	return v, true
}

// unquote strips the quotes and escapes of a string literal and returns its
// NFC form. Adjacent literals have already been concatenated by the parser.
func unquote(raw string) (string, bool) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", false
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		return "", false
	}
	if strings.IndexByte(s, 0) >= 0 {
		return "", false
	}
	return norm.NFC.String(s), true
}
