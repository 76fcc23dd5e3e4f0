package ast

import (
	"declattr/internal/source"
)

type (
	ExprID    uint32
	PayloadID uint32
)

const (
	NoExprID    ExprID    = 0
	NoPayloadID PayloadID = 0
)

func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }

// ExprKind enumerates the expression forms an attribute argument can take.
type ExprKind uint8

const (
	// ExprIdent is a bare identifier: an enumerator, a constant, a function
	// name, a template parameter or an enum-like keyword argument.
	ExprIdent ExprKind = iota
	// ExprLit is an integer, string or boolean literal.
	ExprLit
	ExprBinary
	ExprUnary
	// ExprGroup is a parenthesized expression.
	ExprGroup
	// ExprSizeof is sizeof applied to a named type.
	ExprSizeof
)

// Expr represents an expression node.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// ExprLitKind distinguishes literal forms.
type ExprLitKind uint8

const (
	ExprLitInt ExprLitKind = iota
	ExprLitString
	ExprLitTrue
	ExprLitFalse
)

// ExprLiteralData holds the raw literal spelling. String literals keep their
// quotes; integer literals keep radix prefixes and suffixes.
type ExprLiteralData struct {
	Kind  ExprLitKind
	Value source.StringID
}

// ExprIdentData holds an identifier.
type ExprIdentData struct {
	Name source.StringID
}

// ExprBinaryOp enumerates binary operator kinds.
type ExprBinaryOp uint8

const (
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod
	ExprBinaryBitAnd
	ExprBinaryBitOr
	ExprBinaryBitXor
	ExprBinaryShiftLeft
	ExprBinaryShiftRight
	ExprBinaryLogicalAnd
	ExprBinaryLogicalOr
	ExprBinaryEq
	ExprBinaryNotEq
	ExprBinaryLess
	ExprBinaryLessEq
	ExprBinaryGreater
	ExprBinaryGreaterEq
)

var binaryOpSpelling = [...]string{
	ExprBinaryAdd:        "+",
	ExprBinarySub:        "-",
	ExprBinaryMul:        "*",
	ExprBinaryDiv:        "/",
	ExprBinaryMod:        "%",
	ExprBinaryBitAnd:     "&",
	ExprBinaryBitOr:      "|",
	ExprBinaryBitXor:     "^",
	ExprBinaryShiftLeft:  "<<",
	ExprBinaryShiftRight: ">>",
	ExprBinaryLogicalAnd: "&&",
	ExprBinaryLogicalOr:  "||",
	ExprBinaryEq:         "==",
	ExprBinaryNotEq:      "!=",
	ExprBinaryLess:       "<",
	ExprBinaryLessEq:     "<=",
	ExprBinaryGreater:    ">",
	ExprBinaryGreaterEq:  ">=",
}

func (op ExprBinaryOp) String() string {
	if int(op) < len(binaryOpSpelling) {
		return binaryOpSpelling[op]
	}
	return "?"
}

// ParseBinaryOp maps an operator spelling to its kind.
func ParseBinaryOp(s string) (ExprBinaryOp, bool) {
	for op, spelling := range binaryOpSpelling {
		if spelling == s {
			return ExprBinaryOp(op), true // #nosec G115
		}
	}
	return 0, false
}

// ExprBinaryData holds binary operation details.
type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

// ExprUnaryOp enumerates unary operator kinds.
type ExprUnaryOp uint8

const (
	ExprUnaryNeg ExprUnaryOp = iota
	ExprUnaryPlus
	ExprUnaryBitNot
	ExprUnaryNot
)

func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryNeg:
		return "-"
	case ExprUnaryPlus:
		return "+"
	case ExprUnaryBitNot:
		return "~"
	case ExprUnaryNot:
		return "!"
	}
	return "?"
}

// ParseUnaryOp maps an operator spelling to its kind.
func ParseUnaryOp(s string) (ExprUnaryOp, bool) {
	switch s {
	case "-":
		return ExprUnaryNeg, true
	case "+":
		return ExprUnaryPlus, true
	case "~":
		return ExprUnaryBitNot, true
	case "!":
		return ExprUnaryNot, true
	}
	return 0, false
}

// ExprUnaryData holds unary operation details.
type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

// ExprGroupData holds the inner expression of a parenthesized group.
type ExprGroupData struct {
	Inner ExprID
}

// ExprSizeofData names the type whose size is requested.
type ExprSizeofData struct {
	Type source.StringID
}
