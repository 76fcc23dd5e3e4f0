package driver

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"declattr/internal/ast"
	"declattr/internal/source"
)

// Binary operator precedence; higher binds tighter.
const (
	precLogicalOr      = 2  // ||
	precLogicalAnd     = 3  // &&
	precEquality       = 4  // == !=
	precComparison     = 5  // < <= > >=
	precBitwiseOr      = 6  // |
	precBitwiseXor     = 7  // ^
	precBitwiseAnd     = 8  // &
	precShift          = 9  // << >>
	precAdditive       = 10 // + -
	precMultiplicative = 11 // * / %
)

var binaryPrec = map[string]int{
	"||": precLogicalOr,
	"&&": precLogicalAnd,
	"==": precEquality, "!=": precEquality,
	"<": precComparison, "<=": precComparison, ">": precComparison, ">=": precComparison,
	"|":  precBitwiseOr,
	"^":  precBitwiseXor,
	"&":  precBitwiseAnd,
	"<<": precShift, ">>": precShift,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

type argTokKind uint8

const (
	argEOF argTokKind = iota
	argInt
	argString
	argIdent
	argPunct
)

type argTok struct {
	kind       argTokKind
	text       string
	start, end int
}

// argParser reads one attribute argument written as a C constant
// expression. Spans are offsets from base inside file.
type argParser struct {
	b    *ast.Builder
	src  string
	file source.FileID
	base uint32
	pos  int
	tok  argTok
}

// ParseArg builds the expression tree for src into b. base is the byte
// offset of src inside file.
func ParseArg(b *ast.Builder, file source.FileID, base uint32, src string) (ast.ExprID, error) {
	p := &argParser{b: b, src: src, file: file, base: base}
	if err := p.next(); err != nil {
		return ast.NoExprID, err
	}
	if p.tok.kind == argEOF {
		return ast.NoExprID, fmt.Errorf("empty argument")
	}
	id, err := p.parseBinary(0)
	if err != nil {
		return ast.NoExprID, err
	}
	if p.tok.kind != argEOF {
		return ast.NoExprID, fmt.Errorf("unexpected %q at column %d", p.tok.text, p.tok.start+1)
	}
	return id, nil
}

func (p *argParser) span(start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("argument offset overflow: %w", err))
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("argument offset overflow: %w", err))
	}
	return source.Span{File: p.file, Start: p.base + s, End: p.base + e}
}

func (p *argParser) parseBinary(minPrec int) (ast.ExprID, error) {
	left, err := p.parseUnary()
	if err != nil {
		return ast.NoExprID, err
	}
	for {
		if p.tok.kind != argPunct {
			return left, nil
		}
		prec, ok := binaryPrec[p.tok.text]
		if !ok || prec < minPrec {
			return left, nil
		}
		op, _ := ast.ParseBinaryOp(p.tok.text)
		if err := p.next(); err != nil {
			return ast.NoExprID, err
		}
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return ast.NoExprID, err
		}
		sp := p.b.Exprs.Span(left).Cover(p.b.Exprs.Span(right))
		left = p.b.Exprs.NewBinary(sp, op, left, right)
	}
}

func (p *argParser) parseUnary() (ast.ExprID, error) {
	if p.tok.kind == argPunct {
		if op, ok := ast.ParseUnaryOp(p.tok.text); ok {
			start := p.tok.start
			if err := p.next(); err != nil {
				return ast.NoExprID, err
			}
			operand, err := p.parseUnary()
			if err != nil {
				return ast.NoExprID, err
			}
			sp := p.span(start, start+1).Cover(p.b.Exprs.Span(operand))
			return p.b.Exprs.NewUnary(sp, op, operand), nil
		}
	}
	return p.parsePrimary()
}

func (p *argParser) parsePrimary() (ast.ExprID, error) {
	tok := p.tok
	switch tok.kind {
	case argInt:
		if err := p.next(); err != nil {
			return ast.NoExprID, err
		}
		return p.b.Int(p.span(tok.start, tok.end), tok.text), nil
	case argString:
		// Adjacent literals concatenate.
		raw, end := tok.text, tok.end
		if err := p.next(); err != nil {
			return ast.NoExprID, err
		}
		for p.tok.kind == argString {
			raw = raw[:len(raw)-1] + p.tok.text[1:]
			end = p.tok.end
			if err := p.next(); err != nil {
				return ast.NoExprID, err
			}
		}
		return p.b.String(p.span(tok.start, end), raw), nil
	case argIdent:
		switch tok.text {
		case "true", "false":
			if err := p.next(); err != nil {
				return ast.NoExprID, err
			}
			return p.b.Bool(p.span(tok.start, tok.end), tok.text == "true"), nil
		case "sizeof":
			return p.parseSizeof()
		}
		if err := p.next(); err != nil {
			return ast.NoExprID, err
		}
		return p.b.Ident(p.span(tok.start, tok.end), tok.text), nil
	case argPunct:
		if tok.text == "(" {
			if err := p.next(); err != nil {
				return ast.NoExprID, err
			}
			inner, err := p.parseBinary(0)
			if err != nil {
				return ast.NoExprID, err
			}
			if p.tok.kind != argPunct || p.tok.text != ")" {
				return ast.NoExprID, fmt.Errorf("missing ) for ( at column %d", tok.start+1)
			}
			end := p.tok.end
			if err := p.next(); err != nil {
				return ast.NoExprID, err
			}
			return p.b.Exprs.NewGroup(p.span(tok.start, end), inner), nil
		}
	case argEOF:
		return ast.NoExprID, fmt.Errorf("expression ends early")
	}
	return ast.NoExprID, fmt.Errorf("unexpected %q at column %d", tok.text, tok.start+1)
}

// parseSizeof reads sizeof(type-name). The type text is taken verbatim up
// to the balancing parenthesis.
func (p *argParser) parseSizeof() (ast.ExprID, error) {
	start := p.tok.start
	i := skipSpace(p.src, p.tok.end)
	if i >= len(p.src) || p.src[i] != '(' {
		return ast.NoExprID, fmt.Errorf("sizeof needs a parenthesized type at column %d", start+1)
	}
	depth, j := 0, i
	for ; j < len(p.src); j++ {
		switch p.src[j] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			break
		}
	}
	if j >= len(p.src) {
		return ast.NoExprID, fmt.Errorf("missing ) for sizeof at column %d", start+1)
	}
	typeName := strings.TrimSpace(p.src[i+1 : j])
	if typeName == "" {
		return ast.NoExprID, fmt.Errorf("sizeof without a type at column %d", start+1)
	}
	p.pos = j + 1
	if err := p.next(); err != nil {
		return ast.NoExprID, err
	}
	return p.b.Sizeof(p.span(start, j+1), typeName), nil
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

var twoCharPuncts = []string{"<<", ">>", "<=", ">=", "==", "!=", "&&", "||"}

func (p *argParser) next() error {
	i := skipSpace(p.src, p.pos)
	if i >= len(p.src) {
		p.tok = argTok{kind: argEOF, start: i, end: i}
		p.pos = i
		return nil
	}
	start, c := i, p.src[i]
	switch {
	case c >= '0' && c <= '9':
		for i < len(p.src) && (isIdentPart(p.src[i]) || p.src[i] == '\'') {
			i++
		}
		p.tok = argTok{kind: argInt, text: p.src[start:i], start: start, end: i}
	case c == '"':
		i++
		for i < len(p.src) && p.src[i] != '"' {
			if p.src[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(p.src) {
			return fmt.Errorf("unterminated string at column %d", start+1)
		}
		i++
		p.tok = argTok{kind: argString, text: p.src[start:i], start: start, end: i}
	case isIdentStart(c):
		for i < len(p.src) {
			if isIdentPart(p.src[i]) {
				i++
				continue
			}
			if strings.HasPrefix(p.src[i:], "::") && i+2 < len(p.src) && isIdentStart(p.src[i+2]) {
				i += 2
				continue
			}
			break
		}
		p.tok = argTok{kind: argIdent, text: p.src[start:i], start: start, end: i}
	default:
		text := p.src[i : i+1]
		for _, two := range twoCharPuncts {
			if strings.HasPrefix(p.src[i:], two) {
				text = two
				break
			}
		}
		if !strings.Contains("()+-*/%&|^<>!~=", text[:1]) || text == "=" {
			return fmt.Errorf("unexpected character %q at column %d", text, start+1)
		}
		i += len(text)
		p.tok = argTok{kind: argPunct, text: text, start: start, end: i}
	}
	p.pos = i
	return nil
}
