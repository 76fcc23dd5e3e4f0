package ast

import (
	"declattr/internal/source"
)

// Spelling is the syntactic form an attribute was written in.
type Spelling uint8

const (
	// SpellingKeyword covers keyword forms such as alignas or __declspec-free keywords.
	SpellingKeyword Spelling = iota
	// SpellingBracket is [[scope::name(args)]].
	SpellingBracket
	// SpellingLegacy is __attribute__((name(args))).
	SpellingLegacy
	// SpellingPlatform is __declspec(name) and similar vendor forms.
	SpellingPlatform
)

func (s Spelling) String() string {
	switch s {
	case SpellingKeyword:
		return "keyword"
	case SpellingBracket:
		return "bracket"
	case SpellingLegacy:
		return "legacy"
	case SpellingPlatform:
		return "platform"
	}
	return "unknown"
}

// ParseSpelling accepts the names printed by Spelling.String.
func ParseSpelling(s string) (Spelling, bool) {
	switch s {
	case "keyword":
		return SpellingKeyword, true
	case "bracket", "":
		return SpellingBracket, true
	case "legacy", "gnu":
		return SpellingLegacy, true
	case "platform", "declspec":
		return SpellingPlatform, true
	}
	return SpellingBracket, false
}

// SpellingMask is a set of spellings.
type SpellingMask uint8

const (
	SpellKeyword  SpellingMask = 1 << SpellingKeyword
	SpellBracket  SpellingMask = 1 << SpellingBracket
	SpellLegacy   SpellingMask = 1 << SpellingLegacy
	SpellPlatform SpellingMask = 1 << SpellingPlatform

	SpellGNU SpellingMask = SpellBracket | SpellLegacy
	SpellAny SpellingMask = SpellKeyword | SpellBracket | SpellLegacy | SpellPlatform
)

func (m SpellingMask) Has(s Spelling) bool {
	return m&(1<<s) != 0
}

// ParsedAttr is one syntactic attribute occurrence as delivered by the parser.
// It is consumed once by the engine and never mutated.
type ParsedAttr struct {
	Name     source.StringID
	Scope    source.StringID // "intel", "gnu", ... or NoStringID
	Spelling Spelling
	Args     []ExprID
	Span     source.Span
	// FromInstantiation marks attributes copied out of a template pattern.
	FromInstantiation bool
	// Implicit marks attributes the front end adds on its own behalf.
	Implicit bool
}

// Builder owns the arenas a translation unit's attributes are built into.
type Builder struct {
	Exprs           *Exprs
	StringsInterner *source.Interner
}

// NewBuilder creates a builder; a nil interner gets a fresh one.
func NewBuilder(strs *source.Interner) *Builder {
	if strs == nil {
		strs = source.NewInterner()
	}
	return &Builder{
		Exprs:           NewExprs(0),
		StringsInterner: strs,
	}
}

// Int allocates an integer literal with its raw spelling.
func (b *Builder) Int(span source.Span, raw string) ExprID {
	return b.Exprs.NewLiteral(span, ExprLitInt, b.StringsInterner.Intern(raw))
}

// String allocates a string literal; raw includes the quotes.
func (b *Builder) String(span source.Span, raw string) ExprID {
	return b.Exprs.NewLiteral(span, ExprLitString, b.StringsInterner.Intern(raw))
}

func (b *Builder) Bool(span source.Span, v bool) ExprID {
	kind := ExprLitFalse
	if v {
		kind = ExprLitTrue
	}
	return b.Exprs.NewLiteral(span, kind, source.NoStringID)
}

func (b *Builder) Ident(span source.Span, name string) ExprID {
	return b.Exprs.NewIdent(span, b.StringsInterner.Intern(name))
}

func (b *Builder) Sizeof(span source.Span, typeName string) ExprID {
	return b.Exprs.NewSizeof(span, b.StringsInterner.Intern(typeName))
}

// Attr assembles a ParsedAttr. name may carry a scope prefix ("intel::num_banks").
func (b *Builder) Attr(span source.Span, spelling Spelling, name string, args ...ExprID) ParsedAttr {
	scope, base := SplitScope(name)
	pa := ParsedAttr{
		Name:     b.StringsInterner.Intern(base),
		Spelling: spelling,
		Args:     args,
		Span:     span,
	}
	if scope != "" {
		pa.Scope = b.StringsInterner.Intern(scope)
	}
	return pa
}

// SplitScope splits "scope::name" into its parts.
func SplitScope(name string) (scope, base string) {
	for i := 0; i+1 < len(name); i++ {
		if name[i] == ':' && name[i+1] == ':' {
			return name[:i], name[i+2:]
		}
	}
	return "", name
}

// FullName renders the attribute name with its scope.
func (b *Builder) FullName(pa *ParsedAttr) string {
	name := b.StringsInterner.MustLookup(pa.Name)
	if pa.Scope == source.NoStringID {
		return name
	}
	return b.StringsInterner.MustLookup(pa.Scope) + "::" + name
}
