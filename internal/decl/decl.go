package decl

import (
	"fmt"
	"slices"
	"strings"

	"declattr/internal/attrs"
	"declattr/internal/source"
	"declattr/internal/types"
)

// ID identifies a declaration inside a Table; 0 means none.
type ID uint32

const NoID ID = 0

func (id ID) IsValid() bool { return id != NoID }

// Category is the kind of program entity a declaration introduces.
type Category uint8

const (
	CatFunction Category = iota
	CatVariable
	CatField
	CatParam
	CatType
	CatEnumConst
)

func (c Category) String() string {
	switch c {
	case CatFunction:
		return "function"
	case CatVariable:
		return "variable"
	case CatField:
		return "field"
	case CatParam:
		return "param"
	case CatType:
		return "type"
	case CatEnumConst:
		return "enumerator"
	}
	return "unknown"
}

// ParseCategory accepts the names printed by Category.String.
func ParseCategory(s string) (Category, bool) {
	for c := CatFunction; c <= CatEnumConst; c++ {
		if c.String() == s {
			return c, true
		}
	}
	if s == "parameter" {
		return CatParam, true
	}
	return CatFunction, false
}

// Storage is the storage duration of a variable.
type Storage uint8

const (
	StorageNone Storage = iota
	StorageAuto
	StorageStatic
	StorageExtern
)

func (s Storage) String() string {
	switch s {
	case StorageAuto:
		return "auto"
	case StorageStatic:
		return "static"
	case StorageExtern:
		return "extern"
	}
	return "none"
}

// ParseStorage accepts the names printed by Storage.String.
func ParseStorage(s string) (Storage, bool) {
	for st := StorageNone; st <= StorageExtern; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return StorageNone, false
}

// Flags carries declaration properties validators look at.
type Flags uint16

const (
	FlagDefinition Flags = 1 << iota
	FlagVariadic
	FlagMethod
	FlagKernel
	FlagThreadLocal
	// FlagConstexpr marks variables whose Value is a usable constant.
	FlagConstexpr
	// FlagInvalid is set when a rejected attribute leaves the declaration
	// unreliable for later phases.
	FlagInvalid
	FlagSpecialization
)

var flagNames = map[string]Flags{
	"definition":   FlagDefinition,
	"variadic":     FlagVariadic,
	"method":       FlagMethod,
	"kernel":       FlagKernel,
	"thread_local": FlagThreadLocal,
	"constexpr":    FlagConstexpr,
}

// ParseFlag maps a flag name such as "kernel" to its bit. Flags the engine
// sets itself are not accepted.
func ParseFlag(s string) (Flags, bool) {
	f, ok := flagNames[s]
	return f, ok
}

// TemplateParamKind distinguishes value and type template parameters.
type TemplateParamKind uint8

const (
	TParamValue TemplateParamKind = iota
	TParamType
)

// TemplateParam is one parameter of a template pattern.
type TemplateParam struct {
	Name source.StringID
	Kind TemplateParamKind
}

// Decl is a program entity. Only the canonical declaration of an entity
// owns attribute storage; redeclarations point at it through Canonical.
type Decl struct {
	ID        ID
	Name      source.StringID
	Category  Category
	Storage   Storage
	Flags     Flags
	Type      types.TypeID // object type, or return type for functions
	Params    []ID
	Parent    ID // enclosing function or record
	Canonical ID
	Prev      ID // previous redeclaration
	Span      source.Span
	Value     int64 // enumerators and constexpr variables

	TemplateParams []TemplateParam
	Pattern        ID     // template pattern this specialization came from
	SubstKey       string // substitution that produced the specialization

	set *Set
}

func (d *Decl) Has(f Flags) bool { return d.Flags&f != 0 }

func (d *Decl) IsCanonical() bool { return d.ID == d.Canonical }

func (d *Decl) IsTemplate() bool { return len(d.TemplateParams) > 0 }

// Subject maps the declaration to the attribute subject category it belongs to.
func (d *Decl) Subject() attrs.Subject {
	switch d.Category {
	case CatFunction:
		return attrs.SubjFunction
	case CatVariable:
		if d.Storage == StorageAuto {
			return attrs.SubjLocalVar
		}
		return attrs.SubjGlobalVar
	case CatField:
		return attrs.SubjField
	case CatParam:
		return attrs.SubjParam
	case CatType:
		return attrs.SubjType
	}
	return attrs.SubjNone
}

// Substitution binds template parameters to concrete arguments.
type Substitution struct {
	Values map[source.StringID]int64
	Types  map[source.StringID]types.TypeID
}

func (s Substitution) IsEmpty() bool { return len(s.Values) == 0 && len(s.Types) == 0 }

// Key is a canonical string for memoizing instantiations.
func (s Substitution) Key() string {
	parts := make([]string, 0, len(s.Values)+len(s.Types))
	for name, v := range s.Values {
		parts = append(parts, fmt.Sprintf("v%d=%d", name, v))
	}
	for name, ty := range s.Types {
		parts = append(parts, fmt.Sprintf("t%d=%d", name, ty))
	}
	slices.Sort(parts)
	return strings.Join(parts, ";")
}

// Format renders the substitution as "N = 8, T = int" in name order.
func (s Substitution) Format(strs *source.Interner, tys *types.Interner) string {
	parts := make([]string, 0, len(s.Values)+len(s.Types))
	for name, v := range s.Values {
		parts = append(parts, fmt.Sprintf("%s = %d", strs.MustLookup(name), v))
	}
	for name, ty := range s.Types {
		parts = append(parts, fmt.Sprintf("%s = %s", strs.MustLookup(name), tys.String(ty)))
	}
	slices.Sort(parts)
	return strings.Join(parts, ", ")
}
