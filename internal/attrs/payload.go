package attrs

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"declattr/internal/ast"
)

// Payload is the evaluated argument value of an attribute. The set of
// implementations is closed; switch on the concrete type.
type Payload interface {
	payload()
	// Equal compares values; Pending never equals anything.
	Equal(other Payload) bool
	String() string
}

// Keyed payloads distinguish entries of a repeatable kind.
type Keyed interface {
	EntryKey() string
}

// Flag is the payload of argument-less attributes.
type Flag struct{}

// Int is a single integer argument.
type Int struct{ V int64 }

// Dims is a 1-3 component shape in source order; the last written
// component is the fastest varying one.
type Dims struct {
	N int
	V [3]int64
}

// IntList is an ordered list of integers (indices, bank bits).
type IntList struct{ V []int64 }

// Str is a string literal argument.
type Str struct{ V string }

// Enum is an identifier-like argument from a closed vocabulary.
type Enum struct{ V string }

// Format describes format(archetype, fmt_index, first_arg).
type Format struct {
	Archetype string
	FmtIndex  int64
	FirstArg  int64
}

// FuncRef names a function declaration; Decl is its table ID.
type FuncRef struct {
	Name string
	Decl uint32
}

// Annotation is annotate("key", args...).
type Annotation struct {
	Key  string
	Args []string
}

// MergeSpec is merge("name", "depth"|"width").
type MergeSpec struct {
	Name      string
	Direction string
}

// Pending holds the unevaluated arguments of a value-dependent attribute.
// Derived pending payloads were synthesized from a pending sibling and carry
// no arguments of their own.
type Pending struct {
	Args    []ast.ExprID
	Derived bool
}

func (Flag) payload()       {}
func (Int) payload()        {}
func (Dims) payload()       {}
func (IntList) payload()    {}
func (Str) payload()        {}
func (Enum) payload()       {}
func (Format) payload()     {}
func (FuncRef) payload()    {}
func (Annotation) payload() {}
func (MergeSpec) payload()  {}
func (Pending) payload()    {}

func (Flag) Equal(o Payload) bool {
	_, ok := o.(Flag)
	return ok
}

func (p Int) Equal(o Payload) bool {
	q, ok := o.(Int)
	return ok && p.V == q.V
}

func (p Dims) Equal(o Payload) bool {
	q, ok := o.(Dims)
	return ok && p.N == q.N && p.V == q.V
}

func (p IntList) Equal(o Payload) bool {
	q, ok := o.(IntList)
	return ok && slices.Equal(p.V, q.V)
}

func (p Str) Equal(o Payload) bool {
	q, ok := o.(Str)
	return ok && p.V == q.V
}

func (p Enum) Equal(o Payload) bool {
	q, ok := o.(Enum)
	return ok && p.V == q.V
}

func (p Format) Equal(o Payload) bool {
	q, ok := o.(Format)
	return ok && p == q
}

func (p FuncRef) Equal(o Payload) bool {
	q, ok := o.(FuncRef)
	return ok && p.Decl == q.Decl && p.Name == q.Name
}

func (p Annotation) Equal(o Payload) bool {
	q, ok := o.(Annotation)
	return ok && p.Key == q.Key && slices.Equal(p.Args, q.Args)
}

func (p MergeSpec) Equal(o Payload) bool {
	q, ok := o.(MergeSpec)
	return ok && p == q
}

func (Pending) Equal(Payload) bool { return false }

func (Flag) String() string  { return "" }
func (p Int) String() string { return strconv.FormatInt(p.V, 10) }

func (p Dims) String() string {
	return joinInts(p.V[:p.N])
}

func (p IntList) String() string { return joinInts(p.V) }
func (p Str) String() string     { return strconv.Quote(p.V) }
func (p Enum) String() string    { return p.V }

func (p Format) String() string {
	return fmt.Sprintf("%s, %d, %d", p.Archetype, p.FmtIndex, p.FirstArg)
}

func (p FuncRef) String() string { return p.Name }

func (p Annotation) String() string {
	parts := append([]string{strconv.Quote(p.Key)}, p.Args...)
	return strings.Join(parts, ", ")
}

func (p MergeSpec) String() string {
	return strconv.Quote(p.Name) + ", " + strconv.Quote(p.Direction)
}

func (p Pending) String() string {
	if p.Derived {
		return "<derived>"
	}
	return "<dependent>"
}

func (p Annotation) EntryKey() string { return p.Key }

// Component returns the i-th component counting from the fastest varying
// one; missing components are 1.
func (p Dims) Component(i int) int64 {
	if i < 0 || i >= p.N {
		return 1
	}
	return p.V[p.N-1-i]
}

// Fastest is the last written component.
func (p Dims) Fastest() int64 { return p.Component(0) }

// Product multiplies all components, saturating at math.MaxInt64.
// Components are positive once validated.
func (p Dims) Product() int64 {
	prod := int64(1)
	for i := 0; i < p.N; i++ {
		v := p.V[i]
		if v <= 0 {
			return 0
		}
		if prod > math.MaxInt64/v {
			return math.MaxInt64
		}
		prod *= v
	}
	return prod
}

// Uniform reports whether every component is 1.
func (p Dims) Uniform() bool {
	for i := 0; i < p.N; i++ {
		if p.V[i] != 1 {
			return false
		}
	}
	return true
}

// MakeDims builds a Dims from 1-3 values.
func MakeDims(vals ...int64) Dims {
	d := Dims{N: len(vals)}
	copy(d.V[:], vals)
	return d
}

func joinInts(vs []int64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ", ")
}

// KeyOf returns the repeatable-entry key of p, or "".
func KeyOf(p Payload) string {
	if k, ok := p.(Keyed); ok {
		return k.EntryKey()
	}
	return ""
}
