package attrs

import (
	"declattr/internal/ast"
	"declattr/internal/source"
)

// Attr is a validated attribute attached to a canonical declaration.
// Values are immutable once attached; the merge engine replaces whole
// entries rather than editing them.
type Attr struct {
	Kind     Kind
	Payload  Payload
	Implicit bool
	Spelling ast.Spelling
	Span     source.Span
	// Seq is the source-order sequence number assigned on first arrival.
	// Re-validation after instantiation keeps it.
	Seq uint32
	// ImpliedBy is the kind whose presence synthesized an implicit attribute.
	ImpliedBy Kind
}

// IsPending reports whether the value still depends on template arguments.
func (a *Attr) IsPending() bool {
	_, ok := a.Payload.(Pending)
	return ok
}

// IsResolved is the opposite of IsPending.
func (a *Attr) IsResolved() bool { return !a.IsPending() }

// Info returns the catalog entry of the attribute's kind.
func (a *Attr) Info() *Info { return InfoOf(a.Kind) }

// Name is the canonical spelling of the kind.
func (a *Attr) Name() string { return a.Kind.String() }

// SameValue reports whether a and b are the same kind with equal resolved values.
func (a *Attr) SameValue(b *Attr) bool {
	if a.Kind != b.Kind || a.Payload == nil || b.Payload == nil {
		return false
	}
	return a.Payload.Equal(b.Payload)
}

// Int returns the integer payload, if any.
func (a *Attr) Int() (int64, bool) {
	p, ok := a.Payload.(Int)
	return p.V, ok
}

// Dims returns the shape payload, if any.
func (a *Attr) Dims() (Dims, bool) {
	p, ok := a.Payload.(Dims)
	return p, ok
}

// IntList returns the list payload, if any.
func (a *Attr) IntList() ([]int64, bool) {
	p, ok := a.Payload.(IntList)
	return p.V, ok
}
