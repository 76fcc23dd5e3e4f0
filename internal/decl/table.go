package decl

import (
	"fmt"
	"iter"

	"fortio.org/safecast"

	"declattr/internal/attrs"
	"declattr/internal/source"
)

// Table is the arena of declarations of one translation unit.
type Table struct {
	decls  []Decl
	byName map[source.StringID][]ID
	specs  map[specKey]ID
	seq    uint32
}

type specKey struct {
	pattern ID
	subst   string
}

// NewTable creates an empty table; ID 0 is reserved.
func NewTable() *Table {
	return &Table{
		decls:  make([]Decl, 1, 64),
		byName: make(map[source.StringID][]ID),
		specs:  make(map[specKey]ID),
	}
}

func (t *Table) nextID() ID {
	n, err := safecast.Conv[uint32](len(t.decls))
	if err != nil {
		panic(fmt.Errorf("decl table overflow: %w", err))
	}
	return ID(n)
}

// Declare adds the first declaration of an entity. It becomes canonical and
// owns an empty attribute set.
func (t *Table) Declare(d Decl) ID {
	id := t.nextID()
	d.ID = id
	d.Canonical = id
	d.Prev = NoID
	d.set = &Set{}
	t.decls = append(t.decls, d)
	t.index(d.Name, id)
	return id
}

// Redeclare adds a redeclaration of the entity prev belongs to. The new
// declaration shares the canonical declaration's attribute set.
func (t *Table) Redeclare(prev ID, d Decl) ID {
	p := t.Get(prev)
	if p == nil {
		return t.Declare(d)
	}
	id := t.nextID()
	d.ID = id
	d.Canonical = p.Canonical
	d.Prev = prev
	d.set = nil
	if d.Name == source.NoStringID {
		d.Name = p.Name
	}
	t.decls = append(t.decls, d)
	t.index(d.Name, id)
	return id
}

func (t *Table) index(name source.StringID, id ID) {
	if name != source.NoStringID {
		t.byName[name] = append(t.byName[name], id)
	}
}

// Get returns the declaration; the pointer is valid until the next Declare.
func (t *Table) Get(id ID) *Decl {
	if id == NoID || int(id) >= len(t.decls) {
		return nil
	}
	return &t.decls[id]
}

// Len counts declarations, excluding the reserved slot.
func (t *Table) Len() int { return len(t.decls) - 1 }

// IDs yields every declaration ID in creation order.
func (t *Table) IDs() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for i := 1; i < len(t.decls); i++ {
			if !yield(t.decls[i].ID) {
				return
			}
		}
	}
}

// CanonicalOf returns the canonical declaration of id's entity.
func (t *Table) CanonicalOf(id ID) ID {
	if d := t.Get(id); d != nil {
		return d.Canonical
	}
	return NoID
}

// Redecls returns every declaration of id's entity in creation order.
func (t *Table) Redecls(id ID) []ID {
	canon := t.CanonicalOf(id)
	if canon == NoID {
		return nil
	}
	var out []ID
	for i := int(canon); i < len(t.decls); i++ {
		if t.decls[i].Canonical == canon {
			out = append(out, t.decls[i].ID)
		}
	}
	return out
}

// Lookup returns the most recent declaration named name.
func (t *Table) Lookup(name source.StringID) (ID, bool) {
	ids := t.byName[name]
	if len(ids) == 0 {
		return NoID, false
	}
	return ids[len(ids)-1], true
}

// LookupCategory returns the most recent declaration named name with category c.
func (t *Table) LookupCategory(name source.StringID, c Category) (ID, bool) {
	ids := t.byName[name]
	for i := len(ids) - 1; i >= 0; i-- {
		if t.decls[ids[i]].Category == c {
			return ids[i], true
		}
	}
	return NoID, false
}

// MarkInvalid flags the declaration and its canonical declaration.
func (t *Table) MarkInvalid(id ID) {
	d := t.Get(id)
	if d == nil {
		return
	}
	d.Flags |= FlagInvalid
	t.decls[d.Canonical].Flags |= FlagInvalid
}

// IsInvalid reports whether the entity was marked invalid.
func (t *Table) IsInvalid(id ID) bool {
	d := t.Get(id)
	return d != nil && (d.Has(FlagInvalid) || t.decls[d.Canonical].Has(FlagInvalid))
}

// NextSeq hands out source-order sequence numbers for attributes.
func (t *Table) NextSeq() uint32 {
	t.seq++
	return t.seq
}

// TemplateParam finds the template parameter named name visible from id:
// on the entity, on the pattern it was instantiated from, or on an
// enclosing declaration.
func (t *Table) TemplateParam(id ID, name source.StringID) (TemplateParam, bool) {
	for cur := id; cur != NoID; {
		d := t.Get(cur)
		if d == nil {
			break
		}
		canon := t.Get(d.Canonical)
		for _, owner := range [...]*Decl{d, canon, t.Get(canon.Pattern)} {
			if owner == nil {
				continue
			}
			for _, tp := range owner.TemplateParams {
				if tp.Name == name {
					return tp, true
				}
			}
		}
		cur = d.Parent
	}
	return TemplateParam{}, false
}

// Specialization returns the declaration previously created for pattern
// with the given substitution key.
func (t *Table) Specialization(pattern ID, key string) (ID, bool) {
	id, ok := t.specs[specKey{pattern: t.CanonicalOf(pattern), subst: key}]
	return id, ok
}

// DeclareSpecialization creates the canonical declaration of an
// instantiation of pattern and memoizes it under key.
func (t *Table) DeclareSpecialization(pattern ID, key string) ID {
	canon := t.CanonicalOf(pattern)
	d := *t.Get(canon)
	d.TemplateParams = nil
	d.Flags = (d.Flags &^ FlagInvalid) | FlagSpecialization
	d.Pattern = canon
	d.SubstKey = key
	id := t.Declare(d)
	t.specs[specKey{pattern: canon, subst: key}] = id
	return id
}

// Set returns the attribute set owned by id's canonical declaration.
func (t *Table) Set(id ID) *Set {
	d := t.Get(t.CanonicalOf(id))
	if d == nil {
		return &Set{}
	}
	return d.set
}

// HasAttr reports whether the entity carries an attribute of kind k.
func (t *Table) HasAttr(id ID, k attrs.Kind) bool {
	return t.Set(id).Has(k)
}

// Attr returns the authoritative attribute of kind k on the entity.
func (t *Table) Attr(id ID, k attrs.Kind) (*attrs.Attr, bool) {
	return t.Set(id).Find(k)
}

// AttrsOfKind yields every attribute of kind k; used for repeatable kinds.
func (t *Table) AttrsOfKind(id ID, k attrs.Kind) iter.Seq[*attrs.Attr] {
	return t.Set(id).OfKind(k)
}

// Attrs returns a copy of all attributes on the entity in source order.
func (t *Table) Attrs(id ID) []attrs.Attr {
	return t.Set(id).Items()
}
