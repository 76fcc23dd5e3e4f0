package driver

import (
	"fmt"

	"declattr/internal/decl"
	"declattr/internal/source"
)

// AttrSnapshot is one attribute in a declaration's final set.
type AttrSnapshot struct {
	Kind     string `json:"kind" msgpack:"kind"`
	Value    string `json:"value,omitempty" msgpack:"value,omitempty"`
	Spelling string `json:"spelling" msgpack:"spelling"`
	Implicit bool   `json:"implicit,omitempty" msgpack:"implicit,omitempty"`
	Pending  bool   `json:"pending,omitempty" msgpack:"pending,omitempty"`
}

// DeclSnapshot is the final attribute set of one canonical declaration.
type DeclSnapshot struct {
	ID       uint32         `json:"id" msgpack:"id"`
	Name     string         `json:"name" msgpack:"name"`
	Category string         `json:"category" msgpack:"category"`
	Instance string         `json:"instance,omitempty" msgpack:"instance,omitempty"`
	Invalid  bool           `json:"invalid,omitempty" msgpack:"invalid,omitempty"`
	Attrs    []AttrSnapshot `json:"attrs" msgpack:"attrs"`
}

// Attr returns the first entry of kind, if any.
func (d *DeclSnapshot) Attr(kind string) (AttrSnapshot, bool) {
	for _, a := range d.Attrs {
		if a.Kind == kind {
			return a, true
		}
	}
	return AttrSnapshot{}, false
}

// snapshot lists canonical declarations that carry attributes or were
// marked invalid. instances names the substitution of specializations.
func snapshot(tab *decl.Table, strs *source.Interner, instances map[decl.ID]string) []DeclSnapshot {
	var out []DeclSnapshot
	for id := range tab.IDs() {
		d := tab.Get(id)
		if !d.IsCanonical() {
			continue
		}
		items := tab.Attrs(id)
		invalid := tab.IsInvalid(id)
		if len(items) == 0 && !invalid {
			continue
		}
		ds := DeclSnapshot{
			ID:       uint32(id),
			Name:     displayName(tab, strs, d),
			Category: d.Category.String(),
			Instance: instances[id],
			Invalid:  invalid,
			Attrs:    make([]AttrSnapshot, 0, len(items)),
		}
		for i := range items {
			a := &items[i]
			ds.Attrs = append(ds.Attrs, AttrSnapshot{
				Kind:     a.Name(),
				Value:    a.Payload.String(),
				Spelling: a.Spelling.String(),
				Implicit: a.Implicit,
				Pending:  a.IsPending(),
			})
		}
		out = append(out, ds)
	}
	return out
}

// displayName renders unnamed parameters as "fn#2", 1-based.
func displayName(tab *decl.Table, strs *source.Interner, d *decl.Decl) string {
	if name, _ := strs.Lookup(d.Name); name != "" {
		return name
	}
	if d.Category == decl.CatParam && d.Parent.IsValid() {
		parent := tab.Get(d.Parent)
		for i, p := range parent.Params {
			if p == d.ID {
				return fmt.Sprintf("%s#%d", displayName(tab, strs, parent), i+1)
			}
		}
	}
	return fmt.Sprintf("decl%d", d.ID)
}
