package decl

import (
	"iter"

	"declattr/internal/attrs"
)

// Set is the attribute storage of one canonical declaration, ordered by
// arrival sequence. It is read-only outside this package; Table.Merge,
// Table.ResolvePending and Table.Displace are the only mutators.
type Set struct {
	items []attrs.Attr
}

func (s *Set) Len() int { return len(s.items) }

// All yields every entry in source order. Pointers are valid until the next
// mutation of the set.
func (s *Set) All() iter.Seq[*attrs.Attr] {
	return func(yield func(*attrs.Attr) bool) {
		for i := range s.items {
			if !yield(&s.items[i]) {
				return
			}
		}
	}
}

// OfKind yields entries of kind k in source order.
func (s *Set) OfKind(k attrs.Kind) iter.Seq[*attrs.Attr] {
	return func(yield func(*attrs.Attr) bool) {
		for i := range s.items {
			if s.items[i].Kind == k && !yield(&s.items[i]) {
				return
			}
		}
	}
}

// Items returns a copy of the entries.
func (s *Set) Items() []attrs.Attr {
	out := make([]attrs.Attr, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) Has(k attrs.Kind) bool {
	for i := range s.items {
		if s.items[i].Kind == k {
			return true
		}
	}
	return false
}

// Find returns the authoritative entry of kind k: the resolved one if any,
// else the earliest pending one.
func (s *Set) Find(k attrs.Kind) (*attrs.Attr, bool) {
	var pending *attrs.Attr
	for i := range s.items {
		a := &s.items[i]
		if a.Kind != k {
			continue
		}
		if a.IsResolved() {
			return a, true
		}
		if pending == nil {
			pending = a
		}
	}
	return pending, pending != nil
}

// Resolved returns the resolved entry of kind k.
func (s *Set) Resolved(k attrs.Kind) (*attrs.Attr, bool) {
	for i := range s.items {
		if s.items[i].Kind == k && s.items[i].IsResolved() {
			return &s.items[i], true
		}
	}
	return nil, false
}

// HasPending reports whether any entry still waits for instantiation.
func (s *Set) HasPending() bool {
	for i := range s.items {
		if s.items[i].IsPending() {
			return true
		}
	}
	return false
}

// BySeq returns the entry with sequence number seq.
func (s *Set) BySeq(seq uint32) (*attrs.Attr, bool) {
	if i, ok := s.indexOfSeq(seq); ok {
		return &s.items[i], true
	}
	return nil, false
}

func (s *Set) indexOfSeq(seq uint32) (int, bool) {
	for i := range s.items {
		if s.items[i].Seq == seq {
			return i, true
		}
	}
	return -1, false
}

func (s *Set) hasPendingOf(k attrs.Kind) bool {
	for i := range s.items {
		if s.items[i].Kind == k && s.items[i].IsPending() {
			return true
		}
	}
	return false
}

// resolvedExplicit returns the index of the resolved explicit entry of k.
func (s *Set) resolvedExplicit(k attrs.Kind) (int, bool) {
	for i := range s.items {
		a := &s.items[i]
		if a.Kind == k && !a.Implicit && a.IsResolved() {
			return i, true
		}
	}
	return -1, false
}

// put inserts a keeping the set ordered by Seq.
func (s *Set) put(a attrs.Attr) {
	i := len(s.items)
	for i > 0 && s.items[i-1].Seq > a.Seq {
		i--
	}
	s.items = append(s.items, attrs.Attr{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = a
}

func (s *Set) remove(i int) attrs.Attr {
	a := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return a
}

// removeImplicit drops implicit entries of k and reports whether any existed.
func (s *Set) removeImplicit(k attrs.Kind) bool {
	removed := false
	for i := 0; i < len(s.items); {
		if s.items[i].Kind == k && s.items[i].Implicit {
			s.remove(i)
			removed = true
			continue
		}
		i++
	}
	return removed
}
