package decl

import (
	"declattr/internal/attrs"
	"declattr/internal/diag"
)

// Outcome is the merge engine's decision for one incoming attribute.
type Outcome uint8

const (
	// OutcomeAdded attached the attribute.
	OutcomeAdded Outcome = iota
	// OutcomeReplacedImplicit attached it in place of a synthesized default.
	OutcomeReplacedImplicit
	// OutcomeDuplicate dropped an identical redeclaration.
	OutcomeDuplicate
	// OutcomeConflict reported a different value; the earlier one survives.
	OutcomeConflict
	// OutcomeDeferred attached it next to a pending entry; comparison waits
	// for instantiation.
	OutcomeDeferred
	// OutcomeKeptExisting silently kept the existing entry.
	OutcomeKeptExisting
	// OutcomeReplacedByPriority silently replaced the existing entry.
	OutcomeReplacedByPriority
	// OutcomeDropped removed a pending entry whose resolution failed.
	OutcomeDropped
)

var outcomeNames = [...]string{
	OutcomeAdded:              "added",
	OutcomeReplacedImplicit:   "replaced-implicit",
	OutcomeDuplicate:          "duplicate",
	OutcomeConflict:           "conflict",
	OutcomeDeferred:           "deferred",
	OutcomeKeptExisting:       "kept-existing",
	OutcomeReplacedByPriority: "replaced-by-priority",
	OutcomeDropped:            "dropped",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// Attached reports whether the incoming attribute is now in the set.
func (o Outcome) Attached() bool {
	switch o {
	case OutcomeAdded, OutcomeReplacedImplicit, OutcomeDeferred, OutcomeReplacedByPriority:
		return true
	}
	return false
}

// Merge attaches a validated attribute to the canonical declaration of id.
//
// Non-repeatable kinds keep at most one explicit resolved entry. An explicit
// attribute displaces implicit ones of its kind. Equal values are dropped
// silently; different values follow the kind's MergePolicy. When either side
// is still pending the comparison is deferred to ResolvePending.
// Repeatable kinds append unless an identical key and value already exist.
func (t *Table) Merge(id ID, in attrs.Attr, r diag.Reporter) Outcome {
	set := t.Set(id)
	if in.Seq == 0 {
		in.Seq = t.NextSeq()
	}
	info := attrs.InfoOf(in.Kind)

	if in.Implicit {
		if set.Has(in.Kind) {
			return OutcomeKeptExisting
		}
		set.put(in)
		return OutcomeAdded
	}

	if info.Repeatable() {
		if in.IsResolved() && hasIdenticalEntry(set, &in) {
			return OutcomeDuplicate
		}
		set.put(in)
		return OutcomeAdded
	}

	replaced := set.removeImplicit(in.Kind)
	out := t.mergeExplicit(set, in, r)
	if replaced && out == OutcomeAdded {
		return OutcomeReplacedImplicit
	}
	return out
}

func hasIdenticalEntry(set *Set, in *attrs.Attr) bool {
	key := attrs.KeyOf(in.Payload)
	for e := range set.OfKind(in.Kind) {
		if e.IsResolved() && attrs.KeyOf(e.Payload) == key && e.SameValue(in) {
			return true
		}
	}
	return false
}

func (t *Table) mergeExplicit(set *Set, in attrs.Attr, r diag.Reporter) Outcome {
	if in.IsPending() {
		deferred := set.Has(in.Kind)
		set.put(in)
		if deferred {
			return OutcomeDeferred
		}
		return OutcomeAdded
	}
	if i, ok := set.resolvedExplicit(in.Kind); ok {
		return settle(set, i, in, r)
	}
	set.put(in)
	if set.hasPendingOf(in.Kind) {
		return OutcomeDeferred
	}
	return OutcomeAdded
}

// settle decides between the resolved explicit entry at index i and the
// resolved incoming attribute, which is not yet in the set. Order is decided
// by Seq, so a pending attribute resolved late still wins over a later one.
func settle(set *Set, i int, in attrs.Attr, r diag.Reporter) Outcome {
	existing := set.items[i]
	if existing.SameValue(&in) {
		if in.Seq < existing.Seq {
			set.remove(i)
			set.put(in)
		}
		return OutcomeDuplicate
	}

	earlier, later := existing, in
	if in.Seq < existing.Seq {
		earlier, later = in, existing
	}

	winner := earlier
	out := OutcomeKeptExisting
	switch attrs.InfoOf(in.Kind).Merge {
	case attrs.MergeKeepMax:
		ev, _ := earlier.Int()
		lv, _ := later.Int()
		if lv > ev {
			winner = later
		}
	case attrs.MergeKeepFirst:
	default:
		diag.ReportError(r, diag.MrgConflict, later.Span,
			later.Name(), later.Payload.String(), earlier.Payload.String()).
			WithNote(earlier.Span, diag.NotePrevious, earlier.Name()).
			Emit()
		out = OutcomeConflict
	}

	if winner.Seq == existing.Seq {
		return out
	}
	set.remove(i)
	set.put(winner)
	if out == OutcomeKeptExisting {
		out = OutcomeReplacedByPriority
	}
	return out
}

// ResolvePending replaces the pending entry seq on id's canonical
// declaration with its evaluated form, or removes it when resolved is nil.
// The entry keeps its sequence number, so deferred comparisons treat it as
// arriving where it was written. Resolving an entry that is no longer
// pending is a no-op.
func (t *Table) ResolvePending(id ID, seq uint32, resolved *attrs.Attr, r diag.Reporter) Outcome {
	set := t.Set(id)
	i, ok := set.indexOfSeq(seq)
	if !ok || set.items[i].IsResolved() {
		return OutcomeKeptExisting
	}
	pending := set.remove(i)
	if resolved == nil {
		return OutcomeDropped
	}
	in := *resolved
	in.Seq = pending.Seq
	in.Implicit = pending.Implicit
	in.ImpliedBy = pending.ImpliedBy

	info := attrs.InfoOf(in.Kind)
	switch {
	case in.Implicit:
		if _, ok := set.Resolved(in.Kind); ok {
			return OutcomeKeptExisting
		}
		set.put(in)
		return OutcomeAdded
	case info.Repeatable():
		if hasIdenticalEntry(set, &in) {
			return OutcomeDuplicate
		}
		set.put(in)
		return OutcomeAdded
	}
	set.removeImplicit(in.Kind)
	return t.mergeExplicit(set, in, r)
}

// Displace removes the entry seq from id's canonical declaration. Cross
// rules use it when the older attribute loses.
func (t *Table) Displace(id ID, seq uint32) bool {
	set := t.Set(id)
	i, ok := set.indexOfSeq(seq)
	if !ok {
		return false
	}
	set.remove(i)
	return true
}
