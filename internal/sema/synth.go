package sema

import (
	"declattr/internal/attrs"
	"declattr/internal/decl"
	"declattr/internal/diag"
)

// synthesize adds the implicit attributes a just-attached attribute
// requires. Implicit entries go through the merge engine, so an explicit
// attribute of the same kind always wins.
func (e *Engine) synthesize(id decl.ID, a *attrs.Attr, r diag.Reporter) {
	implied := func(k attrs.Kind, p attrs.Payload) {
		e.Decls.Merge(id, attrs.Attr{
			Kind: k, Payload: p, Implicit: true,
			Span: a.Span, Spelling: a.Spelling, ImpliedBy: a.Kind,
		}, r)
	}
	info := a.Info()
	if info.HasFlag(attrs.FlagMemoryFamily) {
		implied(attrs.KindFPGAMemory, attrs.Str{V: "DEFAULT"})
	}
	switch a.Kind {
	case attrs.KindBankBits:
		if a.IsPending() {
			implied(attrs.KindNumBanks, attrs.Pending{Derived: true})
		} else if bankBits, ok := a.IntList(); ok {
			implied(attrs.KindNumBanks, attrs.Int{V: int64(1) << len(bankBits)})
		}
	case attrs.KindDLLExport:
		implied(attrs.KindUsed, attrs.Flag{})
	}
}

// resynthesize re-runs synthesis for every explicit attribute on id, after
// instantiation replaced pending entries.
func (e *Engine) resynthesize(id decl.ID, r diag.Reporter) {
	for _, a := range e.Decls.Attrs(id) {
		if !a.Implicit {
			e.synthesize(id, &a, r)
		}
	}
}
