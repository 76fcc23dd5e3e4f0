package sema

import (
	"context"

	"declattr/internal/ast"
	"declattr/internal/attrs"
	"declattr/internal/decl"
	"declattr/internal/diag"
	"declattr/internal/source"
	"declattr/internal/trace"
)

type instKey struct {
	decl  decl.ID
	subst string
}

// noteReporter appends one note to every diagnostic it forwards.
type noteReporter struct {
	next diag.Reporter
	note diag.Note
}

func (n noteReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, args []string, notes []diag.Note) {
	if n.next == nil {
		return
	}
	all := make([]diag.Note, 0, len(notes)+1)
	all = append(append(all, notes...), n.note)
	n.next.Report(code, sev, primary, args, all)
}

// OnInstantiated resolves the pending attributes of id's canonical
// declaration with subst bound, re-running evaluation, validation and the
// cross rules exactly as for a literal argument. Attributes that fail are
// dropped. Derived implicit attributes are recomputed afterwards. A second
// call with the same substitution does nothing.
func (e *Engine) OnInstantiated(ctx context.Context, id decl.ID, subst decl.Substitution, r diag.Reporter) {
	canon := e.Decls.CanonicalOf(id)
	key := instKey{decl: canon, subst: subst.Key()}
	if e.instantiated[key] {
		return
	}
	e.instantiated[key] = true

	_, sp := trace.Start(ctx, trace.ScopeAttr, "instantiate")
	defer sp.End(key.subst)

	d := e.Decls.Get(canon)
	rep := noteReporter{next: r, note: diag.Note{
		Span: d.Span,
		Code: diag.NoteInstantiatedFrom,
		Args: []string{subst.Format(e.Strings, e.Types)},
	}}

	items := e.Decls.Attrs(canon)
	for _, a := range items {
		if p, ok := a.Payload.(attrs.Pending); ok && p.Derived {
			e.Decls.Displace(canon, a.Seq)
		}
	}
	for _, a := range items {
		if p, ok := a.Payload.(attrs.Pending); ok && !p.Derived {
			e.resolve(canon, a, p.Args, &subst, rep)
		}
	}
	e.resynthesize(canon, rep)
}

// resolve evaluates one pending entry. A still-dependent result (partial
// substitution) leaves the entry pending.
func (e *Engine) resolve(id decl.ID, a attrs.Attr, args []ast.ExprID, subst *decl.Substitution, r diag.Reporter) {
	info := a.Info()
	counter := &diag.CountingReporter{Next: r}
	ev := e.eval.Evaluate(counter, info.Name, a.Span, id, args, info.Shape, subst)
	switch ev.State {
	case EvalPending:
		return
	case EvalResolved:
		if payload, ok := e.validate(counter, id, info, a.Span, ev.Values); ok {
			resolved := a
			resolved.Payload = payload
			if resolved.Implicit || e.constrained(id, &resolved, counter) {
				e.Decls.ResolvePending(id, a.Seq, &resolved, counter)
				return
			}
		}
	}
	e.Decls.ResolvePending(id, a.Seq, nil, counter)
	if counter.Errors > 0 && info.HasFlag(attrs.FlagInvalidatesDecl) {
		e.Decls.MarkInvalid(id)
	}
}

// Instantiate returns the specialization of pattern for subst, creating it
// on first use: the pattern's written attributes are copied and then
// resolved with OnInstantiated.
func (e *Engine) Instantiate(ctx context.Context, pattern decl.ID, subst decl.Substitution, r diag.Reporter) decl.ID {
	key := subst.Key()
	if id, ok := e.Decls.Specialization(pattern, key); ok {
		return id
	}
	id := e.Decls.DeclareSpecialization(pattern, key)
	for _, a := range e.Decls.Attrs(pattern) {
		if !a.Implicit {
			e.Decls.Merge(id, a, r)
		}
	}
	e.OnInstantiated(ctx, id, subst, r)
	return id
}
