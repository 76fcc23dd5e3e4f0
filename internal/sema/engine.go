// Package sema is the attribute pipeline: target gate, argument evaluation,
// per-kind validation, cross-attribute rules, redeclaration merge and
// implicit synthesis, plus the instantiation hook for dependent attributes.
package sema

import (
	"context"
	"strconv"

	"declattr/internal/ast"
	"declattr/internal/attrs"
	"declattr/internal/decl"
	"declattr/internal/diag"
	"declattr/internal/source"
	"declattr/internal/target"
	"declattr/internal/trace"
	"declattr/internal/types"
)

// Options configure an Engine.
type Options struct {
	Target target.Info
	// Gate decides which kinds exist; nil means CatalogGate{}.
	Gate Gate
	// Policies override the catalog gate policy per kind.
	Policies map[attrs.Kind]attrs.GatePolicy
}

// Engine processes parsed attributes in source order. It is not safe for
// concurrent use; run one engine per translation unit.
type Engine struct {
	Decls   *decl.Table
	Exprs   *ast.Exprs
	Strings *source.Interner
	Types   *types.Interner

	opts         Options
	eval         Evaluator
	instantiated map[instKey]bool
}

// NewEngine binds an engine to a translation unit's tables.
func NewEngine(tab *decl.Table, b *ast.Builder, tys *types.Interner, opts Options) *Engine {
	if opts.Gate == nil {
		opts.Gate = CatalogGate{}
	}
	return &Engine{
		Decls:   tab,
		Exprs:   b.Exprs,
		Strings: b.StringsInterner,
		Types:   tys,
		opts:    opts,
		eval: Evaluator{
			Exprs:   b.Exprs,
			Strings: b.StringsInterner,
			Types:   tys,
			Decls:   tab,
			Model:   opts.Target.Triple.DataModel(),
		},
		instantiated: make(map[instKey]bool),
	}
}

// Target returns the target the engine validates for.
func (e *Engine) Target() target.Info { return e.opts.Target }

// Result is what happened to one parsed attribute.
type Result struct {
	// Kind is KindInvalid when the gate dropped the attribute.
	Kind     attrs.Kind
	State    EvalState
	Outcome  decl.Outcome
	Rejected bool
}

// Attached reports whether the attribute ended up in the declaration's set.
func (r Result) Attached() bool { return !r.Rejected && r.Outcome.Attached() }

func (r Result) String() string {
	if r.Rejected {
		return "rejected"
	}
	return r.Outcome.String()
}

// input is one attribute occurrence on its way through the pipeline.
type input struct {
	info     *attrs.Info
	spelling ast.Spelling
	span     source.Span
	args     []ast.ExprID
	seq      uint32
	implicit bool
}

// Apply runs one parsed attribute written on declaration id through the
// pipeline. Problems are reported to r; they never stop later attributes.
func (e *Engine) Apply(ctx context.Context, id decl.ID, pa *ast.ParsedAttr, r diag.Reporter) Result {
	name, _ := e.Strings.Lookup(pa.Name)
	_, sp := trace.Start(ctx, trace.ScopeAttr, name)
	res := e.apply(id, pa, r)
	sp.WithExtra("decl", strconv.FormatUint(uint64(id), 10)).
		WithExtra("state", res.State.String()).
		End(res.String())
	return res
}

// ApplyAll applies attributes in order.
func (e *Engine) ApplyAll(ctx context.Context, id decl.ID, pas []ast.ParsedAttr, r diag.Reporter) []Result {
	out := make([]Result, 0, len(pas))
	for i := range pas {
		out = append(out, e.Apply(ctx, id, &pas[i], r))
	}
	return out
}

func (e *Engine) apply(id decl.ID, pa *ast.ParsedAttr, r diag.Reporter) Result {
	info, ok := e.gate(pa, r)
	if !ok {
		return Result{Outcome: decl.OutcomeDropped, Rejected: true}
	}
	return e.process(id, input{
		info:     info,
		spelling: pa.Spelling,
		span:     pa.Span,
		args:     pa.Args,
		seq:      e.Decls.NextSeq(),
		implicit: pa.Implicit,
	}, r)
}

// process runs an attribute that passed the gate and marks the declaration
// invalid when a kind that requires it is rejected with an error.
func (e *Engine) process(id decl.ID, in input, r diag.Reporter) Result {
	counter := &diag.CountingReporter{Next: r}
	res := e.run(id, in, counter)
	if res.Rejected && counter.Errors > 0 && in.info.HasFlag(attrs.FlagInvalidatesDecl) {
		e.Decls.MarkInvalid(id)
	}
	return res
}

func (e *Engine) run(id decl.ID, in input, r diag.Reporter) Result {
	info := in.info
	res := Result{Kind: info.Kind, Outcome: decl.OutcomeDropped, Rejected: true}
	d := e.Decls.Get(id)
	if d == nil || !e.checkSubject(r, d, info, in.span) {
		return res
	}

	ev := e.eval.Evaluate(r, info.Name, in.span, id, in.args, info.Shape, nil)
	res.State = ev.State
	a := attrs.Attr{
		Kind:     info.Kind,
		Implicit: in.implicit,
		Spelling: in.spelling,
		Span:     in.span,
		Seq:      in.seq,
	}
	switch ev.State {
	case EvalError:
		return res
	case EvalPending:
		a.Payload = attrs.Pending{Args: ev.Pending}
	default:
		payload, ok := e.validate(r, id, info, in.span, ev.Values)
		if !ok {
			return res
		}
		a.Payload = payload
	}

	if !a.Implicit {
		if e.excluded(id, &a, r) {
			return res
		}
		if a.IsResolved() && !e.constrained(id, &a, r) {
			return res
		}
	}
	res.Rejected = false
	res.Outcome = e.Decls.Merge(id, a, r)
	if res.Outcome.Attached() {
		e.synthesize(id, &a, r)
	}
	return res
}
