package sema

import (
	"strconv"

	"declattr/internal/attrs"
	"declattr/internal/decl"
	"declattr/internal/diag"
)

// exclusions lists kinds that may never both be written on one entity. The
// attribute arriving second is dropped.
var exclusions = [][2]attrs.Kind{
	{attrs.KindSinglePump, attrs.KindDoublePump},
	{attrs.KindAlwaysInline, attrs.KindNoInline},
	{attrs.KindHot, attrs.KindCold},
	{attrs.KindMSABI, attrs.KindSysVABI},
}

func init() {
	exclusions = append(exclusions, [2]attrs.Kind{attrs.KindFPGARegister, attrs.KindFPGAMemory})
	for _, k := range attrs.All() {
		if attrs.InfoOf(k).HasFlag(attrs.FlagMemoryFamily) {
			exclusions = append(exclusions, [2]attrs.Kind{attrs.KindFPGARegister, k})
		}
	}
}

// precedence resolves a pair of incompatible kinds without an error: the
// loser is ignored with a warning whichever arrived first.
type precedence struct {
	winner, loser attrs.Kind
}

var precedences = []precedence{
	{winner: attrs.KindDLLExport, loser: attrs.KindDLLImport},
	{winner: attrs.KindConst, loser: attrs.KindPure},
}

// constraint relates the resolved values of two kinds. check returns nil
// when the values agree, else the detail arguments of the diagnostic.
type constraint struct {
	a, b  attrs.Kind
	token string
	check func(a, b *attrs.Attr) []string
}

var constraints = []constraint{
	{a: attrs.KindMaxWorkGroupSize, b: attrs.KindReqdWorkGroupSize, token: "max-ge-reqd", check: maxCoversReqd},
	{a: attrs.KindNumSIMDWorkItems, b: attrs.KindReqdWorkGroupSize, token: "simd-divides-fastest", check: simdDividesFastest},
	{a: attrs.KindMaxGlobalWorkDim, b: attrs.KindReqdWorkGroupSize, token: "zero-dims-uniform", check: zeroDimsUniform},
	{a: attrs.KindMaxGlobalWorkDim, b: attrs.KindMaxWorkGroupSize, token: "zero-dims-uniform", check: zeroDimsUniform},
	{a: attrs.KindNumBanks, b: attrs.KindBankBits, token: "banks-pow-bits", check: banksMatchBits},
	{a: attrs.KindReqdSubGroupSize, b: attrs.KindReqdWorkGroupSize, token: "sub-group-le-work-group", check: subGroupFits},
}

func maxCoversReqd(maxAttr, reqdAttr *attrs.Attr) []string {
	maxDims, _ := maxAttr.Dims()
	reqd, _ := reqdAttr.Dims()
	for axis := range 3 {
		if maxDims.Component(axis) < reqd.Component(axis) {
			return []string{strconv.Itoa(axis), itoa(maxDims.Component(axis)), itoa(reqd.Component(axis))}
		}
	}
	return nil
}

func simdDividesFastest(simdAttr, reqdAttr *attrs.Attr) []string {
	simd, _ := simdAttr.Int()
	reqd, _ := reqdAttr.Dims()
	if simd == 0 || reqd.Fastest()%simd != 0 {
		return []string{itoa(reqd.Fastest()), itoa(simd)}
	}
	return nil
}

func zeroDimsUniform(dimsAttr, shapeAttr *attrs.Attr) []string {
	n, _ := dimsAttr.Int()
	shape, _ := shapeAttr.Dims()
	if n == 0 && !shape.Uniform() {
		return []string{shape.String()}
	}
	return nil
}

func banksMatchBits(banksAttr, bitsAttr *attrs.Attr) []string {
	banks, _ := banksAttr.Int()
	bankBits, _ := bitsAttr.IntList()
	if want := int64(1) << len(bankBits); banks != want {
		return []string{itoa(want), itoa(banks)}
	}
	return nil
}

func subGroupFits(sgAttr, reqdAttr *attrs.Attr) []string {
	sg, _ := sgAttr.Int()
	reqd, _ := reqdAttr.Dims()
	if total := reqd.Product(); sg > total {
		return []string{itoa(total), itoa(sg)}
	}
	return nil
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

// explicitOf returns the first explicit entry of kind k, pending or not.
func explicitOf(set *decl.Set, k attrs.Kind) (attrs.Attr, bool) {
	for a := range set.OfKind(k) {
		if !a.Implicit {
			return *a, true
		}
	}
	return attrs.Attr{}, false
}

// excluded applies the exclusion and precedence tables to an incoming
// explicit attribute. It returns true when in must be dropped. A losing
// attribute that is already attached is displaced instead.
func (e *Engine) excluded(id decl.ID, in *attrs.Attr, r diag.Reporter) bool {
	set := e.Decls.Set(id)
	for _, pair := range exclusions {
		var other attrs.Kind
		switch in.Kind {
		case pair[0]:
			other = pair[1]
		case pair[1]:
			other = pair[0]
		default:
			continue
		}
		if ex, ok := explicitOf(set, other); ok {
			diag.ReportError(r, diag.XckMutualExclusion, in.Span, in.Name(), ex.Name()).
				WithNote(ex.Span, diag.NoteConflicting, ex.Name()).
				Emit()
			return true
		}
	}
	for _, p := range precedences {
		switch in.Kind {
		case p.loser:
			if w, ok := explicitOf(set, p.winner); ok {
				diag.ReportWarning(r, diag.MrgIgnored, in.Span, in.Name(), w.Name()).
					WithNote(w.Span, diag.NoteConflicting, w.Name()).
					Emit()
				return true
			}
		case p.winner:
			if l, ok := explicitOf(set, p.loser); ok {
				diag.ReportWarning(r, diag.MrgIgnored, l.Span, l.Name(), in.Name()).
					WithNote(in.Span, diag.NoteConflicting, in.Name()).
					Emit()
				e.Decls.Displace(id, l.Seq)
			}
		}
	}
	return false
}

// constrained evaluates the constraint table for a resolved attribute
// against resolved partners. Pending partners are skipped; the rule runs
// again when they resolve. It returns false when in must be dropped.
func (e *Engine) constrained(id decl.ID, in *attrs.Attr, r diag.Reporter) bool {
	set := e.Decls.Set(id)
	for i := range constraints {
		rule := &constraints[i]
		var other attrs.Kind
		switch in.Kind {
		case rule.a:
			other = rule.b
		case rule.b:
			other = rule.a
		default:
			continue
		}
		o, ok := set.Resolved(other)
		if !ok || (o.Implicit && o.ImpliedBy == in.Kind) {
			continue
		}
		a, b := in, o
		if in.Kind == rule.b {
			a, b = o, in
		}
		details := rule.check(a, b)
		if details == nil {
			continue
		}
		args := append([]string{in.Name(), o.Name(), rule.token}, details...)
		note, noteArgs := diag.NoteConflicting, []string{o.Name()}
		if o.Implicit {
			note, noteArgs = diag.NoteImplicit, []string{o.Name(), o.ImpliedBy.String()}
		}
		diag.ReportError(r, diag.XckConstraint, in.Span, args...).
			WithNote(o.Span, note, noteArgs...).
			Emit()
		return false
	}
	return true
}
