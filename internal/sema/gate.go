package sema

import (
	"declattr/internal/ast"
	"declattr/internal/attrs"
	"declattr/internal/diag"
	"declattr/internal/target"
)

// Gate answers whether an attribute kind exists for a target and language.
// It is consulted before any argument is looked at.
type Gate interface {
	KindExistsFor(k attrs.Kind, triple target.Triple, lang target.Lang) bool
}

// GateOverride replaces the catalog masks of one kind. Zero masks keep the
// catalog value.
type GateOverride struct {
	Arches target.ArchMask
	Langs  target.LangMask
}

// CatalogGate answers from the catalog masks, with optional overrides.
type CatalogGate struct {
	Overrides map[attrs.Kind]GateOverride
}

func (g CatalogGate) KindExistsFor(k attrs.Kind, triple target.Triple, lang target.Lang) bool {
	info := attrs.InfoOf(k)
	arches, langs := info.Arches, info.Langs
	if o, ok := g.Overrides[k]; ok {
		if o.Arches != 0 {
			arches = o.Arches
		}
		if o.Langs != 0 {
			langs = o.Langs
		}
	}
	return arches.Has(triple.Arch) && langs.Has(lang) && info.Formats.Has(triple.ObjectFormat())
}

// gate resolves the attribute name and filters kinds that are unknown, not
// available in the written spelling, or missing for the active target.
func (e *Engine) gate(pa *ast.ParsedAttr, r diag.Reporter) (*attrs.Info, bool) {
	name, _ := e.Strings.Lookup(pa.Name)
	scope, _ := e.Strings.Lookup(pa.Scope)
	info, ok := attrs.Lookup(scope, name)
	quiet := pa.FromInstantiation
	if !ok {
		if !quiet {
			full := name
			if scope != "" {
				full = scope + "::" + name
			}
			diag.ReportWarning(r, diag.TgtUnknownAttr, pa.Span, full).Emit()
		}
		return nil, false
	}
	if !info.Spellings.Has(pa.Spelling) {
		if !quiet {
			diag.ReportWarning(r, diag.TgtSpelling, pa.Span, info.Name, pa.Spelling.String()).Emit()
		}
		return nil, false
	}
	tgt := e.opts.Target
	if e.opts.Gate.KindExistsFor(info.Kind, tgt.Triple, tgt.Lang) {
		return info, true
	}
	policy := info.Gate
	if p, ok := e.opts.Policies[info.Kind]; ok {
		policy = p
	}
	if quiet {
		policy = attrs.GateSilent
	}
	switch policy {
	case attrs.GateError:
		diag.ReportError(r, diag.TgtUnsupported, pa.Span, info.Name, tgt.Triple.String(), tgt.Lang.String()).Emit()
	case attrs.GateWarn:
		diag.ReportWarning(r, diag.TgtUnsupported, pa.Span, info.Name, tgt.Triple.String(), tgt.Lang.String()).Emit()
	}
	return nil, false
}
