package sema

import (
	"context"
	"testing"

	"declattr/internal/ast"
	"declattr/internal/attrs"
	"declattr/internal/decl"
	"declattr/internal/diag"
	"declattr/internal/source"
	"declattr/internal/target"
	"declattr/internal/types"
)

const (
	fpgaTriple  = "spir64_fpga-unknown-unknown-sycldevice"
	hostTriple  = "x86_64-unknown-linux-gnu"
	winTriple   = "x86_64-pc-windows-msvc"
	macTriple   = "aarch64-apple-darwin"
	riscvTriple = "riscv64-unknown-elf"
)

type fixture struct {
	t   *testing.T
	b   *ast.Builder
	tys *types.Interner
	tab *decl.Table
	eng *Engine
	bag *diag.Bag
	pos uint32
}

func newFixture(t *testing.T, triple string, lang target.Lang) *fixture {
	t.Helper()
	return newFixtureWith(t, Options{Target: target.Info{Triple: target.MustParseTriple(triple), Lang: lang}})
}

func newFixtureWith(t *testing.T, opts Options) *fixture {
	t.Helper()
	b := ast.NewBuilder(nil)
	tys := types.NewInterner()
	tab := decl.NewTable()
	return &fixture{
		t:   t,
		b:   b,
		tys: tys,
		tab: tab,
		eng: NewEngine(tab, b, tys, opts),
		bag: diag.NewBag(0),
	}
}

func (f *fixture) span() source.Span {
	f.pos += 10
	return source.Span{Start: f.pos, End: f.pos + 5}
}

func (f *fixture) rep() diag.Reporter { return diag.BagReporter{Bag: f.bag} }

func (f *fixture) name(s string) source.StringID { return f.b.StringsInterner.Intern(s) }

func (f *fixture) num(raw string) ast.ExprID { return f.b.Int(f.span(), raw) }

func (f *fixture) nums(raws ...string) []ast.ExprID {
	out := make([]ast.ExprID, len(raws))
	for i, raw := range raws {
		out[i] = f.num(raw)
	}
	return out
}

func (f *fixture) str(s string) ast.ExprID { return f.b.String(f.span(), `"`+s+`"`) }

func (f *fixture) ident(s string) ast.ExprID { return f.b.Ident(f.span(), s) }

// attr builds a bracket-spelled attribute; name may carry a scope.
func (f *fixture) attr(name string, args ...ast.ExprID) ast.ParsedAttr {
	return f.b.Attr(f.span(), ast.SpellingBracket, name, args...)
}

func (f *fixture) gnu(name string, args ...ast.ExprID) ast.ParsedAttr {
	return f.b.Attr(f.span(), ast.SpellingLegacy, name, args...)
}

func (f *fixture) apply(id decl.ID, pa ast.ParsedAttr) Result {
	f.t.Helper()
	return f.eng.Apply(context.Background(), id, &pa, f.rep())
}

func (f *fixture) local(name string) decl.ID {
	return f.tab.Declare(decl.Decl{Name: f.name(name), Category: decl.CatVariable, Storage: decl.StorageAuto, Type: f.tys.Builtins().Int})
}

func (f *fixture) global(name string) decl.ID {
	return f.tab.Declare(decl.Decl{Name: f.name(name), Category: decl.CatVariable, Storage: decl.StorageStatic, Type: f.tys.Builtins().Int})
}

// function declares a function returning ret with parameters of the
// given types.
func (f *fixture) function(name string, flags decl.Flags, ret types.TypeID, params ...types.TypeID) decl.ID {
	fn := f.tab.Declare(decl.Decl{Name: f.name(name), Category: decl.CatFunction, Flags: flags, Type: ret})
	d := f.tab.Get(fn)
	for _, p := range params {
		d.Params = append(d.Params, f.tab.Declare(decl.Decl{Category: decl.CatParam, Type: p, Parent: fn}))
	}
	return fn
}

func (f *fixture) kernel(name string) decl.ID {
	return f.function(name, decl.FlagKernel|decl.FlagDefinition, f.tys.Builtins().Void)
}

func (f *fixture) codes() []diag.Code { return f.bag.Codes() }

func (f *fixture) wantCodes(want ...diag.Code) {
	f.t.Helper()
	got := f.codes()
	if len(got) != len(want) {
		f.t.Fatalf("diagnostics = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			f.t.Fatalf("diagnostics = %v, want %v", got, want)
		}
	}
}

func (f *fixture) mustAttr(id decl.ID, k attrs.Kind) *attrs.Attr {
	f.t.Helper()
	a, ok := f.tab.Attr(id, k)
	if !ok {
		f.t.Fatalf("missing %s; have %v", k, f.tab.Attrs(id))
	}
	return a
}

func (f *fixture) wantInt(id decl.ID, k attrs.Kind, want int64) {
	f.t.Helper()
	a := f.mustAttr(id, k)
	if v, ok := a.Int(); !ok || v != want {
		f.t.Fatalf("%s = %v, want %d", k, a.Payload, want)
	}
}
