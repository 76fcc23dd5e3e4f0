package sema

import (
	"testing"

	"declattr/internal/ast"
	"declattr/internal/attrs"
	"declattr/internal/decl"
	"declattr/internal/diag"
	"declattr/internal/target"
	"declattr/internal/types"
)

func TestEveryKindHasValidator(t *testing.T) {
	for _, k := range attrs.All() {
		if validators[k] == nil {
			t.Errorf("%s has no validator", k)
		}
	}
}

type validatorCase struct {
	name    string
	triple  string
	setup   func(f *fixture) (decl.ID, ast.ParsedAttr)
	want    []diag.Code
	payload attrs.Payload
}

func runValidatorCases(t *testing.T, kind attrs.Kind, cases []validatorCase) {
	t.Helper()
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			triple := tt.triple
			if triple == "" {
				triple = hostTriple
			}
			f := newFixture(t, triple, target.LangCXX)
			id, pa := tt.setup(f)
			res := f.apply(id, pa)
			f.wantCodes(tt.want...)
			if tt.payload == nil {
				if res.Attached() {
					t.Fatalf("expected %s to be dropped", kind)
				}
				return
			}
			if got := f.mustAttr(id, kind).Payload; !got.Equal(tt.payload) {
				t.Fatalf("%s payload = %v, want %v", kind, got, tt.payload)
			}
		})
	}
}

func (f *fixture) printfLike(flags decl.Flags, params ...types.TypeID) decl.ID {
	return f.function("logf", flags, f.tys.Builtins().Int, params...)
}

func TestFormat(t *testing.T) {
	charPtr := func(f *fixture) types.TypeID { return f.tys.PointerTo(f.tys.Builtins().ConstChar) }
	format := func(f *fixture, arch, idx, first string) ast.ParsedAttr {
		return f.gnu("format", f.ident(arch), f.num(idx), f.num(first))
	}
	runValidatorCases(t, attrs.KindFormat, []validatorCase{
		{name: "printf", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.printfLike(decl.FlagVariadic, charPtr(f)), format(f, "printf", "1", "2")
		}, payload: attrs.Format{Archetype: "printf", FmtIndex: 1, FirstArg: 2}},
		{name: "dunder archetype", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.printfLike(decl.FlagVariadic, charPtr(f)), format(f, "__printf__", "1", "2")
		}, payload: attrs.Format{Archetype: "printf", FmtIndex: 1, FirstArg: 2}},
		{name: "gnu archetype", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.printfLike(0, charPtr(f)), format(f, "gnu_scanf", "1", "0")
		}, payload: attrs.Format{Archetype: "scanf", FmtIndex: 1}},
		{name: "unknown archetype", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.printfLike(decl.FlagVariadic, charPtr(f)), format(f, "bogus", "1", "2")
		}, want: []diag.Code{diag.ArgRange}},
		{name: "index past parameters", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.printfLike(decl.FlagVariadic, charPtr(f)), format(f, "printf", "2", "3")
		}, want: []diag.Code{diag.ArgParamIndex}},
		{name: "not a string", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.printfLike(decl.FlagVariadic, f.tys.Builtins().Int), format(f, "printf", "1", "2")
		}, want: []diag.Code{diag.ArgParamIndex}},
		{name: "first arg before format", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.printfLike(decl.FlagVariadic, charPtr(f)), format(f, "printf", "1", "1")
		}, want: []diag.Code{diag.ArgParamIndex}},
		{name: "not variadic", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.printfLike(0, charPtr(f)), format(f, "printf", "1", "2")
		}, want: []diag.Code{diag.ArgParamIndex}},
		{name: "method shifts indices", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.printfLike(decl.FlagVariadic|decl.FlagMethod, charPtr(f)), format(f, "printf", "2", "3")
		}, payload: attrs.Format{Archetype: "printf", FmtIndex: 2, FirstArg: 3}},
		{name: "strftime takes no arguments", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.printfLike(decl.FlagVariadic, charPtr(f)), format(f, "strftime", "1", "2")
		}, want: []diag.Code{diag.ArgParamIndex}},
	})
}

func TestFormatArg(t *testing.T) {
	runValidatorCases(t, attrs.KindFormatArg, []validatorCase{
		{name: "ok", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			b := f.tys.Builtins()
			return f.function("gettext", 0, b.CharPtr, b.CharPtr), f.gnu("format_arg", f.num("1"))
		}, payload: attrs.Int{V: 1}},
		{name: "returns int", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			b := f.tys.Builtins()
			return f.function("gettext", 0, b.Int, b.CharPtr), f.gnu("format_arg", f.num("1"))
		}, want: []diag.Code{diag.SubSignature}},
	})
}

func TestNonNull(t *testing.T) {
	fn := func(f *fixture) decl.ID {
		b := f.tys.Builtins()
		return f.function("copy", 0, b.Void, b.CharPtr, b.Int)
	}
	runValidatorCases(t, attrs.KindNonNull, []validatorCase{
		{name: "pointer", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return fn(f), f.gnu("nonnull", f.num("1"))
		}, payload: attrs.IntList{V: []int64{1}}},
		{name: "all pointers", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return fn(f), f.gnu("nonnull")
		}, payload: attrs.IntList{V: []int64{}}},
		{name: "integer parameter", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return fn(f), f.gnu("nonnull", f.num("2"))
		}, want: []diag.Code{diag.ArgParamIndex}},
		{name: "out of range", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return fn(f), f.gnu("nonnull", f.num("3"))
		}, want: []diag.Code{diag.ArgParamIndex}},
		{name: "repeated index", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return fn(f), f.gnu("nonnull", f.num("1"), f.num("1"))
		}, want: []diag.Code{diag.ArgDuplicateIndex}},
		{name: "zero", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return fn(f), f.gnu("nonnull", f.num("0"))
		}, want: []diag.Code{diag.ArgRange}},
		{name: "on pointer parameter", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.tab.Get(fn(f)).Params[0], f.gnu("nonnull")
		}, payload: attrs.IntList{}},
		{name: "on integer parameter", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.tab.Get(fn(f)).Params[1], f.gnu("nonnull")
		}, want: []diag.Code{diag.SubSignature}},
		{name: "parameter with indices", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.tab.Get(fn(f)).Params[0], f.gnu("nonnull", f.num("1"))
		}, want: []diag.Code{diag.ArgArity}},
	})
}

func TestNonNullAccumulates(t *testing.T) {
	f := newFixture(t, hostTriple, target.LangC)
	b := f.tys.Builtins()
	fn := f.function("copy", 0, b.Void, b.CharPtr, b.CharPtr)
	f.apply(fn, f.gnu("nonnull", f.num("1")))
	f.apply(fn, f.gnu("nonnull", f.num("2")))
	f.apply(fn, f.gnu("nonnull", f.num("1")))
	f.wantCodes()
	n := 0
	for range f.tab.AttrsOfKind(fn, attrs.KindNonNull) {
		n++
	}
	if n != 2 {
		t.Fatalf("expected two distinct nonnull entries, got %d", n)
	}
}

func TestAllocSize(t *testing.T) {
	runValidatorCases(t, attrs.KindAllocSize, []validatorCase{
		{name: "calloc", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			b := f.tys.Builtins()
			return f.function("calloc", 0, b.VoidPtr, b.Ulong, b.Ulong), f.gnu("alloc_size", f.num("1"), f.num("2"))
		}, payload: attrs.IntList{V: []int64{1, 2}}},
		{name: "returns int", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			b := f.tys.Builtins()
			return f.function("alloc", 0, b.Int, b.Ulong), f.gnu("alloc_size", f.num("1"))
		}, want: []diag.Code{diag.SubSignature}},
		{name: "pointer size", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			b := f.tys.Builtins()
			return f.function("alloc", 0, b.VoidPtr, b.CharPtr), f.gnu("alloc_size", f.num("1"))
		}, want: []diag.Code{diag.ArgParamIndex}},
	})
}

func TestCleanup(t *testing.T) {
	withCleanup := func(param func(f *fixture) []types.TypeID) func(f *fixture) (decl.ID, ast.ParsedAttr) {
		return func(f *fixture) (decl.ID, ast.ParsedAttr) {
			f.function("release", 0, f.tys.Builtins().Void, param(f)...)
			return f.local("buf"), f.gnu("cleanup", f.ident("release"))
		}
	}
	runValidatorCases(t, attrs.KindCleanup, []validatorCase{
		{name: "int pointer", setup: withCleanup(func(f *fixture) []types.TypeID {
			return []types.TypeID{f.tys.PointerTo(f.tys.Builtins().Int)}
		}), payload: attrs.FuncRef{Name: "release", Decl: 1}},
		{name: "void pointer", setup: withCleanup(func(f *fixture) []types.TypeID {
			return []types.TypeID{f.tys.Builtins().VoidPtr}
		}), payload: attrs.FuncRef{Name: "release", Decl: 1}},
		{name: "char pointer", setup: withCleanup(func(f *fixture) []types.TypeID {
			return []types.TypeID{f.tys.Builtins().CharPtr}
		}), want: []diag.Code{diag.SubSignature}},
		{name: "two parameters", setup: withCleanup(func(f *fixture) []types.TypeID {
			b := f.tys.Builtins()
			return []types.TypeID{b.VoidPtr, b.Int}
		}), want: []diag.Code{diag.SubSignature}},
		{name: "missing function", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.local("buf"), f.gnu("cleanup", f.ident("release"))
		}, want: []diag.Code{diag.ArgUnresolvedIdent}},
		{name: "global", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.global("buf"), f.gnu("cleanup", f.ident("release"))
		}, want: []diag.Code{diag.SubKind}},
	})
}

func TestSection(t *testing.T) {
	section := func(name string) func(f *fixture) (decl.ID, ast.ParsedAttr) {
		return func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.global("g"), f.gnu("section", f.str(name))
		}
	}
	runValidatorCases(t, attrs.KindSection, []validatorCase{
		{name: "elf", setup: section(".text.hot"), payload: attrs.Str{V: ".text.hot"}},
		{name: "elf empty", setup: section(""), want: []diag.Code{diag.ArgRange}},
		{name: "elf whitespace", setup: section("a b"), want: []diag.Code{diag.ArgRange}},
		{name: "macho", triple: macTriple, setup: section("__DATA,__mydata"), payload: attrs.Str{V: "__DATA,__mydata"}},
		{name: "macho without segment", triple: macTriple, setup: section("mydata"), want: []diag.Code{diag.ArgRange}},
		{name: "macho long section", triple: macTriple, setup: section("__DATA,__a_very_long_section"), want: []diag.Code{diag.ArgRange}},
		{name: "coff", triple: winTriple, setup: section(".rdata$x"), payload: attrs.Str{V: ".rdata$x"}},
	})
}

func TestVisibilityAndTLSModel(t *testing.T) {
	runValidatorCases(t, attrs.KindVisibility, []validatorCase{
		{name: "hidden", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.global("g"), f.gnu("visibility", f.str("hidden"))
		}, payload: attrs.Enum{V: "hidden"}},
		{name: "unknown", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.global("g"), f.gnu("visibility", f.str("secret"))
		}, want: []diag.Code{diag.ArgRange}},
	})
	tls := func(f *fixture, flags decl.Flags) decl.ID {
		return f.tab.Declare(decl.Decl{Name: f.name("tls"), Category: decl.CatVariable, Storage: decl.StorageStatic, Flags: flags, Type: f.tys.Builtins().Int})
	}
	runValidatorCases(t, attrs.KindTLSModel, []validatorCase{
		{name: "initial exec", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return tls(f, decl.FlagThreadLocal), f.gnu("tls_model", f.str("initial-exec"))
		}, payload: attrs.Enum{V: "initial-exec"}},
		{name: "not thread local", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return tls(f, 0), f.gnu("tls_model", f.str("initial-exec"))
		}, want: []diag.Code{diag.SubSignature}},
		{name: "unknown model", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return tls(f, decl.FlagThreadLocal), f.gnu("tls_model", f.str("fast"))
		}, want: []diag.Code{diag.ArgRange}},
	})
}

func TestAlignedAndVectorSize(t *testing.T) {
	runValidatorCases(t, attrs.KindAligned, []validatorCase{
		{name: "default lp64", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.global("g"), f.gnu("aligned")
		}, payload: attrs.Int{V: 16}},
		{name: "default ilp32", triple: "i386-unknown-linux-gnu", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.global("g"), f.gnu("aligned")
		}, payload: attrs.Int{V: 8}},
		{name: "not a power of two", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.global("g"), f.gnu("aligned", f.num("3"))
		}, want: []diag.Code{diag.ArgRange}},
	})

	typedef := func(f *fixture, ty types.TypeID) decl.ID {
		return f.tab.Declare(decl.Decl{Name: f.name("v4"), Category: decl.CatType, Type: ty})
	}
	runValidatorCases(t, attrs.KindVectorSize, []validatorCase{
		{name: "int4", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return typedef(f, f.tys.Builtins().Int), f.gnu("vector_size", f.num("16"))
		}, payload: attrs.Int{V: 16}},
		{name: "not power of two", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return typedef(f, f.tys.Builtins().Int), f.gnu("vector_size", f.num("6"))
		}, want: []diag.Code{diag.ArgRange}},
		{name: "smaller than element", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return typedef(f, f.tys.Builtins().Int), f.gnu("vector_size", f.num("2"))
		}, want: []diag.Code{diag.ArgRange}},
		{name: "pointer element", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return typedef(f, f.tys.Builtins().CharPtr), f.gnu("vector_size", f.num("16"))
		}, want: []diag.Code{diag.SubSignature}},
	})
}

func TestAlignedKeepsMaximum(t *testing.T) {
	f := newFixture(t, hostTriple, target.LangC)
	g := f.global("g")
	f.apply(g, f.gnu("aligned", f.num("8")))
	f.apply(g, f.gnu("aligned", f.num("32")))
	f.apply(g, f.gnu("aligned", f.num("4")))
	f.wantCodes()
	f.wantInt(g, attrs.KindAligned, 32)
}

func TestDeprecatedKeepsFirstMessage(t *testing.T) {
	f := newFixture(t, hostTriple, target.LangCXX)
	g := f.global("g")
	f.apply(g, f.gnu("deprecated", f.str("use h")))
	res := f.apply(g, f.gnu("deprecated", f.str("use k")))
	if res.Outcome != decl.OutcomeKeptExisting {
		t.Fatalf("outcome = %s", res)
	}
	f.wantCodes()
	if a := f.mustAttr(g, attrs.KindDeprecated); !a.Payload.Equal(attrs.Str{V: "use h"}) {
		t.Fatalf("message = %v", a.Payload)
	}
}

func TestInterrupt(t *testing.T) {
	handler := func(f *fixture, params ...types.TypeID) decl.ID {
		return f.function("isr", 0, f.tys.Builtins().Void, params...)
	}
	runValidatorCases(t, attrs.KindInterrupt, []validatorCase{
		{name: "x86 frame", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return handler(f, f.tys.Builtins().VoidPtr), f.gnu("interrupt")
		}, payload: attrs.Enum{}},
		{name: "x86 frame and code", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			b := f.tys.Builtins()
			return handler(f, b.VoidPtr, b.Ulong), f.gnu("interrupt")
		}, payload: attrs.Enum{}},
		{name: "x86 no frame", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return handler(f), f.gnu("interrupt")
		}, want: []diag.Code{diag.SubSignature}},
		{name: "x86 takes no kind", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return handler(f, f.tys.Builtins().VoidPtr), f.gnu("interrupt", f.str("IRQ"))
		}, want: []diag.Code{diag.ArgArity}},
		{name: "riscv default", triple: riscvTriple, setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return handler(f), f.gnu("interrupt")
		}, payload: attrs.Enum{V: "machine"}},
		{name: "riscv supervisor", triple: riscvTriple, setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return handler(f), f.gnu("interrupt", f.str("supervisor"))
		}, payload: attrs.Enum{V: "supervisor"}},
		{name: "riscv unknown", triple: riscvTriple, setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return handler(f), f.gnu("interrupt", f.str("user"))
		}, want: []diag.Code{diag.ArgRange}},
		{name: "riscv returns int", triple: riscvTriple, setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.function("isr", 0, f.tys.Builtins().Int), f.gnu("interrupt")
		}, want: []diag.Code{diag.SubSignature}},
	})
}

func TestFunctionFlagsAndPriorities(t *testing.T) {
	runValidatorCases(t, attrs.KindConstructor, []validatorCase{
		{name: "default priority", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.function("init", 0, f.tys.Builtins().Void), f.gnu("constructor")
		}, payload: attrs.Int{V: 65535}},
		{name: "priority", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.function("init", 0, f.tys.Builtins().Void), f.gnu("constructor", f.num("101"))
		}, payload: attrs.Int{V: 101}},
		{name: "priority too large", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.function("init", 0, f.tys.Builtins().Void), f.gnu("constructor", f.num("70000"))
		}, want: []diag.Code{diag.ArgRange}},
	})
	runValidatorCases(t, attrs.KindWarnUnusedResult, []validatorCase{
		{name: "int result", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.function("f", 0, f.tys.Builtins().Int), f.gnu("nodiscard", f.str("check it"))
		}, payload: attrs.Str{V: "check it"}},
		{name: "void result", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.function("f", 0, f.tys.Builtins().Void), f.gnu("warn_unused_result")
		}, want: []diag.Code{diag.SubSignature}},
	})
	runValidatorCases(t, attrs.KindAlias, []validatorCase{
		{name: "declaration", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.function("f", 0, f.tys.Builtins().Int), f.gnu("alias", f.str("g"))
		}, payload: attrs.Str{V: "g"}},
		{name: "definition", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.function("f", decl.FlagDefinition, f.tys.Builtins().Int), f.gnu("alias", f.str("g"))
		}, want: []diag.Code{diag.SubSignature}},
	})
	runValidatorCases(t, attrs.KindDLLImport, []validatorCase{
		{name: "declaration", triple: winTriple, setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.function("f", 0, f.tys.Builtins().Int), f.gnu("dllimport")
		}, payload: attrs.Flag{}},
		{name: "definition", triple: winTriple, setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.function("f", decl.FlagDefinition, f.tys.Builtins().Int), f.gnu("dllimport")
		}, want: []diag.Code{diag.SubSignature}},
	})
}

func TestDeviceValidators(t *testing.T) {
	const nvptx = "nvptx64-nvidia-cuda"
	kernelWith := func(name string, args ...string) func(f *fixture) (decl.ID, ast.ParsedAttr) {
		return func(f *fixture) (decl.ID, ast.ParsedAttr) {
			return f.kernel("k"), f.attr(name, f.nums(args...)...)
		}
	}
	device := func(cases []validatorCase) []validatorCase {
		for i := range cases {
			if cases[i].triple == "" {
				cases[i].triple = fpgaTriple
			}
		}
		return cases
	}
	t.Run("sycl", func(t *testing.T) {
		runDeviceCases(t, attrs.KindReqdWorkGroupSize, device([]validatorCase{
			{name: "three dims", setup: kernelWith("reqd_work_group_size", "1", "2", "4"), payload: attrs.MakeDims(1, 2, 4)},
			{name: "zero", setup: kernelWith("reqd_work_group_size", "0"), want: []diag.Code{diag.ArgRange}},
			{name: "too wide", setup: kernelWith("reqd_work_group_size", "4294967296"), want: []diag.Code{diag.ArgRange}},
		}))
		runDeviceCases(t, attrs.KindReqdSubGroupSize, device([]validatorCase{
			{name: "spir 8", setup: kernelWith("sub_group_size", "8"), payload: attrs.Int{V: 8}},
			{name: "spir 12", setup: kernelWith("sub_group_size", "12"), want: []diag.Code{diag.ArgRange}},
			{name: "nvptx 32", triple: nvptx, setup: kernelWith("sub_group_size", "32"), payload: attrs.Int{V: 32}},
			{name: "nvptx 16", triple: nvptx, setup: kernelWith("sub_group_size", "16"), want: []diag.Code{diag.ArgRange}},
		}))
		runDeviceCases(t, attrs.KindNoGlobalWorkOffset, device([]validatorCase{
			{name: "bare", setup: kernelWith("no_global_work_offset"), payload: attrs.Int{V: 1}},
			{name: "disabled", setup: kernelWith("no_global_work_offset", "0"), payload: attrs.Int{V: 0}},
			{name: "nonzero", setup: kernelWith("no_global_work_offset", "7"), payload: attrs.Int{V: 1}},
		}))
	})

	memory := func(name string, args ...ast.ExprID) func(f *fixture) (decl.ID, ast.ParsedAttr) {
		return func(f *fixture) (decl.ID, ast.ParsedAttr) { return f.local("mem"), f.attr(name, args...) }
	}
	t.Run("fpga memory", func(t *testing.T) {
		runDeviceCases(t, attrs.KindFPGAMemory, device([]validatorCase{
			{name: "default", setup: memory("fpga_memory"), payload: attrs.Str{V: "DEFAULT"}},
			{name: "mlab", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
				return f.local("mem"), f.attr("fpga_memory", f.str("mlab"))
			}, payload: attrs.Str{V: "MLAB"}},
			{name: "unknown", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
				return f.local("mem"), f.attr("fpga_memory", f.str("sram"))
			}, want: []diag.Code{diag.ArgRange}},
		}))
		runDeviceCases(t, attrs.KindMerge, device([]validatorCase{
			{name: "depth", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
				return f.local("mem"), f.attr("merge", f.str("m0"), f.str("depth"))
			}, payload: attrs.MergeSpec{Name: "m0", Direction: "depth"}},
			{name: "sideways", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
				return f.local("mem"), f.attr("merge", f.str("m0"), f.str("sideways"))
			}, want: []diag.Code{diag.ArgRange}},
			{name: "empty name", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
				return f.local("mem"), f.attr("merge", f.str(""), f.str("width"))
			}, want: []diag.Code{diag.ArgRange}},
		}))
		runDeviceCases(t, attrs.KindBankBits, device([]validatorCase{
			{name: "bits", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
				return f.local("mem"), f.attr("bank_bits", f.nums("3", "4")...)
			}, payload: attrs.IntList{V: []int64{3, 4}}},
			{name: "bit too high", setup: func(f *fixture) (decl.ID, ast.ParsedAttr) {
				return f.local("mem"), f.attr("bank_bits", f.nums("64")...)
			}, want: []diag.Code{diag.ArgRange}},
		}))
		runDeviceCases(t, attrs.KindPrivateCopies, device([]validatorCase{
			{name: "missing value", setup: memory("private_copies"), want: []diag.Code{diag.ArgArity}},
		}))
	})
}

// runDeviceCases is runValidatorCases under the SYCL language.
func runDeviceCases(t *testing.T, kind attrs.Kind, cases []validatorCase) {
	t.Helper()
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			lang := target.LangSYCL
			if tt.triple == "nvptx64-nvidia-cuda" {
				lang = target.LangCUDA
			}
			f := newFixture(t, tt.triple, lang)
			id, pa := tt.setup(f)
			res := f.apply(id, pa)
			f.wantCodes(tt.want...)
			if tt.payload == nil {
				if res.Attached() {
					t.Fatalf("expected %s to be dropped", kind)
				}
				return
			}
			if got := f.mustAttr(id, kind).Payload; !got.Equal(tt.payload) {
				t.Fatalf("%s payload = %v, want %v", kind, got, tt.payload)
			}
		})
	}
}

func TestAnnotateEntries(t *testing.T) {
	f := newFixture(t, hostTriple, target.LangCXX)
	g := f.global("g")
	f.apply(g, f.gnu("clang::annotate", f.str("k"), f.num("1"), f.str("x")))
	f.apply(g, f.gnu("annotate", f.str("k"), f.num("1"), f.str("x")))
	f.apply(g, f.gnu("annotate", f.str("k"), f.num("2")))
	f.wantCodes()
	var got []attrs.Payload
	for a := range f.tab.AttrsOfKind(g, attrs.KindAnnotate) {
		got = append(got, a.Payload)
	}
	if len(got) != 2 || !got[0].Equal(attrs.Annotation{Key: "k", Args: []string{"1", `"x"`}}) {
		t.Fatalf("annotations = %v", got)
	}
}
