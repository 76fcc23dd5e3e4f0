package attrs

import (
	"slices"
	"strings"

	"declattr/internal/ast"
	"declattr/internal/target"
)

// ArgKind is the expected form of one argument position.
type ArgKind uint8

const (
	ArgInt    ArgKind = iota // integer constant expression
	ArgString                // string literal
	ArgIdent                 // identifier from a closed vocabulary (or its string spelling)
	ArgFunc                  // identifier naming a function
	ArgAny                   // integer or string, kept as written
)

func (k ArgKind) String() string {
	switch k {
	case ArgInt:
		return "integer constant"
	case ArgString:
		return "string literal"
	case ArgIdent:
		return "identifier"
	case ArgFunc:
		return "function name"
	case ArgAny:
		return "constant"
	}
	return "argument"
}

// Unbounded marks a Shape with no upper arity limit.
const Unbounded = -1

// Shape is the arity and argument kinds a kind accepts. Positions past the
// end of Args repeat the last entry.
type Shape struct {
	Min  int
	Max  int
	Args []ArgKind
}

// At returns the expected kind of argument i.
func (s Shape) At(i int) ArgKind {
	if len(s.Args) == 0 {
		return ArgInt
	}
	if i < len(s.Args) {
		return s.Args[i]
	}
	return s.Args[len(s.Args)-1]
}

// Accepts reports whether n arguments fit the arity bounds.
func (s Shape) Accepts(n int) bool {
	return n >= s.Min && (s.Max == Unbounded || n <= s.Max)
}

func shape(minArgs, maxArgs int, kinds ...ArgKind) Shape {
	return Shape{Min: minArgs, Max: maxArgs, Args: kinds}
}

var (
	noArgs = shape(0, 0)
	oneInt = shape(1, 1, ArgInt)
	optInt = shape(0, 1, ArgInt)
	oneStr = shape(1, 1, ArgString)
	optStr = shape(0, 1, ArgString)
)

// GatePolicy decides what happens to a kind that does not exist for the
// active target or language.
type GatePolicy uint8

const (
	GateWarn   GatePolicy = iota // warning, attribute dropped
	GateError                    // error, attribute dropped
	GateSilent                   // dropped without a diagnostic
)

func (p GatePolicy) String() string {
	switch p {
	case GateError:
		return "error"
	case GateSilent:
		return "silent"
	}
	return "warn"
}

// ParseGatePolicy accepts the names printed by String.
func ParseGatePolicy(s string) (GatePolicy, bool) {
	switch s {
	case "warn", "":
		return GateWarn, true
	case "error":
		return GateError, true
	case "silent", "ignore":
		return GateSilent, true
	}
	return GateWarn, false
}

// MergePolicy decides which of two explicit, different values survives a
// redeclaration.
type MergePolicy uint8

const (
	// MergeConflict keeps the earlier value and reports the later one.
	MergeConflict MergePolicy = iota
	// MergeKeepMax silently keeps the larger integer.
	MergeKeepMax
	// MergeKeepFirst silently keeps the earlier value.
	MergeKeepFirst
)

func (p MergePolicy) String() string {
	switch p {
	case MergeKeepMax:
		return "keep-max"
	case MergeKeepFirst:
		return "keep-first"
	}
	return "conflict"
}

// InfoFlag captures special handling rules.
type InfoFlag uint8

const (
	FlagNone InfoFlag = 0
	// FlagRepeatable kinds accumulate entries instead of merging.
	FlagRepeatable InfoFlag = 1 << iota
	// FlagInvalidatesDecl marks the declaration invalid when the attribute is rejected.
	FlagInvalidatesDecl
	// FlagMemoryFamily kinds describe an FPGA local memory and imply fpga_memory.
	FlagMemoryFamily
)

// Info describes one attribute kind.
type Info struct {
	Kind      Kind
	Name      string
	Aliases   []string
	Scopes    []string // accepted "scope::" prefixes
	Subjects  Subject
	Shape     Shape
	Spellings ast.SpellingMask
	Arches    target.ArchMask
	Langs     target.LangMask
	Formats   target.FormatMask
	Gate      GatePolicy
	Merge     MergePolicy
	Flags     InfoFlag
	Doc       string
}

func (info *Info) HasFlag(f InfoFlag) bool { return info.Flags&f != 0 }

func (info *Info) Repeatable() bool { return info.HasFlag(FlagRepeatable) }

// AcceptsScope reports whether "scope::name" is a valid spelling.
func (info *Info) AcceptsScope(scope string) bool {
	return scope == "" || slices.Contains(info.Scopes, scope)
}

const (
	langsSYCL  = target.LangMask(1 << target.LangSYCL)
	langsCLike = target.LangsAll
)

var (
	scopesSYCL  = []string{"intel", "sycl"}
	scopesIntel = []string{"intel"}
	scopesGNU   = []string{"gnu", "clang"}
	scopesStd   = []string{"gnu", "clang", "std"}
)

func memoryKind(k Kind, name string, alias string, sh Shape, doc string) Info {
	info := Info{
		Kind: k, Name: name, Scopes: scopesIntel, Subjects: SubjFPGAMem, Shape: sh,
		Spellings: ast.SpellBracket, Langs: langsSYCL, Flags: FlagMemoryFamily, Doc: doc,
	}
	if alias != "" {
		info.Aliases = []string{alias}
	}
	return info
}

var catalog = [numKinds]Info{
	KindReqdWorkGroupSize: {
		Kind: KindReqdWorkGroupSize, Name: "reqd_work_group_size", Aliases: []string{"reqd_size"},
		Scopes: scopesSYCL, Subjects: SubjFunction, Shape: shape(1, 3, ArgInt),
		Spellings: ast.SpellBracket | ast.SpellLegacy, Langs: target.LangsDevice,
		Doc: "exact work-group size the kernel must be launched with",
	},
	KindMaxWorkGroupSize: {
		Kind: KindMaxWorkGroupSize, Name: "max_work_group_size", Aliases: []string{"max_size"},
		Scopes: scopesIntel, Subjects: SubjFunction, Shape: shape(1, 3, ArgInt),
		Spellings: ast.SpellBracket, Langs: target.LangsDevice,
		Doc: "upper bound on each work-group dimension",
	},
	KindWorkGroupSizeHint: {
		Kind: KindWorkGroupSizeHint, Name: "work_group_size_hint", Aliases: []string{"size_hint"},
		Scopes: scopesSYCL, Subjects: SubjFunction, Shape: shape(1, 3, ArgInt),
		Spellings: ast.SpellBracket | ast.SpellLegacy, Langs: target.LangsDevice,
		Doc: "preferred work-group size",
	},
	KindMaxGlobalWorkDim: {
		Kind: KindMaxGlobalWorkDim, Name: "max_global_work_dim", Aliases: []string{"max_dims"},
		Scopes: scopesIntel, Subjects: SubjFunction, Shape: oneInt,
		Spellings: ast.SpellBracket, Langs: target.LangsDevice,
		Doc: "largest global work dimensionality (0-3)",
	},
	KindNumSIMDWorkItems: {
		Kind: KindNumSIMDWorkItems, Name: "num_simd_work_items", Aliases: []string{"simd_width"},
		Scopes: scopesIntel, Subjects: SubjFunction, Shape: oneInt,
		Spellings: ast.SpellBracket, Langs: target.LangsDevice,
		Doc: "work-items processed per SIMD lane group",
	},
	KindReqdSubGroupSize: {
		Kind: KindReqdSubGroupSize, Name: "reqd_sub_group_size",
		Aliases: []string{"sub_group_size", "intel_reqd_sub_group_size"},
		Scopes: scopesSYCL, Subjects: SubjFunction, Shape: oneInt,
		Spellings: ast.SpellBracket | ast.SpellLegacy, Arches: target.ArchesGPU,
		Langs: target.LangsDevice, Gate: GateSilent,
		Doc: "sub-group size the kernel requires",
	},
	KindNoGlobalWorkOffset: {
		Kind: KindNoGlobalWorkOffset, Name: "no_global_work_offset",
		Scopes: scopesIntel, Subjects: SubjFunction, Shape: optInt,
		Spellings: ast.SpellBracket, Langs: target.LangsDevice,
		Doc: "kernel ignores the global work offset",
	},
	KindSchedulerTargetFmaxMhz: {
		Kind: KindSchedulerTargetFmaxMhz, Name: "scheduler_target_fmax_mhz",
		Scopes: scopesIntel, Subjects: SubjFunction, Shape: oneInt,
		Spellings: ast.SpellBracket, Arches: target.ArchesFPGA, Langs: langsSYCL,
		Doc: "scheduler clock target in MHz",
	},

	KindFPGAMemory: {
		Kind: KindFPGAMemory, Name: "fpga_memory", Aliases: []string{"memory"},
		Scopes: scopesIntel, Subjects: SubjFPGAMem, Shape: shape(0, 1, ArgString),
		Spellings: ast.SpellBracket, Langs: langsSYCL,
		Doc: "implement the variable in on-chip memory",
	},
	KindFPGARegister: {
		Kind: KindFPGARegister, Name: "fpga_register", Aliases: []string{"register"},
		Scopes: scopesIntel, Subjects: SubjFPGAMem, Shape: noArgs,
		Spellings: ast.SpellBracket, Langs: langsSYCL,
		Doc: "implement the variable in registers",
	},
	KindBankWidth:      memoryKind(KindBankWidth, "bankwidth", "bank_width", oneInt, "memory bank width in bytes"),
	KindNumBanks:       memoryKind(KindNumBanks, "numbanks", "num_banks", oneInt, "number of memory banks"),
	KindBankBits:       memoryKind(KindBankBits, "bank_bits", "", shape(1, Unbounded, ArgInt), "address bits selecting the bank"),
	KindMaxReplicates:  memoryKind(KindMaxReplicates, "max_replicates", "", oneInt, "upper bound on memory replicates"),
	KindSimpleDualPort: memoryKind(KindSimpleDualPort, "simple_dual_port", "", noArgs, "one read and one write port"),
	KindSinglePump:     memoryKind(KindSinglePump, "singlepump", "", noArgs, "memory clocked at kernel frequency"),
	KindDoublePump:     memoryKind(KindDoublePump, "doublepump", "", noArgs, "memory clocked at twice the kernel frequency"),
	KindPrivateCopies:  memoryKind(KindPrivateCopies, "private_copies", "", oneInt, "copies for concurrent loop iterations"),
	KindForcePow2Depth: memoryKind(KindForcePow2Depth, "force_pow2_depth", "", oneInt, "pad memory depth to a power of two"),
	KindMerge:          memoryKind(KindMerge, "merge", "", shape(2, 2, ArgString), "merge memories depth- or width-wise"),

	KindAligned: {
		Kind: KindAligned, Name: "aligned", Scopes: scopesGNU,
		Subjects: SubjAnyVar | SubjField | SubjType | SubjFunction, Shape: optInt,
		Spellings: ast.SpellAny, Merge: MergeKeepMax,
		Doc: "minimum alignment in bytes",
	},
	KindPacked: {
		Kind: KindPacked, Name: "packed", Scopes: scopesGNU, Subjects: SubjType | SubjField,
		Shape: noArgs, Spellings: ast.SpellGNU, Doc: "remove padding",
	},
	KindSection: {
		Kind: KindSection, Name: "section", Scopes: scopesGNU, Subjects: SubjFunction | SubjGlobalVar,
		Shape: oneStr, Spellings: ast.SpellGNU | ast.SpellPlatform, Doc: "place the symbol in a named section",
	},
	KindVisibility: {
		Kind: KindVisibility, Name: "visibility", Scopes: scopesGNU,
		Subjects: SubjFunction | SubjGlobalVar | SubjType, Shape: oneStr,
		Spellings: ast.SpellGNU, Doc: "ELF symbol visibility",
	},
	KindWeak: {
		Kind: KindWeak, Name: "weak", Scopes: scopesGNU, Subjects: SubjFunction | SubjGlobalVar,
		Shape: noArgs, Spellings: ast.SpellGNU, Doc: "emit a weak symbol",
	},
	KindAlias: {
		Kind: KindAlias, Name: "alias", Scopes: scopesGNU, Subjects: SubjFunction | SubjGlobalVar,
		Shape: oneStr, Spellings: ast.SpellGNU, Flags: FlagInvalidatesDecl,
		Doc: "make the declaration an alias of another symbol",
	},
	KindUsed: {
		Kind: KindUsed, Name: "used", Scopes: scopesGNU, Subjects: SubjFunction | SubjGlobalVar,
		Shape: noArgs, Spellings: ast.SpellGNU, Doc: "emit even if unreferenced",
	},
	KindUnused: {
		Kind: KindUnused, Name: "unused", Aliases: []string{"maybe_unused"}, Scopes: scopesStd,
		Subjects: SubjAll, Shape: noArgs, Spellings: ast.SpellGNU, Doc: "suppress unused warnings",
	},
	KindDLLImport: {
		Kind: KindDLLImport, Name: "dllimport", Scopes: scopesGNU,
		Subjects: SubjFunction | SubjGlobalVar | SubjType, Shape: noArgs,
		Spellings: ast.SpellGNU | ast.SpellPlatform, Formats: target.FormatsCOFF,
		Doc: "import the symbol from a DLL",
	},
	KindDLLExport: {
		Kind: KindDLLExport, Name: "dllexport", Scopes: scopesGNU,
		Subjects: SubjFunction | SubjGlobalVar | SubjType, Shape: noArgs,
		Spellings: ast.SpellGNU | ast.SpellPlatform, Formats: target.FormatsCOFF,
		Doc: "export the symbol from a DLL",
	},
	KindTLSModel: {
		Kind: KindTLSModel, Name: "tls_model", Scopes: scopesGNU, Subjects: SubjGlobalVar,
		Shape: oneStr, Spellings: ast.SpellGNU, Doc: "thread-local storage access model",
	},
	KindVectorSize: {
		Kind: KindVectorSize, Name: "vector_size", Scopes: scopesGNU,
		Subjects: SubjAnyVar | SubjField | SubjType | SubjParam, Shape: oneInt,
		Spellings: ast.SpellGNU, Flags: FlagInvalidatesDecl, Doc: "make the type a SIMD vector of N bytes",
	},
	KindConstructor: {
		Kind: KindConstructor, Name: "constructor", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: optInt, Spellings: ast.SpellGNU, Doc: "run before main, optional priority",
	},
	KindDestructor: {
		Kind: KindDestructor, Name: "destructor", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: optInt, Spellings: ast.SpellGNU, Doc: "run after main, optional priority",
	},

	KindNoReturn: {
		Kind: KindNoReturn, Name: "noreturn", Aliases: []string{"_Noreturn"}, Scopes: scopesStd,
		Subjects: SubjFunction, Shape: noArgs, Spellings: ast.SpellAny, Doc: "function never returns",
	},
	KindAlwaysInline: {
		Kind: KindAlwaysInline, Name: "always_inline", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: noArgs, Spellings: ast.SpellGNU | ast.SpellPlatform, Doc: "inline at every call site",
	},
	KindNoInline: {
		Kind: KindNoInline, Name: "noinline", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: noArgs, Spellings: ast.SpellGNU | ast.SpellPlatform, Doc: "never inline",
	},
	KindHot: {
		Kind: KindHot, Name: "hot", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: noArgs, Spellings: ast.SpellGNU, Doc: "optimize aggressively",
	},
	KindCold: {
		Kind: KindCold, Name: "cold", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: noArgs, Spellings: ast.SpellGNU, Doc: "unlikely to be executed",
	},
	KindConst: {
		Kind: KindConst, Name: "const", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: noArgs, Spellings: ast.SpellGNU, Doc: "result depends only on arguments",
	},
	KindPure: {
		Kind: KindPure, Name: "pure", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: noArgs, Spellings: ast.SpellGNU, Doc: "no side effects, may read memory",
	},
	KindWarnUnusedResult: {
		Kind: KindWarnUnusedResult, Name: "warn_unused_result", Aliases: []string{"nodiscard"},
		Scopes: scopesStd, Subjects: SubjFunction | SubjType, Shape: optStr,
		Spellings: ast.SpellGNU, Doc: "warn when the result is discarded",
	},
	KindMSABI: {
		Kind: KindMSABI, Name: "ms_abi", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: noArgs, Spellings: ast.SpellGNU, Arches: 1 << target.ArchX86_64,
		Doc: "use the Microsoft x64 calling convention",
	},
	KindSysVABI: {
		Kind: KindSysVABI, Name: "sysv_abi", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: noArgs, Spellings: ast.SpellGNU, Arches: 1 << target.ArchX86_64,
		Doc: "use the System V x86-64 calling convention",
	},
	KindInterrupt: {
		Kind: KindInterrupt, Name: "interrupt", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: shape(0, 1, ArgIdent), Spellings: ast.SpellGNU,
		Arches: target.ArchesX86 | 1<<target.ArchARM | 1<<target.ArchRISCV64, Gate: GateError,
		Doc: "function is an interrupt handler",
	},

	KindDeprecated: {
		Kind: KindDeprecated, Name: "deprecated", Scopes: scopesStd, Subjects: SubjAll,
		Shape: optStr, Spellings: ast.SpellAny, Merge: MergeKeepFirst,
		Doc: "warn on use, optional message",
	},
	KindFormat: {
		Kind: KindFormat, Name: "format", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: shape(3, 3, ArgIdent, ArgInt, ArgInt), Spellings: ast.SpellGNU,
		Flags: FlagInvalidatesDecl, Doc: "check calls like printf/scanf",
	},
	KindFormatArg: {
		Kind: KindFormatArg, Name: "format_arg", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: oneInt, Spellings: ast.SpellGNU, Doc: "function returns a modified format string",
	},
	KindNonNull: {
		Kind: KindNonNull, Name: "nonnull", Scopes: scopesGNU, Subjects: SubjFunction | SubjParam,
		Shape: shape(0, Unbounded, ArgInt), Spellings: ast.SpellGNU, Flags: FlagRepeatable,
		Doc: "pointer arguments must not be null",
	},
	KindAllocSize: {
		Kind: KindAllocSize, Name: "alloc_size", Scopes: scopesGNU, Subjects: SubjFunction,
		Shape: shape(1, 2, ArgInt), Spellings: ast.SpellGNU, Doc: "argument(s) give the allocation size",
	},
	KindCleanup: {
		Kind: KindCleanup, Name: "cleanup", Scopes: scopesGNU, Subjects: SubjLocalVar,
		Shape: shape(1, 1, ArgFunc), Spellings: ast.SpellGNU, Flags: FlagInvalidatesDecl,
		Doc: "call a function when the variable goes out of scope",
	},
	KindAnnotate: {
		Kind: KindAnnotate, Name: "annotate", Scopes: []string{"clang"}, Subjects: SubjAll,
		Shape: shape(1, Unbounded, ArgString, ArgAny), Spellings: ast.SpellGNU,
		Flags: FlagRepeatable, Doc: "attach an arbitrary annotation",
	},
}

var byName map[string]Kind

func init() {
	byName = make(map[string]Kind, 2*NumKinds)
	for k := KindInvalid + 1; k < numKinds; k++ {
		info := &catalog[k]
		if info.Kind != k {
			panic("attrs: catalog entry for kind " + info.Name + " is out of place")
		}
		if info.Arches == 0 {
			info.Arches = target.ArchesAll
		}
		if info.Langs == 0 {
			info.Langs = langsCLike
		}
		if info.Formats == 0 {
			info.Formats = target.FormatsAll
		}
		if info.Spellings == 0 {
			info.Spellings = ast.SpellAny
		}
		byName[info.Name] = k
		for _, alias := range info.Aliases {
			byName[alias] = k
		}
	}
}

// Lookup resolves an attribute name and optional scope to its catalog entry.
// GNU-style "__name__" spellings are accepted.
func Lookup(scope, name string) (*Info, bool) {
	if name == "" {
		return nil, false
	}
	if len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		name = name[2 : len(name)-2]
	}
	k, ok := byName[name]
	if !ok {
		return nil, false
	}
	info := &catalog[k]
	if !info.AcceptsScope(scope) {
		return nil, false
	}
	return info, true
}

// InfoOf returns the catalog entry for k. It panics on an invalid kind.
func InfoOf(k Kind) *Info {
	if !k.IsValid() {
		panic("attrs: invalid kind")
	}
	return &catalog[k]
}

// Infos returns all catalog entries sorted by name.
func Infos() []*Info {
	out := make([]*Info, 0, NumKinds)
	for k := KindInvalid + 1; k < numKinds; k++ {
		out = append(out, &catalog[k])
	}
	slices.SortFunc(out, func(a, b *Info) int { return strings.Compare(a.Name, b.Name) })
	return out
}
