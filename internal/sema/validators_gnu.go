package sema

import (
	"strconv"
	"strings"

	"fortio.org/safecast"

	"declattr/internal/attrs"
	"declattr/internal/decl"
	"declattr/internal/diag"
	"declattr/internal/target"
	"declattr/internal/types"
)

// validateAligned defaults a bare aligned to the target's largest alignment.
func validateAligned(c *vctx) (attrs.Payload, bool) {
	if len(c.args) == 0 {
		maxAlign, err := safecast.Conv[int64](c.e.opts.Target.Triple.DataModel().MaxAlign())
		if err != nil {
			return nil, false
		}
		return attrs.Int{V: maxAlign}, true
	}
	v, ok := c.checkInt(0, PowerOfTwo, InRange(1, 1<<29))
	return attrs.Int{V: v}, ok
}

func validateSection(c *vctx) (attrs.Payload, bool) {
	name := c.args[0].Str
	if c.e.opts.Target.Triple.ObjectFormat() == target.FormatMachO {
		if !validMachOSection(name) {
			c.rangeError(0, c.args[0].Text(), "macho-section")
			return nil, false
		}
		return attrs.Str{V: name}, true
	}
	if name == "" || strings.ContainsAny(name, " \t\n\r\v\f") {
		c.rangeError(0, c.args[0].Text(), "section-name")
		return nil, false
	}
	return attrs.Str{V: name}, true
}

// validMachOSection accepts "segment,section[,type[,attributes[,stub]]]"
// with segment and section names of at most 16 characters.
func validMachOSection(s string) bool {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 5 {
		return false
	}
	for _, p := range parts[:2] {
		p = strings.TrimSpace(p)
		if p == "" || len(p) > 16 {
			return false
		}
	}
	return true
}

func validateVisibility(c *vctx) (attrs.Payload, bool) {
	v, ok := c.checkWord(0, "default", "hidden", "protected", "internal")
	return attrs.Enum{V: v}, ok
}

// validateAlias rejects aliases on definitions; the alias is the definition.
func validateAlias(c *vctx) (attrs.Payload, bool) {
	if c.decl.Has(decl.FlagDefinition) {
		c.signature("definition")
		return nil, false
	}
	if c.args[0].Str == "" {
		c.rangeError(0, c.args[0].Text(), "non-empty")
		return nil, false
	}
	return attrs.Str{V: c.args[0].Str}, true
}

// validateDLLImport drops dllimport on a definition with a warning.
func validateDLLImport(c *vctx) (attrs.Payload, bool) {
	if c.decl.Has(decl.FlagDefinition) {
		diag.ReportWarning(c.r, diag.SubSignature, c.span, c.info.Name, "definition").Emit()
		return nil, false
	}
	return attrs.Flag{}, true
}

func validateTLSModel(c *vctx) (attrs.Payload, bool) {
	if !c.decl.Has(decl.FlagThreadLocal) {
		c.signature("not-thread-local")
		return nil, false
	}
	v, ok := c.checkWord(0, "global-dynamic", "local-dynamic", "initial-exec", "local-exec")
	return attrs.Enum{V: v}, ok
}

// validateVectorSize needs a scalar element type whose size divides the
// vector size.
func validateVectorSize(c *vctx) (attrs.Payload, bool) {
	v, ok := c.checkInt(0, Positive, PowerOfTwo)
	if !ok {
		return nil, false
	}
	ty := c.decl.Type
	if ty == types.NoTypeID {
		return attrs.Int{V: v}, true
	}
	tt, known := c.types().Lookup(ty)
	if !known || !isScalar(tt.Kind) {
		c.signature("not-scalar")
		return nil, false
	}
	if size, ok := c.types().SizeOf(ty, c.e.opts.Target.Triple.DataModel()); ok && size > 0 {
		if uint64(v)%size != 0 { // #nosec G115 -- v is positive
			c.rangeError(0, c.args[0].Text(), "multiple-of:"+strconv.FormatUint(size, 10))
			return nil, false
		}
	}
	return attrs.Int{V: v}, true
}

func isScalar(k types.Kind) bool {
	switch k {
	case types.KindBool, types.KindChar, types.KindInt, types.KindUint, types.KindFloat, types.KindEnum:
		return true
	}
	return false
}

// validatePriority handles constructor and destructor priorities; the
// default priority runs last.
func validatePriority(c *vctx) (attrs.Payload, bool) {
	if len(c.args) == 0 {
		return attrs.Int{V: 65535}, true
	}
	v, ok := c.checkInt(0, InRange(0, 65535))
	return attrs.Int{V: v}, ok
}

// validateWarnUnusedResult ignores the attribute on functions returning void.
func validateWarnUnusedResult(c *vctx) (attrs.Payload, bool) {
	if c.decl.Category == decl.CatFunction && c.types().IsVoid(c.decl.Type) {
		diag.ReportWarning(c.r, diag.SubSignature, c.span, c.info.Name, "return-void").Emit()
		return nil, false
	}
	return validateOptString(c)
}

var interruptKinds = map[target.Arch][]string{
	target.ArchARM:     {"IRQ", "FIQ", "SWI", "ABORT", "UNDEF"},
	target.ArchRISCV64: {"supervisor", "machine"},
}

var interruptDefault = map[target.Arch]string{
	target.ArchARM:     "IRQ",
	target.ArchRISCV64: "machine",
}

// validateInterrupt checks the handler kind for the target and the handler
// signature: x86 handlers take a frame pointer and an optional error code,
// the others take nothing. All return void.
func validateInterrupt(c *vctx) (attrs.Payload, bool) {
	arch := c.e.opts.Target.Triple.Arch
	words := interruptKinds[arch]
	var kind string
	switch {
	case len(c.args) > 0 && len(words) == 0:
		diag.ReportError(c.r, diag.ArgArity, c.span, c.info.Name, "1", "0", "0").Emit()
		return nil, false
	case len(c.args) > 0:
		w, ok := c.checkWord(0, words...)
		if !ok {
			return nil, false
		}
		kind = w
	default:
		kind = interruptDefault[arch]
	}

	tys := c.types()
	good := tys.IsVoid(c.decl.Type)
	if target.ArchesX86.Has(arch) {
		n := len(c.decl.Params)
		good = good && (n == 1 || n == 2) && tys.IsPointer(c.e.Decls.Get(c.decl.Params[0]).Type)
		if good && n == 2 {
			good = tys.IsInteger(c.e.Decls.Get(c.decl.Params[1]).Type)
		}
	} else {
		good = good && len(c.decl.Params) == 0
	}
	if !good {
		c.signature("interrupt-signature")
		return nil, false
	}
	return attrs.Enum{V: kind}, true
}

var formatArchetypes = []string{"printf", "scanf", "strftime", "strfmon", "syslog"}

// validateFormat checks format(archetype, string-index, first-to-check).
func validateFormat(c *vctx) (attrs.Payload, bool) {
	arch := strings.TrimSuffix(strings.TrimPrefix(c.args[0].Str, "__"), "__")
	arch = strings.TrimPrefix(arch, "gnu_")
	c.args[0].Str = arch
	if _, ok := c.checkWord(0, formatArchetypes...); !ok {
		return nil, false
	}
	fmtIdx, ok := c.checkInt(1, Positive)
	if !ok {
		return nil, false
	}
	p, ok := c.param(1)
	if !ok {
		return nil, false
	}
	if !c.types().IsCharPointer(p.Type) {
		c.paramError(1, "not-char-pointer")
		return nil, false
	}

	first, ok := c.checkInt(2, NonNegative)
	if !ok {
		return nil, false
	}
	if first != 0 {
		limit := int64(len(c.decl.Params)) + 1
		if c.decl.Has(decl.FlagMethod) {
			limit++
		}
		if arch == "strftime" || first <= fmtIdx || first > limit {
			c.paramError(2, "out-of-range")
			return nil, false
		}
		if !c.decl.Has(decl.FlagVariadic) {
			c.paramError(2, "not-variadic")
			return nil, false
		}
	}
	return attrs.Format{Archetype: arch, FmtIndex: fmtIdx, FirstArg: first}, true
}

// validateFormatArg requires a char* parameter and a char* result.
func validateFormatArg(c *vctx) (attrs.Payload, bool) {
	idx, ok := c.checkInt(0, Positive)
	if !ok {
		return nil, false
	}
	p, ok := c.param(0)
	if !ok {
		return nil, false
	}
	if !c.types().IsCharPointer(p.Type) {
		c.paramError(0, "not-char-pointer")
		return nil, false
	}
	if !c.types().IsCharPointer(c.decl.Type) {
		c.signature("return-not-char-pointer")
		return nil, false
	}
	return attrs.Int{V: idx}, true
}

// validateNonNull accepts an index list on functions (empty means every
// pointer parameter) and no arguments on a pointer parameter.
func validateNonNull(c *vctx) (attrs.Payload, bool) {
	if c.decl.Category == decl.CatParam {
		if len(c.args) > 0 {
			diag.ReportError(c.r, diag.ArgArity, c.span, c.info.Name, strconv.Itoa(len(c.args)), "0", "0").Emit()
			return nil, false
		}
		if !c.types().IsPointer(c.decl.Type) {
			c.signature("not-pointer")
			return nil, false
		}
		return attrs.IntList{}, true
	}
	idx, ok := c.indexList(func(p *decl.Decl) string {
		if !c.types().IsPointer(p.Type) {
			return "not-pointer"
		}
		return ""
	})
	return attrs.IntList{V: idx}, ok
}

// validateAllocSize requires integer size parameters and a pointer result.
func validateAllocSize(c *vctx) (attrs.Payload, bool) {
	idx, ok := c.indexList(func(p *decl.Decl) string {
		if !c.types().IsInteger(p.Type) {
			return "not-integer"
		}
		return ""
	})
	if !ok {
		return nil, false
	}
	if !c.types().IsPointer(c.decl.Type) {
		c.signature("return-not-pointer")
		return nil, false
	}
	return attrs.IntList{V: idx}, true
}

// indexList validates every argument as a distinct parameter index; bad
// returns the reason a parameter is unsuitable, or "".
func (c *vctx) indexList(bad func(*decl.Decl) string) ([]int64, bool) {
	out := make([]int64, 0, len(c.args))
	seen := make(map[int64]bool, len(c.args))
	ok := true
	for i, v := range c.args {
		if _, good := c.checkInt(i, Positive); !good {
			ok = false
			continue
		}
		if seen[v.Int] {
			diag.ReportError(c.r, diag.ArgDuplicateIndex, v.Span, c.info.Name, strconv.Itoa(i+1), v.Text()).Emit()
			ok = false
			continue
		}
		seen[v.Int] = true
		p, good := c.param(i)
		if !good {
			ok = false
			continue
		}
		if reason := bad(p); reason != "" {
			c.paramError(i, reason)
			ok = false
			continue
		}
		out = append(out, v.Int)
	}
	return out, ok
}

// validateCleanup resolves the cleanup function and checks that it takes
// exactly one parameter compatible with a pointer to the variable.
func validateCleanup(c *vctx) (attrs.Payload, bool) {
	name := c.args[0].Str
	fn, ok := c.e.Decls.LookupCategory(c.e.Strings.Intern(name), decl.CatFunction)
	if !ok {
		diag.ReportError(c.r, diag.ArgUnresolvedIdent, c.args[0].Span, c.info.Name, "1", name).Emit()
		return nil, false
	}
	f := c.e.Decls.Get(fn)
	if len(f.Params) != 1 {
		c.signature("cleanup-signature")
		return nil, false
	}
	param := c.e.Decls.Get(f.Params[0])
	if !c.types().PointerCompatible(param.Type, c.types().PointerTo(c.decl.Type)) {
		c.signature("cleanup-signature")
		return nil, false
	}
	return attrs.FuncRef{Name: name, Decl: uint32(c.e.Decls.CanonicalOf(fn))}, true
}

func validateAnnotate(c *vctx) (attrs.Payload, bool) {
	a := attrs.Annotation{Key: c.args[0].Str}
	for _, v := range c.args[1:] {
		a.Args = append(a.Args, v.Text())
	}
	return a, true
}
