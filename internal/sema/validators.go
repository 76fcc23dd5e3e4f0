package sema

import (
	"strconv"

	"declattr/internal/attrs"
	"declattr/internal/decl"
	"declattr/internal/diag"
	"declattr/internal/source"
	"declattr/internal/types"
)

// vctx is what a validator sees: the declaration, the evaluated arguments
// and read-only access to everything else through the engine.
type vctx struct {
	e    *Engine
	r    diag.Reporter
	id   decl.ID
	decl *decl.Decl
	info *attrs.Info
	span source.Span
	args []Value
}

// validator turns evaluated arguments into a payload. It reports every
// problem it finds and returns false to reject the attribute.
type validator func(c *vctx) (attrs.Payload, bool)

var validators = [attrs.NumKinds + 1]validator{
	attrs.KindReqdWorkGroupSize:      validateDims,
	attrs.KindMaxWorkGroupSize:       validateDims,
	attrs.KindWorkGroupSizeHint:      validateDims,
	attrs.KindMaxGlobalWorkDim:       intWith(InRange(0, 3)),
	attrs.KindNumSIMDWorkItems:       intWith(Positive),
	attrs.KindReqdSubGroupSize:       validateSubGroupSize,
	attrs.KindNoGlobalWorkOffset:     validateNoGlobalWorkOffset,
	attrs.KindSchedulerTargetFmaxMhz: intWith(InRange(0, 1048576)),

	attrs.KindFPGAMemory:     validateFPGAMemory,
	attrs.KindFPGARegister:   validateFlag,
	attrs.KindBankWidth:      intWith(PowerOfTwo),
	attrs.KindNumBanks:       intWith(PowerOfTwo),
	attrs.KindBankBits:       validateBankBits,
	attrs.KindMaxReplicates:  intWith(Positive),
	attrs.KindSimpleDualPort: validateFlag,
	attrs.KindSinglePump:     validateFlag,
	attrs.KindDoublePump:     validateFlag,
	attrs.KindPrivateCopies:  intWith(NonNegative),
	attrs.KindForcePow2Depth: intWith(InRange(0, 1)),
	attrs.KindMerge:          validateMerge,

	attrs.KindAligned:     validateAligned,
	attrs.KindPacked:      validateFlag,
	attrs.KindSection:     validateSection,
	attrs.KindVisibility:  validateVisibility,
	attrs.KindWeak:        validateFlag,
	attrs.KindAlias:       validateAlias,
	attrs.KindUsed:        validateFlag,
	attrs.KindUnused:      validateFlag,
	attrs.KindDLLImport:   validateDLLImport,
	attrs.KindDLLExport:   validateFlag,
	attrs.KindTLSModel:    validateTLSModel,
	attrs.KindVectorSize:  validateVectorSize,
	attrs.KindConstructor: validatePriority,
	attrs.KindDestructor:  validatePriority,

	attrs.KindNoReturn:         validateFlag,
	attrs.KindAlwaysInline:     validateFlag,
	attrs.KindNoInline:         validateFlag,
	attrs.KindHot:              validateFlag,
	attrs.KindCold:             validateFlag,
	attrs.KindConst:            validateFlag,
	attrs.KindPure:             validateFlag,
	attrs.KindWarnUnusedResult: validateWarnUnusedResult,
	attrs.KindMSABI:            validateFlag,
	attrs.KindSysVABI:          validateFlag,
	attrs.KindInterrupt:        validateInterrupt,

	attrs.KindDeprecated: validateOptString,
	attrs.KindFormat:     validateFormat,
	attrs.KindFormatArg:  validateFormatArg,
	attrs.KindNonNull:    validateNonNull,
	attrs.KindAllocSize:  validateAllocSize,
	attrs.KindCleanup:    validateCleanup,
	attrs.KindAnnotate:   validateAnnotate,
}

// checkSubject enforces the catalog subject mask.
func (e *Engine) checkSubject(r diag.Reporter, d *decl.Decl, info *attrs.Info, span source.Span) bool {
	subj := d.Subject()
	if info.Subjects.Allows(subj) {
		return true
	}
	diag.ReportError(r, diag.SubKind, span, info.Name, subj.String(), info.Subjects.String()).Emit()
	return false
}

// validate runs the kind's validator on resolved arguments.
func (e *Engine) validate(r diag.Reporter, id decl.ID, info *attrs.Info, span source.Span, args []Value) (attrs.Payload, bool) {
	fn := validators[info.Kind]
	if fn == nil {
		panic("sema: no validator for " + info.Name)
	}
	c := &vctx{e: e, r: r, id: id, decl: e.Decls.Get(id), info: info, span: span, args: args}
	return fn(c)
}

func validateFlag(*vctx) (attrs.Payload, bool) { return attrs.Flag{}, true }

// intWith validates a single integer argument.
func intWith(checks ...Check) validator {
	return func(c *vctx) (attrs.Payload, bool) {
		v, ok := c.checkInt(0, checks...)
		return attrs.Int{V: v}, ok
	}
}

func validateOptString(c *vctx) (attrs.Payload, bool) {
	if len(c.args) == 0 {
		return attrs.Str{}, true
	}
	return attrs.Str{V: c.args[0].Str}, true
}

// signature reports a declaration that cannot carry the attribute.
func (c *vctx) signature(reason string) {
	diag.ReportError(c.r, diag.SubSignature, c.span, c.info.Name, reason).Emit()
}

// param resolves a 1-based parameter index written in argument i. Methods
// count the implicit object parameter as 1.
func (c *vctx) param(i int) (*decl.Decl, bool) {
	v := c.args[i].Int
	offset := int64(0)
	if c.decl.Has(decl.FlagMethod) {
		offset = 1
	}
	pos := v - 1 - offset
	if pos < 0 || pos >= int64(len(c.decl.Params)) {
		c.paramError(i, "out-of-range")
		return nil, false
	}
	return c.e.Decls.Get(c.decl.Params[pos]), true
}

func (c *vctx) paramError(i int, reason string) {
	diag.ReportError(c.r, diag.ArgParamIndex, c.args[i].Span, c.info.Name,
		strconv.Itoa(i+1), c.args[i].Text(), reason).Emit()
}

func (c *vctx) types() *types.Interner { return c.e.Types }
