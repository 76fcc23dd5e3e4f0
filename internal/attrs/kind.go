package attrs

// Kind is the closed set of attribute kinds the engine understands.
// Adding a kind requires a catalog entry and a validator; tests fail otherwise.
type Kind uint16

const (
	KindInvalid Kind = iota

	// Kernel work-group shape.
	KindReqdWorkGroupSize
	KindMaxWorkGroupSize
	KindWorkGroupSizeHint
	KindMaxGlobalWorkDim
	KindNumSIMDWorkItems
	KindReqdSubGroupSize
	KindNoGlobalWorkOffset
	KindSchedulerTargetFmaxMhz

	// FPGA local memory.
	KindFPGAMemory
	KindFPGARegister
	KindBankWidth
	KindNumBanks
	KindBankBits
	KindMaxReplicates
	KindSimpleDualPort
	KindSinglePump
	KindDoublePump
	KindPrivateCopies
	KindForcePow2Depth
	KindMerge

	// Layout and linkage.
	KindAligned
	KindPacked
	KindSection
	KindVisibility
	KindWeak
	KindAlias
	KindUsed
	KindUnused
	KindDLLImport
	KindDLLExport
	KindTLSModel
	KindVectorSize
	KindConstructor
	KindDestructor

	// Function behavior.
	KindNoReturn
	KindAlwaysInline
	KindNoInline
	KindHot
	KindCold
	KindConst
	KindPure
	KindWarnUnusedResult
	KindMSABI
	KindSysVABI
	KindInterrupt

	// Checking and annotation.
	KindDeprecated
	KindFormat
	KindFormatArg
	KindNonNull
	KindAllocSize
	KindCleanup
	KindAnnotate

	numKinds
)

// NumKinds counts valid kinds, excluding KindInvalid.
const NumKinds = int(numKinds) - 1

func (k Kind) IsValid() bool { return k > KindInvalid && k < numKinds }

func (k Kind) String() string {
	if !k.IsValid() {
		return "invalid"
	}
	return catalog[k].Name
}

// All returns every valid kind in declaration order.
func All() []Kind {
	out := make([]Kind, 0, NumKinds)
	for k := KindInvalid + 1; k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}
