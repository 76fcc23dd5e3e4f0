// Package target describes the compilation target and language mode that
// gate which attribute kinds exist.
package target

import (
	"fmt"
	"strings"

	"declattr/internal/types"
)

// Arch identifies the target architecture.
type Arch uint8

const (
	ArchUnknown Arch = iota
	ArchX86
	ArchX86_64
	ArchARM
	ArchAArch64
	ArchRISCV64
	ArchWasm32
	ArchSPIR
	ArchSPIR64
	ArchSPIR64FPGA
	ArchNVPTX
	ArchNVPTX64
	ArchAMDGCN
)

var archNames = [...]string{
	ArchUnknown:    "unknown",
	ArchX86:        "i386",
	ArchX86_64:     "x86_64",
	ArchARM:        "arm",
	ArchAArch64:    "aarch64",
	ArchRISCV64:    "riscv64",
	ArchWasm32:     "wasm32",
	ArchSPIR:       "spir",
	ArchSPIR64:     "spir64",
	ArchSPIR64FPGA: "spir64_fpga",
	ArchNVPTX:      "nvptx",
	ArchNVPTX64:    "nvptx64",
	ArchAMDGCN:     "amdgcn",
}

func (a Arch) String() string {
	if int(a) < len(archNames) {
		return archNames[a]
	}
	return "unknown"
}

// ArchMask is a set of architectures.
type ArchMask uint32

func (a Arch) Mask() ArchMask { return 1 << a }

const (
	ArchesHost ArchMask = 1<<ArchX86 | 1<<ArchX86_64 | 1<<ArchARM | 1<<ArchAArch64 | 1<<ArchRISCV64 | 1<<ArchWasm32
	ArchesX86  ArchMask = 1<<ArchX86 | 1<<ArchX86_64
	ArchesSPIR ArchMask = 1<<ArchSPIR | 1<<ArchSPIR64 | 1<<ArchSPIR64FPGA
	ArchesFPGA ArchMask = 1 << ArchSPIR64FPGA
	// ArchesGPU are the offload device targets.
	ArchesGPU ArchMask = ArchesSPIR | 1<<ArchNVPTX | 1<<ArchNVPTX64 | 1<<ArchAMDGCN
	ArchesAll ArchMask = ^ArchMask(0)
)

func (m ArchMask) Has(a Arch) bool { return m&a.Mask() != 0 }

// Names lists the architectures in m.
func (m ArchMask) Names() []string {
	if m == ArchesAll {
		return []string{"*"}
	}
	var out []string
	for a := ArchX86; int(a) < len(archNames); a++ {
		if m.Has(a) {
			out = append(out, a.String())
		}
	}
	return out
}

// ParseArch accepts the names used in triples plus a few aliases.
func ParseArch(s string) (Arch, bool) {
	switch s {
	case "i386", "i486", "i586", "i686", "x86":
		return ArchX86, true
	case "amd64":
		return ArchX86_64, true
	case "arm64":
		return ArchAArch64, true
	}
	for a, name := range archNames {
		if name == s && a != int(ArchUnknown) {
			return Arch(a), true // #nosec G115
		}
	}
	return ArchUnknown, false
}

// OS is the operating system component of a triple.
type OS uint8

const (
	OSUnknown OS = iota
	OSLinux
	OSWindows
	OSDarwin
	OSCUDA
	OSAMDHSA
)

func (o OS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSWindows:
		return "windows"
	case OSDarwin:
		return "darwin"
	case OSCUDA:
		return "cuda"
	case OSAMDHSA:
		return "amdhsa"
	}
	return "unknown"
}

func parseOS(s string) OS {
	switch {
	case s == "linux":
		return OSLinux
	case s == "windows" || s == "win32" || s == "mingw32":
		return OSWindows
	case s == "darwin" || s == "macos" || strings.HasPrefix(s, "macosx") || s == "ios":
		return OSDarwin
	case s == "cuda":
		return OSCUDA
	case s == "amdhsa":
		return OSAMDHSA
	}
	return OSUnknown
}

// ObjectFormat decides what a valid section name looks like.
type ObjectFormat uint8

const (
	FormatELF ObjectFormat = iota
	FormatCOFF
	FormatMachO
	FormatWasm
)

func (f ObjectFormat) String() string {
	switch f {
	case FormatCOFF:
		return "coff"
	case FormatMachO:
		return "macho"
	case FormatWasm:
		return "wasm"
	}
	return "elf"
}

// Triple is a parsed arch-vendor-os[-env] string.
type Triple struct {
	Raw    string
	Arch   Arch
	Vendor string
	OS     OS
	Env    string
}

// DefaultTriple is used when neither config nor flags name one.
const DefaultTriple = "x86_64-unknown-linux-gnu"

// ParseTriple parses a target triple. Unknown vendor/os/env components are
// kept verbatim; an unknown architecture is an error.
func ParseTriple(s string) (Triple, error) {
	raw := strings.TrimSpace(s)
	parts := strings.Split(raw, "-")
	if raw == "" || parts[0] == "" {
		return Triple{}, fmt.Errorf("empty target triple")
	}
	arch, ok := ParseArch(parts[0])
	if !ok {
		return Triple{}, fmt.Errorf("unknown architecture %q in triple %q", parts[0], raw)
	}
	t := Triple{Raw: raw, Arch: arch}
	if len(parts) > 1 {
		t.Vendor = parts[1]
	}
	if len(parts) > 2 {
		t.OS = parseOS(parts[2])
	}
	if len(parts) > 3 {
		t.Env = strings.Join(parts[3:], "-")
	}
	if t.Vendor == "apple" && t.OS == OSUnknown {
		t.OS = OSDarwin
	}
	return t, nil
}

// MustParseTriple panics on malformed input; for tests and constants.
func MustParseTriple(s string) Triple {
	t, err := ParseTriple(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Triple) String() string { return t.Raw }

// ObjectFormat derives the object file format from the OS and arch.
func (t Triple) ObjectFormat() ObjectFormat {
	switch {
	case t.Arch == ArchWasm32:
		return FormatWasm
	case t.OS == OSDarwin:
		return FormatMachO
	case t.OS == OSWindows:
		return FormatCOFF
	}
	return FormatELF
}

// Is32Bit reports 32-bit pointer architectures.
func (t Triple) Is32Bit() bool {
	switch t.Arch {
	case ArchX86, ArchARM, ArchWasm32, ArchSPIR, ArchNVPTX:
		return true
	}
	return false
}

// DataModel returns the C data model the target uses.
func (t Triple) DataModel() types.DataModel {
	switch {
	case t.Is32Bit():
		return types.ILP32
	case t.OS == OSWindows:
		return types.LLP64
	}
	return types.LP64
}

// IsDevice reports offload device targets.
func (t Triple) IsDevice() bool { return ArchesGPU.Has(t.Arch) }

// SubGroupSizes returns the sub-group sizes a device supports; nil means the
// target has no sub-groups.
func (t Triple) SubGroupSizes() []int64 {
	switch t.Arch {
	case ArchSPIR, ArchSPIR64, ArchSPIR64FPGA:
		return []int64{8, 16, 32}
	case ArchNVPTX, ArchNVPTX64:
		return []int64{32}
	case ArchAMDGCN:
		return []int64{32, 64}
	}
	return nil
}

// FormatMask is a set of object formats.
type FormatMask uint8

func (f ObjectFormat) Mask() FormatMask { return 1 << f }

const (
	FormatsCOFF FormatMask = 1 << FormatCOFF
	FormatsAll  FormatMask = 1<<FormatELF | 1<<FormatCOFF | 1<<FormatMachO | 1<<FormatWasm
)

func (m FormatMask) Has(f ObjectFormat) bool { return m&f.Mask() != 0 }
