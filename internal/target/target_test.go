package target

import (
	"testing"

	"declattr/internal/types"
)

func TestParseTriple(t *testing.T) {
	tests := []struct {
		triple string
		arch   Arch
		os     OS
		format ObjectFormat
		dm     types.DataModel
	}{
		{"x86_64-unknown-linux-gnu", ArchX86_64, OSLinux, FormatELF, types.LP64},
		{"x86_64-pc-windows-msvc", ArchX86_64, OSWindows, FormatCOFF, types.LLP64},
		{"x86_64-w64-windows-gnu", ArchX86_64, OSWindows, FormatCOFF, types.LLP64},
		{"aarch64-apple-darwin", ArchAArch64, OSDarwin, FormatMachO, types.LP64},
		{"i686-pc-linux-gnu", ArchX86, OSLinux, FormatELF, types.ILP32},
		{"wasm32-unknown-unknown", ArchWasm32, OSUnknown, FormatWasm, types.ILP32},
		{"spir64_fpga-unknown-unknown", ArchSPIR64FPGA, OSUnknown, FormatELF, types.LP64},
	}
	for _, tt := range tests {
		got, err := ParseTriple(tt.triple)
		if err != nil {
			t.Fatalf("ParseTriple(%q): %v", tt.triple, err)
		}
		if got.Arch != tt.arch || got.OS != tt.os {
			t.Errorf("%s: arch=%s os=%s", tt.triple, got.Arch, got.OS)
		}
		if got.ObjectFormat() != tt.format {
			t.Errorf("%s: format=%s want %s", tt.triple, got.ObjectFormat(), tt.format)
		}
		if got.DataModel() != tt.dm {
			t.Errorf("%s: data model=%s want %s", tt.triple, got.DataModel(), tt.dm)
		}
	}
	if _, err := ParseTriple("z80-unknown-none"); err == nil {
		t.Errorf("unknown arch must fail")
	}
	if _, err := ParseTriple(""); err == nil {
		t.Errorf("empty triple must fail")
	}
}

func TestMasks(t *testing.T) {
	if !ArchesGPU.Has(ArchSPIR64FPGA) || ArchesGPU.Has(ArchX86_64) {
		t.Fatalf("GPU mask wrong")
	}
	if !LangsCXX.Has(LangSYCL) || LangsCXX.Has(LangC) {
		t.Fatalf("C++ lang mask wrong")
	}
	names := ArchesX86.Names()
	if len(names) != 2 || names[0] != "i386" || names[1] != "x86_64" {
		t.Fatalf("Names = %v", names)
	}
}

func TestSubGroupSizes(t *testing.T) {
	if got := MustParseTriple("nvptx64-nvidia-cuda").SubGroupSizes(); len(got) != 1 || got[0] != 32 {
		t.Fatalf("nvptx sub-group sizes = %v", got)
	}
	if MustParseTriple("x86_64-unknown-linux-gnu").SubGroupSizes() != nil {
		t.Fatalf("host has no sub-groups")
	}
}

func TestParseLang(t *testing.T) {
	for in, want := range map[string]Lang{"C": LangC, "c++": LangCXX, "SYCL": LangSYCL, "cl": LangOpenCL} {
		got, err := ParseLang(in)
		if err != nil || got != want {
			t.Errorf("ParseLang(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLang("fortran"); err == nil {
		t.Errorf("fortran must fail")
	}
}
