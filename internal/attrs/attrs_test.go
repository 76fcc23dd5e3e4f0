package attrs

import (
	"math"
	"testing"

	"declattr/internal/ast"
	"declattr/internal/target"
)

func TestCatalogCoversEveryKind(t *testing.T) {
	if len(All()) != NumKinds {
		t.Fatalf("All() = %d kinds, want %d", len(All()), NumKinds)
	}
	for _, k := range All() {
		info := InfoOf(k)
		if info.Name == "" || info.Doc == "" {
			t.Errorf("kind %d has an incomplete catalog entry", k)
		}
		if info.Subjects == SubjNone {
			t.Errorf("%s has no subjects", info.Name)
		}
		if info.Shape.Max != Unbounded && info.Shape.Max < info.Shape.Min {
			t.Errorf("%s has inverted arity bounds", info.Name)
		}
		if info.Arches == 0 || info.Langs == 0 || info.Spellings == 0 {
			t.Errorf("%s has unset gating masks", info.Name)
		}
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		scope, name string
		want        Kind
		ok          bool
	}{
		{"", "num_banks", KindNumBanks, true},
		{"intel", "numbanks", KindNumBanks, true},
		{"gnu", "numbanks", KindInvalid, false},
		{"", "__aligned__", KindAligned, true},
		{"gnu", "aligned", KindAligned, true},
		{"", "nodiscard", KindWarnUnusedResult, true},
		{"sycl", "reqd_work_group_size", KindReqdWorkGroupSize, true},
		{"", "reqd_size", KindReqdWorkGroupSize, true},
		{"", "frobnicate", KindInvalid, false},
	}
	for _, tt := range tests {
		info, ok := Lookup(tt.scope, tt.name)
		if ok != tt.ok {
			t.Errorf("Lookup(%q, %q) ok = %v", tt.scope, tt.name, ok)
			continue
		}
		if ok && info.Kind != tt.want {
			t.Errorf("Lookup(%q, %q) = %s, want %s", tt.scope, tt.name, info.Kind, tt.want)
		}
	}
}

func TestInfosSorted(t *testing.T) {
	infos := Infos()
	for i := 1; i < len(infos); i++ {
		if infos[i-1].Name >= infos[i].Name {
			t.Fatalf("Infos not sorted at %s, %s", infos[i-1].Name, infos[i].Name)
		}
	}
}

func TestShape(t *testing.T) {
	s := InfoOf(KindAnnotate).Shape
	if s.At(0) != ArgString || s.At(5) != ArgAny {
		t.Fatalf("annotate shape positions wrong")
	}
	if s.Accepts(0) || !s.Accepts(7) {
		t.Fatalf("annotate arity wrong")
	}
	if InfoOf(KindReqdWorkGroupSize).Shape.Accepts(4) {
		t.Fatalf("reqd_work_group_size takes at most 3 arguments")
	}
}

func TestPayloadEquality(t *testing.T) {
	tests := []struct {
		a, b Payload
		want bool
	}{
		{Int{V: 8}, Int{V: 8}, true},
		{Int{V: 8}, Int{V: 4}, false},
		{MakeDims(2, 2, 2), MakeDims(2, 2, 2), true},
		{MakeDims(2, 2), MakeDims(2, 2, 1), false},
		{IntList{V: []int64{0, 1}}, IntList{V: []int64{0, 1}}, true},
		{Str{V: "a"}, Enum{V: "a"}, false},
		{Flag{}, Flag{}, true},
		{Pending{}, Pending{}, false},
		{Annotation{Key: "k", Args: []string{"1"}}, Annotation{Key: "k", Args: []string{"1"}}, true},
	}
	for i, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("case %d: %v.Equal(%v) = %v", i, tt.a, tt.b, got)
		}
	}
}

func TestDimsComponents(t *testing.T) {
	d := MakeDims(4, 8, 16)
	if d.Fastest() != 16 || d.Component(2) != 4 || d.Component(3) != 1 {
		t.Fatalf("component order wrong: %v", d)
	}
	if d.Product() != 512 {
		t.Fatalf("product = %d", d.Product())
	}
	if d.String() != "4, 8, 16" {
		t.Fatalf("String = %q", d.String())
	}
}

func TestDimsProductSaturates(t *testing.T) {
	tests := []struct {
		dims    Dims
		product int64
		uniform bool
	}{
		{MakeDims(1, 1, 1), 1, true},
		{MakeDims(1), 1, true},
		{MakeDims(2147483648, 2147483648, 4), math.MaxInt64, false},
		{MakeDims(4294967295, 4294967295, 4294967295), math.MaxInt64, false},
		{MakeDims(4294967295, 4294967295), math.MaxInt64, false},
		{MakeDims(65536, 65536, 4), 1 << 34, false},
	}
	for _, tt := range tests {
		if got := tt.dims.Product(); got != tt.product {
			t.Errorf("%s: Product = %d, want %d", tt.dims, got, tt.product)
		}
		if got := tt.dims.Uniform(); got != tt.uniform {
			t.Errorf("%s: Uniform = %v, want %v", tt.dims, got, tt.uniform)
		}
	}
}

func TestAttrPending(t *testing.T) {
	a := Attr{Kind: KindBankWidth, Payload: Pending{Args: []ast.ExprID{1}}}
	if !a.IsPending() || a.IsResolved() {
		t.Fatalf("pending attr misreported")
	}
	b := Attr{Kind: KindBankWidth, Payload: Int{V: 8}}
	if a.SameValue(&b) || !b.SameValue(&Attr{Kind: KindBankWidth, Payload: Int{V: 8}}) {
		t.Fatalf("SameValue wrong")
	}
}

func TestGatingMasks(t *testing.T) {
	info := InfoOf(KindDLLExport)
	if info.Formats.Has(target.FormatELF) || !info.Formats.Has(target.FormatCOFF) {
		t.Fatalf("dllexport must be COFF only")
	}
	if !InfoOf(KindNumBanks).HasFlag(FlagMemoryFamily) || InfoOf(KindFPGARegister).HasFlag(FlagMemoryFamily) {
		t.Fatalf("memory family flags wrong")
	}
}
