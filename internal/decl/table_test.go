package decl

import (
	"testing"

	"declattr/internal/attrs"
	"declattr/internal/source"
	"declattr/internal/types"
)

func TestRedeclarationsShareCanonicalSet(t *testing.T) {
	tab := NewTable()
	strs := source.NewInterner()
	name := strs.Intern("f")
	first := tab.Declare(Decl{Name: name, Category: CatFunction})
	second := tab.Redeclare(first, Decl{Category: CatFunction, Flags: FlagDefinition})
	third := tab.Redeclare(second, Decl{Category: CatFunction})

	if tab.CanonicalOf(third) != first || tab.Get(third).Prev != second {
		t.Fatalf("canonical chain broken")
	}
	if tab.Get(second).set != nil {
		t.Fatalf("redeclarations must not own storage")
	}
	if tab.Set(third) != tab.Set(first) {
		t.Fatalf("redeclarations must share the canonical set")
	}
	if got := tab.Redecls(second); len(got) != 3 {
		t.Fatalf("Redecls = %v", got)
	}
	if id, ok := tab.Lookup(name); !ok || id != third {
		t.Fatalf("Lookup = %d, %v", id, ok)
	}
}

func TestSubjects(t *testing.T) {
	tests := []struct {
		d    Decl
		want attrs.Subject
	}{
		{Decl{Category: CatFunction}, attrs.SubjFunction},
		{Decl{Category: CatVariable, Storage: StorageAuto}, attrs.SubjLocalVar},
		{Decl{Category: CatVariable, Storage: StorageStatic}, attrs.SubjGlobalVar},
		{Decl{Category: CatField}, attrs.SubjField},
		{Decl{Category: CatParam}, attrs.SubjParam},
		{Decl{Category: CatType}, attrs.SubjType},
	}
	for _, tt := range tests {
		if got := tt.d.Subject(); got != tt.want {
			t.Errorf("%s/%s subject = %s, want %s", tt.d.Category, tt.d.Storage, got, tt.want)
		}
	}
}

func TestTemplateParamLookup(t *testing.T) {
	tab := NewTable()
	strs := source.NewInterner()
	n := strs.Intern("N")
	fn := tab.Declare(Decl{Category: CatFunction, TemplateParams: []TemplateParam{{Name: n, Kind: TParamValue}}})
	local := tab.Declare(Decl{Category: CatVariable, Storage: StorageAuto, Parent: fn})
	if _, ok := tab.TemplateParam(local, n); !ok {
		t.Fatalf("template parameter of the enclosing function must be visible")
	}
	spec := tab.DeclareSpecialization(fn, "v1=8")
	if _, ok := tab.TemplateParam(spec, n); !ok {
		t.Fatalf("specialization must see the pattern's parameters")
	}
	if got, ok := tab.Specialization(fn, "v1=8"); !ok || got != spec {
		t.Fatalf("Specialization = %d, %v", got, ok)
	}
	if !tab.Get(spec).Has(FlagSpecialization) || tab.Get(spec).Pattern != fn {
		t.Fatalf("specialization flags wrong")
	}
}

func TestSubstitutionKeyIsOrderIndependent(t *testing.T) {
	strs := source.NewInterner()
	tys := types.NewInterner()
	a, b := strs.Intern("A"), strs.Intern("B")
	s1 := Substitution{Values: map[source.StringID]int64{a: 1, b: 2}}
	s2 := Substitution{Values: map[source.StringID]int64{b: 2, a: 1}}
	if s1.Key() != s2.Key() {
		t.Fatalf("keys differ: %q vs %q", s1.Key(), s2.Key())
	}
	s3 := Substitution{Values: map[source.StringID]int64{a: 1}, Types: map[source.StringID]types.TypeID{b: tys.Builtins().Int}}
	if got := s3.Format(strs, tys); got != "A = 1, B = int" {
		t.Fatalf("Format = %q", got)
	}
}

func TestMarkInvalidPropagatesToCanonical(t *testing.T) {
	tab := NewTable()
	first := tab.Declare(Decl{Category: CatFunction})
	second := tab.Redeclare(first, Decl{Category: CatFunction})
	tab.MarkInvalid(second)
	if !tab.IsInvalid(first) || !tab.IsInvalid(second) {
		t.Fatalf("invalid flag must be visible from every redeclaration")
	}
}
