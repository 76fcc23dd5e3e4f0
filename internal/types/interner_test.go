package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Void == NoTypeID || b.Int == NoTypeID || b.CharPtr == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	if !in.IsCharPointer(b.CharPtr) || in.IsCharPointer(b.VoidPtr) {
		t.Fatalf("char pointer predicate wrong")
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	p1 := in.PointerTo(in.Builtins().Int)
	p2 := in.Intern(MakePointer(in.Builtins().Int))
	if p1 != p2 {
		t.Fatalf("pointer types should be deduplicated")
	}
}

func TestParse(t *testing.T) {
	in := NewInterner()
	tests := []struct {
		in   string
		want string
	}{
		{"int", "int"},
		{"const char *", "const char*"},
		{"char*", "char*"},
		{"unsigned long", "unsigned long"},
		{"size_t", "unsigned long"},
		{"struct S*", "struct S*"},
		{"int[4]", "int[4]"},
		{"void **", "void**"},
		{"char * const", "char* const"},
	}
	for _, tt := range tests {
		id, err := in.Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if got := in.String(id); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := in.Parse("widget"); err == nil {
		t.Errorf("unknown type must fail")
	}
}

func TestSizeOf(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	tests := []struct {
		id   TypeID
		dm   DataModel
		want uint64
	}{
		{b.Int, LP64, 4},
		{b.Long, LP64, 8},
		{b.Long, LLP64, 4},
		{b.CharPtr, ILP32, 4},
		{in.Intern(MakeArray(b.Short, 3)), LP64, 6},
	}
	for _, tt := range tests {
		got, ok := in.SizeOf(tt.id, tt.dm)
		if !ok || got != tt.want {
			t.Errorf("SizeOf(%s, %s) = %d, %v; want %d", in.String(tt.id), tt.dm, got, ok, tt.want)
		}
	}
	if _, ok := in.SizeOf(in.Intern(MakeRecord("Opaque")), LP64); ok {
		t.Errorf("incomplete record must have no size")
	}
	rec := in.DefineRecord("Pair", RecordInfo{Size: 8, Align: 4})
	if sz, ok := in.SizeOf(rec, LP64); !ok || sz != 8 {
		t.Errorf("record size = %d, %v", sz, ok)
	}
}

func TestPointerCompatible(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	intPtr := in.PointerTo(b.Int)
	constIntPtr := in.PointerTo(in.Intern(Type{Kind: KindInt, Width: Width32, Const: true}))
	if !in.PointerCompatible(constIntPtr, intPtr) {
		t.Errorf("const int* must accept int*")
	}
	if !in.PointerCompatible(b.VoidPtr, intPtr) {
		t.Errorf("void* must accept int*")
	}
	if in.PointerCompatible(b.CharPtr, intPtr) {
		t.Errorf("char* must not accept int*")
	}
	if in.PointerCompatible(b.Int, intPtr) {
		t.Errorf("non-pointer parameter is never compatible")
	}
}
