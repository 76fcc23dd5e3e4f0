package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Void      TypeID
	Bool      TypeID
	Char      TypeID
	Short     TypeID
	Int       TypeID
	Long      TypeID
	LongLong  TypeID
	Uint      TypeID
	Ulong     TypeID
	Float     TypeID
	Double    TypeID
	CharPtr   TypeID
	VoidPtr   TypeID
	ConstChar TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
	records  map[string]RecordInfo
}

// RecordInfo carries the layout of a complete record type.
type RecordInfo struct {
	Size  uint64
	Align uint64
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:   make(map[Type]TypeID, 64),
		records: make(map[string]RecordInfo),
	}
	in.types = append(in.types, Type{Kind: KindInvalid}) // reserve 0
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool, Width: Width8})
	in.builtins.Char = in.Intern(Type{Kind: KindChar, Width: Width8})
	in.builtins.Short = in.Intern(MakeInt(Width16))
	in.builtins.Int = in.Intern(MakeInt(Width32))
	in.builtins.Long = in.Intern(MakeInt(WidthLong))
	in.builtins.LongLong = in.Intern(MakeInt(Width64))
	in.builtins.Uint = in.Intern(MakeUint(Width32))
	in.builtins.Ulong = in.Intern(MakeUint(WidthLong))
	in.builtins.Float = in.Intern(MakeFloat(Width32))
	in.builtins.Double = in.Intern(MakeFloat(Width64))
	in.builtins.CharPtr = in.Intern(MakePointer(in.builtins.Char))
	in.builtins.VoidPtr = in.Intern(MakePointer(in.builtins.Void))
	in.builtins.ConstChar = in.Intern(Type{Kind: KindChar, Width: Width8, Const: true})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// DefineRecord records the layout of a complete struct or union.
func (in *Interner) DefineRecord(name string, info RecordInfo) TypeID {
	in.records[name] = info
	return in.Intern(MakeRecord(name))
}

// Unqualified strips const from the top level.
func (in *Interner) Unqualified(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || !tt.Const {
		return id
	}
	tt.Const = false
	return in.Intern(tt)
}

// PointerTo interns a pointer to elem.
func (in *Interner) PointerTo(elem TypeID) TypeID {
	return in.Intern(MakePointer(elem))
}
