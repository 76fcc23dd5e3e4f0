package types

// DataModel fixes the widths of long and pointers.
type DataModel uint8

const (
	LP64 DataModel = iota
	ILP32
	LLP64
)

func (dm DataModel) String() string {
	switch dm {
	case ILP32:
		return "ilp32"
	case LLP64:
		return "llp64"
	default:
		return "lp64"
	}
}

// PointerSize in bytes.
func (dm DataModel) PointerSize() uint64 {
	if dm == ILP32 {
		return 4
	}
	return 8
}

func (dm DataModel) longSize() uint64 {
	if dm == LP64 {
		return 8
	}
	return 4
}

// MaxAlign is the largest fundamental alignment; it is what a bare
// aligned attribute requests.
func (dm DataModel) MaxAlign() uint64 {
	if dm == ILP32 {
		return 8
	}
	return 16
}

// SizeOf returns the size of id in bytes. Incomplete types report false.
func (in *Interner) SizeOf(id TypeID, dm DataModel) (uint64, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return 0, false
	}
	switch tt.Kind {
	case KindBool, KindChar, KindInt, KindUint, KindFloat, KindEnum:
		if tt.Width == WidthLong {
			return dm.longSize(), true
		}
		return uint64(tt.Width) / 8, true
	case KindPointer:
		return dm.PointerSize(), true
	case KindArray:
		elem, ok := in.SizeOf(tt.Elem, dm)
		if !ok {
			return 0, false
		}
		return elem * uint64(tt.Count), true
	case KindRecord:
		info, ok := in.records[tt.Name]
		return info.Size, ok
	}
	return 0, false
}

// AlignOf returns the natural alignment of id in bytes.
func (in *Interner) AlignOf(id TypeID, dm DataModel) (uint64, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return 0, false
	}
	switch tt.Kind {
	case KindArray:
		return in.AlignOf(tt.Elem, dm)
	case KindRecord:
		info, ok := in.records[tt.Name]
		return info.Align, ok
	}
	return in.SizeOf(id, dm)
}
