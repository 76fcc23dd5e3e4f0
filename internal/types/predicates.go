package types

import (
	"fmt"
	"strings"
)

// IsInteger reports integer-like types, including bool, char and enums.
func (in *Interner) IsInteger(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindBool, KindChar, KindInt, KindUint, KindEnum:
		return true
	}
	return false
}

func (in *Interner) IsPointer(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindPointer
}

func (in *Interner) IsVoid(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindVoid
}

// Pointee returns the element type of a pointer.
func (in *Interner) Pointee(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindPointer {
		return NoTypeID, false
	}
	return tt.Elem, true
}

// IsCharPointer reports char* and const char*.
func (in *Interner) IsCharPointer(id TypeID) bool {
	elem, ok := in.Pointee(id)
	if !ok {
		return false
	}
	tt, ok := in.Lookup(elem)
	return ok && tt.Kind == KindChar
}

// PointerCompatible reports whether a value of type arg can be passed to a
// parameter of type param without a cast: both pointers, same unqualified
// pointee, or param is void*.
func (in *Interner) PointerCompatible(param, arg TypeID) bool {
	pe, ok := in.Pointee(param)
	if !ok {
		return false
	}
	ae, ok := in.Pointee(arg)
	if !ok {
		return false
	}
	pe, ae = in.Unqualified(pe), in.Unqualified(ae)
	return pe == ae || in.IsVoid(pe)
}

// String renders id in C syntax.
func (in *Interner) String(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	var base string
	switch tt.Kind {
	case KindVoid:
		base = "void"
	case KindBool:
		base = "bool"
	case KindChar:
		base = "char"
	case KindInt, KindUint:
		base = intName(tt)
	case KindFloat:
		base = "float"
		if tt.Width == Width64 {
			base = "double"
		}
	case KindPointer:
		s := in.String(tt.Elem) + "*"
		if tt.Const {
			s += " const"
		}
		return s
	case KindArray:
		return fmt.Sprintf("%s[%d]", in.String(tt.Elem), tt.Count)
	case KindRecord:
		base = "struct " + tt.Name
	case KindEnum:
		base = "enum " + tt.Name
	default:
		base = tt.Kind.String()
	}
	if tt.Const {
		return "const " + base
	}
	return base
}

func intName(tt Type) string {
	var name string
	switch tt.Width {
	case Width8:
		name = "char"
	case Width16:
		name = "short"
	case Width32:
		name = "int"
	case Width64:
		name = "long long"
	case WidthLong:
		name = "long"
	default:
		name = "int"
	}
	if tt.Kind == KindUint {
		return "unsigned " + name
	}
	if tt.Width == Width8 {
		return "signed char"
	}
	return name
}

// Parse reads a C type spelling such as "const char *", "unsigned long",
// "struct S*" or "int[4]".
func (in *Interner) Parse(spelling string) (TypeID, error) {
	s := strings.TrimSpace(spelling)
	if s == "" {
		return NoTypeID, fmt.Errorf("empty type")
	}
	var count uint32
	hasArray := false
	if strings.HasSuffix(s, "]") {
		open := strings.LastIndexByte(s, '[')
		if open < 0 {
			return NoTypeID, fmt.Errorf("malformed array type %q", spelling)
		}
		if _, err := fmt.Sscanf(s[open+1:len(s)-1], "%d", &count); err != nil {
			return NoTypeID, fmt.Errorf("malformed array bound in %q: %w", spelling, err)
		}
		hasArray = true
		s = strings.TrimSpace(s[:open])
	}

	star := strings.IndexByte(s, '*')
	basePart, ptrPart := s, ""
	if star >= 0 {
		basePart, ptrPart = s[:star], s[star:]
	}
	id, err := in.parseBase(strings.Fields(basePart))
	if err != nil {
		return NoTypeID, fmt.Errorf("%q: %w", spelling, err)
	}
	for _, tok := range strings.FieldsFunc(ptrPart, func(r rune) bool { return r == ' ' }) {
		for len(tok) > 0 {
			switch {
			case tok[0] == '*':
				id = in.PointerTo(id)
				tok = tok[1:]
			case strings.HasPrefix(tok, "const"):
				tt := in.MustLookup(id)
				tt.Const = true
				id = in.Intern(tt)
				tok = tok[len("const"):]
			default:
				return NoTypeID, fmt.Errorf("%q: unexpected %q", spelling, tok)
			}
		}
	}
	if hasArray {
		id = in.Intern(MakeArray(id, count))
	}
	return id, nil
}

func (in *Interner) parseBase(words []string) (TypeID, error) {
	isConst := false
	rest := words[:0:0]
	for _, w := range words {
		if w == "const" {
			isConst = true
			continue
		}
		rest = append(rest, w)
	}
	if len(rest) == 0 {
		return NoTypeID, fmt.Errorf("missing base type")
	}
	var tt Type
	b := in.builtins
	switch rest[0] {
	case "struct", "union", "class":
		if len(rest) != 2 {
			return NoTypeID, fmt.Errorf("expected tag name")
		}
		tt = MakeRecord(rest[1])
	case "enum":
		if len(rest) != 2 {
			return NoTypeID, fmt.Errorf("expected enum name")
		}
		tt = MakeEnum(rest[1])
	default:
		var id TypeID
		switch strings.Join(rest, " ") {
		case "void":
			id = b.Void
		case "bool", "_Bool":
			id = b.Bool
		case "char":
			id = b.Char
		case "signed char":
			id = in.Intern(MakeInt(Width8))
		case "unsigned char", "uint8_t":
			id = in.Intern(MakeUint(Width8))
		case "short", "short int", "int16_t":
			id = b.Short
		case "unsigned short", "uint16_t":
			id = in.Intern(MakeUint(Width16))
		case "int", "signed", "signed int", "int32_t":
			id = b.Int
		case "unsigned", "unsigned int", "uint32_t":
			id = b.Uint
		case "long", "long int":
			id = b.Long
		case "unsigned long", "size_t":
			id = b.Ulong
		case "long long", "int64_t":
			id = b.LongLong
		case "unsigned long long", "uint64_t":
			id = in.Intern(MakeUint(Width64))
		case "float":
			id = b.Float
		case "double":
			id = b.Double
		default:
			return NoTypeID, fmt.Errorf("unknown type %q", strings.Join(rest, " "))
		}
		tt = in.MustLookup(id)
	}
	tt.Const = isConst
	return in.Intern(tt), nil
}
