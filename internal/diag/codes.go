package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Argument evaluation (1000-1999)
	ArgInfo            Code = 1000
	ArgArity           Code = 1001 // wrong number of arguments
	ArgType            Code = 1002 // wrong literal kind or not a constant expression
	ArgRange           Code = 1003 // value outside the accepted range
	ArgNormalized      Code = 1004 // identifier accepted where a string was expected
	ArgDuplicateIndex  Code = 1005 // repeated value in a list that must be distinct
	ArgParamIndex      Code = 1006 // parameter index does not name a suitable parameter
	ArgUnresolvedIdent Code = 1007 // identifier argument does not name a known entity

	// Subject eligibility (2000-2999)
	SubInfo      Code = 2000
	SubKind      Code = 2001 // attribute does not apply to this declaration category
	SubSignature Code = 2002 // declaration signature incompatible with the attribute

	// Target and language gating (3000-3999)
	TgtInfo        Code = 3000
	TgtUnsupported Code = 3001 // kind does not exist for the active target or language
	TgtUnknownAttr Code = 3002 // attribute name is not known at all
	TgtSpelling    Code = 3003 // kind not available in this spelling

	// Redeclaration merge (4000-4999)
	MrgInfo     Code = 4000
	MrgConflict Code = 4001 // same kind with a different value on the same entity
	MrgIgnored  Code = 4002 // attribute dropped in favour of a higher-priority one

	// Cross-attribute consistency (5000-5999)
	XckInfo            Code = 5000
	XckMutualExclusion Code = 5001 // two incompatible kinds on one entity
	XckConstraint      Code = 5002 // a group consistency rule failed

	// Unit loading (6000-6999)
	DrvInfo    Code = 6000
	DrvLoad    Code = 6001 // unit file could not be read
	DrvFixture Code = 6002 // unit file is malformed

	// Notes (9000-9999)
	NoteInfo             Code = 9000
	NotePrevious         Code = 9001 // previous attribute is here
	NoteConflicting      Code = 9002 // conflicting attribute is here
	NoteInstantiatedFrom Code = 9003 // in instantiation with the given substitution
	NoteImplicit         Code = 9004 // attribute was added implicitly by another one
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	ArgInfo:              "Attribute argument information",
	ArgArity:             "Wrong number of attribute arguments",
	ArgType:              "Attribute argument has the wrong type",
	ArgRange:             "Attribute argument out of range",
	ArgNormalized:        "Attribute argument normalized",
	ArgDuplicateIndex:    "Repeated value in attribute argument list",
	ArgParamIndex:        "Attribute parameter index is invalid",
	ArgUnresolvedIdent:   "Attribute argument does not name a known entity",
	SubInfo:              "Attribute subject information",
	SubKind:              "Attribute does not apply to this declaration",
	SubSignature:         "Declaration signature incompatible with attribute",
	TgtInfo:              "Attribute target information",
	TgtUnsupported:       "Attribute not supported for this target",
	TgtUnknownAttr:       "Unknown attribute",
	TgtSpelling:          "Attribute spelling not supported",
	MrgInfo:              "Attribute merge information",
	MrgConflict:          "Attribute redeclared with a different value",
	MrgIgnored:           "Attribute ignored",
	XckInfo:              "Attribute consistency information",
	XckMutualExclusion:   "Attributes are mutually exclusive",
	XckConstraint:        "Attribute constraint violated",
	DrvInfo:              "Unit information",
	DrvLoad:              "Failed to read unit",
	DrvFixture:           "Malformed unit description",
	NoteInfo:             "Note",
	NotePrevious:         "Previous attribute is here",
	NoteConflicting:      "Conflicting attribute is here",
	NoteInstantiatedFrom: "In instantiation",
	NoteImplicit:         "Attribute added implicitly",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ARG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SUB%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TGT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("MRG%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("XCK%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("DRV%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("NTE%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode resolves an ID such as "XCK5002" back to its Code.
func ParseCode(id string) (Code, bool) {
	for c := range codeDescription {
		if c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
