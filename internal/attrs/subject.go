package attrs

import "strings"

// Subject is a set of declaration categories an attribute may attach to.
type Subject uint16

const (
	SubjNone     Subject = 0
	SubjFunction Subject = 1 << iota
	SubjGlobalVar // namespace-scope and static-storage variables
	SubjLocalVar  // automatic variables
	SubjField     // non-static data members
	SubjParam
	SubjType // records, enums and typedefs
)

const (
	SubjAnyVar    = SubjGlobalVar | SubjLocalVar
	SubjVarOrFunc = SubjFunction | SubjGlobalVar
	// SubjFPGAMem are the places an FPGA local memory can live.
	SubjFPGAMem = SubjLocalVar | SubjGlobalVar | SubjField
	SubjAll     = SubjFunction | SubjAnyVar | SubjField | SubjParam | SubjType
)

var subjectNames = []struct {
	bit  Subject
	name string
}{
	{SubjFunction, "function"},
	{SubjGlobalVar, "global variable"},
	{SubjLocalVar, "local variable"},
	{SubjField, "field"},
	{SubjParam, "parameter"},
	{SubjType, "type"},
}

func (s Subject) Has(bit Subject) bool { return s&bit != 0 }

// Allows reports whether a declaration whose own category set is decl may
// carry an attribute with subject mask s.
func (s Subject) Allows(decl Subject) bool { return s&decl != 0 }

// String joins the category names with "|".
func (s Subject) String() string {
	if s == SubjNone {
		return "none"
	}
	var parts []string
	for _, sn := range subjectNames {
		if s&sn.bit != 0 {
			parts = append(parts, sn.name)
		}
	}
	return strings.Join(parts, "|")
}
