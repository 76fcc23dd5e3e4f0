package diagfmt

import (
	"fmt"
	"strings"

	"declattr/internal/diag"
)

type render func(a args) string

// args indexes diagnostic arguments without panicking on short lists;
// a missing argument renders as "?".
type args []string

func (a args) at(i int) string {
	if i < len(a) {
		return a[i]
	}
	return "?"
}

var messages = map[diag.Code]render{
	diag.ArgArity: func(a args) string {
		want := a.at(2)
		switch {
		case a.at(3) == "*":
			want = "at least " + want
		case a.at(3) != a.at(2):
			want = a.at(2) + " to " + a.at(3)
		}
		return fmt.Sprintf("'%s' takes %s argument(s), %s given", a.at(0), want, a.at(1))
	},
	diag.ArgType: func(a args) string {
		return fmt.Sprintf("argument %s of '%s' must be %s", a.at(1), a.at(0), article(a.at(2)))
	},
	diag.ArgRange: func(a args) string {
		return fmt.Sprintf("argument %s of '%s' is %s; %s", a.at(1), a.at(0), a.at(2), constraint(a.at(3)))
	},
	diag.ArgNormalized: func(a args) string {
		return fmt.Sprintf("argument %s of '%s': identifier '%s' treated as a string", a.at(1), a.at(0), a.at(2))
	},
	diag.ArgDuplicateIndex: func(a args) string {
		return fmt.Sprintf("argument %s of '%s' repeats %s", a.at(1), a.at(0), a.at(2))
	},
	diag.ArgParamIndex: func(a args) string {
		return fmt.Sprintf("argument %s of '%s' (%s) does not name a usable parameter: %s",
			a.at(1), a.at(0), a.at(2), reason(a.at(3)))
	},
	diag.ArgUnresolvedIdent: func(a args) string {
		return fmt.Sprintf("argument %s of '%s': '%s' does not name a known entity", a.at(1), a.at(0), a.at(2))
	},
	diag.SubKind: func(a args) string {
		return fmt.Sprintf("'%s' does not apply to a %s; it applies to %s", a.at(0), a.at(1), a.at(2))
	},
	diag.SubSignature: func(a args) string {
		return fmt.Sprintf("'%s' does not fit this declaration: %s", a.at(0), reason(a.at(1)))
	},
	diag.TgtUnknownAttr: func(a args) string {
		return fmt.Sprintf("unknown attribute '%s' ignored", a.at(0))
	},
	diag.TgtSpelling: func(a args) string {
		return fmt.Sprintf("'%s' cannot be written in %s spelling", a.at(0), a.at(1))
	},
	diag.TgtUnsupported: func(a args) string {
		return fmt.Sprintf("'%s' is not supported for %s (%s)", a.at(0), a.at(1), a.at(2))
	},
	diag.MrgConflict: func(a args) string {
		return fmt.Sprintf("'%s' redeclared as %s, previously %s", a.at(0), a.at(1), a.at(2))
	},
	diag.MrgIgnored: func(a args) string {
		return fmt.Sprintf("'%s' ignored in favour of '%s'", a.at(0), a.at(1))
	},
	diag.XckMutualExclusion: func(a args) string {
		return fmt.Sprintf("'%s' and '%s' cannot be combined", a.at(0), a.at(1))
	},
	diag.XckConstraint: func(a args) string {
		return fmt.Sprintf("'%s' is inconsistent with '%s': %s", a.at(0), a.at(1), groupRule(a))
	},
	diag.DrvLoad: func(a args) string {
		return fmt.Sprintf("cannot read %s: %s", a.at(0), a.at(1))
	},
	diag.DrvFixture: func(a args) string {
		return a.at(0)
	},

	diag.NotePrevious: func(a args) string {
		return fmt.Sprintf("previous '%s' is here", a.at(0))
	},
	diag.NoteConflicting: func(a args) string {
		return fmt.Sprintf("conflicting '%s' is here", a.at(0))
	},
	diag.NoteInstantiatedFrom: func(a args) string {
		return fmt.Sprintf("in instantiation with [%s]", a.at(0))
	},
	diag.NoteImplicit: func(a args) string {
		return fmt.Sprintf("'%s' was added implicitly by '%s'", a.at(0), a.at(1))
	},
}

// Message renders the text of d from its code and arguments.
func Message(d diag.Diagnostic) string {
	return format(d.Code, d.Args)
}

// NoteMessage renders the text of a note.
func NoteMessage(n diag.Note) string {
	return format(n.Code, n.Args)
}

func format(code diag.Code, a []string) string {
	if fn, ok := messages[code]; ok {
		return fn(args(a))
	}
	// Codes without a template fall back to the title plus raw arguments.
	if len(a) == 0 {
		return code.Title()
	}
	return code.Title() + ": " + strings.Join(a, ", ")
}

func article(kind string) string {
	if kind == "" {
		return "a constant"
	}
	switch kind[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + kind
	}
	return "a " + kind
}

// constraint spells out a range token such as "range:1..8" or "one-of:8|16".
func constraint(token string) string {
	kind, rest, _ := strings.Cut(token, ":")
	switch kind {
	case "range":
		lo, hi, _ := strings.Cut(rest, "..")
		return fmt.Sprintf("expected a value from %s to %s", lo, hi)
	case "one-of":
		return "expected one of " + strings.ReplaceAll(rest, "|", ", ")
	case "positive":
		return "expected a positive value"
	case "non-negative":
		return "expected a non-negative value"
	case "power-of-two":
		return "expected a power of two"
	case "fits-32":
		return "expected a value that fits in 32 bits"
	}
	return "expected " + token
}

var reasons = map[string]string{
	"definition":              "it is not a definition",
	"not-thread-local":        "the variable is thread-local",
	"not-scalar":              "the type is not scalar",
	"interrupt-signature":     "interrupt handlers take no arguments and return void",
	"return-not-char-pointer": "the function does not return a character pointer",
	"not-pointer":             "the type is not a pointer",
	"return-not-pointer":      "the function does not return a pointer",
	"return-void":             "the function returns void",
	"cleanup-signature":       "the cleanup function must take one pointer argument",
	"out-of-range":            "index is out of range",
}

func reason(token string) string {
	if r, ok := reasons[token]; ok {
		return r
	}
	return strings.ReplaceAll(token, "-", " ")
}

// groupRule explains an XckConstraint from its rule token and details.
func groupRule(a args) string {
	switch a.at(2) {
	case "max-ge-reqd":
		return fmt.Sprintf("dimension %s allows at most %s but %s is required", a.at(3), a.at(4), a.at(5))
	case "simd-divides-fastest":
		return fmt.Sprintf("fastest work-group dimension %s is not divisible by %s", a.at(3), a.at(4))
	case "zero-dims-uniform":
		return fmt.Sprintf("with zero global dimensions every size must be 1, got %s", a.at(3))
	case "banks-pow-bits":
		return fmt.Sprintf("bank bits select %s banks but %s are declared", a.at(3), a.at(4))
	case "sub-group-le-work-group":
		return fmt.Sprintf("work-group size %s is smaller than sub-group size %s", a.at(3), a.at(4))
	}
	return a.at(2)
}
