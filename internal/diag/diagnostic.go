package diag

import (
	"declattr/internal/source"
)

// Note points at a secondary location. Like Diagnostic it carries a code
// and arguments instead of rendered text.
type Note struct {
	Span source.Span
	Code Code
	Args []string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Args     []string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, args ...string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Args:     args,
		Primary:  primary,
	}
}

func (d Diagnostic) WithNote(sp source.Span, code Code, args ...string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Code: code, Args: args})
	return d
}
