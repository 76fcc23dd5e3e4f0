package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"declattr/internal/diag"
	"declattr/internal/source"
)

// Short writes one line per diagnostic in the compiler-style form
// "path:line:col: SEVERITY CODE: message". Diagnostics without a file
// start at the severity. Notes are indented under their diagnostic.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode, notes bool) error {
	var sb strings.Builder
	for _, d := range bag.Items() {
		sb.WriteString(position(fs, d.Primary, mode))
		fmt.Fprintf(&sb, "%s %s: %s\n", d.Severity, d.Code.ID(), Message(d))
		if !notes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&sb, "  %snote: %s\n", position(fs, n.Span, mode), NoteMessage(n))
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func position(fs *source.FileSet, span source.Span, mode PathMode) string {
	f := fs.Get(span.File)
	if f == nil {
		return ""
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d: ", formatPath(f, fs, mode), start.Line, start.Col)
}
