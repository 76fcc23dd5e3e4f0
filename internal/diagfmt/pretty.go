package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"declattr/internal/diag"
	"declattr/internal/source"
)

const tabWidth = 4

type palette struct {
	enabled bool
	error   *color.Color
	warning *color.Color
	info    *color.Color
	note    *color.Color
	gutter  *color.Color
	path    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		enabled: enabled,
		error:   color.New(color.FgRed, color.Bold),
		warning: color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan, color.Bold),
		note:    color.New(color.FgGreen),
		gutter:  color.New(color.FgBlue, color.Bold),
		path:    color.New(color.Bold),
	}
	// Per-instance settings override color.NoColor, which tracks stdout only.
	for _, c := range []*color.Color{p.error, p.warning, p.info, p.note, p.gutter, p.path} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.error
	case diag.SevWarning:
		return p.warning
	default:
		return p.info
	}
}

// Pretty writes every diagnostic of bag with its source excerpt:
//
//	ERROR ARG1003: argument 1 of 'aligned' is 3; expected a power of two
//	  --> unit.yaml:5:16
//	   |
//	 5 |         args: ["3"]
//	   |                ^
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	var sb strings.Builder
	for i, d := range bag.Items() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sev := p.severity(d.Severity)
		fmt.Fprintf(&sb, "%s %s: %s\n", sev.Sprint(d.Severity.String()), sev.Sprint(d.Code.ID()), Message(d))
		excerpt(&sb, fs, d.Primary, sev, opts, p)

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&sb, "  %s %s\n", p.note.Sprint("note:"), NoteMessage(n))
			excerpt(&sb, fs, n.Span, p.note, opts, p)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// excerpt prints the location line and, when the file is known, the
// source lines around span with a caret underline.
func excerpt(sb *strings.Builder, fs *source.FileSet, span source.Span, mark *color.Color, opts PrettyOpts, p palette) {
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(span)
	fmt.Fprintf(sb, "  %s %s\n", p.gutter.Sprint("-->"),
		p.path.Sprintf("%s:%d:%d", formatPath(f, fs, opts.PathMode), start.Line, start.Col))

	ctx := uint32(max(opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx
	lines, err := safecast.Conv[uint32](len(f.LineIdx) + 1)
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	last = min(last, lines)
	gw := len(strconv.FormatUint(uint64(last), 10))
	pad := strings.Repeat(" ", gw)

	fmt.Fprintf(sb, " %s %s\n", pad, p.gutter.Sprint("|"))
	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		shown := expandTabs(text)
		if opts.Width > 0 {
			shown = runewidth.Truncate(shown, int(opts.Width), "…")
		}
		fmt.Fprintf(sb, " %*d %s %s\n", gw, ln, p.gutter.Sprint("|"), shown)
		if ln != start.Line {
			continue
		}
		from := int(start.Col) - 1
		to := len(text)
		if end.Line == start.Line {
			to = int(end.Col) - 1
		}
		from = min(from, len(text))
		to = max(min(to, len(text)), from)
		indent := runewidth.StringWidth(expandTabs(text[:from]))
		width := max(runewidth.StringWidth(expandTabs(text[from:to])), 1)
		fmt.Fprintf(sb, " %s %s %s%s\n", pad, p.gutter.Sprint("|"),
			strings.Repeat(" ", indent), mark.Sprint(strings.Repeat("^", width)))
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
