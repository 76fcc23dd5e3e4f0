package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"declattr/internal/diag"
	"declattr/internal/diagfmt"
	"declattr/internal/driver"
	"declattr/internal/source"
)

type outputOpts struct {
	format   string
	color    bool
	quiet    bool
	notes    bool
	snapshot bool
	pathMode diagfmt.PathMode
}

type unitJSON struct {
	Path   string `json:"path"`
	Target string `json:"target,omitempty"`
	Cached bool   `json:"cached,omitempty"`
	diagfmt.DiagnosticsOutput
	Decls []driver.DeclSnapshot `json:"decls,omitempty"`
}

type summaryJSON struct {
	Units    int `json:"units"`
	Cached   int `json:"cached"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

type reportJSON struct {
	Units   []unitJSON  `json:"units"`
	Summary summaryJSON `json:"summary"`
}

// displayPath prints the unit path the way diagnostics print it.
func displayPath(fs *source.FileSet, r *driver.UnitResult, mode diagfmt.PathMode) string {
	f := fs.Get(r.File)
	if f == nil {
		return r.Path
	}
	if mode == diagfmt.PathModeRelative {
		return f.FormatPath(mode.String(), fs.BaseDir())
	}
	return f.FormatPath(mode.String(), "")
}

func mergedBag(results []*driver.UnitResult) *diag.Bag {
	all := diag.NewBag(0)
	for _, r := range results {
		if r != nil {
			all.Merge(r.Bag)
		}
	}
	return all
}

func renderResults(w io.Writer, fs *source.FileSet, results []*driver.UnitResult, opts outputOpts, meta diagfmt.SarifRunMeta) error {
	sum := driver.Summarize(results)
	switch opts.format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{
			Color:     opts.color,
			Context:   1,
			PathMode:  opts.pathMode,
			ShowNotes: opts.notes,
		}
		first := true
		for _, r := range results {
			if r == nil || r.Bag.Len() == 0 {
				continue
			}
			if !first {
				fmt.Fprintln(w)
			}
			first = false
			fmt.Fprintf(w, "== %s ==\n", displayPath(fs, r, opts.pathMode))
			if err := diagfmt.Pretty(w, r.Bag, fs, prettyOpts); err != nil {
				return err
			}
		}
		if !opts.quiet {
			if !first {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, summaryLine(sum, opts.color))
		}
		return nil
	case "short":
		return diagfmt.Short(w, mergedBag(results), fs, opts.pathMode, opts.notes)
	case "json":
		report := reportJSON{
			Units: make([]unitJSON, 0, len(results)),
			Summary: summaryJSON{
				Units:    sum.Units,
				Cached:   sum.Cached,
				Errors:   sum.Errors,
				Warnings: sum.Warnings,
			},
		}
		jsonOpts := diagfmt.JSONOpts{IncludePositions: true, PathMode: opts.pathMode, IncludeNotes: opts.notes}
		for _, r := range results {
			if r == nil {
				continue
			}
			u := unitJSON{
				Path:              displayPath(fs, r, opts.pathMode),
				Target:            r.Target,
				Cached:            r.Cached,
				DiagnosticsOutput: diagfmt.BuildDiagnosticsOutput(r.Bag, fs, jsonOpts),
			}
			if opts.snapshot {
				u.Decls = r.Decls
			}
			report.Units = append(report.Units, u)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	case "sarif":
		return diagfmt.Sarif(w, mergedBag(results), fs, meta)
	default:
		return fmt.Errorf("unknown format: %s", opts.format)
	}
}

func summaryLine(s driver.Summary, useColor bool) string {
	status := color.New(color.FgGreen, color.Bold)
	word := "ok"
	if s.Failed() {
		status = color.New(color.FgRed, color.Bold)
		word = "failed"
	}
	if useColor {
		status.EnableColor()
	} else {
		status.DisableColor()
	}
	line := fmt.Sprintf("%s: %d unit(s), %d error(s), %d warning(s)", status.Sprint(word), s.Units, s.Errors, s.Warnings)
	if s.Cached > 0 {
		line += fmt.Sprintf(", %d cached", s.Cached)
	}
	return line
}
