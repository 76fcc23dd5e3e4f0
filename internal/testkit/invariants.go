package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"declattr/internal/diag"
	"declattr/internal/source"
)

// CheckDiagnosticSpans runs a minimal set of span invariants on a checked
// unit's diagnostics:
// 1) every primary and note span is either NoFileID or names a file in fs
// 2) spans are ordered (Start <= End) and lie within the file content
// 3) notes never point past the end of their own file
func CheckDiagnosticSpans(fs *source.FileSet, bag *diag.Bag) error {
	if fs == nil || bag == nil {
		return fmt.Errorf("nil file set or bag")
	}
	for i, d := range bag.Items() {
		if err := checkSpan(fs, d.Primary); err != nil {
			return fmt.Errorf("diagnostic %d (%s): %w", i, d.Code.ID(), err)
		}
		for j, n := range d.Notes {
			if err := checkSpan(fs, n.Span); err != nil {
				return fmt.Errorf("diagnostic %d (%s) note %d: %w", i, d.Code.ID(), j, err)
			}
		}
	}
	return nil
}

func checkSpan(fs *source.FileSet, sp source.Span) error {
	if sp.File == source.NoFileID {
		return nil
	}
	f := fs.Get(sp.File)
	if f == nil {
		return fmt.Errorf("span %v names an unknown file", sp)
	}
	if sp.End < sp.Start {
		return fmt.Errorf("span %v ends before it starts", sp)
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End > lenContent {
		return fmt.Errorf("span end beyond content: %d > %d", sp.End, lenContent)
	}
	return nil
}
