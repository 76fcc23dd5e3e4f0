package driver

import "declattr/internal/diag"

// Summary totals a batch of unit results.
type Summary struct {
	Units    int
	Cached   int
	Errors   int
	Warnings int
}

// Failed reports whether any unit has an error.
func (s Summary) Failed() bool { return s.Errors > 0 }

// Summarize counts results; nil entries (cancelled units) are skipped.
func Summarize(results []*UnitResult) Summary {
	var s Summary
	for _, res := range results {
		if res == nil {
			continue
		}
		s.Units++
		if res.Cached {
			s.Cached++
		}
		for _, d := range res.Bag.Items() {
			switch d.Severity {
			case diag.SevError:
				s.Errors++
			case diag.SevWarning:
				s.Warnings++
			}
		}
	}
	return s
}
