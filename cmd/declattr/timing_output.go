package main

import (
	"fmt"
	"io"

	"declattr/internal/driver"
	"declattr/internal/observ"
)

// writeTimings prints the phase totals over every analyzed unit. Cached
// units carry no timings and are only counted.
func writeTimings(out io.Writer, results []*driver.UnitResult) error {
	var (
		reports []observ.Report
		cached  int
	)
	for _, res := range results {
		switch {
		case res == nil:
		case res.Timings != nil:
			reports = append(reports, *res.Timings)
		case res.Cached:
			cached++
		}
	}
	if err := observ.Aggregate(reports).Write(out); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "  %d unit(s) analyzed, %d cached\n", len(reports), cached)
	return err
}
