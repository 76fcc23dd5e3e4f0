// Package diag defines the structured diagnostic model emitted by the
// attribute engine.
//
// A Diagnostic is an event, not a message: it carries a Code, a Severity,
// the primary source.Span and a list of string arguments (attribute name,
// offending value, limits). Rendering those events into text is the job of
// internal/diagfmt, which owns one message template per code. Keeping the
// engine free of formatting lets tests compare codes and arguments directly.
//
// Producers emit through the Reporter interface, usually via ReportBuilder:
//
//	diag.ReportError(r, diag.MrgConflict, incoming.Span, "num_banks", "8", "4").
//		WithNote(existing.Span, diag.NotePrevious, "num_banks").
//		Emit()
//
// BagReporter collects into a Bag (sorting, filtering, dedup); DedupReporter
// suppresses repeats caused by revisiting an instantiation; CountingReporter
// tallies severities for exit codes.
//
// Every error carries exactly one primary diagnostic. Notes point at the
// other participant of a conflict.
package diag
