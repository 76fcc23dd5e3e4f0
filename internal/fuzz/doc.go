// Package fuzztests houses Go fuzz harnesses for the unit front end: the
// argument expression parser and the whole check of a unit description.
// They guard against panics, hangs and diagnostics whose spans fall
// outside the checked file.
package fuzztests
