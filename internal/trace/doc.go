// Package trace is the logging layer of declattr.
//
// Events are structured (scope, name, detail, extra key/values) and written
// either as text or NDJSON. Verbosity is controlled by Level:
//
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: one span per translation unit
//   - LevelDebug: one span per attribute, with the merge outcome
//
// Enable from the CLI:
//
//	declattr check --trace=- --trace-level=detail units/
//
// Tracers travel through context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, sp := trace.Start(ctx, trace.ScopeUnit, "unit:kernels.yaml")
//	defer sp.End("")
package trace
