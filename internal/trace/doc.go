// Package trace records what the checker is doing while it runs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	phpsniff check --trace=- --trace-level=file src/
//
// # Architecture
//
//   - nopTracer: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr), text or NDJSON
//   - LogTracer: forwards events to a structured zap logger
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only failures
//   - LevelPhase: driver and pass boundaries
//   - LevelFile: per-file processing
//   - LevelDebug: everything, including single sniff invocations
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//
//	ctx, span := trace.Start(ctx, trace.ScopePass, "check")
//	defer span.End("")
//
// Spans opened from the returned context nest under "check".
package trace
