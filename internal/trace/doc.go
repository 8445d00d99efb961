// Package trace is the structured tracing layer of estcheck.
//
// Tracing follows the work of one CLI run: the driver span around a whole
// invocation, one span per checked file, the validation pass and, at the
// most detailed level, the scope boundaries the validator reduces.
//
// # Usage
//
//	estcheck check --trace=- --trace-level=detail ast.json
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events for a dump on failure
//
// ModeBoth streams events and keeps them in a ring; FindRing reaches it.
//
// # Levels and scopes
//
// LevelPhase emits ScopeDriver and ScopePass events, LevelDetail adds
// ScopeFile, LevelDebug adds ScopeNode.
//
// # Spans
//
// Events carry typed Attrs: the file path, the program mode, the ESTree
// type of a boundary with the bindings it captured and the facts it let
// through, diagnostic counts and cache hits.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.BeginFile(trace.FromContext(ctx), trace.ParentID(ctx), path)
//	ctx = trace.WithParent(ctx, span)
//	defer span.Diagnostics(len(diags)).End("")
//
// # Heartbeat
//
// A Progress attached with WithProgress counts the files of a directory
// run; the heartbeat prints done/total and the file picked up last.
package trace
