// Package diag defines the diagnostic model shared by the validator and the
// command line harness.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//     Early errors are always SevError.
//   - Code – compact numeric identifier (see codes.go) with a stable string
//     form such as BND3001. Ranges: LBL labels, CTX context markers, BND
//     bindings, STR strict mode, FRM construct form. OBS and INP codes
//     come from the driver, never from the validator.
//   - Message – human oriented text; keep it short and actionable.
//   - Location – the source.Location copied from the offending ESTree node.
//   - Notes – optional secondary locations (e.g. "first declared here").
//
// # Emitting diagnostics
//
// The validator returns a slice of Diagnostic; the driver layer moves them
// into a Bag for sorting, limiting and rendering. Diagnostics the driver
// raises itself (unreadable input, timings) go through a Reporter, usually
// a BagReporter, built with ReportError.
//
// Package diag does not perform any formatting beyond the golden line form.
// Rendering lives in internal/diagfmt.
package diag
