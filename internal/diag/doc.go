// Package diag defines the diagnostic model shared by every generation phase.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     declaration discovery, role resolution and dispatch synthesis.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not format for terminals, touch files or talk to the CLI.
// Rendering lives in internal/diagfmt; orchestration and bag merging live in
// internal/driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable string form (codes.go).
//   - Decl: the identifier of the declaration the finding is about, e.g.
//     "example.com/ui.FooHolder". It is the only location available when
//     declarations come from a binary snapshot.
//   - Message: short, actionable text naming the offending declaration.
//   - Primary: the source.Span pointing at the issue, or source.NoSpan.
//   - Notes: optional secondary spans, e.g. "variant declared here".
//
// # Emitting diagnostics
//
// Phases receive a Reporter. ReportError / ReportWarning return a
// ReportBuilder that can collect notes before Emit. BagReporter stores into a
// Bag. Each container is processed with its own Bag; the driver merges them in
// container declaration order, which keeps the final list identical across
// runs over the same declarations.
package diag
