// Package diag defines the diagnostic model shared by the lexer, the sniff
// host and the CLI.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced
//     by the lexer and by sniffs.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//   - Model fixes as structured text edits that internal/fix can apply.
//
// # Scope
//
// Package diag does no formatting and no IO. Rendering lives in
// internal/diagfmt; application of fixes lives in internal/fix.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning, Error.
//   - Code – compact numeric identifier (codes.go) with a stable ID string.
//   - Source – identifier of the rule that produced the finding.
//   - Message – short human text.
//   - Primary – the source.Span the finding is anchored at.
//   - Notes – optional secondary spans.
//   - Fixes – optional Fix records.
//
// A Fix carries a title, a kind, an applicability level and concrete
// TextEdits. OldText on an edit acts as a guard: the fix engine refuses to
// apply an edit whose span no longer holds the expected text. Thunks defer
// construction of expensive fixes until MaterializeFixes is called.
package diag
