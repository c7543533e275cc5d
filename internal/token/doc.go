// Package token defines the PHP token kinds consumed by sniffs.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Whitespace and comments are first-class tokens, so the token stream
//     covers the whole file without gaps and ptr-1 always names the token
//     directly preceding ptr.
//   - Keywords are matched case-insensitively, as PHP does.
//   - `class` is Class only in declaration position; after `new` it is
//     AnonClass and after `::`, `->` or `?->` it is Ident.
package token
