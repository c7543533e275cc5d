package sniff

import (
	"phpsniff/internal/diag"
	"phpsniff/internal/token"
)

// Sniff is a rule dispatched on token kinds.
type Sniff interface {
	// Register returns the token kinds the sniff listens to.
	Register() []token.Kind
	// Process is called once per matching token, ptr is its index in the stream.
	Process(file File, ptr int) error
}

// EditQueue records token-anchored text edits for later materialisation.
type EditQueue interface {
	// AddContent queues text to be inserted after the token at ptr.
	AddContent(ptr int, text string) bool
}

// File is the per-file token context a sniff works against.
type File interface {
	// FindPrevious returns the index of the nearest token at or before start
	// whose kind is in kinds, or -1.
	FindPrevious(kinds []token.Kind, start int) int
	// FindPreviousWithin is FindPrevious that does not look below end.
	FindPreviousWithin(kinds []token.Kind, start, end int) int
	// AddFixableError reports an error that comes with a fix. It returns
	// false when the report was suppressed.
	AddFixableError(msg string, ptr int, source string) bool
	// Fixer returns the edit queue of the file.
	Fixer() EditQueue
}

// Describer is implemented by sniffs that name their diagnostics. Hosts use
// it for configuration lookups, error wrapping and diagnostic codes.
type Describer interface {
	Source() string
	Code() diag.Code
}
