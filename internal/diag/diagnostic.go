package diag

import (
	"phpsniff/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding. Source names the rule that produced it
// (for sniffs, the sniff identifier such as "Standards.Classes.FinalClasses").
type Diagnostic struct {
	Severity Severity
	Code     Code
	Source   string
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// Fixable reports whether at least one fix is attached.
func (d *Diagnostic) Fixable() bool {
	return d != nil && len(d.Fixes) > 0
}
