package fix

import (
	"phpsniff/internal/diag"
	"phpsniff/internal/source"
)

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithApplicability overrides applicability metadata.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) {
		f.Applicability = app
	}
}

// WithKind overrides fix classification.
func WithKind(kind diag.FixKind) Option {
	return func(f *diag.Fix) {
		f.Kind = kind
	}
}

// Preferred marks fix as preferred suggestion.
func Preferred() Option {
	return func(f *diag.Fix) {
		f.IsPreferred = true
	}
}

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *diag.Fix) {
		f.ID = id
	}
}

// WithRequiresAll marks a fix that is only correct together with the other
// fixes of the run, so it is never applied alone.
func WithRequiresAll() Option {
	return func(f *diag.Fix) {
		f.RequiresAll = true
	}
}

func applyOptions(f diag.Fix, opts []Option) diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// InsertText creates fix that inserts text at an empty span.
func InsertText(title string, at source.Span, text string, opts ...Option) diag.Fix {
	return FromEdits(title, []diag.TextEdit{{Span: at.Head(), NewText: text}}, opts...)
}

// ReplaceSpan replaces text covered by span with newText; expect guards the
// current content.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	return FromEdits(title, []diag.TextEdit{{Span: span, NewText: newText, OldText: expect}}, opts...)
}

// FromEdits wraps ready edits into an always-safe quick fix.
func FromEdits(title string, edits []diag.TextEdit, opts ...Option) diag.Fix {
	fix := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         append([]diag.TextEdit(nil), edits...),
	}
	return applyOptions(fix, opts)
}

// FromPending builds a fix out of edits queued on a Fixer.
func FromPending(title string, f *Fixer, pending []PendingEdit, opts ...Option) diag.Fix {
	return FromEdits(title, f.TextEdits(pending), opts...)
}
