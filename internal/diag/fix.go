package diag

import (
	"fmt"

	"phpsniff/internal/source"
)

// FixKind classifies a fix for UI listings.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactor
	FixKindRefactorRewrite
	FixKindSourceAction
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "quickfix"
	case FixKindRefactor:
		return "refactor"
	case FixKindRefactorRewrite:
		return "refactor.rewrite"
	case FixKindSourceAction:
		return "source"
	}
	return "unknown"
}

// FixApplicability states how confident the producer is that a fix is correct.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// TextEdit replaces Span with NewText. A non-empty OldText must match the
// current content of Span or the edit is rejected.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixBuildContext is passed to lazy fix builders.
type FixBuildContext struct {
	FileSet *source.FileSet
}

// FixThunk builds a fix on demand.
type FixThunk interface {
	ID() string
	Build(ctx FixBuildContext) (Fix, error)
}

type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	RequiresAll   bool
	Edits         []TextEdit
	Thunk         FixThunk
}

// Resolve expands a lazy fix. Fixes without a thunk are returned unchanged.
func (f Fix) Resolve(ctx FixBuildContext) (Fix, error) {
	if f.Thunk == nil {
		return f, nil
	}
	built, err := f.Thunk.Build(ctx)
	if err != nil {
		return Fix{}, fmt.Errorf("build fix %q: %w", f.Thunk.ID(), err)
	}
	if built.ID == "" {
		built.ID = f.ID
	}
	if built.Title == "" {
		built.Title = f.Title
	}
	built.Thunk = nil
	return built, nil
}

// MaterializeFixes resolves every fix in order; the first failure aborts.
func MaterializeFixes(ctx FixBuildContext, fixes []Fix) ([]Fix, error) {
	out := make([]Fix, 0, len(fixes))
	for _, f := range fixes {
		resolved, err := f.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}
