package fix

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"

	"phpsniff/internal/diag"
	"phpsniff/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
	ApplyModeID
)

func (m ApplyMode) String() string {
	switch m {
	case ApplyModeOnce:
		return "once"
	case ApplyModeAll:
		return "all"
	case ApplyModeID:
		return "id"
	}
	return "unknown"
}

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// DryRun computes the new contents and diffs without writing files.
	DryRun bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Source        string
	Message       string
	Applicability diag.FixApplicability
	PrimaryPath   string
	EditCount     int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
	// Diff is the line diff of the change, see Diff.
	Diff string
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag  *diag.Diagnostic
	fix   diag.Fix
	order int
}

// Apply collects fixes from diagnostics, selects a subset according to opts, and applies them.
func Apply(fs *source.FileSet, diagnostics []*diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedFix, 0),
		Skipped:     make([]SkippedFix, 0),
		FileChanges: make([]FileChange, 0),
	}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	ctx := diag.FixBuildContext{FileSet: fs}
	candidates, buildSkips := gatherCandidates(ctx, diagnostics)
	result.Skipped = append(result.Skipped, buildSkips...)

	if len(candidates) == 0 {
		return result, ErrNoFixes
	}

	sortCandidates(candidates)

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)

	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	applied, skippedDuringApply, changes, err := applyCandidates(fs, selected, opts.DryRun)
	result.Applied = append(result.Applied, applied...)
	result.Skipped = append(result.Skipped, skippedDuringApply...)
	result.FileChanges = append(result.FileChanges, changes...)

	if err != nil {
		return result, err
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// gatherCandidates materializes the fixes of every diagnostic. Fixes that
// fail to build, carry no edits, or repeat an ID already seen are recorded
// as skips. Missing IDs are synthesized from the code, file, offset and fix
// index. Each candidate gets an increasing order for stable sorting.
func gatherCandidates(ctx diag.FixBuildContext, diagnostics []*diag.Diagnostic) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0)
	skips := make([]SkippedFix, 0)
	seen := make(map[string]struct{})

	order := 0
	for _, d := range diagnostics {
		if d == nil || len(d.Fixes) == 0 {
			continue
		}

		resolved, err := diag.MaterializeFixes(ctx, d.Fixes)
		if err != nil {
			skips = append(skips, SkippedFix{
				Title:  d.Message,
				Reason: fmt.Sprintf("failed to build fixes: %v", err),
			})
			continue
		}

		for idx, f := range resolved {
			if len(f.Edits) == 0 {
				skips = append(skips, SkippedFix{ID: f.ID, Title: f.Title, Reason: "fix has no edits"})
				continue
			}
			if f.ID == "" {
				f.ID = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
			}
			if _, dup := seen[f.ID]; dup {
				skips = append(skips, SkippedFix{ID: f.ID, Title: f.Title, Reason: "duplicate fix id"})
				continue
			}
			seen[f.ID] = struct{}{}
			cands = append(cands, candidate{diag: d, fix: f, order: order})
			order++
		}
	}
	return cands, skips
}

// sortCandidates orders candidates by file, span start, span end, insertion
// order, code, preference (preferred first), ID and title.
func sortCandidates(candidates []candidate) {
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		pa, pb := a.diag.Primary, b.diag.Primary
		return cmp.Or(
			cmp.Compare(pa.File, pb.File),
			cmp.Compare(pa.Start, pb.Start),
			cmp.Compare(pa.End, pb.End),
			cmp.Compare(a.order, b.order),
			cmp.Compare(a.diag.Code, b.diag.Code),
			preferredFirst(a.fix.IsPreferred, b.fix.IsPreferred),
			cmp.Compare(a.fix.ID, b.fix.ID),
			cmp.Compare(a.fix.Title, b.fix.Title),
		)
	})
}

func preferredFirst(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		return selectByID(candidates, opts.TargetID)
	case ApplyModeAll:
		return selectSafe(candidates)
	case ApplyModeOnce:
		return selectFirst(candidates)
	}
	return nil, nil
}

func skipOf(c candidate, reason string) SkippedFix {
	return SkippedFix{ID: c.fix.ID, Title: c.fix.Title, Reason: reason}
}

const reasonRequiresAll = "fix requires all fixes to be applied"

func selectByID(candidates []candidate, id string) ([]candidate, []SkippedFix) {
	i := slices.IndexFunc(candidates, func(c candidate) bool { return c.fix.ID == id })
	switch {
	case i < 0:
		return nil, []SkippedFix{{ID: id, Reason: "fix id not found"}}
	case candidates[i].fix.RequiresAll:
		return nil, []SkippedFix{{ID: id, Reason: reasonRequiresAll}}
	}
	return candidates[i : i+1], nil
}

// selectSafe keeps every always-safe fix; the rest are reported with their
// applicability.
func selectSafe(candidates []candidate) ([]candidate, []SkippedFix) {
	var selected []candidate
	var skipped []SkippedFix
	for _, c := range candidates {
		if c.fix.Applicability != diag.FixApplicabilityAlwaysSafe {
			skipped = append(skipped, skipOf(c, "applicability is "+c.fix.Applicability.String()))
			continue
		}
		selected = append(selected, c)
	}
	return selected, skipped
}

// selectFirst picks the first always-safe fix, falling back to the first
// fix of any applicability. Fixes that only make sense together are skipped.
func selectFirst(candidates []candidate) ([]candidate, []SkippedFix) {
	var skipped []SkippedFix
	fallback := -1
	for i, c := range candidates {
		if c.fix.RequiresAll {
			skipped = append(skipped, skipOf(c, reasonRequiresAll))
			continue
		}
		if c.fix.Applicability == diag.FixApplicabilityAlwaysSafe {
			return []candidate{c}, skipped
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback < 0 {
		return nil, skipped
	}
	return []candidate{candidates[fallback]}, skipped
}

// fileState is the pending content of one file and the edits already
// merged into it, ordered by span.
type fileState struct {
	buf    []byte
	merged []diag.TextEdit
	edits  int
}

func applyCandidates(fs *source.FileSet, selected []candidate, dryRun bool) ([]AppliedFix, []SkippedFix, []FileChange, error) {
	states := make(map[source.FileID]*fileState)
	applied := make([]AppliedFix, 0, len(selected))
	skipped := make([]SkippedFix, 0)

	for _, cand := range selected {
		staged, reason := stageFix(fs, states, cand.fix.Edits, dryRun)
		if reason != "" {
			skipped = append(skipped, skipOf(cand, reason))
			continue
		}
		total := 0
		for id, st := range staged {
			total += st.edits - stateEdits(states[id])
			states[id] = st
		}
		applied = append(applied, AppliedFix{
			ID:            cand.fix.ID,
			Title:         cand.fix.Title,
			Code:          cand.diag.Code,
			Source:        cand.diag.Source,
			Message:       cand.diag.Message,
			Applicability: cand.fix.Applicability,
			PrimaryPath:   formatFilePath(fs, cand.diag.Primary.File),
			EditCount:     total,
		})
	}
	if len(applied) == 0 {
		return applied, skipped, nil, nil
	}

	changes := make([]FileChange, 0, len(states))
	for id, st := range states {
		change, err := commitFile(fs, fs.Get(id), st, dryRun)
		if err != nil {
			return applied, skipped, changes, err
		}
		changes = append(changes, change)
	}
	slices.SortStableFunc(changes, func(a, b FileChange) int { return cmp.Compare(a.Path, b.Path) })
	return applied, skipped, changes, nil
}

func stateEdits(st *fileState) int {
	if st == nil {
		return 0
	}
	return st.edits
}

// stageFix applies one fix's edits on copies of the pending file states. A
// fix is all or nothing: on the first problem the reason is returned and
// nothing is staged.
func stageFix(fs *source.FileSet, states map[source.FileID]*fileState, edits []diag.TextEdit, dryRun bool) (map[source.FileID]*fileState, string) {
	staged := make(map[source.FileID]*fileState)
	for id, batch := range groupEditsByFile(edits) {
		file := fs.Get(id)
		switch {
		case file == nil:
			return nil, "target file is unknown"
		case file.Flags&source.FileVirtual != 0 && !dryRun:
			return nil, "target file is virtual"
		}
		prev := states[id]
		if prev == nil {
			prev = &fileState{buf: file.Content}
		}
		if conflictsWithExisting(prev.merged, batch) {
			return nil, "conflicts with previously applied edits in " + file.FormatPath("auto", fs.BaseDir())
		}
		next, reason := applyBatch(prev, batch)
		if reason != "" {
			return nil, reason
		}
		staged[id] = next
	}
	return staged, ""
}

// applyBatch splices batch into a copy of st. Offsets in batch refer to the
// original file content and are shifted by the edits merged so far.
func applyBatch(st *fileState, batch []diag.TextEdit) (*fileState, string) {
	// right to left, so earlier offsets of this batch stay valid
	slices.SortStableFunc(batch, func(a, b diag.TextEdit) int {
		return cmp.Or(cmp.Compare(b.Span.Start, a.Span.Start), cmp.Compare(b.Span.End, a.Span.End))
	})
	working := slices.Clone(st.buf)
	merged := slices.Clone(st.merged)
	for _, edit := range batch {
		start := int(edit.Span.Start) + cumulativeDelta(merged, int(edit.Span.Start))
		end := int(edit.Span.End) + cumulativeDelta(merged, int(edit.Span.End))
		if start < 0 || end < start || end > len(working) {
			return nil, "edit span out of range"
		}
		if edit.OldText != "" && string(working[start:end]) != edit.OldText {
			return nil, "existing text does not match expected content"
		}
		working = slices.Concat(working[:start], []byte(edit.NewText), working[end:])
		merged = insertEditSorted(merged, edit)
	}
	return &fileState{buf: working, merged: merged, edits: st.edits + len(batch)}, ""
}

// commitFile renders the diff for one changed file and, unless dryRun,
// writes it back with its original permissions and line layout.
func commitFile(fs *source.FileSet, file *source.File, st *fileState, dryRun bool) (FileChange, error) {
	path := file.FormatPath("relative", fs.BaseDir())
	change := FileChange{
		Path:      path,
		EditCount: st.edits,
		Diff:      Diff(path, string(file.Content), string(st.buf)),
	}
	if dryRun {
		return change, nil
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(file.Path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(file.Path, restoreLayout(file, st.buf), mode); err != nil {
		return change, fmt.Errorf("write %s: %w", file.Path, err)
	}
	return change, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// restoreLayout undoes the BOM and CRLF normalisation done by FileSet.Load.
func restoreLayout(file *source.File, buf []byte) []byte {
	if file.Flags&source.FileNormalizedCRLF != 0 {
		buf = bytes.ReplaceAll(buf, []byte("\n"), []byte("\r\n"))
	}
	if file.Flags&source.FileHadBOM != 0 {
		buf = append(append([]byte(nil), utf8BOM...), buf...)
	}
	return buf
}

func conflictsWithExisting(existing []diag.TextEdit, edits []diag.TextEdit) bool {
	for _, prev := range existing {
		for _, cand := range edits {
			if spansConflict(prev, cand) {
				return true
			}
		}
	}
	return false
}

// spansConflict reports whether two text edits' spans overlap.
// Spans are half-open. Two insertions never conflict; an insertion
// conflicts with a span when Start <= pos < End.
func spansConflict(a, b diag.TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart <= aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart <= bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

func groupEditsByFile(edits []diag.TextEdit) map[source.FileID][]diag.TextEdit {
	buckets := make(map[source.FileID][]diag.TextEdit)
	for _, edit := range edits {
		buckets[edit.Span.File] = append(buckets[edit.Span.File], edit)
	}
	return buckets
}

// cumulativeDelta is the length change applied before pos by earlier edits.
func cumulativeDelta(edits []diag.TextEdit, pos int) int {
	delta := 0
	for _, e := range edits {
		eStart := int(e.Span.Start)
		if eStart > pos {
			break
		}
		eEnd := int(e.Span.End)
		change := len(e.NewText) - (eEnd - eStart)
		if eEnd <= pos {
			delta += change
		}
	}
	return delta
}

func insertEditSorted(edits []diag.TextEdit, edit diag.TextEdit) []diag.TextEdit {
	i, _ := slices.BinarySearchFunc(edits, edit, func(e, t diag.TextEdit) int {
		return cmp.Or(cmp.Compare(e.Span.Start, t.Span.Start), cmp.Compare(e.Span.End, t.Span.End))
	})
	return slices.Insert(edits, i, edit)
}

func formatFilePath(fs *source.FileSet, fileID source.FileID) string {
	if fs == nil {
		return ""
	}
	file := fs.Get(fileID)
	if file == nil {
		return ""
	}
	return file.FormatPath("auto", fs.BaseDir())
}
