package fix

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phpsniff/internal/diag"
	"phpsniff/internal/source"
)

func insertDiag(file source.FileID, at uint32, text, id string) *diag.Diagnostic {
	span := source.Span{File: file, Start: at, End: at}
	return &diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.SniffFinalClass,
		Message:  "missing final",
		Primary:  span,
		Fixes:    []diag.Fix{InsertText("Add final", span, text, WithID(id))},
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestGatherCandidatesSkipsDuplicateFixIDs(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.php", []byte(""))
	span := source.Span{File: fileID, Start: 0, End: 0}

	diagnostics := []*diag.Diagnostic{{
		Code:    diag.SniffFinalClass,
		Message: "missing final",
		Primary: span,
		Fixes: []diag.Fix{
			{ID: "fix-duplicate", Title: "insert", Edits: []diag.TextEdit{{Span: span, NewText: "final "}}},
			{ID: "fix-duplicate", Title: "insert again", Edits: []diag.TextEdit{{Span: span, NewText: "final "}}},
		},
	}}

	candidates, skips := gatherCandidates(diag.FixBuildContext{FileSet: fs}, diagnostics)
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if len(skips) != 1 || skips[0].ID != "fix-duplicate" || skips[0].Reason != "duplicate fix id" {
		t.Fatalf("unexpected skips %+v", skips)
	}
}

func TestApplyAllWritesFile(t *testing.T) {
	src := "<?php\nclass A { }\nclass B { }\n"
	path := writeTemp(t, "ab.php", src)
	fs := source.NewFileSetWithBase(filepath.Dir(path))
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	a := uint32(strings.Index(src, "class A"))
	b := uint32(strings.Index(src, "class B"))
	diags := []*diag.Diagnostic{insertDiag(id, b, "final ", "b"), insertDiag(id, a, "final ", "a")}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 2 || len(res.FileChanges) != 1 || res.FileChanges[0].EditCount != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := "<?php\nfinal class A { }\nfinal class B { }\n"; string(got) != want {
		t.Fatalf("file = %q, want %q", got, want)
	}
	if !strings.Contains(res.FileChanges[0].Diff, "+final class B { }") {
		t.Fatalf("change diff missing insertion:\n%s", res.FileChanges[0].Diff)
	}
}

func TestApplyOnceAndByID(t *testing.T) {
	src := "<?php\nclass A { }\nclass B { }\n"
	a := uint32(strings.Index(src, "class A"))
	b := uint32(strings.Index(src, "class B"))

	fs := source.NewFileSet()
	id := fs.AddVirtual("ab.php", []byte(src))
	diags := []*diag.Diagnostic{insertDiag(id, b, "final ", "b"), insertDiag(id, a, "final ", "a")}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeOnce, DryRun: true})
	if err != nil {
		t.Fatalf("Apply once: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != "a" {
		t.Fatalf("once must pick the first fix in file order, got %+v", res.Applied)
	}

	res, err = Apply(fs, diags, ApplyOptions{Mode: ApplyModeID, TargetID: "b", DryRun: true})
	if err != nil {
		t.Fatalf("Apply id: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != "b" {
		t.Fatalf("id mode applied %+v", res.Applied)
	}

	res, err = Apply(fs, diags, ApplyOptions{Mode: ApplyModeID, TargetID: "missing", DryRun: true})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("unknown id must give ErrNoFixes, got %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "fix id not found" {
		t.Fatalf("unexpected skips %+v", res.Skipped)
	}
}

func TestApplyVirtualFileNeedsDryRun(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("v.php", []byte("<?php class A {}"))
	diags := []*diag.Diagnostic{insertDiag(id, 6, "final ", "v")}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("virtual target must not be written, got %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "target file is virtual" {
		t.Fatalf("unexpected skips %+v", res.Skipped)
	}

	res, err = Apply(fs, diags, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !strings.Contains(res.FileChanges[0].Diff, "+<?php final class A {}") {
		t.Fatalf("dry-run diff:\n%s", res.FileChanges[0].Diff)
	}
}

func TestApplyGuardMismatch(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("g.php", []byte("<?php class A {}"))
	span := source.Span{File: id, Start: 6, End: 11}
	d := &diag.Diagnostic{
		Code:    diag.SniffFinalClass,
		Primary: span,
		Fixes:   []diag.Fix{ReplaceSpan("swap", span, "trait", "enum!")},
	}
	res, err := Apply(fs, []*diag.Diagnostic{d}, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "existing text does not match expected content" {
		t.Fatalf("unexpected skips %+v", res.Skipped)
	}
}

func TestApplyRestoresCRLF(t *testing.T) {
	path := writeTemp(t, "crlf.php", "<?php\r\nclass A {}\r\n")
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := Apply(fs, []*diag.Diagnostic{insertDiag(id, 6, "final ", "c")}, ApplyOptions{Mode: ApplyModeAll}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := "<?php\r\nfinal class A {}\r\n"; string(got) != want {
		t.Fatalf("file = %q, want %q", got, want)
	}
}

func TestSpansConflict(t *testing.T) {
	ins := func(at uint32) diag.TextEdit { return diag.TextEdit{Span: source.Span{Start: at, End: at}} }
	rep := func(s, e uint32) diag.TextEdit { return diag.TextEdit{Span: source.Span{Start: s, End: e}} }
	cases := []struct {
		a, b diag.TextEdit
		want bool
	}{
		{ins(5), ins(5), false},
		{ins(5), rep(5, 10), true},
		{ins(10), rep(5, 10), false},
		{rep(0, 5), rep(5, 10), false},
		{rep(0, 6), rep(5, 10), true},
	}
	for i, tc := range cases {
		if got := spansConflict(tc.a, tc.b); got != tc.want {
			t.Errorf("case %d: spansConflict = %v, want %v", i, got, tc.want)
		}
	}
}

func TestSelectFirstFallsBackAndSkipsRequiresAll(t *testing.T) {
	mk := func(id string, app diag.FixApplicability, all bool) candidate {
		return candidate{diag: &diag.Diagnostic{}, fix: diag.Fix{ID: id, Applicability: app, RequiresAll: all}}
	}
	cands := []candidate{
		mk("batch", diag.FixApplicabilityAlwaysSafe, true),
		mk("manual", diag.FixApplicabilityManualReview, false),
		mk("safe", diag.FixApplicabilityAlwaysSafe, false),
	}
	got, skipped := selectFirst(cands)
	if len(got) != 1 || got[0].fix.ID != "safe" {
		t.Fatalf("want the first safe fix, got %+v", got)
	}
	if len(skipped) != 1 || skipped[0].ID != "batch" || skipped[0].Reason != reasonRequiresAll {
		t.Fatalf("unexpected skips %+v", skipped)
	}

	got, _ = selectFirst(cands[:2])
	if len(got) != 1 || got[0].fix.ID != "manual" {
		t.Fatalf("want the fallback fix, got %+v", got)
	}
	if got, _ := selectByID(cands, "batch"); got != nil {
		t.Fatalf("fix requiring all must not be selected by id")
	}
}

func TestApplyBatchShiftsByMergedEdits(t *testing.T) {
	st := &fileState{buf: []byte("class A {} class B {}")}
	first, reason := applyBatch(st, []diag.TextEdit{{Span: source.Span{Start: 11, End: 11}, NewText: "final "}})
	if reason != "" {
		t.Fatalf("unexpected skip %q", reason)
	}
	second, reason := applyBatch(first, []diag.TextEdit{{Span: source.Span{Start: 0, End: 0}, NewText: "final "}})
	if reason != "" {
		t.Fatalf("unexpected skip %q", reason)
	}
	if got := string(second.buf); got != "final class A {} final class B {}" {
		t.Fatalf("buf = %q", got)
	}
	if second.edits != 2 || len(second.merged) != 2 || second.merged[0].Span.Start != 0 {
		t.Fatalf("merged edits out of order: %+v", second.merged)
	}
	if string(st.buf) != "class A {} class B {}" {
		t.Fatalf("input state must not be modified")
	}
}
