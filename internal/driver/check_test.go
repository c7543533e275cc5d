package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"phpsniff/internal/diag"
	"phpsniff/internal/fix"
	"phpsniff/internal/lint"
	"phpsniff/internal/sniff"
	"phpsniff/internal/sniff/finalclass"
	"phpsniff/internal/token"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func relPaths(t *testing.T, dir string, res *CheckResult) []string {
	t.Helper()
	out := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		rel, err := filepath.Rel(dir, f.Path)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestCheckDirReportsNonFinalClasses(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeTree(t, map[string]string{
		"a.php":         "<?php\nclass Foo {}\n",
		"b.php":         "<?php\nfinal class Bar {}\n",
		"sub/c.php":     "<?php\nabstract class Baz {}\nclass Qux {}\n",
		"sub/notes.txt": "class Ignored {}\n",
		"vendor/x.php":  "<?php\nclass Vendored {}\n",
	})

	res, err := CheckDir(context.Background(), dir, CheckOptions{
		Jobs:     2,
		Discover: DiscoverOptions{Exclude: []string{"vendor"}},
	})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}

	if diff := cmp.Diff([]string{"a.php", "b.php", "sub/c.php"}, relPaths(t, dir, res)); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
	gotErrors := []int{res.Files[0].Errors, res.Files[1].Errors, res.Files[2].Errors}
	if diff := cmp.Diff([]int{1, 0, 2}, gotErrors); diff != "" {
		t.Fatalf("error counts mismatch (-want +got):\n%s", diff)
	}
	if res.ErrorCount() != 3 || res.FixableCount() != 3 {
		t.Fatalf("unexpected totals: errors=%d fixable=%d", res.ErrorCount(), res.FixableCount())
	}
	for _, d := range res.Diagnostics() {
		if d.Code != diag.SniffFinalClass || d.Source != finalclass.Source || d.Message != finalclass.FixableMessage {
			t.Fatalf("unexpected diagnostic %+v", d)
		}
	}
}

func TestCheckThenApplyWritesFinal(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeTree(t, map[string]string{
		"a.php": "<?php\r\nclass Foo {}\r\n",
		"b.php": "<?php\nclass One {}\nclass Two extends One {}\n",
	})

	res, err := CheckDir(context.Background(), dir, CheckOptions{})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	applied, err := fix.Apply(res.FileSet, res.Diagnostics(), fix.ApplyOptions{Mode: fix.ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(applied.Applied) != 3 {
		t.Fatalf("expected 3 applied fixes, got %+v (skipped %+v)", applied.Applied, applied.Skipped)
	}

	want := map[string]string{
		"a.php": "<?php\r\nfinal class Foo {}\r\n",
		"b.php": "<?php\nfinal class One {}\nfinal class Two extends One {}\n",
	}
	for name, content := range want {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(content, string(data)); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	again, err := CheckDir(context.Background(), dir, CheckOptions{})
	if err != nil {
		t.Fatalf("second CheckDir: %v", err)
	}
	if again.ErrorCount() != 0 {
		t.Fatalf("expected clean tree after fixing, got %d errors", again.ErrorCount())
	}
}

func TestApplyKeepsMixedLineEndings(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeTree(t, map[string]string{
		"m.php": "<?php\r\n$s = \"a\nb\";\nclass M {}\r\n",
	})
	res, err := CheckDir(context.Background(), dir, CheckOptions{})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if res.ErrorCount() != 1 {
		t.Fatalf("expected one report, got %d", res.ErrorCount())
	}
	if _, err := fix.Apply(res.FileSet, res.Diagnostics(), fix.ApplyOptions{Mode: fix.ApplyModeAll}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "m.php"))
	if err != nil {
		t.Fatal(err)
	}
	want := "<?php\r\n$s = \"a\nb\";\nfinal class M {}\r\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("m.php mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckUsesCache(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeTree(t, map[string]string{"a.php": "<?php\nclass Foo {}\n"})
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := CheckOptions{Cache: cache}

	first, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Files[0].Cached || !second.Files[0].Cached {
		t.Fatalf("expected miss then hit, got %v then %v", first.Files[0].Cached, second.Files[0].Cached)
	}
	if diff := cmp.Diff(first.Files[0].Diagnostics, second.Files[0].Diagnostics); diff != "" {
		t.Fatalf("cached diagnostics differ (-fresh +cached):\n%s", diff)
	}

	// a different configuration must not reuse the entry
	opts.NewRuleset = func() (*lint.Ruleset, error) {
		rs := lint.NewRuleset()
		rs.Register(finalclass.New(finalclass.Options{Scope: finalclass.ScopeDeclaration}))
		rs.Describe("scope=declaration")
		return rs, nil
	}
	third, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Files[0].Cached {
		t.Fatal("expected cache miss for a different ruleset")
	}
}

type brokenSniff struct{}

func (brokenSniff) Register() []token.Kind { return []token.Kind{token.Class} }

func (brokenSniff) Process(sniff.File, int) error { return sniff.FixerNotSet() }

func TestCheckSniffFailureBecomesDiagnostic(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeTree(t, map[string]string{
		"a.php": "<?php\nclass Foo {}\n",
		"b.php": "<?php\necho 1;\n",
	})
	res, err := CheckDir(context.Background(), dir, CheckOptions{
		NewRuleset: func() (*lint.Ruleset, error) {
			rs := lint.NewRuleset()
			rs.Register(brokenSniff{})
			return rs, nil
		},
	})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	diags := res.Files[0].Diagnostics
	if len(diags) != 1 || diags[0].Code != diag.SniffInternalError {
		t.Fatalf("expected one internal error, got %+v", diags)
	}
	if !strings.Contains(diags[0].Message, sniff.ErrFixerNotSet.Error()) {
		t.Fatalf("message should carry the sniff error, got %q", diags[0].Message)
	}
	if res.Files[1].Errors != 0 {
		t.Fatalf("second file should still be checked cleanly, got %+v", res.Files[1].Diagnostics)
	}
}

func TestCheckRulesetFactoryError(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.php": "<?php\n"})
	res, err := CheckDir(context.Background(), dir, CheckOptions{
		NewRuleset: func() (*lint.Ruleset, error) { return nil, errors.New("bad config") },
	})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	if res.ErrorCount() != 1 || !strings.Contains(res.Files[0].Diagnostics[0].Message, "bad config") {
		t.Fatalf("unexpected result %+v", res.Files[0])
	}
}

func TestCheckReportsLoadFailure(t *testing.T) {
	dir := writeTree(t, map[string]string{"ok.php": "<?php\n"})
	if err := os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "dangling.php")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	res, err := CheckDir(context.Background(), dir, CheckOptions{})
	if err != nil {
		t.Fatalf("CheckDir: %v", err)
	}
	failed := res.Files[0]
	if failed.Loaded || len(failed.Diagnostics) != 1 || failed.Diagnostics[0].Code != diag.IOLoadFileError {
		t.Fatalf("expected load failure for dangling.php, got %+v", failed)
	}
	if !res.Files[1].Loaded {
		t.Fatalf("ok.php should load")
	}
}

func TestCheckCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeTree(t, map[string]string{"a.php": "<?php\nclass A {}\n", "b.php": "<?php\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CheckDir(ctx, dir, CheckOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestCheckEmitsProgress(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := writeTree(t, map[string]string{"a.php": "<?php\nclass A {}\n", "b.php": "<?php\n"})
	sink := &recordingSink{}
	if _, err := CheckDir(context.Background(), dir, CheckOptions{Progress: sink}); err != nil {
		t.Fatal(err)
	}

	final := map[string]Status{}
	queued := 0
	for _, ev := range sink.events {
		if ev.Status == StatusQueued {
			queued++
		}
		final[filepath.Base(ev.File)] = ev.Status
	}
	if queued != 2 {
		t.Fatalf("expected 2 queued events, got %d", queued)
	}
	if diff := cmp.Diff(map[string]Status{"a.php": StatusDone, "b.php": StatusDone}, final); diff != "" {
		t.Fatalf("final statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckSourceVirtualFile(t *testing.T) {
	res, err := CheckSource(context.Background(), "stdin.php", []byte("<?php\nclass Foo {}\n"), CheckOptions{Timings: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.ErrorCount() != 1 {
		t.Fatalf("expected 1 error, got %d", res.ErrorCount())
	}
	if res.Timings == nil || res.Timings.Code != diag.ObsTimings {
		t.Fatalf("expected timings diagnostic, got %+v", res.Timings)
	}

	dry, err := fix.Apply(res.FileSet, res.Files[0].Diagnostics, fix.ApplyOptions{Mode: fix.ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(dry.FileChanges) != 1 || !strings.Contains(dry.FileChanges[0].Diff, "+final class Foo {}") {
		t.Fatalf("unexpected dry-run result %+v", dry.FileChanges)
	}
}

func TestCheckEmptyDir(t *testing.T) {
	res, err := CheckDir(context.Background(), t.TempDir(), CheckOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 0 || res.ErrorCount() != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}
