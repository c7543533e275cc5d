package fix

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"phpsniff/internal/diag"
	"phpsniff/internal/lexer"
	"phpsniff/internal/source"
	"phpsniff/internal/token"
)

func newTestFixer(t *testing.T, src string) (*Fixer, []token.Token, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("BadClass.php", []byte(src)))
	toks := lexer.New(file, lexer.Options{}).All()
	return NewFixer(file, toks), toks, file
}

func indexOf(toks []token.Token, k token.Kind) int {
	for i, tok := range toks {
		if tok.Kind == k {
			return i
		}
	}
	return -1
}

func TestFixerAddContentBeforeClass(t *testing.T) {
	f, toks, _ := newTestFixer(t, "<?php\nclass BadClass { }\n")
	ptr := indexOf(toks, token.Class)
	if !f.AddContent(ptr-1, "final ") {
		t.Fatalf("AddContent rejected a valid pointer")
	}
	if got, want := f.Contents(), "<?php\nfinal class BadClass { }\n"; got != want {
		t.Fatalf("Contents = %q, want %q", got, want)
	}

	diff := f.GenerateDiff("BadClass.php")
	for _, want := range []string{"-class BadClass", "+final class BadClass"} {
		if !strings.Contains(diff, want) {
			t.Fatalf("diff lacks %q:\n%s", want, diff)
		}
	}

	edits := f.Edits()
	want := []diag.TextEdit{{Span: toks[ptr].Span.Head(), NewText: "final "}}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Fatalf("Edits (-want +got):\n%s", diff)
	}
}

func TestFixerNoChanges(t *testing.T) {
	f, _, file := newTestFixer(t, "<?php\nfinal class WellFormedClass { }\n")
	if f.HasChanges() {
		t.Fatalf("fresh fixer must be clean")
	}
	if got := f.Contents(); got != string(file.Content) {
		t.Fatalf("Contents without edits = %q", got)
	}
	if d := f.GenerateDiff("x.php"); d != "" {
		t.Fatalf("diff without edits = %q", d)
	}
}

func TestFixerRejectsOutOfRange(t *testing.T) {
	f, toks, _ := newTestFixer(t, "<?php class A {}")
	for _, ptr := range []int{-1, len(toks)} {
		if f.AddContent(ptr, "x") || f.AddContentBefore(ptr, "x") || f.ReplaceToken(ptr, "x") {
			t.Fatalf("pointer %d must be rejected", ptr)
		}
	}
	if f.HasChanges() {
		t.Fatalf("rejected edits must not be queued")
	}
}

func TestFixerEditOrdering(t *testing.T) {
	f, toks, _ := newTestFixer(t, "<?php class A {}")
	ptr := indexOf(toks, token.Class)

	f.AddContentBefore(ptr, "b ")
	f.AddContentBefore(ptr, "a ")
	f.AddContent(ptr, "!")
	if got, want := f.Contents(), "<?php a b class! A {}"; got != want {
		t.Fatalf("Contents = %q, want %q", got, want)
	}

	seq := f.Seq()
	f.ReplaceToken(ptr, "interface")
	if got, want := f.Contents(), "<?php interface A {}"; got != want {
		t.Fatalf("Contents after replace = %q, want %q", got, want)
	}
	pending := f.Pending()
	if len(pending) != 1 || pending[0].Kind != EditReplace || pending[0].Seq != seq {
		t.Fatalf("replace must drop earlier edits of the token, got %+v", pending)
	}
	if got := f.PendingSince(seq + 1); len(got) != 0 {
		t.Fatalf("PendingSince past the end = %+v", got)
	}

	te := f.TextEdit(pending[0])
	if te.OldText != "class" || te.NewText != "interface" || te.Span != toks[ptr].Span {
		t.Fatalf("replace TextEdit = %+v", te)
	}

	f.Reset()
	if f.HasChanges() || f.Seq() != 0 || f.Contents() != "<?php class A {}" {
		t.Fatalf("Reset must drop everything")
	}
}

func TestFixerPendingSince(t *testing.T) {
	f, _, _ := newTestFixer(t, "<?php class A {} class B {}")
	f.AddContent(0, "x")
	mark := f.Seq()
	f.AddContent(1, "y")
	f.AddContent(2, "z")
	got := f.PendingSince(mark)
	want := []PendingEdit{
		{Seq: 1, Ptr: 1, Kind: EditAppend, Text: "y"},
		{Seq: 2, Ptr: 2, Kind: EditAppend, Text: "z"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("PendingSince (-want +got):\n%s", diff)
	}
}

func TestEditKindString(t *testing.T) {
	cases := map[EditKind]string{EditAppend: "append", EditPrepend: "prepend", EditReplace: "replace", EditKind(9): "unknown"}
	for k, want := range cases {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", k, k.String(), want)
		}
	}
}
