package finalclass

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"phpsniff/internal/sniff"
	"phpsniff/internal/token"
)

type edit struct {
	Ptr  int
	Text string
}

type report struct {
	Msg    string
	Ptr    int
	Source string
}

// fakeQueue records AddContent calls.
type fakeQueue struct {
	edits []edit
}

func (q *fakeQueue) AddContent(ptr int, text string) bool {
	q.edits = append(q.edits, edit{Ptr: ptr, Text: text})
	return true
}

// fakeFile is a token stream given only by kinds; every other index is an
// identifier.
type fakeFile struct {
	kinds   map[int]token.Kind
	queue   *fakeQueue
	reports []report
}

func newFakeFile(kinds map[int]token.Kind) *fakeFile {
	return &fakeFile{kinds: kinds, queue: &fakeQueue{}}
}

func (f *fakeFile) kindAt(i int) token.Kind {
	if k, ok := f.kinds[i]; ok {
		return k
	}
	return token.Ident
}

func (f *fakeFile) FindPrevious(kinds []token.Kind, start int) int {
	return f.FindPreviousWithin(kinds, start, 0)
}

func (f *fakeFile) FindPreviousWithin(kinds []token.Kind, start, end int) int {
	for i := start; i >= end && i >= 0; i-- {
		for _, k := range kinds {
			if f.kindAt(i) == k {
				return i
			}
		}
	}
	return -1
}

func (f *fakeFile) AddFixableError(msg string, ptr int, source string) bool {
	f.reports = append(f.reports, report{Msg: msg, Ptr: ptr, Source: source})
	return true
}

func (f *fakeFile) Fixer() sniff.EditQueue { return f.queue }

func TestRegister(t *testing.T) {
	s := New(Options{})
	want := []token.Kind{token.Class}
	for i := 0; i < 3; i++ {
		if diff := cmp.Diff(want, s.Register()); diff != "" {
			t.Fatalf("Register call %d (-want +got):\n%s", i, diff)
		}
	}
	// mutating a returned slice must not leak into later calls
	s.Register()[0] = token.Final
	_ = s.Process(newFakeFile(map[int]token.Kind{5: token.Class}), 5)
	if diff := cmp.Diff(want, s.Register()); diff != "" {
		t.Fatalf("Register after Process (-want +got):\n%s", diff)
	}
}

func TestProcessFinalClass(t *testing.T) {
	file := newFakeFile(map[int]token.Kind{10: token.Final, 11: token.Class})
	if err := New(Options{}).Process(file, 11); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(file.queue.edits) != 0 || len(file.reports) != 0 {
		t.Fatalf("expected no edits and no reports, got %v / %v", file.queue.edits, file.reports)
	}
}

func TestProcessClassWithoutFinal(t *testing.T) {
	file := newFakeFile(map[int]token.Kind{21: token.Class})
	if err := New(Options{}).Process(file, 21); err != nil {
		t.Fatalf("Process: %v", err)
	}
	wantEdits := []edit{{Ptr: 20, Text: "final "}}
	if diff := cmp.Diff(wantEdits, file.queue.edits); diff != "" {
		t.Fatalf("edits (-want +got):\n%s", diff)
	}
	wantReports := []report{{Msg: FixableMessage, Ptr: 20, Source: Source}}
	if diff := cmp.Diff(wantReports, file.reports); diff != "" {
		t.Fatalf("reports (-want +got):\n%s", diff)
	}
}

func TestProcessStreamScopeSeesEarlierFinal(t *testing.T) {
	// final class A {} class B {}: the literal search finds A's modifier
	file := newFakeFile(map[int]token.Kind{
		2:  token.Final,
		4:  token.Class,
		9:  token.LBrace,
		10: token.RBrace,
		12: token.Class,
	})
	s := New(Options{})
	if err := s.Process(file, 12); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(file.reports) != 0 {
		t.Fatalf("stream scope must not report, got %v", file.reports)
	}
}

func TestProcessDeclarationScope(t *testing.T) {
	file := newFakeFile(map[int]token.Kind{
		0:  token.OpenTag,
		2:  token.Final,
		4:  token.Class,
		9:  token.LBrace,
		10: token.RBrace,
		12: token.Class,
		20: token.Final,
		21: token.KwReadonly,
		22: token.Class,
	})
	s := New(Options{Scope: ScopeDeclaration})
	for _, ptr := range []int{4, 12, 22} {
		if err := s.Process(file, ptr); err != nil {
			t.Fatalf("Process(%d): %v", ptr, err)
		}
	}
	wantEdits := []edit{{Ptr: 11, Text: "final "}}
	if diff := cmp.Diff(wantEdits, file.queue.edits); diff != "" {
		t.Fatalf("edits (-want +got):\n%s", diff)
	}
	if len(file.reports) != 1 || file.reports[0].Ptr != 11 {
		t.Fatalf("reports = %v", file.reports)
	}
}

func TestProcessExtraModifiers(t *testing.T) {
	file := newFakeFile(map[int]token.Kind{3: token.KwAbstract, 5: token.Class})
	if err := New(Options{Modifiers: []token.Kind{token.KwAbstract, token.Final}}).Process(file, 5); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(file.reports) != 0 {
		t.Fatalf("abstract must qualify when configured, got %v", file.reports)
	}

	file = newFakeFile(map[int]token.Kind{3: token.KwAbstract, 5: token.Class})
	if err := New(Options{}).Process(file, 5); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(file.reports) != 1 {
		t.Fatalf("abstract must not qualify by default, got %v", file.reports)
	}
}

func TestQualifyingDeduplicates(t *testing.T) {
	s := New(Options{Modifiers: []token.Kind{token.Final, token.KwAbstract, token.KwAbstract}})
	want := []token.Kind{token.Final, token.KwAbstract}
	if diff := cmp.Diff(want, s.Qualifying()); diff != "" {
		t.Fatalf("Qualifying (-want +got):\n%s", diff)
	}
}

func TestFixGuards(t *testing.T) {
	s := New(Options{})
	if err := s.fix(); !errors.Is(err, sniff.ErrFixerNotSet) {
		t.Fatalf("fix on fresh sniff = %v, want ErrFixerNotSet", err)
	}
	if got := s.fix().Error(); got != "The Fixer was not set." {
		t.Fatalf("message = %q", got)
	}

	s.position.Bind(5)
	if err := s.fix(); !errors.Is(err, sniff.ErrFixerNotSet) {
		t.Fatalf("fix without fixer = %v, want ErrFixerNotSet", err)
	}
	s.position.Release()

	q := &fakeQueue{}
	s.fixer.Bind(q)
	err := s.fix()
	if !errors.Is(err, sniff.ErrPositionNotSet) || err.Error() != "The Position was not set." {
		t.Fatalf("fix without position = %v, want ErrPositionNotSet", err)
	}
	if len(q.edits) != 0 {
		t.Fatalf("a failed fix must not queue edits, got %v", q.edits)
	}

	s.position.Bind(5)
	if err := s.fix(); err != nil {
		t.Fatalf("fix with both bound: %v", err)
	}
	if diff := cmp.Diff([]edit{{Ptr: 4, Text: "final "}}, q.edits); diff != "" {
		t.Fatalf("edits (-want +got):\n%s", diff)
	}
}

func TestProcessReleasesBindings(t *testing.T) {
	s := New(Options{})
	if err := s.Process(newFakeFile(map[int]token.Kind{3: token.Class}), 3); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if s.fixer.Bound() || s.position.Bound() {
		t.Fatalf("bindings must not outlive Process")
	}
	if err := s.fix(); !errors.Is(err, sniff.ErrFixerNotSet) {
		t.Fatalf("fix after Process = %v, want ErrFixerNotSet", err)
	}
}

type nilQueueFile struct{ *fakeFile }

func (nilQueueFile) Fixer() sniff.EditQueue { return nil }

func TestProcessWithoutFixer(t *testing.T) {
	file := nilQueueFile{newFakeFile(map[int]token.Kind{3: token.Class})}
	err := New(Options{}).Process(file, 3)
	if !errors.Is(err, sniff.ErrFixerNotSet) {
		t.Fatalf("Process with nil fixer = %v, want ErrFixerNotSet", err)
	}
	if !sniff.IsContractViolation(err) {
		t.Fatalf("error must be a contract violation")
	}
}

func TestParseScope(t *testing.T) {
	cases := map[string]Scope{"": ScopeStream, "stream": ScopeStream, " Declaration ": ScopeDeclaration}
	for in, want := range cases {
		got, err := ParseScope(in)
		if err != nil || got != want {
			t.Errorf("ParseScope(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseScope("file"); err == nil {
		t.Fatalf("unknown scope must fail")
	}
	if ScopeDeclaration.String() != "declaration" || Scope(9).String() != "Scope(9)" {
		t.Fatalf("String mismatch")
	}
}

func TestDocumentationCoversAbstractClasses(t *testing.T) {
	for _, want := range []string{"abstract final class Base", `modifiers = ["abstract"]`} {
		if !strings.Contains(Documentation, want) {
			t.Fatalf("documentation does not mention %q", want)
		}
	}
}
