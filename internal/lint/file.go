package lint

import (
	"fmt"
	"slices"

	"phpsniff/internal/diag"
	"phpsniff/internal/fix"
	"phpsniff/internal/sniff"
	"phpsniff/internal/source"
	"phpsniff/internal/token"
)

// File is the token context one sniff pass runs against. It implements
// sniff.File.
type File struct {
	src    *source.File
	tokens []token.Token
	fixer  *fix.Fixer
	bag    *diag.Bag
	rules  *ruleMeta

	// the last fixable diagnostic collects the edits queued after it
	open    *diag.Diagnostic
	openSeq int

	errors   int
	warnings int
	fixable  int
}

var _ sniff.File = (*File)(nil)

// ruleMeta is what a File needs to know about the registered sniffs.
type ruleMeta struct {
	codes    map[string]diag.Code
	severity map[string]diag.Severity
}

func (m *ruleMeta) code(src string) diag.Code {
	if m != nil {
		if c, ok := m.codes[src]; ok {
			return c
		}
	}
	return diag.SniffInfo
}

func (m *ruleMeta) adjust(src string, sev diag.Severity) diag.Severity {
	if m != nil {
		if s, ok := m.severity[src]; ok {
			return s
		}
	}
	return sev
}

// NewFile wraps tokens of src. maxDiagnostics <= 0 means no practical limit.
func NewFile(src *source.File, tokens []token.Token, maxDiagnostics int) *File {
	return &File{
		src:    src,
		tokens: tokens,
		fixer:  fix.NewFixer(src, tokens),
		bag:    diag.NewBag(maxDiagnostics),
	}
}

// Source returns the underlying source file.
func (f *File) Source() *source.File { return f.src }

// Path returns the path of the underlying file.
func (f *File) Path() string {
	if f.src == nil {
		return ""
	}
	return f.src.Path
}

// Tokens returns the token stream. Callers must not modify it.
func (f *File) Tokens() []token.Token { return f.tokens }

// FindPrevious returns the nearest token at or before start whose kind is in
// kinds, or -1. start is clamped to the last token.
func (f *File) FindPrevious(kinds []token.Kind, start int) int {
	return f.FindPreviousWithin(kinds, start, 0)
}

// FindPreviousWithin is FindPrevious stopping at end (inclusive).
func (f *File) FindPreviousWithin(kinds []token.Kind, start, end int) int {
	if start >= len(f.tokens) {
		start = len(f.tokens) - 1
	}
	end = max(end, 0)
	for i := start; i >= end; i-- {
		if slices.Contains(kinds, f.tokens[i].Kind) {
			return i
		}
	}
	return -1
}

// FindNext returns the first token at or after start whose kind is in
// kinds, or -1.
func (f *File) FindNext(kinds []token.Kind, start int) int {
	for i := max(start, 0); i < len(f.tokens); i++ {
		if slices.Contains(kinds, f.tokens[i].Kind) {
			return i
		}
	}
	return -1
}

// Fixer returns the edit queue of the file.
func (f *File) Fixer() sniff.EditQueue { return f.fixer }

// EditFixer returns the concrete fixer, for materialising output.
func (f *File) EditFixer() *fix.Fixer { return f.fixer }

// AddFixableError reports an error whose fix is whatever the sniff queues
// on the Fixer before its next report or the end of the current Process
// call.
func (f *File) AddFixableError(msg string, ptr int, src string) bool {
	return f.add(diag.SevError, msg, ptr, src, true)
}

// AddError reports a non-fixable error.
func (f *File) AddError(msg string, ptr int, src string) bool {
	return f.add(diag.SevError, msg, ptr, src, false)
}

// AddWarning reports a non-fixable warning.
func (f *File) AddWarning(msg string, ptr int, src string) bool {
	return f.add(diag.SevWarning, msg, ptr, src, false)
}

func (f *File) add(sev diag.Severity, msg string, ptr int, src string, fixable bool) bool {
	f.seal()

	sev = f.rules.adjust(src, sev)
	d := diag.NewReportBuilder(nil, sev, f.rules.code(src), f.spanAt(ptr), msg).
		WithSource(src).
		Emit()
	if !f.bag.Add(d) {
		return false
	}
	switch sev {
	case diag.SevError:
		f.errors++
	case diag.SevWarning:
		f.warnings++
	}
	if fixable {
		f.fixable++
		f.open = d
		f.openSeq = f.fixer.Seq()
	}
	return true
}

// seal attaches the edits queued since the open diagnostic as its fix.
func (f *File) seal() {
	if f.open == nil {
		return
	}
	d := f.open
	f.open = nil
	pending := f.fixer.PendingSince(f.openSeq)
	if len(pending) == 0 {
		return
	}
	d.Fixes = append(d.Fixes, fix.FromPending(
		fixTitle(d.Source),
		f.fixer,
		pending,
		fix.WithID(fmt.Sprintf("%s-%s-%d", d.Code.ID(), source.BaseName(f.Path()), d.Primary.Start)),
		fix.Preferred(),
	))
}

func fixTitle(src string) string {
	if src == "" {
		return "apply fix"
	}
	return "apply " + src + " fix"
}

// spanAt anchors a report on token ptr. Out-of-range pointers anchor at
// the start of the file.
func (f *File) spanAt(ptr int) source.Span {
	if ptr >= 0 && ptr < len(f.tokens) {
		return f.tokens[ptr].Span
	}
	var id source.FileID
	if f.src != nil {
		id = f.src.ID
	}
	return source.Span{File: id}
}

// ErrorCount returns the number of errors reported.
func (f *File) ErrorCount() int { return f.errors }

// WarningCount returns the number of warnings reported.
func (f *File) WarningCount() int { return f.warnings }

// FixableCount returns the number of fixable reports.
func (f *File) FixableCount() int { return f.fixable }

// Diagnostics returns the reports in file order.
func (f *File) Diagnostics() []*diag.Diagnostic {
	f.seal()
	f.bag.Sort()
	return f.bag.Items()
}

// Report adds a diagnostic produced outside the sniffs, e.g. by the lexer.
func (f *File) Report(d *diag.Diagnostic) {
	if d == nil || !f.bag.Add(d) {
		return
	}
	switch d.Severity {
	case diag.SevError:
		f.errors++
	case diag.SevWarning:
		f.warnings++
	}
}
