package fix

import (
	"slices"
	"strings"

	"phpsniff/internal/diag"
	"phpsniff/internal/source"
	"phpsniff/internal/token"
)

// EditKind says where a pending edit lands relative to its token.
type EditKind uint8

const (
	// EditAppend inserts after the token.
	EditAppend EditKind = iota
	// EditPrepend inserts before the token.
	EditPrepend
	// EditReplace replaces the token text.
	EditReplace
)

func (k EditKind) String() string {
	switch k {
	case EditAppend:
		return "append"
	case EditPrepend:
		return "prepend"
	case EditReplace:
		return "replace"
	}
	return "unknown"
}

// PendingEdit is one queued token-anchored edit.
type PendingEdit struct {
	Seq  int
	Ptr  int
	Kind EditKind
	Text string
}

// Fixer records edits against the token stream of one file. Token contents
// are tracked the way PHP_CodeSniffer does it: AddContent appends to the
// current content of a token, ReplaceToken overwrites it.
//
// A Fixer is not safe for concurrent use.
type Fixer struct {
	file    *source.File
	tokens  []token.Token
	current []string
	pending []PendingEdit
	seq     int
}

// NewFixer creates an empty edit queue for tokens of file.
func NewFixer(file *source.File, tokens []token.Token) *Fixer {
	f := &Fixer{file: file, tokens: tokens}
	f.Reset()
	return f
}

// AddContent queues text to be inserted after the token at ptr.
func (f *Fixer) AddContent(ptr int, text string) bool {
	if !f.valid(ptr) {
		return false
	}
	f.current[ptr] += text
	f.push(ptr, EditAppend, text)
	return true
}

// AddContentBefore queues text to be inserted before the token at ptr.
func (f *Fixer) AddContentBefore(ptr int, text string) bool {
	if !f.valid(ptr) {
		return false
	}
	f.current[ptr] = text + f.current[ptr]
	f.push(ptr, EditPrepend, text)
	return true
}

// ReplaceToken replaces the content of the token at ptr. Edits queued
// earlier for the same token are discarded.
func (f *Fixer) ReplaceToken(ptr int, text string) bool {
	if !f.valid(ptr) {
		return false
	}
	f.current[ptr] = text
	f.pending = slices.DeleteFunc(f.pending, func(e PendingEdit) bool {
		return e.Ptr == ptr
	})
	f.push(ptr, EditReplace, text)
	return true
}

func (f *Fixer) valid(ptr int) bool {
	return ptr >= 0 && ptr < len(f.tokens)
}

func (f *Fixer) push(ptr int, kind EditKind, text string) {
	f.pending = append(f.pending, PendingEdit{Seq: f.seq, Ptr: ptr, Kind: kind, Text: text})
	f.seq++
}

// Seq returns the sequence number the next queued edit will get.
func (f *Fixer) Seq() int {
	return f.seq
}

// Pending returns a copy of the queued edits in queue order.
func (f *Fixer) Pending() []PendingEdit {
	return slices.Clone(f.pending)
}

// PendingSince returns queued edits with a sequence number >= seq.
func (f *Fixer) PendingSince(seq int) []PendingEdit {
	out := make([]PendingEdit, 0)
	for _, e := range f.pending {
		if e.Seq >= seq {
			out = append(out, e)
		}
	}
	return out
}

// HasChanges reports whether any edit is queued.
func (f *Fixer) HasChanges() bool {
	return len(f.pending) > 0
}

// TextEdit converts a pending edit into a byte-offset edit on the file.
func (f *Fixer) TextEdit(e PendingEdit) diag.TextEdit {
	tok := f.tokens[e.Ptr]
	switch e.Kind {
	case EditPrepend:
		return diag.TextEdit{Span: tok.Span.Head(), NewText: e.Text}
	case EditReplace:
		return diag.TextEdit{Span: tok.Span, NewText: e.Text, OldText: tok.Text}
	default:
		return diag.TextEdit{Span: tok.Span.Tail(), NewText: e.Text}
	}
}

// Edits returns every pending edit as a byte-offset edit, in queue order.
func (f *Fixer) Edits() []diag.TextEdit {
	return f.TextEdits(f.pending)
}

// TextEdits converts a batch of pending edits.
func (f *Fixer) TextEdits(pending []PendingEdit) []diag.TextEdit {
	out := make([]diag.TextEdit, 0, len(pending))
	for _, e := range pending {
		out = append(out, f.TextEdit(e))
	}
	return out
}

// Contents returns the file content with all queued edits applied.
func (f *Fixer) Contents() string {
	var sb strings.Builder
	var off uint32
	for i, tok := range f.tokens {
		// bytes the lexer did not cover are kept verbatim
		if tok.Span.Start > off && f.file != nil {
			sb.Write(f.file.Content[off:tok.Span.Start])
		}
		sb.WriteString(f.current[i])
		off = tok.Span.End
	}
	if f.file != nil && int(off) < len(f.file.Content) {
		sb.Write(f.file.Content[off:])
	}
	return sb.String()
}

// GenerateDiff returns a line diff between the original and fixed content,
// or "" when nothing changes.
func (f *Fixer) GenerateDiff(path string) string {
	if !f.HasChanges() {
		return ""
	}
	return Diff(path, f.original(), f.Contents())
}

func (f *Fixer) original() string {
	if f.file == nil {
		var sb strings.Builder
		for _, tok := range f.tokens {
			sb.WriteString(tok.Text)
		}
		return sb.String()
	}
	return string(f.file.Content)
}

// Reset drops every queued edit.
func (f *Fixer) Reset() {
	f.current = make([]string, len(f.tokens))
	for i, tok := range f.tokens {
		f.current[i] = tok.Text
	}
	f.pending = f.pending[:0]
	f.seq = 0
}
