package diagfmt

import (
	"fmt"
	"sort"
	"strings"

	"fortio.org/safecast"

	"phpsniff/internal/diag"
	"phpsniff/internal/source"
)

type fixPreview struct {
	before []string
	after  []string
}

func buildFixEditPreview(fs *source.FileSet, edit diag.TextEdit) (fixPreview, error) {
	return buildFixPreview(fs, []diag.TextEdit{edit})
}

// buildFixPreview renders the lines touched by edits before and after
// applying them together. All edits must target the same file and must
// not overlap.
func buildFixPreview(fs *source.FileSet, edits []diag.TextEdit) (fixPreview, error) {
	if fs == nil {
		return fixPreview{}, fmt.Errorf("nil FileSet")
	}
	if len(edits) == 0 {
		return fixPreview{}, fmt.Errorf("fix has no edits")
	}
	id := edits[0].Span.File
	if int(id) >= fs.Len() {
		return fixPreview{}, fmt.Errorf("file %d not found in FileSet", id)
	}
	file := fs.Get(id)

	sorted := append([]diag.TextEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })

	lo, hi := sorted[0].Span, sorted[0].Span
	for i, e := range sorted {
		if e.Span.File != id {
			return fixPreview{}, fmt.Errorf("fix spans several files")
		}
		if i > 0 && e.Span.Start < sorted[i-1].Span.End {
			return fixPreview{}, fmt.Errorf("overlapping edits at offset %d", e.Span.Start)
		}
		if e.Span.End > hi.End {
			hi = e.Span
		}
	}

	startPos, _ := fs.Resolve(lo)
	_, endPos := fs.Resolve(hi)
	blockStart := lineStartOffset(file, startPos.Line)
	blockEnd := max(lineEndOffsetInclusive(file, max(endPos.Line, startPos.Line)), blockStart)

	lenFileContent, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixPreview{}, fmt.Errorf("len file content overflow: %w", err)
	}
	blockEnd = min(blockEnd, lenFileContent)
	original := file.Content[blockStart:blockEnd]

	var after strings.Builder
	cursor := blockStart
	for _, e := range sorted {
		if e.Span.Start < blockStart || e.Span.End > blockEnd {
			return fixPreview{}, fmt.Errorf("edit %s out of range for preview block", e.Span)
		}
		after.Write(file.Content[cursor:e.Span.Start])
		after.WriteString(e.NewText)
		cursor = e.Span.End
	}
	after.Write(file.Content[cursor:blockEnd])

	return fixPreview{
		before: splitPreviewLines(string(original)),
		after:  splitPreviewLines(after.String()),
	}, nil
}

func splitPreviewLines(text string) []string {
	if text == "" {
		return nil
	}
	// the block ends with the newline of its last line; drop it so that
	// Split does not yield a trailing empty line
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func lineStartOffset(f *source.File, line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	idx := line - 2
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return contentLen(f)
}

func lineEndOffsetInclusive(f *source.File, line uint32) uint32 {
	if line == 0 {
		return 0
	}
	idx := line - 1
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return contentLen(f)
}

func contentLen(f *source.File) uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return n
}
