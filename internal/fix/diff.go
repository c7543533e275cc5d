package fix

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff renders a line-oriented diff of before and after:
//
//	--- a/path
//	+++ b/path
//	 unchanged
//	-removed
//	+added
//
// Equal runs longer than the context window are elided with "@@". An empty
// string means the inputs are identical.
func Diff(path, before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)
	for i, d := range diffs {
		body := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writeLines(&sb, "-", body)
		case diffmatchpatch.DiffInsert:
			writeLines(&sb, "+", body)
		case diffmatchpatch.DiffEqual:
			writeLines(&sb, " ", contextLines(body, i == 0, i == len(diffs)-1))
		}
	}
	return sb.String()
}

const (
	diffContext = 3
	elided      = "\x00"
)

// contextLines trims an equal run to the lines adjacent to changes.
func contextLines(lines []string, first, last bool) []string {
	keepHead, keepTail := diffContext, diffContext
	if first {
		keepHead = 0
	}
	if last {
		keepTail = 0
	}
	if len(lines) <= keepHead+keepTail {
		return lines
	}
	out := make([]string, 0, keepHead+keepTail+1)
	out = append(out, lines[:keepHead]...)
	out = append(out, elided)
	out = append(out, lines[len(lines)-keepTail:]...)
	return out
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}

func writeLines(sb *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		if line == elided {
			sb.WriteString("@@\n")
			continue
		}
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}
