package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"phpsniff/internal/fix"
)

// FormatDiff writes the diff of every changed file, colouring removed and
// added lines.
func FormatDiff(w io.Writer, changes []fix.FileChange, useColor bool) {
	p := newPalette(useColor)
	for _, ch := range changes {
		if ch.Diff == "" {
			continue
		}
		for _, line := range strings.SplitAfter(ch.Diff, "\n") {
			if line == "" {
				continue
			}
			switch {
			case strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ "):
				fmt.Fprint(w, p.path.Sprint(line))
			case strings.HasPrefix(line, "@@"):
				fmt.Fprint(w, p.gutter.Sprint(line))
			case strings.HasPrefix(line, "-"):
				fmt.Fprint(w, p.removed.Sprint(line))
			case strings.HasPrefix(line, "+"):
				fmt.Fprint(w, p.added.Sprint(line))
			default:
				fmt.Fprint(w, line)
			}
		}
	}
}

// FormatApplySummary lists applied and skipped fixes.
func FormatApplySummary(w io.Writer, res *fix.ApplyResult, dryRun, useColor bool) {
	if res == nil {
		return
	}
	p := newPalette(useColor)
	verb := "applied"
	if dryRun {
		verb = "would apply"
	}
	for _, a := range res.Applied {
		fmt.Fprintf(w, "%s %s: %s (%s)\n", p.fix.Sprint(verb), a.PrimaryPath, a.Title, a.ID)
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "%s %s (%s): %s\n", p.warn.Sprint("skipped"), s.Title, s.ID, s.Reason)
	}
	files := len(res.FileChanges)
	fmt.Fprintf(w, "%s %d %s in %d %s\n", verb, len(res.Applied), plural(len(res.Applied), "fix", "fixes"), files, plural(files, "file", "files"))
}
