package diagfmt

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"phpsniff/internal/diag"
	"phpsniff/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	path, code      *color.Color
	gutter, caret   *color.Color
	removed, added  *color.Color
	note, fix       *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:     color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan, color.Bold),
		path:    color.New(color.Bold),
		code:    color.New(color.FgMagenta),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgGreen, color.Bold),
		removed: color.New(color.FgRed),
		added:   color.New(color.FgGreen),
		note:    color.New(color.FgCyan),
		fix:     color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.path, p.code, p.gutter, p.caret, p.removed, p.added, p.note, p.fix} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty writes the diagnostics of bag in human-readable form, in bag
// order (callers sort the bag first). Each entry is
//
//	<path>:<line>:<col>: <SEV> <CODE> [<source>]: <message>
//
// followed by the source line with a ^~~~ underline under the primary
// span, then notes and fixes when requested.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	header := p.severity(d.Severity).Sprint(d.Severity.String()) + " " + p.code.Sprint(d.Code.ID())
	if d.Source != "" {
		header += " [" + d.Source + "]"
	}

	if !Locatable(d, fs) {
		fmt.Fprintf(w, "%s: %s\n", header, d.Message)
		if d.Code == diag.ObsTimings || opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
			}
		}
		return
	}

	fmt.Fprintf(w, "%s: %s: %s\n", p.path.Sprint(formatPos(d.Primary, fs, opts.PathMode)), header, d.Message)
	writeSnippet(w, d.Primary, fs, opts, p)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			loc := ""
			if int(n.Span.File) < fs.Len() && d.Code != diag.ObsTimings {
				loc = formatPos(n.Span, fs, opts.PathMode) + ": "
			}
			fmt.Fprintf(w, "  %s %s%s\n", p.note.Sprint("note:"), loc, n.Msg)
		}
	}
	if opts.ShowFixes {
		writeFixes(w, d, fs, opts, p)
	}
}

// Locatable reports whether d points into a file of fs. Timing reports and
// load failures carry no meaningful span.
func Locatable(d *diag.Diagnostic, fs *source.FileSet) bool {
	if d == nil || fs == nil {
		return false
	}
	switch d.Code {
	case diag.ObsTimings, diag.IOLoadFileError:
		return false
	}
	return int(d.Primary.File) < fs.Len()
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	default:
		return f.FormatPath(mode.String(), "")
	}
}

func formatPos(sp source.Span, fs *source.FileSet, mode PathMode) string {
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, fs, mode), start.Line, start.Col)
}

func writeSnippet(w io.Writer, sp source.Span, fs *source.FileSet, opts PrettyOpts, p palette) {
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)

	ctx := max(int(opts.Context), 0)
	first := max(int(start.Line)-ctx, 1)
	last := int(start.Line) + ctx
	if n := len(f.LineIdx) + 1; last > n {
		last = n
	}
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(uint32(ln)) // #nosec G115 -- bounded by the line index
		if ln != int(start.Line) && text == "" && ln == last {
			continue
		}
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), clip(text, opts.Width))
		if ln != int(start.Line) {
			continue
		}
		caretEnd := end.Col
		if end.Line != start.Line {
			caretEnd = uint32(len(text)) + 1 // #nosec G115 -- single line length
		}
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""), p.caret.Sprint(underline(text, start.Col, caretEnd)))
	}
}

// underline builds the ^~~~ marker for columns [from, to) of line. Tabs
// before the marker are kept so the marker lines up in a terminal.
func underline(line string, from, to uint32) string {
	if from == 0 {
		from = 1
	}
	prefixEnd := min(int(from-1), len(line))
	var b strings.Builder
	for _, r := range line[:prefixEnd] {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	b.WriteByte('^')
	spanEnd := min(int(to-1), len(line))
	if spanEnd > prefixEnd {
		if n := runewidth.StringWidth(line[prefixEnd:spanEnd]) - 1; n > 0 {
			b.WriteString(strings.Repeat("~", n))
		}
	}
	return b.String()
}

func clip(line string, width uint8) string {
	if width == 0 || runewidth.StringWidth(line) <= int(width) {
		return line
	}
	return runewidth.Truncate(line, int(width), "…")
}

func writeFixes(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	fixes := orderedFixes(d.Fixes)
	ctx := diag.FixBuildContext{FileSet: fs}
	for i, fx := range fixes {
		resolved, err := fx.Resolve(ctx)
		if err != nil {
			fmt.Fprintf(w, "  %s %s (build error: %v)\n", p.fix.Sprintf("fix #%d:", i+1), fx.Title, err)
			continue
		}
		meta := []string{resolved.Applicability.String()}
		if resolved.ID != "" {
			meta = append([]string{"id=" + resolved.ID}, meta...)
		}
		if resolved.IsPreferred {
			meta = append(meta, "preferred")
		}
		fmt.Fprintf(w, "  %s %s (%s)\n", p.fix.Sprintf("fix #%d:", i+1), resolved.Title, strings.Join(meta, ", "))
		for _, e := range resolved.Edits {
			fmt.Fprintf(w, "      edit %s apply=%q", formatPos(e.Span, fs, opts.PathMode), e.NewText)
			if e.OldText != "" {
				fmt.Fprintf(w, " expect=%q", e.OldText)
			}
			fmt.Fprintln(w)
		}
		if opts.ShowPreview {
			preview, err := buildFixPreview(fs, resolved.Edits)
			if err != nil {
				continue
			}
			fmt.Fprintln(w, "    preview:")
			for _, line := range preview.before {
				fmt.Fprintf(w, "      %s\n", p.removed.Sprint("- "+line))
			}
			for _, line := range preview.after {
				fmt.Fprintf(w, "      %s\n", p.added.Sprint("+ "+line))
			}
		}
	}
}

// orderedFixes puts preferred and safer fixes first.
func orderedFixes(in []diag.Fix) []diag.Fix {
	fixes := append([]diag.Fix(nil), in...)
	sort.SliceStable(fixes, func(i, j int) bool {
		fi, fj := fixes[i], fixes[j]
		if fi.IsPreferred != fj.IsPreferred {
			return fi.IsPreferred
		}
		if fi.Applicability != fj.Applicability {
			return fi.Applicability < fj.Applicability
		}
		if fi.Kind != fj.Kind {
			return fi.Kind < fj.Kind
		}
		if fi.Title != fj.Title {
			return fi.Title < fj.Title
		}
		return fi.ID < fj.ID
	})
	return fixes
}

// Summary writes the one-line totals printed after a check.
func Summary(w io.Writer, files, errors, warnings, fixable int, useColor bool) {
	p := newPalette(useColor)
	if errors == 0 && warnings == 0 {
		fmt.Fprintf(w, "%s %d %s checked, no problems found\n", p.added.Sprint("ok:"), files, plural(files, "file", "files"))
		return
	}
	fmt.Fprintf(w, "%s, %s in %d %s",
		p.err.Sprintf("%d %s", errors, plural(errors, "error", "errors")),
		p.warn.Sprintf("%d %s", warnings, plural(warnings, "warning", "warnings")),
		files, plural(files, "file", "files"))
	if fixable > 0 {
		fmt.Fprintf(w, " (%d fixable, run `phpsniff fix`)", fixable)
	}
	fmt.Fprintln(w)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
