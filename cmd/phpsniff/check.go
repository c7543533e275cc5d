package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"phpsniff/internal/diag"
	"phpsniff/internal/diagfmt"
	"phpsniff/internal/driver"
	"phpsniff/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [paths...]",
	Short: "Report classes that are not declared final",
	Long: `Check tokenizes every PHP file under the given paths (default: the
directory holding phpsniff.toml, or the working directory) and reports each
class declaration without a preceding final keyword.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	checkCmd.Flags().Int("jobs", 0, "parallel file workers (0: GOMAXPROCS or config)")
	checkCmd.Flags().Bool("cache", false, "reuse results for unchanged files")
	checkCmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
	checkCmd.Flags().String("path-mode", "relative", "how to print paths (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("show-fixes", false, "list the fix of each fixable report with a preview")
	checkCmd.Flags().Bool("watch", false, "re-check whenever a source file changes")
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "short" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	if cmd.Flags().Changed("jobs") {
		if s.check.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return err
		}
	}
	cacheFlag, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}
	if err := s.openCache(s.useCache || cacheFlag); err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	pathMode, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return err
	}
	showFixes, err := cmd.Flags().GetBool("show-fixes")
	if err != nil {
		return err
	}

	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}

	w := reportWriter{
		out:       cmd.OutOrStdout(),
		settings:  s,
		format:    format,
		pathMode:  diagfmt.ParsePathMode(pathMode),
		showFixes: showFixes,
	}
	ctx := cmd.Context()
	targets := s.targets(args)

	var res *driver.CheckResult
	if format == "pretty" && shouldUseTUI(mode) && !watch {
		res, err = runCheckWithUI(ctx, targets, s.check)
	} else {
		res, err = driver.CheckPaths(ctx, targets, s.check)
	}
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	if err := w.write(res); err != nil {
		return err
	}

	if watch {
		return watchAndCheck(ctx, cmd.ErrOrStderr(), targets, s, w)
	}
	if res.ErrorCount() > 0 {
		return errProblemsFound
	}
	return nil
}

// reportWriter renders one check result in the selected format.
type reportWriter struct {
	out       io.Writer
	settings  *settings
	format    string
	pathMode  diagfmt.PathMode
	showFixes bool
}

func (w reportWriter) write(res *driver.CheckResult) error {
	s := w.settings
	switch w.format {
	case "json":
		return diagfmt.JSON(w.out, reportBag(res, s.quiet), res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         w.pathMode,
			IncludeNotes:     true,
			IncludeFixes:     true,
			IncludePreviews:  w.showFixes,
		})
	case "short":
		writeShort(w.out, res, s)
	default:
		writePretty(w.out, res, s, diagfmt.PrettyOpts{
			Color:       s.color,
			Context:     0,
			PathMode:    w.pathMode,
			ShowNotes:   true,
			ShowFixes:   w.showFixes,
			ShowPreview: w.showFixes,
		})
	}
	return nil
}

// watchAndCheck re-checks targets whenever source files change, until the
// context is cancelled. Failed runs are reported and watching continues.
func watchAndCheck(ctx context.Context, errOut io.Writer, targets []string, s *settings, w reportWriter) error {
	if !s.quiet {
		fmt.Fprintln(errOut, "watching for changes (ctrl+c to stop)")
	}
	return driver.Watch(ctx, targets, driver.WatchOptions{Discover: s.check.Discover}, func(changed []string) {
		if !s.quiet {
			fmt.Fprintf(errOut, "\n%d %s changed, re-checking\n", len(changed), plural(len(changed), "file", "files"))
		}
		res, err := driver.CheckPaths(ctx, targets, s.check)
		if err != nil {
			if ctx.Err() == nil {
				fmt.Fprintf(errOut, "phpsniff: check: %v\n", err)
			}
			return
		}
		if err := w.write(res); err != nil {
			fmt.Fprintf(errOut, "phpsniff: %v\n", err)
		}
	})
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// reportBag collects the diagnostics of res in path order. Quiet mode
// drops informational entries.
func reportBag(res *driver.CheckResult, quiet bool) *diag.Bag {
	items := res.Diagnostics()
	bag := diag.NewBag(len(items))
	for _, d := range items {
		bag.Add(d)
	}
	if quiet {
		bag.Filter(func(d *diag.Diagnostic) bool { return d.Severity != diag.SevInfo })
	}
	return bag
}

// writeShort prints one line per diagnostic. Reports without a location
// (load failures, timings) come first.
func writeShort(out io.Writer, res *driver.CheckResult, s *settings) {
	bag := reportBag(res, s.quiet)
	var located []*diag.Diagnostic
	for _, d := range bag.Items() {
		if diagfmt.Locatable(d, res.FileSet) {
			located = append(located, d)
			continue
		}
		fmt.Fprintf(out, "%s %s %s\n", strings.ToLower(d.Severity.String()), d.Code.ID(), d.Message)
	}
	if text := diag.FormatShortDiagnostics(located, res.FileSet, false); text != "" {
		fmt.Fprintln(out, text)
	}
}

func writePretty(out io.Writer, res *driver.CheckResult, s *settings, opts diagfmt.PrettyOpts) {
	bag := reportBag(res, s.quiet)
	diagfmt.Pretty(out, bag, res.FileSet, opts)
	if s.quiet {
		return
	}
	if bag.Len() > 0 {
		fmt.Fprintln(out)
	}
	diagfmt.Summary(out, len(res.Files), res.ErrorCount(), res.WarningCount(), res.FixableCount(), s.color)
}

type checkOutcome struct {
	result *driver.CheckResult
	err    error
}

func runCheckWithUI(ctx context.Context, targets []string, opts driver.CheckOptions) (*driver.CheckResult, error) {
	files, err := driver.Discover(targets, opts.Discover)
	if err != nil {
		return nil, err
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckPaths(ctx, files, optsCopy)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	uiErr := ui.RunProgress(os.Stderr, "checking", files, events)
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
