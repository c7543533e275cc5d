package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"phpsniff/internal/diagfmt"
	"phpsniff/internal/driver"
	"phpsniff/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [paths...]",
	Short: "Declare reported classes final",
	Long: `Fix checks the given paths and applies the collected fixes. By default
every non-conflicting fix is applied; --once applies only the first one and
--id a single fix by identifier. --dry-run prints a diff instead of writing.`,
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply every applicable fix (default)")
	fixCmd.Flags().Bool("once", false, "apply only the first applicable fix")
	fixCmd.Flags().String("id", "", "apply the fix with the given identifier")
	fixCmd.Flags().Bool("dry-run", false, "print the diff without writing files")
	fixCmd.Flags().Int("jobs", 0, "parallel file workers (0: GOMAXPROCS or config)")
}

func runFix(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	opts, err := readApplyOptions(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("jobs") {
		if s.check.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return err
		}
	}
	if err := s.openCache(s.useCache); err != nil {
		return err
	}

	res, err := driver.CheckPaths(cmd.Context(), s.targets(args), s.check)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	applied, err := fix.Apply(res.FileSet, res.Diagnostics(), opts)
	out := cmd.OutOrStdout()
	if errors.Is(err, fix.ErrNoFixes) {
		if !s.quiet {
			fmt.Fprintln(out, "No applicable fixes found.")
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}

	if opts.DryRun {
		diagfmt.FormatDiff(out, applied.FileChanges, s.color)
		if !s.quiet {
			diagfmt.FormatApplySummary(os.Stderr, applied, true, s.color)
		}
		return nil
	}
	if !s.quiet {
		diagfmt.FormatApplySummary(out, applied, false, s.color)
	}
	return nil
}

func readApplyOptions(cmd *cobra.Command) (fix.ApplyOptions, error) {
	flags := cmd.Flags()
	all, err := flags.GetBool("all")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	once, err := flags.GetBool("once")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	id, err := flags.GetString("id")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	return applyOptions(all, once, strings.TrimSpace(id), dryRun)
}

// applyOptions resolves the mode flags; at most one of them may be set.
func applyOptions(all, once bool, id string, dryRun bool) (fix.ApplyOptions, error) {
	set := 0
	for _, on := range []bool{all, once, id != ""} {
		if on {
			set++
		}
	}
	if set > 1 {
		return fix.ApplyOptions{}, errors.New("--all, --once and --id are mutually exclusive")
	}
	opts := fix.ApplyOptions{Mode: fix.ApplyModeAll, DryRun: dryRun}
	switch {
	case once:
		opts.Mode = fix.ApplyModeOnce
	case id != "":
		opts.Mode = fix.ApplyModeID
		opts.TargetID = id
	}
	return opts, nil
}
