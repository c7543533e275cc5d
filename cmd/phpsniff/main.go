package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"phpsniff/internal/version"
)

// errProblemsFound makes the process exit with status 1 without printing
// anything further; the report has already been written.
var errProblemsFound = errors.New("problems found")

var rootCmd = &cobra.Command{
	Use:           "phpsniff",
	Short:         "PHP coding-standard checker",
	Long:          `phpsniff tokenizes PHP sources, reports classes that are not declared final and fixes them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		stopTracing, err := setupTracing(cmd)
		if err != nil {
			stopProfiling()
			return err
		}
		cleanup = func() {
			stopTracing()
			stopProfiling()
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		runCleanup()
	},
}

var cleanup func()

func runCleanup() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

// main registers the subcommands and persistent flags and executes the root
// command. Exit status: 0 clean, 1 problems reported, 2 usage or runtime error.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to phpsniff.toml (default: nearest one above the working directory)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 0, "maximum number of diagnostics per file (0: from config)")
	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|file|debug)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson|log)")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	// a failing RunE skips PersistentPostRun
	runCleanup()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errProblemsFound):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "phpsniff: %v\n", err)
		return 2
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
