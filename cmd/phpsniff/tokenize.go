package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"phpsniff/internal/diagfmt"
	"phpsniff/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <file>",
	Short: "Print the token stream of a PHP file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}

		res, err := driver.Tokenize(args[0], s.check.MaxDiagnostics)
		if err != nil {
			return fmt.Errorf("tokenize: %w", err)
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(format) {
		case "pretty":
			err = diagfmt.FormatTokensPretty(out, res.Tokens, res.FileSet)
		case "json":
			err = diagfmt.FormatTokensJSON(out, res.Tokens, res.FileSet)
		default:
			return fmt.Errorf("unknown format: %s", format)
		}
		if err != nil {
			return err
		}

		if res.Bag.Len() > 0 {
			diagfmt.Pretty(os.Stderr, res.Bag, res.FileSet, diagfmt.PrettyOpts{
				Color:     s.color,
				PathMode:  diagfmt.PathModeAuto,
				ShowNotes: true,
			})
		}
		if res.Bag.HasErrors() {
			return errProblemsFound
		}
		return nil
	},
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}
