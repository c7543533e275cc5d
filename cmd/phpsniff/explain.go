package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"phpsniff/internal/diag"
	"phpsniff/internal/sniff/finalclass"
)

// ruleDoc ties a diagnostic code to its rule and Markdown documentation.
type ruleDoc struct {
	code     diag.Code
	source   string
	markdown string
}

var ruleDocs = []ruleDoc{
	{code: diag.SniffFinalClass, source: finalclass.Source, markdown: finalclass.Documentation},
}

// lookupRule matches a code (SNF2001) or a rule source, ignoring case.
func lookupRule(name string) (ruleDoc, bool) {
	name = strings.TrimSpace(name)
	for _, doc := range ruleDocs {
		if strings.EqualFold(name, doc.code.ID()) || strings.EqualFold(name, doc.source) {
			return doc, true
		}
	}
	return ruleDoc{}, false
}

var explainCmd = &cobra.Command{
	Use:   "explain [code|rule]",
	Short: "Describe a rule",
	Long:  `Explain prints the documentation of a rule, looked up by diagnostic code (SNF2001) or rule name. Without arguments it lists the rules.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, doc := range ruleDocs {
				fmt.Fprintf(out, "%s  %s  %s\n", doc.code.ID(), doc.source, doc.code.Title())
			}
			return nil
		}

		doc, ok := lookupRule(args[0])
		if !ok {
			return fmt.Errorf("unknown rule: %s", args[0])
		}
		colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		useColor, err := resolveColor(colorFlag, os.Stdout)
		if err != nil {
			return err
		}
		return renderMarkdown(out, doc.markdown, useColor, terminalWidth(os.Stdout))
	},
}

// renderMarkdown styles md for a terminal, or keeps a plain layout when
// colour is off.
func renderMarkdown(w io.Writer, md string, useColor bool, width int) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if useColor {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	text, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = io.WriteString(w, text)
	return err
}

func terminalWidth(f *os.File) int {
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 { // #nosec G115 -- file descriptors fit in int
		return min(width, 100)
	}
	return 80
}
