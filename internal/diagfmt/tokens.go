package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"phpsniff/internal/source"
	"phpsniff/internal/token"
)

type TokenOutput struct {
	Index int         `json:"index"`
	Kind  string      `json:"kind"`
	Text  string      `json:"text"`
	Line  uint32      `json:"line"`
	Col   uint32      `json:"col"`
	Span  source.Span `json:"span"`
}

// FormatTokensPretty prints one token per line with its stack pointer,
// kind, quoted text and line:col range.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	width := len(fmt.Sprint(len(tokens)))
	for i, tok := range tokens {
		startPos, endPos := fs.Resolve(tok.Span)
		if _, err := fmt.Fprintf(w, "%*d: %-16s %q at %d:%d-%d:%d\n",
			width, i, tok.Kind.String(), tok.Text,
			startPos.Line, startPos.Col,
			endPos.Line, endPos.Col); err != nil {
			return err
		}
	}
	return nil
}

// FormatTokensJSON prints the tokens as a JSON array.
func FormatTokensJSON(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	output := make([]TokenOutput, 0, len(tokens))
	for i, tok := range tokens {
		pos, _ := fs.Resolve(tok.Span)
		output = append(output, TokenOutput{
			Index: i,
			Kind:  tok.Kind.String(),
			Text:  tok.Text,
			Line:  pos.Line,
			Col:   pos.Col,
			Span:  tok.Span,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
