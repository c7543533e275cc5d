package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"phpsniff/internal/source"
	"phpsniff/internal/token"
)

// CheckTokenInvariants runs the token stream invariants the sniffs rely on:
// 1) every token span points into sf and lies within its content
// 2) tokens are contiguous: each one starts where the previous ended
// 3) the stream covers the whole file and each Text equals its source slice
func CheckTokenInvariants(tokens []token.Token, sf *source.File) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var off uint32
	for i, tok := range tokens {
		sp := tok.Span
		if sp.File != sf.ID {
			return fmt.Errorf("token %d (%s) span file mismatch: got=%d want=%d", i, tok.Kind, sp.File, sf.ID)
		}
		if sp.End < sp.Start || sp.End > lenContent {
			return fmt.Errorf("token %d (%s) span %v outside content of length %d", i, tok.Kind, sp, lenContent)
		}
		if sp.Start != off {
			return fmt.Errorf("gap before token %d (%s): starts at %d, expected %d", i, tok.Kind, sp.Start, off)
		}
		if text := string(sf.Content[sp.Start:sp.End]); tok.Text != text {
			return fmt.Errorf("token %d (%s) text %q differs from source %q", i, tok.Kind, tok.Text, text)
		}
		off = sp.End
	}

	if off != lenContent {
		return fmt.Errorf("tokens end at %d, file has %d bytes", off, lenContent)
	}
	return nil
}
