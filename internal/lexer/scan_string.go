package lexer

import (
	"phpsniff/internal/diag"
	"phpsniff/internal/token"
)

// scanString scans a '...', "..." or `...` literal as one token.
// Interpolation is not tokenized; a backslash always escapes the next byte.
// Strings may span lines.
func (lx *Lexer) scanString(quote byte) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening quote
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		if b == '\\' {
			lx.cursor.Bump()
			continue
		}
		if b == quote {
			return lx.emit(token.StringLit, start)
		}
	}
	tok := lx.emit(token.StringLit, start)
	lx.errLex(diag.LexUnterminatedString, tok.Span, "unterminated string literal")
	return tok
}

// scanHeredoc scans a heredoc or nowdoc, opener to closing label, as a
// single token:
//
//	<<<EOT / <<<"EOT" / <<<'EOT'
//	...
//	EOT
//
// The closing label may be indented (PHP 7.3+).
func (lx *Lexer) scanHeredoc() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.BumpN(3)
	for lx.cursor.Peek() == ' ' || lx.cursor.Peek() == '\t' {
		lx.cursor.Bump()
	}
	quote := byte(0)
	if b := lx.cursor.Peek(); b == '"' || b == '\'' {
		quote = b
		lx.cursor.Bump()
	}
	if !isIdentStart(lx.cursor.Peek()) {
		// `<<<` without a label is a shift followed by `<`
		lx.cursor.Reset(start)
		return lx.emitN(token.Operator, 2)
	}
	labelStart := lx.cursor.Off
	for isIdentContinue(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}
	label := string(lx.file.Content[labelStart:lx.cursor.Off])
	if quote != 0 {
		lx.cursor.Eat(quote)
	}

	for !lx.cursor.EOF() {
		if lx.cursor.Bump() != '\n' {
			continue
		}
		for lx.cursor.Peek() == ' ' || lx.cursor.Peek() == '\t' {
			lx.cursor.Bump()
		}
		if lx.cursor.HasPrefix(label) && !isIdentContinue(lx.cursor.PeekAt(uint32(len(label)))) {
			lx.cursor.BumpN(len(label))
			return lx.emit(token.Heredoc, start)
		}
	}
	tok := lx.emit(token.Heredoc, start)
	lx.errLex(diag.LexUnterminatedHeredoc, tok.Span, "unterminated heredoc, expected closing label "+label)
	return tok
}
