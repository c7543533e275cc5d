package lexer

import (
	"phpsniff/internal/diag"
	"phpsniff/internal/token"
)

func (lx *Lexer) scanWhitespace() token.Token {
	start := lx.cursor.Mark()
	for isSpace(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}
	return lx.emit(token.Whitespace, start)
}

// scanLineComment handles `//` and `#` comments. The comment ends before
// the newline or before a `?>` close tag.
func (lx *Lexer) scanLineComment() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' || (b == '?' && lx.cursor.PeekAt(1) == '>') {
			break
		}
		lx.cursor.Bump()
	}
	return lx.emit(token.Comment, start)
}

// scanBlockComment handles `/* ... */` and `/** ... */`. PHP block comments
// do not nest. An unterminated comment runs to EOF.
func (lx *Lexer) scanBlockComment() token.Token {
	start := lx.cursor.Mark()
	kind := token.Comment
	if lx.cursor.PeekAt(2) == '*' && isSpace(lx.cursor.PeekAt(3)) {
		kind = token.DocComment
	}
	lx.cursor.BumpN(2)
	for !lx.cursor.EOF() {
		if lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) == '/' {
			lx.cursor.BumpN(2)
			return lx.emit(kind, start)
		}
		lx.cursor.Bump()
	}
	tok := lx.emit(kind, start)
	lx.errLex(diag.LexUnterminatedComment, tok.Span, "unterminated block comment")
	return tok
}
