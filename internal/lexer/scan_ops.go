package lexer

import (
	"unicode/utf8"

	"phpsniff/internal/diag"
	"phpsniff/internal/token"
)

// longest first
var compoundOperators = []string{
	"<=>", "**=", "...", "<<=", ">>=", "===", "!==", "??=",
	"??", "**", "++", "--", "+=", "-=", "*=", "/=", ".=", "%=", "&=", "|=", "^=",
	"==", "!=", "<>", "<=", ">=", "&&", "||", "<<", ">>",
}

// scanOperatorOrPunct matches punctuation greedily: structural tokens
// first, then compound operators, then single-byte operators.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	switch {
	case lx.cursor.HasPrefix("?->"):
		return lx.emitN(token.NullsafeOp, 3)
	case lx.cursor.HasPrefix("->"):
		return lx.emitN(token.ObjectOp, 2)
	case lx.cursor.HasPrefix("::"):
		return lx.emitN(token.DoubleColon, 2)
	case lx.cursor.HasPrefix("=>"):
		return lx.emitN(token.DoubleArrow, 2)
	}

	for _, op := range compoundOperators {
		if lx.cursor.HasPrefix(op) {
			return lx.emitN(token.Operator, len(op))
		}
	}

	switch lx.cursor.Peek() {
	case ';':
		return lx.emitN(token.Semicolon, 1)
	case ',':
		return lx.emitN(token.Comma, 1)
	case '(':
		return lx.emitN(token.LParen, 1)
	case ')':
		return lx.emitN(token.RParen, 1)
	case '{':
		return lx.emitN(token.LBrace, 1)
	case '}':
		return lx.emitN(token.RBrace, 1)
	case '[':
		return lx.emitN(token.LBracket, 1)
	case ']':
		return lx.emitN(token.RBracket, 1)
	case '\\':
		return lx.emitN(token.Backslash, 1)
	case '$':
		return lx.emitN(token.Dollar, 1)
	case '=', '+', '-', '*', '/', '.', '%', '<', '>', '!', '&', '|', '^', '~', '?', ':', '@':
		return lx.emitN(token.Operator, 1)
	}

	// unknown byte: consume one rune so lexing always makes progress
	start := lx.cursor.Mark()
	_, size := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
	lx.cursor.BumpN(max(size, 1))
	tok := lx.emit(token.Invalid, start)
	lx.warnLex(diag.LexUnknownChar, tok.Span, "unknown character "+quoteText(tok.Text))
	return tok
}
