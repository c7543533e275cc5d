package lexer

import (
	"phpsniff/internal/token"
)

// scanInline handles input outside of PHP tags: an open tag, or the run of
// inline HTML up to the next open tag.
func (lx *Lexer) scanInline() token.Token {
	if tok, ok := lx.scanOpenTag(); ok {
		return tok
	}
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		if lx.cursor.Peek() == '<' && lx.cursor.PeekAt(1) == '?' {
			break
		}
		lx.cursor.Bump()
	}
	if lx.cursor.Off == uint32(start) {
		// a bare "<?" that is not an open tag
		lx.cursor.BumpN(2)
	}
	return lx.emit(token.InlineHTML, start)
}

func (lx *Lexer) scanOpenTag() (token.Token, bool) {
	start := lx.cursor.Mark()
	switch {
	case lx.cursor.HasPrefix("<?="):
		lx.cursor.BumpN(3)
		lx.inPHP = true
		return lx.emit(token.OpenTagWithEcho, start), true
	case lx.cursor.HasPrefixFold("<?php"):
		next := lx.cursor.PeekAt(5)
		if next != 0 && !isSpace(next) {
			return token.Token{}, false
		}
		lx.cursor.BumpN(5)
		// the open tag owns one trailing newline or whitespace byte, as in PHP
		switch {
		case lx.cursor.HasPrefix("\r\n"):
			lx.cursor.BumpN(2)
		case isSpace(lx.cursor.Peek()):
			lx.cursor.Bump()
		}
		lx.inPHP = true
		return lx.emit(token.OpenTag, start), true
	case lx.cursor.HasPrefix("<?"):
		lx.cursor.BumpN(2)
		lx.inPHP = true
		return lx.emit(token.OpenTag, start), true
	}
	return token.Token{}, false
}

func (lx *Lexer) scanCloseTag() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.BumpN(2)
	lx.cursor.Eat('\n')
	lx.inPHP = false
	return lx.emit(token.CloseTag, start)
}
