package lexer

import (
	"phpsniff/internal/token"
)

// Supported: 123, 1_000, 0x1F, 0b101, 0o17, 017, 1.5, .5, 1e3, 1.5e-3.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		switch lx.cursor.PeekAt(1) {
		case 'x', 'X':
			lx.cursor.BumpN(2)
			for isHex(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
				lx.cursor.Bump()
			}
			return lx.emit(kind, start)
		case 'b', 'B':
			lx.cursor.BumpN(2)
			for b := lx.cursor.Peek(); b == '0' || b == '1' || b == '_'; b = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			return lx.emit(kind, start)
		case 'o', 'O':
			lx.cursor.BumpN(2)
			for b := lx.cursor.Peek(); (b >= '0' && b <= '7') || b == '_'; b = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			return lx.emit(kind, start)
		}
	}

	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
	if lx.cursor.Peek() == '.' && lx.cursor.PeekAt(1) != '.' {
		kind = token.FloatLit
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
			lx.cursor.Bump()
		}
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		next := lx.cursor.PeekAt(1)
		if isDec(next) || ((next == '+' || next == '-') && isDec(lx.cursor.PeekAt(2))) {
			kind = token.FloatLit
			lx.cursor.BumpN(2)
			for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
				lx.cursor.Bump()
			}
		}
	}
	return lx.emit(kind, start)
}
