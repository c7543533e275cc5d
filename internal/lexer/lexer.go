package lexer

import (
	"phpsniff/internal/source"
	"phpsniff/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	inPHP  bool
	// last two significant (non-trivia) kinds, used to classify `class`
	prev  token.Kind
	prev2 token.Kind
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Next returns the next token, whitespace and comments included.
// After the input is exhausted it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	var tok token.Token
	if !lx.inPHP {
		tok = lx.scanInline()
	} else {
		tok = lx.scanPHP()
	}

	if !tok.IsTrivia() {
		tok.Kind = lx.classify(tok.Kind)
		lx.prev2, lx.prev = lx.prev, tok.Kind
	}
	return tok
}

// All lexes the whole file and returns every token except EOF.
func (lx *Lexer) All() []token.Token {
	toks := make([]token.Token, 0, len(lx.file.Content)/4+1)
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func (lx *Lexer) scanPHP() token.Token {
	ch := lx.cursor.Peek()
	switch {
	case ch == '?' && lx.cursor.PeekAt(1) == '>':
		return lx.scanCloseTag()
	case isSpace(ch):
		return lx.scanWhitespace()
	case ch == '#' && lx.cursor.PeekAt(1) == '[':
		return lx.emitN(token.Attribute, 2)
	case ch == '#' || (ch == '/' && lx.cursor.PeekAt(1) == '/'):
		return lx.scanLineComment()
	case ch == '/' && lx.cursor.PeekAt(1) == '*':
		return lx.scanBlockComment()
	case ch == '$' && isIdentStart(lx.cursor.PeekAt(1)):
		return lx.scanVariable()
	case isIdentStart(ch):
		return lx.scanIdentOrKeyword()
	case isDec(ch), ch == '.' && isDec(lx.cursor.PeekAt(1)):
		return lx.scanNumber()
	case ch == '\'' || ch == '"' || ch == '`':
		return lx.scanString(ch)
	case lx.cursor.HasPrefix("<<<"):
		return lx.scanHeredoc()
	default:
		return lx.scanOperatorOrPunct()
	}
}

// classify applies the context rules for keywords: member names after
// `->`, `?->`, `::` and `function` are identifiers, and `class` right after
// `new` (optionally `new readonly`) opens an anonymous class.
func (lx *Lexer) classify(k token.Kind) token.Kind {
	if k < token.KwAbstract || k > token.KwUse {
		return k
	}
	switch lx.prev {
	case token.ObjectOp, token.NullsafeOp, token.DoubleColon, token.KwFunction:
		return token.Ident
	}
	if k == token.Class {
		if lx.prev == token.KwNew || (lx.prev == token.KwReadonly && lx.prev2 == token.KwNew) {
			return token.AnonClass
		}
	}
	return k
}

func (lx *Lexer) emit(k token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: k, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) emitN(k token.Kind, n int) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.BumpN(n)
	return lx.emit(k, start)
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}
