package token

import (
	"phpsniff/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsTrivia reports whether the token carries no syntax: whitespace or comments.
func (t Token) IsTrivia() bool {
	switch t.Kind {
	case Whitespace, Comment, DocComment:
		return true
	default:
		return false
	}
}

// IsLiteral reports whether the token is a numeric or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, Heredoc:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a PHP keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwAbstract && t.Kind <= KwUse
}

// IsPunctOrOp reports whether the token is punctuation or an operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind >= Semicolon && t.Kind <= Operator
}

// IsClassModifier reports whether the token may precede `class` in a declaration.
func (t Token) IsClassModifier() bool {
	switch t.Kind {
	case Final, KwAbstract, KwReadonly:
		return true
	default:
		return false
	}
}
