package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// InlineHTML is text outside of PHP tags.
	InlineHTML
	// OpenTag is `<?php` or the short `<?`, including one trailing newline or space.
	OpenTag
	// OpenTagWithEcho is `<?=`.
	OpenTagWithEcho
	// CloseTag is `?>`, including one trailing newline.
	CloseTag

	Whitespace
	Comment
	DocComment
	// Attribute is the `#[` opener of a PHP 8 attribute.
	Attribute

	Ident
	Variable
	IntLit
	FloatLit
	StringLit
	Heredoc

	// keywords
	KwAbstract
	KwAs
	KwCase
	Class
	AnonClass
	KwConst
	KwEcho
	KwEnum
	KwExtends
	Final
	KwFunction
	KwFn
	KwImplements
	KwInterface
	KwNamespace
	KwNew
	KwPrivate
	KwProtected
	KwPublic
	KwReadonly
	KwReturn
	KwStatic
	KwTrait
	KwUse

	// operators and punctuation
	Semicolon    // ;
	Comma        // ,
	LParen       // (
	RParen       // )
	LBrace       // {
	RBrace       // }
	LBracket     // [
	RBracket     // ]
	DoubleColon  // ::
	ObjectOp     // ->
	NullsafeOp   // ?->
	DoubleArrow  // =>
	Backslash    // \
	Dollar       // $
	Operator     // any other operator: = + - * / . ? : ! < > & | ^ % ~ @ and compounds
)

var kindNames = [...]string{
	Invalid:         "Invalid",
	EOF:             "EOF",
	InlineHTML:      "InlineHTML",
	OpenTag:         "OpenTag",
	OpenTagWithEcho: "OpenTagWithEcho",
	CloseTag:        "CloseTag",
	Whitespace:      "Whitespace",
	Comment:         "Comment",
	DocComment:      "DocComment",
	Attribute:       "Attribute",
	Ident:           "Ident",
	Variable:        "Variable",
	IntLit:          "IntLit",
	FloatLit:        "FloatLit",
	StringLit:       "StringLit",
	Heredoc:         "Heredoc",
	KwAbstract:      "KwAbstract",
	KwAs:            "KwAs",
	KwCase:          "KwCase",
	Class:           "Class",
	AnonClass:       "AnonClass",
	KwConst:         "KwConst",
	KwEcho:          "KwEcho",
	KwEnum:          "KwEnum",
	KwExtends:       "KwExtends",
	Final:           "Final",
	KwFunction:      "KwFunction",
	KwFn:            "KwFn",
	KwImplements:    "KwImplements",
	KwInterface:     "KwInterface",
	KwNamespace:     "KwNamespace",
	KwNew:           "KwNew",
	KwPrivate:       "KwPrivate",
	KwProtected:     "KwProtected",
	KwPublic:        "KwPublic",
	KwReadonly:      "KwReadonly",
	KwReturn:        "KwReturn",
	KwStatic:        "KwStatic",
	KwTrait:         "KwTrait",
	KwUse:           "KwUse",
	Semicolon:       "Semicolon",
	Comma:           "Comma",
	LParen:          "LParen",
	RParen:          "RParen",
	LBrace:          "LBrace",
	RBrace:          "RBrace",
	LBracket:        "LBracket",
	RBracket:        "RBracket",
	DoubleColon:     "DoubleColon",
	ObjectOp:        "ObjectOp",
	NullsafeOp:      "NullsafeOp",
	DoubleArrow:     "DoubleArrow",
	Backslash:       "Backslash",
	Dollar:          "Dollar",
	Operator:        "Operator",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// KindByName maps a kind name (as printed by String) or a keyword spelling
// back to its Kind. Used when rule options list token kinds by name.
func KindByName(name string) (Kind, bool) {
	if k, ok := LookupKeyword(name); ok {
		return k, true
	}
	for k, n := range kindNames {
		if n != "" && n == name {
			return Kind(k), true
		}
	}
	return Invalid, false
}
