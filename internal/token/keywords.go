package token

import (
	"golang.org/x/text/cases"
)

var keywords = map[string]Kind{
	"abstract":   KwAbstract,
	"as":         KwAs,
	"case":       KwCase,
	"class":      Class,
	"const":      KwConst,
	"echo":       KwEcho,
	"enum":       KwEnum,
	"extends":    KwExtends,
	"final":      Final,
	"function":   KwFunction,
	"fn":         KwFn,
	"implements": KwImplements,
	"interface":  KwInterface,
	"namespace":  KwNamespace,
	"new":        KwNew,
	"private":    KwPrivate,
	"protected":  KwProtected,
	"public":     KwPublic,
	"readonly":   KwReadonly,
	"return":     KwReturn,
	"static":     KwStatic,
	"trait":      KwTrait,
	"use":        KwUse,
}

// LookupKeyword reports the keyword kind for ident.
// PHP keywords are case-insensitive: `FINAL Class` is a final class.
func LookupKeyword(ident string) (Kind, bool) {
	if k, ok := keywords[ident]; ok {
		return k, true
	}
	k, ok := keywords[cases.Fold().String(ident)]
	return k, ok
}
