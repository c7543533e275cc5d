package token

import (
	"testing"
)

func TestLookupKeyword_Positive(t *testing.T) {
	cases := map[string]Kind{
		"class":    Class,
		"final":    Final,
		"FINAL":    Final,
		"Class":    Class,
		"abstract": KwAbstract,
		"readonly": KwReadonly,
		"new":      KwNew,
		"Function": KwFunction,
	}

	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok {
			t.Fatalf("LookupKeyword(%q) = !ok, want %v", lexeme, want)
		}
		if got != want {
			t.Fatalf("LookupKeyword(%q) = %v, want %v", lexeme, got, want)
		}
	}
}

func TestLookupKeyword_Negative(t *testing.T) {
	notKw := []string{"BadClass", "finally", "classes", "$class", ""}
	for _, s := range notKw {
		if _, ok := LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) returned ok=true, want false", s)
		}
	}
}

func TestKindByName(t *testing.T) {
	cases := map[string]Kind{
		"final":      Final,
		"abstract":   KwAbstract,
		"KwReadonly": KwReadonly,
		"Semicolon":  Semicolon,
	}
	for name, want := range cases {
		got, ok := KindByName(name)
		if !ok || got != want {
			t.Fatalf("KindByName(%q) = %v, %v; want %v", name, got, ok, want)
		}
	}
	if _, ok := KindByName("nonsense"); ok {
		t.Fatalf("KindByName must reject unknown names")
	}
}
