// Package finalclass reports classes declared without the final keyword and
// fixes them by inserting "final " in front of the class keyword.
package finalclass

import (
	"fmt"
	"slices"
	"strings"

	"phpsniff/internal/diag"
	"phpsniff/internal/sniff"
	"phpsniff/internal/token"
)

const (
	// Source identifies the rule in diagnostics and configuration.
	Source = "Standards.Classes.FinalClasses"
	// FixableMessage is the text of every diagnostic the rule reports.
	FixableMessage = `All classes should be declared using the "final" keyword`
	// fixText is inserted after the token preceding the class keyword.
	fixText = "final "
)

// Scope bounds the backward search for a qualifying modifier.
type Scope uint8

const (
	// ScopeStream searches back to the first token of the file. A final
	// class earlier in the file therefore satisfies every later class.
	ScopeStream Scope = iota
	// ScopeDeclaration stops at the nearest `;`, `{`, `}` or open tag, so
	// only the modifiers of the declaration itself count.
	ScopeDeclaration
)

func (s Scope) String() string {
	switch s {
	case ScopeStream:
		return "stream"
	case ScopeDeclaration:
		return "declaration"
	default:
		return fmt.Sprintf("Scope(%d)", uint8(s))
	}
}

// ParseScope maps a config value to a Scope. The empty string is ScopeStream.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stream":
		return ScopeStream, nil
	case "declaration":
		return ScopeDeclaration, nil
	default:
		return ScopeStream, fmt.Errorf("unknown scope %q (want stream or declaration)", s)
	}
}

var declarationBoundaries = []token.Kind{
	token.Semicolon,
	token.LBrace,
	token.RBrace,
	token.OpenTag,
	token.OpenTagWithEcho,
}

// Options tune the rule. The zero value is the default behaviour.
type Options struct {
	Scope Scope
	// Modifiers are accepted in addition to final, e.g. token.KwAbstract.
	Modifiers []token.Kind
}

// Sniff is the final-classes rule. An instance must not be shared between
// goroutines; the host creates one per file.
type Sniff struct {
	scope      Scope
	qualifying []token.Kind

	fixer    sniff.Slot[sniff.EditQueue]
	position sniff.Slot[int]
}

var (
	_ sniff.Sniff     = (*Sniff)(nil)
	_ sniff.Describer = (*Sniff)(nil)
)

// New creates the rule with opts.
func New(opts Options) *Sniff {
	qualifying := []token.Kind{token.Final}
	for _, k := range opts.Modifiers {
		if !slices.Contains(qualifying, k) {
			qualifying = append(qualifying, k)
		}
	}
	return &Sniff{
		scope:      opts.Scope,
		qualifying: qualifying,
		fixer:      sniff.NewSlot[sniff.EditQueue](sniff.FixerNotSet()),
		position:   sniff.NewSlot[int](sniff.PositionNotSet()),
	}
}

// Register returns the class keyword kind.
func (s *Sniff) Register() []token.Kind {
	return []token.Kind{token.Class}
}

// Source returns the rule identifier.
func (s *Sniff) Source() string { return Source }

// Code returns the diagnostic code of the rule.
func (s *Sniff) Code() diag.Code { return diag.SniffFinalClass }

// Scope returns the configured search scope.
func (s *Sniff) Scope() Scope { return s.scope }

// Qualifying returns the modifier kinds that satisfy the rule.
func (s *Sniff) Qualifying() []token.Kind {
	return slices.Clone(s.qualifying)
}

// Process checks the class keyword at ptr. When no qualifying modifier
// precedes it, the rule reports at ptr-1 and queues the insertion there.
func (s *Sniff) Process(file sniff.File, ptr int) error {
	s.fixer.Bind(file.Fixer())
	s.position.Bind(ptr)
	defer s.fixer.Release()
	defer s.position.Release()

	if s.findModifier(file, ptr) >= 0 {
		return nil
	}

	file.AddFixableError(FixableMessage, ptr-1, Source)
	return s.fix()
}

func (s *Sniff) findModifier(file sniff.File, ptr int) int {
	if s.scope == ScopeDeclaration {
		end := file.FindPrevious(declarationBoundaries, ptr-1)
		return file.FindPreviousWithin(s.qualifying, ptr, end+1)
	}
	return file.FindPrevious(s.qualifying, ptr)
}

// fix reads the fixer before the position, so an instance with neither
// bound fails with ErrFixerNotSet.
func (s *Sniff) fix() error {
	fixer, err := s.fixer.Read()
	if err != nil {
		return err
	}
	if fixer == nil {
		return sniff.FixerNotSet()
	}
	position, err := s.position.Read()
	if err != nil {
		return err
	}
	fixer.AddContent(position-1, fixText)
	return nil
}
