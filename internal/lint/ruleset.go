package lint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"phpsniff/internal/diag"
	"phpsniff/internal/sniff"
	"phpsniff/internal/source"
	"phpsniff/internal/token"
	"phpsniff/internal/trace"
)

// Ruleset dispatches tokens to the sniffs listening for their kind.
// A Ruleset holds sniff instances and so belongs to one goroutine.
type Ruleset struct {
	sniffs    []sniff.Sniff
	listeners map[token.Kind][]sniff.Sniff
	meta      ruleMeta
	options   []string
}

// NewRuleset returns an empty ruleset.
func NewRuleset() *Ruleset {
	return &Ruleset{
		listeners: make(map[token.Kind][]sniff.Sniff),
		meta: ruleMeta{
			codes:    make(map[string]diag.Code),
			severity: make(map[string]diag.Severity),
		},
	}
}

// Register adds sniffs and subscribes them to the kinds they register.
// Dispatch order for a kind follows registration order.
func (r *Ruleset) Register(sniffs ...sniff.Sniff) {
	for _, s := range sniffs {
		if s == nil {
			continue
		}
		r.sniffs = append(r.sniffs, s)
		for _, k := range s.Register() {
			r.listeners[k] = append(r.listeners[k], s)
		}
		if d, ok := s.(sniff.Describer); ok {
			r.meta.codes[d.Source()] = d.Code()
		}
	}
}

// SetSeverity overrides the severity of every report made under src.
func (r *Ruleset) SetSeverity(src string, sev diag.Severity) {
	r.meta.severity[src] = sev
}

// Describe records an option string that changes sniff behaviour; it
// becomes part of Fingerprint.
func (r *Ruleset) Describe(option string) {
	r.options = append(r.options, option)
}

// Sniffs returns the registered sniffs in registration order.
func (r *Ruleset) Sniffs() []sniff.Sniff {
	return append([]sniff.Sniff(nil), r.sniffs...)
}

// Listeners returns a copy of the kind to sniffs table.
func (r *Ruleset) Listeners() map[token.Kind][]sniff.Sniff {
	out := make(map[token.Kind][]sniff.Sniff, len(r.listeners))
	for k, v := range r.listeners {
		out[k] = append([]sniff.Sniff(nil), v...)
	}
	return out
}

// NewFile wraps a lexed file so that its reports use this ruleset's codes
// and severities.
func (r *Ruleset) NewFile(src *source.File, tokens []token.Token, maxDiagnostics int) *File {
	f := NewFile(src, tokens, maxDiagnostics)
	f.rules = &r.meta
	return f
}

// Process walks the tokens of file in order and calls every listener. The
// first sniff error aborts the file; it is returned wrapped with the sniff
// source and token index.
func (r *Ruleset) Process(ctx context.Context, file *File) error {
	_, span := trace.Start(ctx, trace.ScopeFile, "sniff:"+file.Path())
	defer span.End("")

	for i, tok := range file.tokens {
		if i&0xff == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for _, s := range r.listeners[tok.Kind] {
			err := s.Process(file, i)
			file.seal()
			if err != nil {
				span.WithExtra("error", err.Error())
				return fmt.Errorf("%s at token %d: %w", sourceOf(s), i, err)
			}
		}
	}
	span.WithExtra("errors", strconv.Itoa(file.ErrorCount()))
	return nil
}

// Fingerprint identifies the ruleset configuration, for result caching.
func (r *Ruleset) Fingerprint() string {
	parts := make([]string, 0, len(r.sniffs)+len(r.meta.severity)+len(r.options))
	for _, s := range r.sniffs {
		parts = append(parts, "sniff="+sourceOf(s))
	}
	for src, sev := range r.meta.severity {
		parts = append(parts, "severity="+src+":"+sev.String())
	}
	parts = append(parts, r.options...)
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:8])
}

func sourceOf(s sniff.Sniff) string {
	if d, ok := s.(sniff.Describer); ok {
		return d.Source()
	}
	return fmt.Sprintf("%T", s)
}
