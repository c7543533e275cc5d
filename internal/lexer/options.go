package lexer

import (
	"phpsniff/internal/diag"
	"phpsniff/internal/source"
)

type Options struct {
	// Reporter may be nil; lexing continues past errors either way.
	Reporter diag.Reporter
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter == nil {
		return
	}
	diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
}

func (lx *Lexer) warnLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter == nil {
		return
	}
	diag.ReportWarning(lx.opts.Reporter, code, sp, msg).Emit()
}
