package diag

import "phpsniff/internal/source"

type dedupKey struct {
	code   Code
	sev    Severity
	file   source.FileID
	start  uint32
	end    uint32
	source string
	msg    string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, source, primary span and message.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(d *Diagnostic) {
	if r == nil || d == nil {
		return
	}
	key := dedupKey{
		code:   d.Code,
		sev:    d.Severity,
		file:   d.Primary.File,
		start:  d.Primary.Start,
		end:    d.Primary.End,
		source: d.Source,
		msg:    d.Message,
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
