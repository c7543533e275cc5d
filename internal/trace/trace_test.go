package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelFile, FormatText)

	root := Begin(tr, ScopePass, "sniff", 0)
	child := Begin(tr, ScopeFile, "file:a.php", root.ID())
	child.WithExtra("errors", "1").WithExtra("edits", "1").End("")
	Begin(tr, ScopeSniff, "ignored", child.ID()).End("")
	root.End("done")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "\u2192 sniff") || !strings.Contains(lines[3], "\u2190 sniff (done)") {
		t.Fatalf("unexpected pass events:\n%s", out)
	}
	if !strings.Contains(lines[2], "{edits=1, errors=1}") {
		t.Fatalf("extras must be sorted: %q", lines[2])
	}
	if strings.Contains(out, "ignored") {
		t.Fatalf("sniff scope must be filtered at LevelFile")
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeDriver, "start", "check")

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if ev["kind"] != "point" || ev["name"] != "start" || ev["detail"] != "check" || ev["scope"] != "driver" {
		t.Fatalf("unexpected event %v", ev)
	}
}

func TestLogTracer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tr := NewLogTracer(zap.New(core), LevelFile)

	span := Begin(tr, ScopeFile, "file:a.php", 0)
	span.WithExtra("errors", "2").End("")
	Point(tr, ScopeSniff, "dropped", "")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	end := entries[1]
	if end.Level != zapcore.InfoLevel || end.Message != "file:a.php" {
		t.Fatalf("unexpected end entry %+v", end)
	}
	fields := end.ContextMap()
	if fields["kind"] != "end" || fields["scope"] != "file" || fields["errors"] != "2" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if entries[0].Level != zapcore.DebugLevel {
		t.Fatalf("span begin must log at debug")
	}
}

func TestNewOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("LevelOff must give a disabled tracer, got %v %v", tr, err)
	}
	if span := Begin(tr, ScopeDriver, "x", 0); span.ID() != 0 {
		t.Fatalf("disabled tracer must not allocate span IDs")
	}
}

func TestNewLogWithLogger(t *testing.T) {
	tr, err := New(Config{Level: LevelPhase, Format: FormatLog, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := tr.(*LogTracer); !ok {
		t.Fatalf("FormatLog must build a LogTracer, got %T", tr)
	}
}

func TestParse(t *testing.T) {
	if l, err := ParseLevel("FILE"); err != nil || l != LevelFile {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("unknown level must fail")
	}
	if f, err := ParseFormat("log"); err != nil || f != FormatLog {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
	if _, err := ParseFormat("chrome"); err == nil {
		t.Fatalf("unknown format must fail")
	}
	if FormatFromPath("out.ndjson") != FormatNDJSON || FormatFromPath("out.txt") != FormatText {
		t.Fatalf("FormatFromPath mismatch")
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("missing tracer must fall back to Nop")
	}
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatalf("FromContext must return the attached tracer")
	}
	ctx, pass := Start(ctx, ScopePass, "check")
	_, file := Start(ctx, ScopeFile, "sniff:a.php")
	file.End("")
	pass.End("")
	if pass.ID() == 0 || file.ID() == pass.ID() {
		t.Fatalf("unexpected span ids %d/%d", pass.ID(), file.ID())
	}
	if got := parentID(ctx); got != pass.ID() {
		t.Fatalf("parent in ctx = %d, want %d", got, pass.ID())
	}
	if !strings.Contains(buf.String(), "sniff:a.php") {
		t.Fatalf("child span not emitted:\n%s", buf.String())
	}
}

func TestStartNestsSpansInNDJSON(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelDebug, FormatNDJSON))
	ctx, pass := Start(ctx, ScopePass, "check")
	_, file := Start(ctx, ScopeFile, "sniff:a.php")
	file.WithExtra("errors", "1").End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 events, got %d:\n%s", len(lines), buf.String())
	}
	var end struct {
		Kind     string            `json:"kind"`
		SpanID   uint64            `json:"span_id"`
		ParentID uint64            `json:"parent_id"`
		Extra    map[string]string `json:"extra"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &end); err != nil {
		t.Fatalf("invalid json %q: %v", lines[2], err)
	}
	if end.Kind != "end" || end.SpanID != file.ID() || end.ParentID != pass.ID() || end.Extra["errors"] != "1" {
		t.Fatalf("unexpected end event %+v", end)
	}
}

func TestStartFilteredScopeKeepsParent(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelPhase, FormatText))
	ctx, pass := Start(ctx, ScopePass, "check")
	inner, file := Start(ctx, ScopeSniff, "ignored")
	if file.ID() != 0 || file.End("") != 0 {
		t.Fatalf("filtered span must be inert")
	}
	if parentID(inner) != pass.ID() {
		t.Fatalf("filtered span must not replace the parent")
	}
}
