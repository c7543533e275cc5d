package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"phpsniff/internal/config"
	"phpsniff/internal/fix"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"problems", errProblemsFound, 1},
		{"wrapped problems", fmt.Errorf("check: %w", errProblemsFound), 1},
		{"runtime", errors.New("boom"), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestApplyOptions(t *testing.T) {
	tests := []struct {
		name    string
		all     bool
		once    bool
		id      string
		dryRun  bool
		want    fix.ApplyOptions
		wantErr bool
	}{
		{name: "default is all", want: fix.ApplyOptions{Mode: fix.ApplyModeAll}},
		{name: "explicit all", all: true, want: fix.ApplyOptions{Mode: fix.ApplyModeAll}},
		{name: "once", once: true, dryRun: true, want: fix.ApplyOptions{Mode: fix.ApplyModeOnce, DryRun: true}},
		{name: "id", id: "SNF2001-a.php-6", want: fix.ApplyOptions{Mode: fix.ApplyModeID, TargetID: "SNF2001-a.php-6"}},
		{name: "all and once", all: true, once: true, wantErr: true},
		{name: "once and id", once: true, id: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyOptions(tt.all, tt.once, tt.id, tt.dryRun)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("applyOptions: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("options mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{
		"":     uiModeOff,
		"off":  uiModeOff,
		"ON":   uiModeOn,
		"auto": uiModeAuto,
	} {
		got, err := readUIMode(in)
		if err != nil {
			t.Fatalf("readUIMode(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("readUIMode(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("expected error for unknown ui mode")
	}
	if shouldUseTUI(uiModeOff) || !shouldUseTUI(uiModeOn) {
		t.Fatal("explicit ui modes must not depend on the terminal")
	}
}

func TestResolveColor(t *testing.T) {
	out, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	tests := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{value: "on", want: true},
		{value: "always", want: true},
		{value: "off", want: false},
		{value: "auto", want: false}, // a regular file is not a terminal
		{value: "rainbow", wantErr: true},
	}
	for _, tt := range tests {
		got, err := resolveColor(tt.value, out)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("resolveColor(%q): expected error", tt.value)
			}
			continue
		}
		if err != nil {
			t.Fatalf("resolveColor(%q): %v", tt.value, err)
		}
		if got != tt.want {
			t.Fatalf("resolveColor(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestSettingsTargets(t *testing.T) {
	s := &settings{manifest: &config.Manifest{Root: "/proj"}}
	if diff := cmp.Diff([]string{"."}, s.targets(nil)); diff != "" {
		t.Fatalf("targets without config (-want +got):\n%s", diff)
	}

	s.manifest.Path = "/proj/phpsniff.toml"
	if diff := cmp.Diff([]string{"/proj"}, s.targets(nil)); diff != "" {
		t.Fatalf("targets with config (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.php", "src"}, s.targets([]string{"a.php", "src"})); diff != "" {
		t.Fatalf("explicit targets (-want +got):\n%s", diff)
	}
}

func TestLookupRule(t *testing.T) {
	for _, name := range []string{"SNF2001", "snf2001", "Standards.Classes.FinalClasses", " standards.classes.finalclasses "} {
		doc, ok := lookupRule(name)
		if !ok {
			t.Fatalf("lookupRule(%q) found nothing", name)
		}
		if doc.source != "Standards.Classes.FinalClasses" {
			t.Fatalf("lookupRule(%q) = %s", name, doc.source)
		}
	}
	if _, ok := lookupRule("SNF9999"); ok {
		t.Fatal("unknown code must not match")
	}
}

func TestRenderMarkdownPlain(t *testing.T) {
	doc, _ := lookupRule("SNF2001")
	var buf bytes.Buffer
	if err := renderMarkdown(&buf, doc.markdown, false, 80); err != nil {
		t.Fatalf("renderMarkdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Standards.Classes.FinalClasses", "final class WellFormedClass"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered docs miss %q:\n%s", want, out)
		}
	}
}
