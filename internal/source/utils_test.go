package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")
	for _, dir := range []string{baseDir, otherDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	target := filepath.Join(otherDir, "file.php")
	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := normalizePath(target); got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "src", "A.php")

	got, err := RelativePath(target, tmp)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if got != "src/A.php" {
		t.Fatalf("expected src/A.php, got %q", got)
	}
}

func TestNormalizeCRLFKeepsLoneCR(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed || string(out) != "a\nb\rc" {
		t.Fatalf("normalizeCRLF = %q, %v", out, changed)
	}
	out, changed = normalizeCRLF([]byte("plain"))
	if changed || string(out) != "plain" {
		t.Fatalf("fast path changed content: %q", out)
	}
}

func TestNormalizeCRLFLeavesMixedEndings(t *testing.T) {
	const mixed = "<?php\r\n$s = \"a\nb\";\nclass M {}\r\n"
	out, changed := normalizeCRLF([]byte(mixed))
	if changed || string(out) != mixed {
		t.Fatalf("normalizeCRLF(mixed) = %q, %v", out, changed)
	}
	out, changed = normalizeCRLF([]byte("\na\r\n"))
	if changed || string(out) != "\na\r\n" {
		t.Fatalf("leading bare LF must disable normalisation: %q", out)
	}
}
