package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"phpsniff/internal/driver"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("checking", []string{"a.php", "b.php"}, events).(*progressModel)

	m.applyEvent(driver.Event{File: "a.php", Stage: driver.StageLex, Status: driver.StatusWorking})
	if m.items[0].status != "lexing" {
		t.Fatalf("expected lexing, got %q", m.items[0].status)
	}
	m.applyEvent(driver.Event{File: "a.php", Stage: driver.StageSniff, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b.php", Stage: driver.StageCache, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "unknown.php", Stage: driver.StageLex, Status: driver.StatusWorking})

	if m.items[0].status != "done" || m.items[1].status != "cached" {
		t.Fatalf("unexpected statuses %+v", m.items)
	}

	m.done = true
	view := m.View()
	if !strings.Contains(view, "done: checking") || !strings.Contains(view, "a.php") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestProgressModelCountsFailures(t *testing.T) {
	m := NewProgressModel("checking", []string{"a.php"}, nil).(*progressModel)
	m.applyEvent(driver.Event{File: "a.php", Stage: driver.StageLoad, Status: driver.StatusError})
	m.done = true
	if view := m.View(); !strings.Contains(view, "1 failed") {
		t.Fatalf("expected failure count in view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	got := truncate("src/Domain/VeryLongClassName.php", 12)
	if got != "src/Domai..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if w := runewidth.StringWidth(got); w != 12 {
		t.Fatalf("truncated width = %d, want 12", w)
	}
	if got := truncate("a.php", 20); got != "a.php" {
		t.Fatalf("short values must be kept, got %q", got)
	}
}
