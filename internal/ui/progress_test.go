package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"bundler/internal/buildpipeline"
)

func TestProgressTracksDiscoveredFiles(t *testing.T) {
	events := make(chan buildpipeline.Event)
	m := NewProgressModel("bundler build", []string{"src/main.js"}, events).(*progressModel)

	m.applyEvent(buildpipeline.Event{File: "src/main.js", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusWorking})
	m.applyEvent(buildpipeline.Event{File: "src/util.js", Stage: buildpipeline.StageLoad, Status: buildpipeline.StatusQueued})
	m.applyEvent(buildpipeline.Event{File: "src/util.js", Stage: buildpipeline.StageAnalyze, Status: buildpipeline.StatusCached})

	if len(m.items) != 2 {
		t.Fatalf("got %d rows, want 2", len(m.items))
	}
	if got := m.items[0].status; got != "parsing" {
		t.Fatalf("got status %q, want parsing", got)
	}
	if got := m.items[1].status; got != "cached" {
		t.Fatalf("got status %q, want cached", got)
	}

	pct := m.percent()
	want := (float64(1)/float64(len(buildpipeline.Stages)) + 1) / 2
	if pct != want {
		t.Fatalf("got percent %v, want %v", pct, want)
	}
}

func TestProgressBuildLevelEvents(t *testing.T) {
	m := NewProgressModel("bundler build", nil, nil).(*progressModel)
	if m.View() != "" {
		t.Fatalf("expected empty view before any event")
	}

	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageCommit, Status: buildpipeline.StatusError, Err: errors.New("boom")})
	if m.stageLabel != "error" {
		t.Fatalf("got label %q, want error", m.stageLabel)
	}
	if len(m.items) != 0 {
		t.Fatalf("build-level event added a row")
	}
	if !strings.Contains(m.View(), "bundler build (error)") {
		t.Fatalf("header missing from view:\n%s", m.View())
	}
}

func TestProgressDoneOnClosedChannel(t *testing.T) {
	events := make(chan buildpipeline.Event)
	close(events)
	m := NewProgressModel("bundler build", []string{"a.js"}, events).(*progressModel)

	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("got %T, want doneMsg", msg)
	}
	m.Update(msg)
	if !m.done {
		t.Fatalf("model not done after channel closed")
	}
	if !strings.Contains(m.View(), "done: bundler build") {
		t.Fatalf("unexpected view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("src/components/button.js", 10); got != "src/com..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a.js", 10); got != "a.js" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("src/日本語/app.js", 12); runewidth.StringWidth(got) > 12 || got != "src/日本..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
