package controller

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	m "github.com/mouse-blink/py3ify/internal/model"
)

func TestConversionModel_Lifecycle(t *testing.T) {
	cm := newConversionModel()

	cmd := cm.Init()
	if cmd == nil {
		t.Fatalf("Init() returned nil")
	}

	if _, ok := cmd().(tickMsg); !ok {
		t.Fatalf("Init() cmd did not return tickMsg")
	}

	if view := cm.View(); !strings.Contains(view, "Preparing") {
		t.Fatalf("View before render = %q", view)
	}

	model, _ := cm.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	cm = model.(conversionModel)

	model, _ = cm.Update(conversionStartMsg{total: 2, workers: 2})
	cm = model.(conversionModel)

	model, _ = cm.Update(startFileMsg{worker: 1, path: "pkg/a.py"})
	cm = model.(conversionModel)

	if cm.workerFiles[1] != "pkg/a.py" {
		t.Fatalf("worker tracking not set: %v", cm.workerFiles)
	}

	view := cm.View()
	if !strings.Contains(view, "py3ify Conversion") || !strings.Contains(view, "pkg/a.py") || !strings.Contains(view, "idle") {
		t.Fatalf("progress view incomplete\n%s", view)
	}

	model, _ = cm.Update(fileResultMsg{worker: 1, path: "pkg/a.py", status: m.StatusConverted, changes: 3, diff: "-a\n+b"})
	cm = model.(conversionModel)

	if cm.completed != 1 || cm.progressPercent != 0.5 {
		t.Fatalf("progress = %d/%v", cm.completed, cm.progressPercent)
	}

	if _, busy := cm.workerFiles[1]; busy {
		t.Fatalf("worker still marked busy")
	}

	model, _ = cm.Update(fileResultMsg{worker: 0, path: "pkg/b.py", status: m.StatusUnchanged, cached: true})
	cm = model.(conversionModel)

	if cm.results[1].status != "unchanged*" {
		t.Fatalf("cached status = %q", cm.results[1].status)
	}

	model, _ = cm.Update(summaryMsg{summary: m.Summary{Converted: 1, Unchanged: 1, Changes: 3}})
	cm = model.(conversionModel)

	if !cm.finished {
		t.Fatalf("summary did not finish the run")
	}

	view = cm.View()
	if !strings.Contains(view, "py3ify Results") || !strings.Contains(view, "pkg/b.py") {
		t.Fatalf("results view incomplete\n%s", view)
	}
}

func TestConversionModel_EmptyBatchFinishes(t *testing.T) {
	model, _ := newConversionModel().Update(conversionStartMsg{total: 0, workers: 1})
	if !model.(conversionModel).finished {
		t.Fatalf("empty batch should be finished")
	}
}

func TestConversionModel_DiffToggle(t *testing.T) {
	cm := newConversionModel()
	cm.width = 100
	cm.height = 40
	cm.finished = true
	cm.rendered = true
	cm.resultsList.SetItems([]list.Item{
		convertedFile{path: "a.py", status: "converted", diff: "--- a.py\n+++ a.py (converted)\n@@ -1 +1 @@\n-x <> y\n+x != y"},
		convertedFile{path: "b.py", status: "unchanged"},
		convertedFile{path: "c.py", status: "syntax-error", err: "bad input"},
	})

	cm, _ = cm.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})
	if !cm.showDiff || cm.selectedPath != "a.py" {
		t.Fatalf("enter did not open diff")
	}

	if box := cm.renderDiffBox("6", 80); !strings.Contains(box, "+x != y") {
		t.Fatalf("diff box missing line\n%s", box)
	}

	if cm.diffBoxHeight() != 8 {
		t.Fatalf("diffBoxHeight() = %d, want 8", cm.diffBoxHeight())
	}

	cm, _ = cm.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})
	if cm.showDiff {
		t.Fatalf("second enter did not close diff")
	}

	// A file without diff or error shows nothing.
	cm, _ = cm.handleKeyMsg(tea.KeyMsg{Type: tea.KeyDown})
	cm, _ = cm.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})

	if cm.showDiff {
		t.Fatalf("unchanged file opened a diff")
	}

	// Errors are shown in place of a diff.
	cm, _ = cm.handleKeyMsg(tea.KeyMsg{Type: tea.KeyDown})
	cm, _ = cm.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})

	if !cm.showDiff || cm.selectedDiff != "bad input" {
		t.Fatalf("error not shown: %q", cm.selectedDiff)
	}

	cm, _ = cm.handleMouseMsg(tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if cm.showDiff {
		t.Fatalf("click did not toggle diff")
	}
}

func TestConversionModel_KeysIgnoredWhileRunning(t *testing.T) {
	cm := newConversionModel()

	cm, cmd := cm.handleKeyMsg(tea.KeyMsg{Type: tea.KeyDown})
	if cmd != nil {
		t.Fatalf("unexpected cmd while running")
	}

	if _, cmd = cm.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Fatalf("expected quit cmd")
	}

	if _, cmd = cm.handleMouseMsg(tea.MouseMsg{}); cmd != nil {
		t.Fatalf("unexpected mouse cmd while running")
	}
}

func TestConversionModel_TickAndResize(t *testing.T) {
	cm := newConversionModel()

	cm = cm.handleWindowSize(tea.WindowSizeMsg{Width: 10, Height: 10})
	if cm.progressBar.Width != 20 {
		t.Fatalf("progress width = %d, want 20", cm.progressBar.Width)
	}

	cm, _ = cm.handleTickMsg(tickMsg(time.Now()))
	if cm.animOffset != 0 {
		t.Fatalf("animation advanced while running")
	}

	cm.finished = true

	cm, cmd := cm.handleTickMsg(tickMsg(time.Now()))
	if cm.animOffset != 1 || cmd == nil {
		t.Fatalf("tick not handled: offset=%d", cm.animOffset)
	}
}

func TestConvertedFileDelegate_Render(t *testing.T) {
	delegate := convertedFileDelegate{}
	items := []list.Item{convertedFile{path: "pkg/mod.py", status: "converted", changes: 4}}
	lm := list.New(items, delegate, 60, 5)

	var buf bytes.Buffer
	delegate.Render(&buf, lm, 0, items[0])

	if !strings.Contains(buf.String(), "pkg/mod.py") {
		t.Fatalf("render output missing path: %q", buf.String())
	}

	buf.Reset()
	delegate.Render(&buf, lm, 1, items[0])

	if !strings.Contains(buf.String(), "converted") {
		t.Fatalf("render output missing status")
	}

	buf.Reset()
	delegate.Render(&buf, lm, 0, struct{ list.Item }{})

	if buf.Len() != 0 {
		t.Fatalf("unexpected output for foreign item")
	}
}

func TestRenderDiffLine(t *testing.T) {
	for _, line := range []string{"+++ a", "--- a", "@@ -1 +1 @@", "+x", "-x", " ", "context"} {
		if got := renderDiffLine(line, 40); !strings.Contains(got, strings.TrimSpace(line)) {
			t.Fatalf("renderDiffLine(%q) = %q", line, got)
		}
	}
}
