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

func TestAnimateScroll_Edges(t *testing.T) {
	if got := animateScroll("hello", 0, 0); got != "" {
		t.Fatalf("animateScroll width 0 = %q, want empty", got)
	}

	if got := animateScroll("hi", 5, 0); got != "hi" {
		t.Fatalf("animateScroll short text = %q, want hi", got)
	}

	if got := animateScroll("abcdef", 3, 0); got != "ab…" {
		t.Fatalf("animateScroll pause = %q, want ab…", got)
	}

	got := animateScroll("abcdef", 3, 10)
	if got == "ab…" || len([]rune(got)) != 3 {
		t.Fatalf("animateScroll scrolled = %q, want len 3 and not truncated", got)
	}
}

func TestTruncateToWidth(t *testing.T) {
	if got := truncateToWidth("hello", 0); got != "" {
		t.Fatalf("truncateToWidth width 0 = %q, want empty", got)
	}

	if got := truncateToWidth("hello", 10); got != "hello" {
		t.Fatalf("truncateToWidth no truncation = %q", got)
	}

	if got := truncateToWidth("hello", 1); got != "…" {
		t.Fatalf("truncateToWidth width 1 = %q, want ellipsis", got)
	}

	if got := truncateToWidth("hello", 2); got != "h…" {
		t.Fatalf("truncateToWidth width 2 = %q, want h…", got)
	}
}

func TestListModel_Sources(t *testing.T) {
	lm := newListModel(ModeList)
	if got := lm.View(); got != "Loading file list…\n" {
		t.Fatalf("View() before render = %q", got)
	}

	model, _ := lm.Update(sourcesMsg{sources: []m.SourceStatus{
		{Source: m.Source{Origin: "a.py"}, Cached: true},
		{Source: m.Source{Origin: "b.py"}},
	}})
	lm = model.(listModel)

	if !lm.rendered || lm.stale != 1 || len(lm.fileList.Items()) != 2 {
		t.Fatalf("sourcesMsg not applied: rendered=%v stale=%d items=%d", lm.rendered, lm.stale, len(lm.fileList.Items()))
	}

	if lm.lastSelected != 0 {
		t.Fatalf("lastSelected = %d, want 0", lm.lastSelected)
	}

	lm.width = 80
	lm.height = 25

	view := lm.View()
	if !strings.Contains(view, "py3ify Sources") || !strings.Contains(view, "a.py") {
		t.Fatalf("View() missing title or path\n%s", view)
	}

	table := lm.renderTable()
	if !strings.Contains(table, "Status") || !strings.Contains(table, "File Path") {
		t.Fatalf("renderTable missing headers\n%s", table)
	}

	// force small height to hit min list height branch
	lm.height = 0
	lm.width = 20
	_ = lm.renderTable()
}

func TestListModel_ReportsDetail(t *testing.T) {
	lm := newListModel(ModeView)
	lm.width = 100
	lm.height = 30

	model, _ := lm.Update(reportsMsg{reports: []m.Report{
		{
			Path:   "a.py",
			Status: m.StatusConverted,
			Changes: []m.Change{
				{Fixer: "ne", Line: 2, Column: 5, Before: "a <> b", After: "a != b"},
			},
		},
	}})
	lm = model.(listModel)

	if lm.summary.Converted != 1 || lm.summary.Changes != 1 {
		t.Fatalf("summary = %+v", lm.summary)
	}

	if view := lm.View(); !strings.Contains(view, "py3ify Reports") {
		t.Fatalf("View() missing title\n%s", view)
	}

	model, _ = lm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	lm = model.(listModel)

	if !lm.showDetail {
		t.Fatalf("enter did not open the detail box")
	}

	detail := lm.renderDetail()
	if !strings.Contains(detail, "2:5 ne: a <> b -> a != b") {
		t.Fatalf("renderDetail() = %q", detail)
	}

	model, _ = lm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if model.(listModel).showDetail {
		t.Fatalf("second enter did not close the detail box")
	}
}

func TestListModel_UpdateBranches(t *testing.T) {
	lm := newListModel(ModeList)
	lm.rendered = true
	lm.fileList.SetItems([]list.Item{fileItem{path: "a"}, fileItem{path: "b"}})

	model, cmd := lm.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatalf("expected tick cmd")
	}

	updated := model.(listModel)
	if updated.animOffset != 1 {
		t.Fatalf("animOffset = %d, want 1", updated.animOffset)
	}

	model, _ = updated.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	updated = model.(listModel)

	if updated.width != 100 || updated.height != 40 {
		t.Fatalf("window size not applied")
	}

	model, _ = updated.Update(tea.KeyMsg{Type: tea.KeyDown})
	updated = model.(listModel)

	if updated.lastSelected != 1 || updated.animOffset != 0 {
		t.Fatalf("selection change not tracked: lastSelected=%d animOffset=%d", updated.lastSelected, updated.animOffset)
	}

	if _, cmd = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Fatalf("expected quit cmd")
	}

	if cmd := updated.Init(); cmd == nil {
		t.Fatalf("Init() returned nil cmd")
	}
}

func TestFileDelegate_Render(t *testing.T) {
	delegate := fileDelegate{offset: 0}
	items := []list.Item{fileItem{path: "path/to/file.py", status: "stale", count: 2}}
	lm := list.New(items, delegate, 40, 5)

	var buf bytes.Buffer
	delegate.Render(&buf, lm, 0, items[0])

	if !strings.Contains(buf.String(), "path") {
		t.Fatalf("render output missing path")
	}

	buf.Reset()
	delegate.Render(&buf, lm, 1, items[0])

	if !strings.Contains(buf.String(), "stale") {
		t.Fatalf("render output missing status")
	}

	// Render with bad item type should not panic
	buf.Reset()
	delegate.Render(&buf, lm, 0, struct{ list.Item }{})

	if delegate.Height() != 1 || delegate.Spacing() != 0 {
		t.Fatalf("unexpected delegate geometry")
	}

	if cmd := delegate.Update(nil, &lm); cmd != nil {
		t.Fatalf("Update() returned cmd")
	}
}
