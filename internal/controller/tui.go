package controller

import (
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	m "github.com/mouse-blink/py3ify/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output  io.Writer
	program *tea.Program
	started bool
	done    chan struct{}
	cfg     StartConfig
	mu      sync.Mutex
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the Bubble Tea program for the selected mode.
func (t *TUI) Start(options ...StartOption) error {
	t.mu.Lock()
	t.cfg = newStartConfig(options)
	t.mu.Unlock()

	return t.startWithModel(t.newModel())
}

func (t *TUI) newModel() tea.Model {
	switch t.cfg.mode {
	case ModeList, ModeView:
		return newListModel(t.cfg.mode)
	default:
		return newConversionModel()
	}
}

func (t *TUI) startWithModel(model tea.Model) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}

	opts := []tea.ProgramOption{
		tea.WithOutput(t.output),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
	if !IsTTY(t.output) {
		opts = append(opts, tea.WithInput(nil))
	}

	program := tea.NewProgram(model, opts...)
	done := make(chan struct{})

	t.program = program
	t.done = done
	t.started = true

	go func() {
		defer close(done)

		_, _ = program.Run()
	}()

	return nil
}

func (t *TUI) ensureStarted() {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()

	if started {
		return
	}

	_ = t.startWithModel(t.newModel())
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(msg)
}

// Close stops the program and waits for it to exit.
func (t *TUI) Close() {
	t.mu.Lock()
	program, done := t.program, t.done
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait blocks until the user quits the program.
func (t *TUI) Wait() {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	<-done
}

// DisplaySources shows the discovered sources.
func (t *TUI) DisplaySources(sources []m.SourceStatus) error {
	t.ensureStarted()
	t.send(sourcesMsg{sources: sources})

	return nil
}

// DisplayConversionStart resets the progress bar for a new batch.
func (t *TUI) DisplayConversionStart(total int, workers int) {
	t.ensureStarted()
	t.send(conversionStartMsg{total: total, workers: workers})
}

// DisplayStartingFile marks a worker as busy with path.
func (t *TUI) DisplayStartingFile(path m.Path, worker int) {
	t.ensureStarted()
	t.send(startFileMsg{worker: worker, path: string(path)})
}

// DisplayFileResult records a finished file along with its diff.
func (t *TUI) DisplayFileResult(result m.FileResult, worker int) {
	t.ensureStarted()

	report := result.Report
	t.send(fileResultMsg{
		worker:  worker,
		path:    string(report.Path),
		status:  report.Status,
		cached:  report.Cached,
		changes: len(report.Changes),
		err:     strings.TrimSpace(report.Error),
		diff:    resultDiff(result),
	})
}

// DisplaySummary switches the program to the results view.
func (t *TUI) DisplaySummary(summary m.Summary) {
	t.ensureStarted()
	t.send(summaryMsg{summary: summary})
}

// DisplayReports shows stored reports.
func (t *TUI) DisplayReports(reports []m.Report) error {
	t.ensureStarted()
	t.send(reportsMsg{reports: reports})

	return nil
}
