package controller

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/mouse-blink/py3ify/internal/model"
)

var (
	convertedColor = color.New(color.FgGreen)
	unchangedColor = color.New(color.FgHiBlack)
	failedColor    = color.New(color.FgRed, color.Bold)
	hunkColor      = color.New(color.FgCyan)
	addedColor     = color.New(color.FgGreen)
	removedColor   = color.New(color.FgRed)
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
	cfg StartConfig
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(options ...StartOption) error {
	s.cfg = newStartConfig(options)
	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close() {
}

// Wait returns immediately; nothing is interactive.
func (s *SimpleUI) Wait() {
}

// DisplaySources prints the discovered sources and whether a stored report
// covers them.
func (s *SimpleUI) DisplaySources(sources []m.SourceStatus) error {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Report"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	stale := 0

	for _, source := range sources {
		state := "cached"
		if !source.Cached {
			state = "stale"
			stale++
		}

		table.Append([]string{string(source.Source.Origin), state})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(sources)),
		fmt.Sprintf("%d stale", stale),
	})

	table.Render()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.printf("\n%s", tableBuffer.String())

	return nil
}

// DisplayConversionStart announces the batch.
func (s *SimpleUI) DisplayConversionStart(total int, workers int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.printf("Converting %d file(s) with %d worker(s)\n", total, workers)
}

// DisplayStartingFile prints nothing; results are printed as they complete.
func (s *SimpleUI) DisplayStartingFile(_ m.Path, _ int) {
}

// DisplayFileResult prints one status line per file and, when enabled, the diff.
func (s *SimpleUI) DisplayFileResult(result m.FileResult, _ int) {
	report := result.Report

	var b strings.Builder

	label := fmt.Sprintf("%-12s", report.Status)
	if report.Cached {
		label = fmt.Sprintf("%-12s", string(report.Status)+"*")
	}

	fmt.Fprintf(&b, "%s %s", statusColor(report.Status).Sprint(label), report.Path)

	if n := len(report.Changes); n > 0 {
		fmt.Fprintf(&b, " (%d change(s))", n)
	}

	b.WriteString("\n")

	if report.Error != "" {
		fmt.Fprintf(&b, "    %s\n", report.Error)
	}

	if s.cfg.showDiffs {
		if diff := resultDiff(result); diff != "" {
			b.WriteString(colorDiff(diff))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.printf("%s", b.String())
}

// DisplaySummary prints per status counts.
func (s *SimpleUI) DisplaySummary(summary m.Summary) {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Status", "Files"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.AppendBulk([][]string{
		{string(m.StatusConverted), fmt.Sprintf("%d", summary.Converted)},
		{string(m.StatusUnchanged), fmt.Sprintf("%d", summary.Unchanged)},
		{string(m.StatusSyntaxError), fmt.Sprintf("%d", summary.SyntaxErrors)},
		{string(m.StatusEngineError), fmt.Sprintf("%d", summary.EngineErrors)},
	})
	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", summary.Total()),
		fmt.Sprintf("%d changes", summary.Changes),
	})
	table.Render()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.printf("\n%s", tableBuffer.String())
}

// DisplayReports prints stored reports with the changes each fixer made.
func (s *SimpleUI) DisplayReports(reports []m.Report) error {
	if len(reports) == 0 {
		s.printf("no reports found\n")
		return nil
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Status", "Target", "Passes", "Changes"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, r := range reports {
		table.Append([]string{
			string(r.Path),
			string(r.Status),
			r.Target,
			fmt.Sprintf("%d", r.Passes),
			fmt.Sprintf("%d", len(r.Changes)),
		})
	}

	table.Render()

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(tableBuffer.String())

	for _, r := range reports {
		if len(r.Changes) == 0 && r.Error == "" {
			continue
		}

		fmt.Fprintf(&b, "\n%s\n", r.Path)

		if r.Error != "" {
			fmt.Fprintf(&b, "  %s\n", failedColor.Sprint(r.Error))
		}

		for _, c := range r.Changes {
			fmt.Fprintf(&b, "  %d:%d %-12s %s -> %s\n",
				c.Line, c.Column, c.Fixer, firstLine(c.Before), firstLine(c.After))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.printf("%s", b.String())

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func statusColor(status m.Status) *color.Color {
	switch status {
	case m.StatusConverted:
		return convertedColor
	case m.StatusUnchanged:
		return unchangedColor
	}

	return failedColor
}

func colorDiff(diff string) string {
	var b strings.Builder

	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(line)
		case strings.HasPrefix(line, "@@"):
			b.WriteString(hunkColor.Sprint(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(addedColor.Sprint(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(removedColor.Sprint(line))
		default:
			b.WriteString(line)
		}
	}

	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}

	return s
}
