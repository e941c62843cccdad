package controller

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/mouse-blink/py3ify/internal/model"
)

// convertedFile holds a finished file in the results list.
type convertedFile struct {
	path    string
	status  string
	changes int
	err     string
	diff    string
}

func (r convertedFile) FilterValue() string {
	return r.path + " " + r.status
}

type convertedFileDelegate struct {
	offset int
}

func (d convertedFileDelegate) Height() int  { return 1 }
func (d convertedFileDelegate) Spacing() int { return 0 }
func (d convertedFileDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d convertedFileDelegate) Render(w io.Writer, lm list.Model, index int, item list.Item) {
	result, ok := item.(convertedFile)
	if !ok {
		return
	}

	isSelected := index == lm.Index()
	fileWidth := lm.Width() - 24 // status (14) + changes (8) + spacing (2)

	stStyle, countStyle, fileStyle, displayFile := d.stylesFor(result, isSelected, fileWidth)

	line := fmt.Sprintf("%s%s  %s",
		stStyle.Render(result.status),
		countStyle.Render(fmt.Sprintf("%d", result.changes)),
		fileStyle.Render(displayFile),
	)
	_, _ = fmt.Fprint(w, line)
}

func (d convertedFileDelegate) stylesFor(result convertedFile, isSelected bool, fileWidth int) (lipgloss.Style, lipgloss.Style, lipgloss.Style, string) {
	if isSelected {
		selected := lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true)

		return selected.Width(14),
			selected.Width(8).Align(lipgloss.Right),
			selected,
			animateScroll(result.path, fileWidth, d.offset)
	}

	return statusStyle(result.status).Width(14),
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true).
			Width(8).
			Align(lipgloss.Right),
		lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		truncateToWidth(result.path, fileWidth)
}

// conversionModel shows worker progress while files convert and the results
// once the batch is done.
type conversionModel struct {
	width           int
	height          int
	progressBar     progress.Model
	total           int
	completed       int
	progressPercent float64
	workers         int
	workerFiles     map[int]string
	rendered        bool
	finished        bool
	summary         m.Summary
	results         []convertedFile
	resultsList     list.Model
	delegate        convertedFileDelegate
	animOffset      int
	lastSelected    int
	showDiff        bool
	selectedDiff    string
	selectedPath    string
}

func newConversionModel() conversionModel {
	prog := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	delegate := convertedFileDelegate{}
	resultsList := list.New([]list.Item{}, delegate, 80, 20)
	resultsList.SetShowPagination(false)
	resultsList.SetShowFilter(true)
	resultsList.SetShowHelp(false)
	resultsList.SetShowTitle(false)
	resultsList.SetShowStatusBar(false)
	resultsList.FilterInput.Placeholder = "Filter results…"

	return conversionModel{
		progressBar:  prog,
		resultsList:  resultsList,
		delegate:     delegate,
		workerFiles:  make(map[int]string),
		lastSelected: -1,
	}
}

func (cm conversionModel) Init() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (cm conversionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cm = cm.handleWindowSize(msg)

	case tea.KeyMsg:
		cm, cmd = cm.handleKeyMsg(msg)

	case tea.MouseMsg:
		cm, cmd = cm.handleMouseMsg(msg)

	case tickMsg:
		return cm.handleTickMsg(msg)

	case conversionStartMsg:
		cm.total = msg.total
		cm.workers = msg.workers
		cm.completed = 0
		cm.progressPercent = 0
		cm.rendered = true
		cm.finished = msg.total == 0

	case startFileMsg:
		cm.workerFiles[msg.worker] = msg.path
		cm.rendered = true

	case fileResultMsg:
		cm = cm.handleFileResult(msg)

	case summaryMsg:
		cm.summary = msg.summary
		cm.finished = true
		cm.rendered = true
	}

	return cm, cmd
}

func (cm conversionModel) handleFileResult(msg fileResultMsg) conversionModel {
	cm.completed++
	delete(cm.workerFiles, msg.worker)

	status := string(msg.status)
	if msg.cached {
		status += "*"
	}

	cm.results = append(cm.results, convertedFile{
		path:    msg.path,
		status:  status,
		changes: msg.changes,
		err:     msg.err,
		diff:    msg.diff,
	})

	items := make([]list.Item, 0, len(cm.results))
	for _, r := range cm.results {
		items = append(items, r)
	}

	cm.resultsList.SetItems(items)

	if cm.total > 0 {
		cm.progressPercent = float64(cm.completed) / float64(cm.total)
	}

	cm.rendered = true

	return cm
}

func (cm conversionModel) View() string {
	if !cm.rendered {
		return "Preparing conversion…\n"
	}

	if cm.finished {
		return cm.viewResults()
	}

	return cm.viewProgress()
}

func (cm conversionModel) viewProgress() string {
	accentColor := lipgloss.Color("6") // Cyan

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	accentStyle := lipgloss.NewStyle().Foreground(accentColor)

	title := titleStyle.Render("🐍 py3ify Conversion")

	summary := summaryStyle.Render(fmt.Sprintf(
		"Progress: %s / %s  •  Workers: %s",
		accentStyle.Render(fmt.Sprintf("%d", cm.completed)),
		accentStyle.Render(fmt.Sprintf("%d", cm.total)),
		accentStyle.Render(fmt.Sprintf("%d", cm.workers)),
	))

	progressView := lipgloss.NewStyle().
		Padding(0, 2).
		Render(cm.progressBar.ViewAs(cm.progressPercent))

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Width(cm.width).
		Render("Press q to quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summary,
		progressView,
		cm.renderWorkerBox(accentColor),
		footer,
	)
}

func (cm conversionModel) renderWorkerBox(accentColor lipgloss.Color) string {
	contentStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Margin(1, 1, 1, 0).
		Width(cm.width - 4)

	fileStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	// Width - Border(2) - Padding(2)
	availableWidth := cm.width - 4 - 2 - 2
	prefixWidth := 0
	labelFormat := ""

	if cm.workers > 1 {
		digits := len(fmt.Sprintf("%d", cm.workers-1))
		prefixWidth = 7 + digits + 2 // "Worker " + digits + ": "
		labelFormat = fmt.Sprintf("Worker %%%dd: %%s", digits)
	}

	remaining := availableWidth - prefixWidth
	if remaining < 10 {
		remaining = 10
	}

	lines := make([]string, 0, cm.workers)

	for i := range cm.workers {
		content := "idle"
		if file := cm.workerFiles[i]; file != "" {
			content = fileStyle.Render(truncateToWidth(file, remaining))
		}

		if cm.workers > 1 {
			content = fmt.Sprintf(labelFormat, i, content)
		}

		lines = append(lines, content)
	}

	return contentStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (cm conversionModel) viewResults() string {
	accentColor := lipgloss.Color("6")

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	accentStyle := lipgloss.NewStyle().Foreground(accentColor)

	title := titleStyle.Render("🐍 py3ify Results")

	s := cm.summary
	summary := summaryStyle.Render(fmt.Sprintf(
		"Total: %s  •  Converted: %s  •  Unchanged: %s  •  Errors: %s  •  Changes: %s",
		accentStyle.Render(fmt.Sprintf("%d", len(cm.results))),
		accentStyle.Render(fmt.Sprintf("%d", s.Converted)),
		accentStyle.Render(fmt.Sprintf("%d", s.Unchanged)),
		accentStyle.Render(fmt.Sprintf("%d", s.SyntaxErrors+s.EngineErrors)),
		accentStyle.Render(fmt.Sprintf("%d", s.Changes)),
	))

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Width(cm.width).
		Render("↑/k up • ↓/j down • g/G top/bottom • / filter • enter/space/click diff • q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summary,
		cm.renderResultsBox(accentColor),
		footer,
	)
}

func (cm conversionModel) renderResultsBox(accentColor lipgloss.Color) string {
	listWidth := cm.width - 4

	listHeight := cm.height - 9 - cm.diffBoxHeight()
	if listHeight < 5 {
		listHeight = 5
	}

	cm.resultsList.SetHeight(listHeight)
	cm.resultsList.SetWidth(listWidth)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("8")).
		Width(listWidth)

	headers := headerStyle.Render(fmt.Sprintf("%-14s%8s  %s", "Status", "Changes", "File"))

	resultsBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Margin(0, 1, 0, 0).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, headers, cm.resultsList.View()))

	diffBox := cm.renderDiffBox(accentColor, listWidth)
	if diffBox == "" {
		return resultsBox
	}

	return lipgloss.JoinVertical(lipgloss.Left, resultsBox, diffBox)
}

func (cm conversionModel) handleKeyMsg(msg tea.KeyMsg) (conversionModel, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return cm, tea.Quit
	}

	if !cm.finished {
		return cm, nil
	}

	if (msg.String() == "enter" || msg.String() == " ") && cm.resultsList.FilterState() != list.Filtering {
		cm.toggleSelectedDiff()
		return cm, nil
	}

	newList, cmd := cm.resultsList.Update(msg)
	cm.resultsList = newList
	cm.resetOnSelectionChange()

	return cm, cmd
}

func (cm conversionModel) handleMouseMsg(msg tea.MouseMsg) (conversionModel, tea.Cmd) {
	if !cm.finished {
		return cm, nil
	}

	newList, cmd := cm.resultsList.Update(msg)
	cm.resultsList = newList
	cm.resetOnSelectionChange()

	if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease && cm.resultsList.FilterState() != list.Filtering {
		cm.toggleSelectedDiff()
	}

	return cm, cmd
}

func (cm *conversionModel) resetOnSelectionChange() {
	if cm.resultsList.Index() == cm.lastSelected {
		return
	}

	cm.lastSelected = cm.resultsList.Index()
	cm.animOffset = 0
	cm.delegate.offset = 0
	cm.resultsList.SetDelegate(cm.delegate)
	cm.showDiff = false
	cm.selectedDiff = ""
	cm.selectedPath = ""
}

func (cm *conversionModel) toggleSelectedDiff() {
	result, ok := cm.resultsList.SelectedItem().(convertedFile)
	if !ok {
		return
	}

	body := strings.TrimSpace(result.diff)
	if body == "" {
		body = strings.TrimSpace(result.err)
	}

	if body == "" || (cm.showDiff && cm.selectedDiff == body) {
		cm.showDiff = false
		cm.selectedDiff = ""
		cm.selectedPath = ""

		return
	}

	cm.showDiff = true
	cm.selectedDiff = body
	cm.selectedPath = result.path
}

func (cm conversionModel) diffMaxLines() int {
	return min(max(cm.height/3, 6), 20)
}

func (cm conversionModel) diffBoxHeight() int {
	if !cm.showDiff || cm.selectedDiff == "" {
		return 0
	}

	lines := strings.Count(cm.selectedDiff, "\n") + 1

	return min(lines, cm.diffMaxLines()) + 3
}

func (cm conversionModel) renderDiffBox(accentColor lipgloss.Color, width int) string {
	if !cm.showDiff || cm.selectedDiff == "" {
		return ""
	}

	lines := strings.Split(cm.selectedDiff, "\n")
	maxLines := cm.diffMaxLines()
	truncated := false

	if len(lines) > maxLines {
		lines = lines[:maxLines-1]
		truncated = true
	}

	contentWidth := max(width-4, 10)

	bodyLines := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		bodyLines = append(bodyLines, renderDiffLine(line, contentWidth))
	}

	if truncated {
		bodyLines = append(bodyLines, "…")
	}

	headerText := "Diff"
	if cm.selectedPath != "" {
		headerText = "Diff • " + cm.selectedPath
	}

	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Render(truncateToWidth(headerText, contentWidth))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Margin(0, 1, 0, 0).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinVertical(lipgloss.Left, bodyLines...)))
}

func renderDiffLine(line string, width int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	switch {
	case strings.HasPrefix(line, "+++"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	case strings.HasPrefix(line, "---"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	case strings.HasPrefix(line, "@@"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	case strings.HasPrefix(line, "+"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case strings.HasPrefix(line, "-"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	case strings.TrimSpace(line) == "":
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}

	return style.Render(truncateToWidth(line, width))
}

func (cm conversionModel) handleWindowSize(msg tea.WindowSizeMsg) conversionModel {
	cm.width = msg.Width
	cm.height = msg.Height

	cm.progressBar.Width = max(cm.width-8, 20)

	return cm
}

func (cm conversionModel) handleTickMsg(_ tickMsg) (conversionModel, tea.Cmd) {
	if cm.finished && cm.resultsList.FilterState() != list.Filtering {
		cm.animOffset++
		cm.delegate.offset = cm.animOffset
		cm.resultsList.SetDelegate(cm.delegate)
	}

	return cm, tea.Tick(time.Millisecond*150, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
