package controller

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/mouse-blink/py3ify/internal/model"
)

var statusColors = map[string]lipgloss.Color{
	string(m.StatusConverted):   lipgloss.Color("2"), // Green
	string(m.StatusUnchanged):   lipgloss.Color("8"), // Gray
	string(m.StatusSyntaxError): lipgloss.Color("1"), // Red
	string(m.StatusEngineError): lipgloss.Color("1"), // Red
	"cached":                    lipgloss.Color("8"),
	"stale":                     lipgloss.Color("11"), // Yellow
}

func statusStyle(status string) lipgloss.Style {
	c, ok := statusColors[status]
	if !ok {
		c = lipgloss.Color("8")
	}

	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// Simple delegate for file list items.
type fileDelegate struct {
	offset int
}

func (d fileDelegate) Height() int  { return 1 }
func (d fileDelegate) Spacing() int { return 0 }
func (d fileDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d fileDelegate) Render(w io.Writer, lm list.Model, index int, item list.Item) {
	file, ok := item.(fileItem)
	if !ok {
		return
	}

	isSelected := index == lm.Index()

	width := lm.Width() - 22 // status (14) + count (6) + spacing (2)

	var (
		pathStyle, countStyle, stStyle lipgloss.Style
		displayPath                    string
	)

	if isSelected {
		selected := lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true)
		pathStyle = selected
		stStyle = selected.Width(14)
		countStyle = selected.Width(6).Align(lipgloss.Right)

		displayPath = animateScroll(file.path, width, d.offset)
	} else {
		pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		stStyle = statusStyle(file.status).Width(14)
		countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true).
			Width(6).
			Align(lipgloss.Right)

		displayPath = truncateToWidth(file.path, width)
	}

	line := fmt.Sprintf("%s%s  %s",
		stStyle.Render(file.status),
		countStyle.Render(fmt.Sprintf("%d", file.count)),
		pathStyle.Render(displayPath),
	)
	_, _ = fmt.Fprint(w, line)
}

func animateScroll(text string, width int, offset int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(text) <= width {
		return text
	}

	gap := "   "

	// Initial pause before scrolling starts (in ticks)
	pause := 5

	if offset < pause {
		return truncateToWidth(text, width)
	}

	runes := []rune(text + gap)
	n := len(runes)
	start := (offset - pause) % n

	res := make([]rune, 0, width)
	for i := range width {
		res = append(res, runes[(start+i)%n])
	}

	return string(res)
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(text) <= width {
		return text
	}

	const ellipsis = "…"

	maxWidth := width - lipgloss.Width(ellipsis)
	if maxWidth <= 0 {
		return ellipsis
	}

	currentWidth := 0

	result := make([]rune, 0, len(text))
	for _, r := range text {
		rWidth := lipgloss.Width(string(r))
		if currentWidth+rWidth > maxWidth {
			break
		}

		result = append(result, r)
		currentWidth += rWidth
	}

	return string(result) + ellipsis
}

// listModel browses discovered sources or stored reports.
type listModel struct {
	mode         StartMode
	width        int
	height       int
	fileList     list.Model
	delegate     fileDelegate
	summary      m.Summary
	stale        int
	rendered     bool
	animOffset   int
	lastSelected int
	showDetail   bool
}

func newListModel(mode StartMode) listModel {
	delegate := fileDelegate{}
	fileList := list.New([]list.Item{}, delegate, 80, 20)
	fileList.SetShowPagination(false)
	fileList.SetShowFilter(true)
	fileList.SetShowHelp(false)
	fileList.SetShowTitle(false)
	fileList.SetShowStatusBar(false)
	fileList.FilterInput.Placeholder = "Filter by path…"

	return listModel{
		mode:         mode,
		fileList:     fileList,
		delegate:     delegate,
		lastSelected: -1,
	}
}

func (lm listModel) Init() tea.Cmd {
	return tea.Tick(time.Second/2, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (lm listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		lm.width = msg.Width
		lm.height = msg.Height
		lm.fileList.SetWidth(lm.width)

	case tickMsg:
		if lm.fileList.FilterState() != list.Filtering && lm.rendered {
			lm.animOffset++
			lm.delegate.offset = lm.animOffset
			lm.fileList.SetDelegate(lm.delegate)
		}

		return lm, tea.Tick(time.Millisecond*150, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return lm, tea.Quit
		case "enter", " ":
			if lm.fileList.FilterState() != list.Filtering {
				lm.showDetail = !lm.showDetail
				return lm, nil
			}
		}

		var newList list.Model

		newList, cmd = lm.fileList.Update(msg)
		lm.fileList = newList

		if lm.fileList.Index() != lm.lastSelected {
			lm.lastSelected = lm.fileList.Index()
			lm.animOffset = 0
			lm.delegate.offset = 0
			lm.fileList.SetDelegate(lm.delegate)
			lm.showDetail = false
		}

		return lm, cmd

	case sourcesMsg:
		lm = lm.handleSources(msg)

	case reportsMsg:
		lm = lm.handleReports(msg)
	}

	return lm, cmd
}

func (lm listModel) handleSources(msg sourcesMsg) listModel {
	items := make([]list.Item, 0, len(msg.sources))
	lm.stale = 0

	for _, s := range msg.sources {
		status := "cached"
		if !s.Cached {
			status = "stale"
			lm.stale++
		}

		items = append(items, fileItem{path: string(s.Source.Origin), status: status})
	}

	return lm.setItems(items)
}

func (lm listModel) handleReports(msg reportsMsg) listModel {
	items := make([]list.Item, 0, len(msg.reports))

	for _, r := range msg.reports {
		items = append(items, fileItem{
			path:   string(r.Path),
			status: string(r.Status),
			count:  len(r.Changes),
			detail: reportDetail(r),
		})
	}

	lm.summary = m.Summarize(msg.reports)

	return lm.setItems(items)
}

func (lm listModel) setItems(items []list.Item) listModel {
	lm.fileList.SetItems(items)
	lm.rendered = true

	if len(items) > 0 && lm.lastSelected == -1 {
		lm.lastSelected = 0
	}

	return lm
}

func reportDetail(r m.Report) string {
	var b strings.Builder

	if r.Error != "" {
		b.WriteString(r.Error)
		b.WriteString("\n")
	}

	for _, c := range r.Changes {
		fmt.Fprintf(&b, "%d:%d %s: %s -> %s\n", c.Line, c.Column, c.Fixer, firstLine(c.Before), firstLine(c.After))
	}

	return b.String()
}

func (lm listModel) View() string {
	if !lm.rendered {
		return "Loading file list…\n"
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan

	var title, summary string

	if lm.mode == ModeView {
		title = titleStyle.Render("🐍 py3ify Reports")
		summary = summaryStyle.Render(fmt.Sprintf(
			"Files: %s   Converted: %s   Failed: %s   Changes: %s",
			accentStyle.Render(fmt.Sprintf("%d", lm.summary.Total())),
			accentStyle.Render(fmt.Sprintf("%d", lm.summary.Converted)),
			accentStyle.Render(fmt.Sprintf("%d", lm.summary.SyntaxErrors+lm.summary.EngineErrors)),
			accentStyle.Render(fmt.Sprintf("%d", lm.summary.Changes)),
		))
	} else {
		title = titleStyle.Render("🐍 py3ify Sources")
		summary = summaryStyle.Render(fmt.Sprintf(
			"Files: %s   Stale: %s",
			accentStyle.Render(fmt.Sprintf("%d", len(lm.fileList.Items()))),
			accentStyle.Render(fmt.Sprintf("%d", lm.stale)),
		))
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Width(lm.width)

	footer := footerStyle.Render("↑/k up • ↓/j down • g/G top/bottom • / filter • enter details • q quit")

	parts := []string{title, summary, lm.renderTable()}
	if detail := lm.renderDetail(); detail != "" {
		parts = append(parts, detail)
	}

	parts = append(parts, footer)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (lm listModel) renderTable() string {
	listHeight := lm.height - 9
	if listHeight < 5 {
		listHeight = 5
	}

	listWidth := lm.width - 6

	lm.fileList.SetHeight(listHeight)
	lm.fileList.SetWidth(listWidth)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("8")).
		Width(listWidth)

	headers := headerStyle.Render(fmt.Sprintf("%-14s%6s  %s", "Status", "Fixes", "File Path"))

	tableContainer := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Margin(0, 1).
		Padding(0, 1)

	return tableContainer.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			headers,
			lm.fileList.View(),
		),
	)
}

func (lm listModel) renderDetail() string {
	if !lm.showDetail {
		return ""
	}

	item, ok := lm.fileList.SelectedItem().(fileItem)
	if !ok || strings.TrimSpace(item.detail) == "" {
		return ""
	}

	width := lm.width - 6
	if width < 20 {
		width = 20
	}

	lines := strings.Split(strings.TrimSpace(item.detail), "\n")
	for i, line := range lines {
		lines[i] = truncateToWidth(line, width-4)
	}

	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Render(truncateToWidth("Changes • "+item.path, width-4))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Margin(0, 1).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(lines, "\n")))
}
