package controller

import (
	"time"

	m "github.com/mouse-blink/py3ify/internal/model"
)

type tickMsg time.Time

// Message types.
type sourcesMsg struct {
	sources []m.SourceStatus
}

type reportsMsg struct {
	reports []m.Report
}

type conversionStartMsg struct {
	total   int
	workers int
}

type startFileMsg struct {
	worker int
	path   string
}

type fileResultMsg struct {
	worker  int
	path    string
	status  m.Status
	cached  bool
	changes int
	err     string
	diff    string
}

type summaryMsg struct {
	summary m.Summary
}

// List item types.
type fileItem struct {
	path   string
	status string
	count  int
	detail string
}

func (f fileItem) FilterValue() string {
	return f.path + " " + f.status
}
