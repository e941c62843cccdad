// Package controller provides output adapters for displaying conversion results.
package controller

import (
	m "github.com/mouse-blink/py3ify/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeConvert StartMode = iota
	ModeList
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode      StartMode
	showDiffs bool
}

// WithConvertMode sets the UI to conversion progress mode.
func WithConvertMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeConvert
	}
}

// WithListMode sets the UI to source listing mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithViewMode sets the UI to stored report browsing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

// WithDiffs prints a unified diff for every converted file.
func WithDiffs(show bool) StartOption {
	return func(c *StartConfig) {
		c.showDiffs = show
	}
}

func newStartConfig(options []StartOption) StartConfig {
	var cfg StartConfig
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines the interface for displaying conversion progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
// Display methods may be called from several workers at once.
type UI interface {
	Start(options ...StartOption) error
	Close()
	Wait() // Wait for UI to finish (user closes it)
	DisplaySources(sources []m.SourceStatus) error
	DisplayConversionStart(total int, workers int)
	DisplayStartingFile(path m.Path, worker int)
	DisplayFileResult(result m.FileResult, worker int)
	DisplaySummary(summary m.Summary)
	DisplayReports(reports []m.Report) error
}
