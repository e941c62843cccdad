package controller

import (
	"github.com/pmezard/go-difflib/difflib"

	m "github.com/mouse-blink/py3ify/internal/model"
)

const diffContext = 3

// unifiedDiff renders the change between the original and converted code.
// It returns "" when the two are equal.
func unifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path + " (converted)",
		Context:  diffContext,
	})
	if err != nil {
		return ""
	}

	return text
}

// resultDiff is the diff shown for a file result.
func resultDiff(result m.FileResult) string {
	if result.Report.Status != m.StatusConverted {
		return ""
	}

	return unifiedDiff(string(result.Source.Origin), string(result.Source.Content), result.Report.Code)
}
