package domain

import (
	"context"

	m "github.com/mouse-blink/py3ify/internal/model"
)

// SyntaxErrorMessage is the error text callers get for unparsable input.
const SyntaxErrorMessage = "Syntax error in the input code."

// Converter is the engine boundary: one source in, one result out.
type Converter interface {
	Convert(ctx context.Context, source, version string) m.ConversionResult
}

type converter struct {
	driver *Driver
}

// NewConverter wraps a driver.
func NewConverter(driver *Driver) Converter {
	return &converter{driver: driver}
}

// Convert runs the driver and folds its outcome into a ConversionResult.
// Engine errors keep their own message so they are not mistaken for bad
// input.
func (c *converter) Convert(ctx context.Context, source, version string) m.ConversionResult {
	out := c.driver.Run(ctx, source, version)

	switch out.Status {
	case m.StatusSyntaxError:
		return m.ConversionResult{Error: SyntaxErrorMessage}
	case m.StatusEngineError:
		return m.ConversionResult{Error: out.Err.Error()}
	}

	return m.ConversionResult{OK: true, Code: out.Code}
}
