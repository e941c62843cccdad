package model

// Status classifies the outcome of converting one source.
type Status string

const (
	// StatusConverted means at least one fixer changed the code.
	StatusConverted Status = "converted"
	// StatusUnchanged means the code already conformed, or the target was not 3.x.
	StatusUnchanged Status = "unchanged"
	// StatusSyntaxError means the source could not be lexed or parsed.
	StatusSyntaxError Status = "syntax-error"
	// StatusEngineError means the fixers did not converge or the run was cancelled.
	StatusEngineError Status = "engine-error"
)

// Failed reports whether the status carries no usable code.
func (s Status) Failed() bool {
	return s == StatusSyntaxError || s == StatusEngineError
}

// ConversionResult is the answer to a single convert request: either the
// rewritten code or an error message.
type ConversionResult struct {
	OK    bool   `json:"ok" msgpack:"ok"`
	Code  string `json:"code,omitempty" msgpack:"code,omitempty"`
	Error string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Change records one replacement made by a fixer.
type Change struct {
	Fixer  string `msgpack:"fixer" yaml:"fixer"`
	Pass   int    `msgpack:"pass" yaml:"pass"`
	Line   int    `msgpack:"line" yaml:"line"`
	Column int    `msgpack:"column" yaml:"column"`
	Before string `msgpack:"before" yaml:"before"`
	After  string `msgpack:"after" yaml:"after"`
}
