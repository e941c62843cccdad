// Package model defines the data structures shared by the conversion engine,
// the adapters and the UI.
package model

// Path represents a file system path.
type Path string

// Source is a Python file picked up for conversion.
type Source struct {
	Origin Path
	// Hash is the hex SHA-256 of Content.
	Hash    string
	Content []byte
}

// SourceStatus tells whether a discovered source has an up to date stored
// report.
type SourceStatus struct {
	Source Source
	Cached bool
}
