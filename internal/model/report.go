package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Report is the result of converting one source file.
type Report struct {
	Path    Path     `msgpack:"path" yaml:"path"`
	Hash    string   `msgpack:"hash" yaml:"hash"`
	Target  string   `msgpack:"target" yaml:"target"`
	Fixers  []string `msgpack:"fixers" yaml:"fixers,flow"`
	Status  Status   `msgpack:"status" yaml:"status"`
	Code    string   `msgpack:"code" yaml:"-"`
	Error   string   `msgpack:"error,omitempty" yaml:"error,omitempty"`
	Passes  int      `msgpack:"passes" yaml:"passes"`
	Changes []Change `msgpack:"changes,omitempty" yaml:"changes,omitempty"`
	// Cached is set when the report was reused instead of recomputed.
	Cached bool `msgpack:"-" yaml:"-"`
}

// Key identifies the inputs a report was computed from: the file, its
// content hash, the target and the fixer set. Two runs with equal keys
// produce equal reports.
func (r Report) Key() string {
	return CacheKey(r.Path, r.Hash, r.Target, r.Fixers)
}

// CacheKey returns the 16 hex character digest used to name and look up
// stored reports.
func CacheKey(path Path, hash, target string, fixers []string) string {
	h := sha256.New()
	for _, part := range []string{string(path), hash, target, strings.Join(fixers, ",")} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))[:16]
}

// FileResult pairs a source with its report.
type FileResult struct {
	Source Source
	Report Report
}

// Summary counts reports by status.
type Summary struct {
	Converted    int `yaml:"converted"`
	Unchanged    int `yaml:"unchanged"`
	SyntaxErrors int `yaml:"syntax_errors"`
	EngineErrors int `yaml:"engine_errors"`
	Changes      int `yaml:"changes"`
}

// Total is the number of files summarized.
func (s Summary) Total() int {
	return s.Converted + s.Unchanged + s.SyntaxErrors + s.EngineErrors
}

// Summarize tallies reports.
func Summarize(reports []Report) Summary {
	var s Summary

	for _, r := range reports {
		switch r.Status {
		case StatusConverted:
			s.Converted++
		case StatusUnchanged:
			s.Unchanged++
		case StatusSyntaxError:
			s.SyntaxErrors++
		case StatusEngineError:
			s.EngineErrors++
		}

		s.Changes += len(r.Changes)
	}

	return s
}
