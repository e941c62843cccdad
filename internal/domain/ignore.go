package domain

import (
	"strings"

	"github.com/mouse-blink/py3ify/internal/lexer"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

const ignoreDirective = "py3ify:ignore"

type ignoreRule struct {
	all   bool
	names map[string]struct{}
}

func (r ignoreRule) ignores(fixer string) bool {
	if r.all {
		return true
	}

	if len(r.names) == 0 {
		return false
	}

	_, ok := r.names[strings.ToLower(fixer)]

	return ok
}

func mergeIgnoreRule(dst *ignoreRule, src ignoreRule) {
	if src.all {
		dst.all = true
		dst.names = nil

		return
	}

	if dst.all || len(src.names) == 0 {
		return
	}

	if dst.names == nil {
		dst.names = make(map[string]struct{}, len(src.names))
	}

	for name := range src.names {
		dst.names[name] = struct{}{}
	}
}

// parseIgnoreDirective reads "# py3ify:ignore" or "# py3ify:ignore print, dict".
func parseIgnoreDirective(commentText string) (ignoreRule, bool) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(commentText), "#"))

	if !strings.HasPrefix(s, ignoreDirective) {
		return ignoreRule{}, false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(s, ignoreDirective))
	if rest == "" {
		return ignoreRule{all: true}, true
	}

	parts := strings.Split(rest, ",")
	rule := ignoreRule{names: make(map[string]struct{}, len(parts))}

	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}

		rule.names[name] = struct{}{}
	}

	if len(rule.names) == 0 {
		rule.all = true
		rule.names = nil
	}

	return rule, true
}

// ignoreIndex holds the directives of one source. A directive before the
// first line of code covers the file. A directive trailing code covers its
// line, one on a line of its own covers the next line. When the covered
// line opens a def or class the whole block is covered.
type ignoreIndex struct {
	file ignoreRule
	line map[int]ignoreRule
}

func buildIgnoreIndex(source string, opts ...lexer.Option) ignoreIndex {
	idx := ignoreIndex{line: make(map[int]ignoreRule)}

	tokens, err := lexer.All(source, opts...)
	if err != nil {
		return idx
	}

	lineStarts := computeLineStarts(source)
	seenCode := false

	for _, tok := range tokens {
		if tok.Kind != lexer.KindComment {
			if isCode(tok.Kind) {
				seenCode = true
			}

			continue
		}

		r, ok := parseIgnoreDirective(tok.Value)
		if !ok {
			continue
		}

		if !seenCode {
			mergeIgnoreRule(&idx.file, r)
			continue
		}

		target := tok.Start.Line
		if isLeadingComment(tok.Start, lineStarts, source) {
			target++
		}

		current := idx.line[target]
		mergeIgnoreRule(&current, r)
		idx.line[target] = current
	}

	return idx
}

// ignores reports whether fixer must leave node alone.
func (idx ignoreIndex) ignores(fixer string, node *pytree.Node) bool {
	if idx.file.ignores(fixer) {
		return true
	}

	if len(idx.line) == 0 {
		return false
	}

	if idx.line[node.Position().Line].ignores(fixer) {
		return true
	}

	for a := range node.Ancestors() {
		switch a.Symbol {
		case "funcdef", "classdef", "decorated":
			if idx.line[a.Position().Line].ignores(fixer) {
				return true
			}
		}
	}

	return false
}

func isCode(k lexer.Kind) bool {
	switch k {
	case lexer.KindName, lexer.KindKeyword, lexer.KindOp, lexer.KindNumber, lexer.KindString:
		return true
	}

	return false
}

func computeLineStarts(content string) []int {
	starts := []int{0}

	for i := range len(content) {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}

	return starts
}

func isLeadingComment(pos lexer.Position, lineStarts []int, content string) bool {
	if pos.Line <= 0 || pos.Line > len(lineStarts) {
		return false
	}

	start := lineStarts[pos.Line-1]
	if pos.Offset < start || pos.Offset > len(content) {
		return false
	}

	return strings.TrimSpace(content[start:pos.Offset]) == ""
}
