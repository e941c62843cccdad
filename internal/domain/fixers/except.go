package fixers

import (
	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/lexer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// Except rewrites `except E, e:` as `except E as e:`. Targets other than a
// plain name (tuples, attributes, subscripts) are left for a human.
func Except() fixer.Fixer {
	return fixer.Fixer{
		Name:      "except",
		Pattern:   `except_clause< 'except' exc=any comma=',' target=any >`,
		Transform: transformExcept,
	}
}

func transformExcept(m pattern.Match) *pytree.Node {
	target := m.Bindings.Node("target")
	if !target.IsLeaf() || target.Kind != lexer.KindName {
		return nil
	}

	m.Bindings.Node("comma").Replace(newKeyword("as", " "))

	if target.Prefix == "" {
		target.Prefix = " "
	}

	return m.Node
}
