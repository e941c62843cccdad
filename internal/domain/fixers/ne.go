package fixers

import (
	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// Ne spells the inequality operator the one way Python 3 accepts.
func Ne() fixer.Fixer {
	return fixer.Fixer{
		Name:      "ne",
		Pattern:   `'<>'`,
		Transform: transformNe,
	}
}

func transformNe(m pattern.Match) *pytree.Node {
	return newOp("!=", m.Node.Prefix)
}
