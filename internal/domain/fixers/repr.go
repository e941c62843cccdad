package fixers

import (
	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// Repr replaces backquotes with a call of repr.
func Repr() fixer.Fixer {
	return fixer.Fixer{
		Name:      "repr",
		Pattern:   "atom< '`' x=any '`' >",
		Transform: transformRepr,
	}
}

func transformRepr(m pattern.Match) *pytree.Node {
	prefix := m.Node.LeadingPrefix()

	x := m.Bindings.Node("x").Detach()
	x.SetLeadingPrefix("")

	if x.Symbol == "testlist1" {
		x = parenthesize(x)
	}

	return newCall(newName("repr", prefix), []*pytree.Node{x})
}
