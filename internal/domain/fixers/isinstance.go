package fixers

import (
	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/lexer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// IsInstance removes duplicate names from the type tuple of isinstance.
// Renaming fixers turn isinstance(x, (str, unicode)) into
// isinstance(x, (str, str)); this fixer then reduces it to isinstance(x, str).
func IsInstance() fixer.Fixer {
	return fixer.Fixer{
		Name:      "isinstance",
		Pattern:   `power< 'isinstance' trailer< '(' arglist< any ',' types=atom< '(' args=testlist_comp< any+ > ')' > > ')' > >`,
		DependsOn: []string{"unicode", "basestring", "long"},
		Transform: transformIsInstance,
	}
}

func transformIsInstance(m pattern.Match) *pytree.Node {
	types := m.Bindings.Node("types")
	list := m.Bindings.Node("args")
	children := list.Children()

	seen := make(map[string]bool)
	removed := false

	var kept []*pytree.Node

	for i := 0; i < len(children); i++ {
		c := children[i]

		if c.IsLeaf() && c.Kind == lexer.KindName {
			if seen[c.Value] {
				removed = true

				if i+1 < len(children) && isLeaf(children[i+1], ",") {
					i++
				}

				continue
			}

			seen[c.Value] = true
		}

		kept = append(kept, c)
	}

	if !removed {
		return nil
	}

	if len(kept) > 0 && isLeaf(kept[len(kept)-1], ",") {
		kept = kept[:len(kept)-1]
	}

	for list.NumChildren() > 0 {
		list.RemoveChild(0)
	}

	if len(kept) == 1 {
		kept[0].SetLeadingPrefix(types.LeadingPrefix())
		types.Replace(kept[0])

		return m.Node
	}

	for _, c := range kept {
		list.AppendChild(c)
	}

	return m.Node
}
