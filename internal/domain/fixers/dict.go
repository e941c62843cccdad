package fixers

import (
	"strings"

	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// Dict adapts the dictionary view methods.
//
//	d.keys()       -> list(d.keys())
//	d.iteritems()  -> iter(d.items())
//	d.viewvalues() -> d.values()
//
// Where the result is consumed by iteration anyway, as in `for k in
// d.keys()`, keys, items and values stay unwrapped and the iter variants
// are only renamed.
func Dict() fixer.Fixer {
	return fixer.Fixer{
		Name: "dict",
		Pattern: `power< head=any+ trailer< '.' method=('keys' | 'items' | 'values'` +
			` | 'iterkeys' | 'iteritems' | 'itervalues' | 'viewkeys' | 'viewitems' | 'viewvalues') >` +
			` parens=trailer< '(' ')' > tail=any* >`,
		Transform: transformDict,
	}
}

func transformDict(m pattern.Match) *pytree.Node {
	method := m.Bindings.Node("method")
	name := method.Value
	tail := m.Bindings.Has("tail")

	isIter := strings.HasPrefix(name, "iter")
	isView := strings.HasPrefix(name, "view")
	base := strings.TrimPrefix(strings.TrimPrefix(name, "iter"), "view")

	if !tail && inIterationContext(m.Node) {
		if !isIter {
			return nil
		}

		method.Replace(newName(base, method.Prefix))

		return m.Node
	}

	if isView {
		method.Replace(newName(base, method.Prefix))
		return m.Node
	}

	prefix := m.Node.LeadingPrefix()

	head := detachAll(m.Bindings.Nodes("head"))
	dot := m.Bindings.Node("method").Parent().Detach()
	parens := m.Bindings.Node("parens").Detach()
	rest := detachAll(m.Bindings.Nodes("tail"))

	dot.Child(1).Replace(newName(base, ""))

	inner := pytree.NewNode("power", head...)
	inner.AppendChild(dot)
	inner.AppendChild(parens)
	inner.SetLeadingPrefix("")

	wrapper := "list"
	if isIter {
		wrapper = "iter"
	}

	result := newCall(newName(wrapper, prefix), []*pytree.Node{inner})
	for _, n := range rest {
		result.AppendChild(n)
	}

	return result
}
