package fixers

import (
	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/lexer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// Raise rewrites the three-argument raise statement.
//
//	raise E, V       -> raise E(V)
//	raise E, (a, b)  -> raise E(a, b)
//	raise E, V, T    -> raise E(V).with_traceback(T)
//
// String exceptions and parenthesized exception expressions are left alone.
func Raise() fixer.Fixer {
	return fixer.Fixer{
		Name:      "raise",
		Pattern:   `raise_stmt< 'raise' exc=any ',' val=any [',' tb=any] >`,
		Transform: transformRaise,
	}
}

func transformRaise(m pattern.Match) *pytree.Node {
	exc := m.Bindings.Node("exc")
	if exc.Kind == lexer.KindString || exc.Symbol == "atom" {
		return nil
	}

	val := m.Bindings.Node("val")
	tb := m.Bindings.Node("tb")

	var args []*pytree.Node

	switch elems, ok := tupleElements(val); {
	case ok:
		args = detachAll(elems)
	case isLeaf(val, "None"):
	default:
		args = []*pytree.Node{val.Detach()}
	}

	if len(args) > 0 {
		args[0].SetLeadingPrefix("")
	}

	prefix := m.Node.LeadingPrefix()

	exc.Detach()
	exc.SetLeadingPrefix("")

	call := pytree.NewNode("power")

	switch {
	case exc.IsLeaf():
		call.AppendChild(exc)
	case exc.Symbol == "power" && isPrimary(exc):
		for _, c := range exc.Children() {
			call.AppendChild(c.Detach())
		}
	default:
		call.AppendChild(parenthesize(exc))
	}

	call.AppendChild(newCallTrailer(commaJoin(args)))

	if tb != nil {
		tb.Detach()
		tb.SetLeadingPrefix("")
		call.AppendChild(newAttrTrailer("with_traceback"))
		call.AppendChild(newCallTrailer([]*pytree.Node{tb}))
	}

	call.SetLeadingPrefix(" ")

	return pytree.NewNode("raise_stmt", newKeyword("raise", prefix), call)
}
