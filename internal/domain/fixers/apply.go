package fixers

import (
	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// Apply replaces the apply builtin with star-argument calls.
//
//	apply(f, args)      -> f(*args)
//	apply(f, args, kw)  -> f(*args, **kw)
func Apply() fixer.Fixer {
	return fixer.Fixer{
		Name: "apply",
		Pattern: `power< 'apply' trailer< '(' arglist< (not argument< NAME '=' any >) func=any ','` +
			` (not argument< NAME '=' any >) args=any [',' (not argument< NAME '=' any >) kwds=any] [','] > ')' > >`,
		Transform: transformApply,
	}
}

func transformApply(m pattern.Match) *pytree.Node {
	fn := m.Bindings.Node("func")
	args := m.Bindings.Node("args")
	kwds := m.Bindings.Node("kwds")

	for _, n := range []*pytree.Node{fn, args, kwds} {
		if n != nil && n.Symbol == "argument" {
			return nil
		}
	}

	prefix := m.Node.LeadingPrefix()

	fn.Detach()
	if !isPrimary(fn) {
		fn = parenthesize(fn)
	}

	fn.SetLeadingPrefix(prefix)

	args.Detach()
	args.SetLeadingPrefix("")

	callArgs := []*pytree.Node{pytree.NewNode("argument", newOp("*", ""), args)}

	if kwds != nil {
		kwds.Detach()
		kwds.SetLeadingPrefix("")
		callArgs = append(callArgs, pytree.NewNode("argument", newOp("**", " "), kwds))
	}

	trailer := newCallTrailer(commaJoin(callArgs))

	if fn.Symbol == "power" {
		fn.AppendChild(trailer)
		return fn
	}

	return pytree.NewNode("power", fn, trailer)
}
