package fixers

import (
	"slices"

	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

const hasKeyCall = `power< before=any+ trailer< '.' 'has_key' > trailer< '(' not arglist arg=any ')' > after=any* >`

// HasKey rewrites dict.has_key(k) as a membership test.
//
//	d.has_key(k)      -> k in d
//	not d.has_key(k)  -> k not in d
func HasKey() fixer.Fixer {
	return fixer.Fixer{
		Name:      "has_key",
		Pattern:   `not_test< 'not' ` + hasKeyCall + ` > | ` + hasKeyCall,
		Transform: transformHasKey,
	}
}

// looseSymbols bind weaker than `in` and need parentheses as its operand.
var looseSymbols = []string{"test", "or_test", "and_test", "not_test", "comparison", "lambdef", "old_lambdef"}

// tightSymbols bind tighter than `in`; a comparison inside them needs
// parentheses.
var tightSymbols = []string{
	"comparison", "expr", "xor_expr", "and_expr", "shift_expr", "arith_expr", "term", "factor", "power",
}

func transformHasKey(m pattern.Match) *pytree.Node {
	arg := m.Bindings.Node("arg")
	if arg.Symbol == "argument" {
		return nil
	}

	negated := m.Node.Symbol == "not_test"
	if negated && m.Bindings.Has("after") {
		return nil
	}

	prefix := m.Node.LeadingPrefix()

	before := detachAll(m.Bindings.Nodes("before"))
	after := detachAll(m.Bindings.Nodes("after"))

	var obj *pytree.Node
	if len(before) == 1 {
		obj = before[0]
	} else {
		obj = pytree.NewNode("power", before...)
	}

	obj.SetLeadingPrefix(" ")

	arg.Detach()
	if slices.Contains(looseSymbols, arg.Symbol) {
		arg = parenthesize(arg)
	}

	arg.SetLeadingPrefix("")

	var op *pytree.Node
	if negated {
		op = pytree.NewNode("comp_op", newKeyword("not", " "), newKeyword("in", " "))
	} else {
		op = newKeyword("in", " ")
	}

	result := pytree.NewNode("comparison", arg, op, obj)

	if len(after) > 0 {
		result = pytree.NewNode("power", parenthesize(result))
		for _, n := range after {
			result.AppendChild(n)
		}
	} else if parent := m.Node.Parent(); parent != nil && slices.Contains(tightSymbols, parent.Symbol) {
		result = parenthesize(result)
	}

	result.SetLeadingPrefix(prefix)

	return result
}
