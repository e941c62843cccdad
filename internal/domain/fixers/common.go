// Package fixers provides the Python 2 to 3 rewrite rules.
package fixers

import (
	"slices"

	"github.com/mouse-blink/py3ify/internal/lexer"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

func newName(value, prefix string) *pytree.Node {
	return pytree.NewLeaf(lexer.KindName, value, prefix)
}

func newKeyword(value, prefix string) *pytree.Node {
	return pytree.NewLeaf(lexer.KindKeyword, value, prefix)
}

func newOp(value, prefix string) *pytree.Node {
	return pytree.NewLeaf(lexer.KindOp, value, prefix)
}

func newString(value, prefix string) *pytree.Node {
	return pytree.NewLeaf(lexer.KindString, value, prefix)
}

func newComma() *pytree.Node {
	return newOp(",", "")
}

// newCall builds `fn(args)`. args already contains the separating commas.
func newCall(fn *pytree.Node, args []*pytree.Node) *pytree.Node {
	return pytree.NewNode("power", fn, newCallTrailer(args))
}

func newCallTrailer(args []*pytree.Node) *pytree.Node {
	trailer := pytree.NewNode("trailer", newOp("(", ""))

	switch len(args) {
	case 0:
	case 1:
		trailer.AppendChild(args[0])
	default:
		trailer.AppendChild(pytree.NewNode("arglist", args...))
	}

	trailer.AppendChild(newOp(")", ""))

	return trailer
}

func newAttrTrailer(name string) *pytree.Node {
	return pytree.NewNode("trailer", newOp(".", ""), newName(name, ""))
}

// newKeywordArg builds ` name=value` for appending after a comma.
func newKeywordArg(name string, value *pytree.Node) *pytree.Node {
	value.SetLeadingPrefix("")
	return pytree.NewNode("argument", newName(name, " "), newOp("=", ""), value)
}

func parenthesize(n *pytree.Node) *pytree.Node {
	prefix := n.LeadingPrefix()
	n.SetLeadingPrefix("")

	return pytree.NewNode("atom", newOp("(", prefix), n, newOp(")", ""))
}

// commaJoin interleaves fresh commas between nodes, keeping each node's own
// prefix.
func commaJoin(nodes []*pytree.Node) []*pytree.Node {
	var out []*pytree.Node
	for i, n := range nodes {
		if i > 0 {
			out = append(out, newComma())
		}
		out = append(out, n)
	}

	return out
}

func detachAll(nodes []*pytree.Node) []*pytree.Node {
	for _, n := range nodes {
		n.Detach()
	}

	return nodes
}

func isLeaf(n *pytree.Node, value string) bool {
	return n != nil && n.IsLeaf() && n.Value == value
}

func isParenthesized(n *pytree.Node) bool {
	return n != nil && n.Symbol == "atom" && isLeaf(n.Child(0), "(") && isLeaf(n.Child(n.NumChildren()-1), ")")
}

// isPrimary reports whether n can take a trailer without parentheses.
func isPrimary(n *pytree.Node) bool {
	switch {
	case n.IsLeaf(), n.Symbol == "atom":
		return true
	case n.Symbol == "power":
		return !slices.ContainsFunc(n.Children(), func(c *pytree.Node) bool { return isLeaf(c, "**") })
	}

	return false
}

// tupleElements returns the elements of a parenthesized tuple display, or
// nil when n is not one.
func tupleElements(n *pytree.Node) ([]*pytree.Node, bool) {
	if !isParenthesized(n) {
		return nil, false
	}

	if n.NumChildren() == 2 {
		return nil, true
	}

	inner := n.Child(1)
	if inner.Symbol != "testlist_comp" || !slices.ContainsFunc(inner.Children(), func(c *pytree.Node) bool { return isLeaf(c, ",") }) {
		return nil, false
	}

	var elems []*pytree.Node
	for _, c := range inner.Children() {
		if !isLeaf(c, ",") {
			elems = append(elems, c)
		}
	}

	return elems, true
}

// isProbablyBuiltin reports whether a NAME leaf refers to a global name
// rather than an attribute, a definition, a parameter, an import or an
// assignment target.
func isProbablyBuiltin(leaf *pytree.Node) bool {
	if !leaf.IsLeaf() || leaf.Kind != lexer.KindName {
		return false
	}

	if isLeaf(leaf.PrevSibling(), ".") {
		return false
	}

	parent := leaf.Parent()
	if parent == nil {
		return true
	}

	next := leaf.NextSibling()

	switch parent.Symbol {
	case "funcdef", "classdef":
		return leaf.Index() != 1
	case "import_name", "import_from", "import_as_name", "import_as_names",
		"dotted_name", "dotted_as_name", "dotted_as_names", "global_stmt":
		return false
	case "parameters", "varargslist", "fpdef", "fplist":
		return false
	case "vararg":
		return isLeaf(leaf.PrevSibling(), "=")
	case "lambdef", "old_lambdef":
		return !isLeaf(next, ":") && !isLeaf(next, ",")
	case "argument":
		return leaf.Index() != 0 || !isLeaf(next, "=")
	case "expr_stmt":
		return !isLeaf(next, "=") && !isAugAssign(next)
	}

	return true
}

func isAugAssign(n *pytree.Node) bool {
	if n == nil || !n.IsLeaf() {
		return false
	}

	switch n.Value {
	case "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=", "**=", "//=":
		return true
	}

	return false
}

// consumingCalls fully iterate their single argument, so wrapping it in
// list() or iter() changes nothing.
var consumingCalls = []string{
	"sorted", "list", "set", "frozenset", "any", "all", "tuple", "sum", "min", "max", "enumerate", "iter",
}

// inIterationContext reports whether n is the sole argument of a consuming
// call or the iterable of a for loop or comprehension.
func inIterationContext(n *pytree.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}

	if parent.Symbol == "trailer" && parent.NumChildren() == 3 && isLeaf(parent.Child(0), "(") {
		call := parent.Parent()
		if call != nil && call.Symbol == "power" && call.NumChildren() >= 2 && parent.Index() == 1 {
			fn := call.Child(0)
			return fn.IsLeaf() && fn.Kind == lexer.KindName && slices.Contains(consumingCalls, fn.Value)
		}

		return false
	}

	switch parent.Symbol {
	case "for_stmt", "comp_for", "list_for":
		return isLeaf(n.PrevSibling(), "in")
	}

	return false
}
