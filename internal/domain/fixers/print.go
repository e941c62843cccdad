package fixers

import (
	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/lexer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// Print turns the print statement into a call of the print function.
//
//	print 'a', b       -> print('a', b)
//	print 'a',         -> print('a', end=' ')
//	print >>f, x       -> print(x, file=f)
//	print              -> print()
//
// A statement whose only argument is already parenthesized is left alone, so
// print('a', 'b') and converted output stay as they are.
func Print() fixer.Fixer {
	return fixer.Fixer{
		Name:      "print",
		Pattern:   `print_stmt< 'print' args=any* > | bare='print'`,
		Transform: transformPrint,
	}
}

func transformPrint(m pattern.Match) *pytree.Node {
	if bare := m.Bindings.Node("bare"); bare != nil {
		if bare.Kind != lexer.KindKeyword || bare.Parent() == nil || bare.Parent().Symbol == "print_stmt" {
			return nil
		}

		return newCall(newName("print", bare.Prefix), nil)
	}

	args := m.Bindings.Nodes("args")
	if len(args) == 1 && isParenthesized(args[0]) {
		return nil
	}

	prefix := m.Node.LeadingPrefix()

	var file *pytree.Node
	if len(args) >= 2 && isLeaf(args[0], ">>") {
		file = args[1].Detach()
		args = args[2:]

		if len(args) > 0 && isLeaf(args[0], ",") {
			args = args[1:]
		}
	}

	trailingComma := len(args) > 0 && isLeaf(args[len(args)-1], ",")
	if trailingComma {
		args = args[:len(args)-1]
	}

	callArgs := detachAll(args)
	if len(callArgs) > 0 {
		callArgs[0].SetLeadingPrefix("")
	}

	if trailingComma {
		callArgs = appendKeyword(callArgs, newKeywordArg("end", newString("' '", "")))
	}

	if file != nil {
		callArgs = appendKeyword(callArgs, newKeywordArg("file", file))
	}

	return newCall(newName("print", prefix), callArgs)
}

func appendKeyword(args []*pytree.Node, kw *pytree.Node) []*pytree.Node {
	if len(args) == 0 {
		kw.SetLeadingPrefix("")
		return []*pytree.Node{kw}
	}

	return append(args, newComma(), kw)
}
