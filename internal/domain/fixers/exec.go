package fixers

import (
	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// Exec turns the exec statement into a call of the exec function.
//
//	exec code          -> exec(code)
//	exec code in g, l  -> exec(code, g, l)
func Exec() fixer.Fixer {
	return fixer.Fixer{
		Name: "exec",
		Pattern: `exec_stmt< 'exec' a=any 'in' b=any [',' c=any] >` +
			` | exec_stmt< 'exec' (not atom< '(' [any] ')' >) a=any >`,
		Transform: transformExec,
	}
}

func transformExec(m pattern.Match) *pytree.Node {
	prefix := m.Node.LeadingPrefix()

	args := []*pytree.Node{m.Bindings.Node("a").Detach()}
	args[0].SetLeadingPrefix("")

	for _, name := range []string{"b", "c"} {
		if n := m.Bindings.Node(name); n != nil {
			n.Detach()
			n.SetLeadingPrefix(" ")
			args = append(args, n)
		}
	}

	return newCall(newName("exec", prefix), commaJoin(args))
}
