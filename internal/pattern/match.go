package pattern

import (
	"iter"

	"github.com/mouse-blink/py3ify/internal/lexer"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// cont receives the nodes left unconsumed and the bindings so far. Matchers
// backtrack by returning false from it.
type cont func(rest []*pytree.Node, b Bindings) bool

type matcher interface {
	match(nodes []*pytree.Node, b Bindings, k cont) bool
}

type anyNode struct{}

func (anyNode) match(nodes []*pytree.Node, b Bindings, k cont) bool {
	return len(nodes) > 0 && k(nodes[1:], b)
}

type leafValue string

func (m leafValue) match(nodes []*pytree.Node, b Bindings, k cont) bool {
	return len(nodes) > 0 && nodes[0].IsLeaf() && nodes[0].Value == string(m) && k(nodes[1:], b)
}

type leafKind lexer.Kind

func (m leafKind) match(nodes []*pytree.Node, b Bindings, k cont) bool {
	return len(nodes) > 0 && nodes[0].IsLeaf() && nodes[0].Kind == lexer.Kind(m) && k(nodes[1:], b)
}

type interior struct {
	symbol   string
	children matcher
}

func (m interior) match(nodes []*pytree.Node, b Bindings, k cont) bool {
	if len(nodes) == 0 || nodes[0].Symbol != m.symbol {
		return false
	}

	if m.children == nil {
		return k(nodes[1:], b)
	}

	return m.children.match(nodes[0].Children(), b, func(rest []*pytree.Node, inner Bindings) bool {
		return len(rest) == 0 && k(nodes[1:], inner)
	})
}

type capture struct {
	name  string
	inner matcher
}

func (m capture) match(nodes []*pytree.Node, b Bindings, k cont) bool {
	return m.inner.match(nodes, b, func(rest []*pytree.Node, inner Bindings) bool {
		return k(rest, inner.with(m.name, nodes[:len(nodes)-len(rest)]))
	})
}

type sequence []matcher

func (m sequence) match(nodes []*pytree.Node, b Bindings, k cont) bool {
	if len(m) == 0 {
		return k(nodes, b)
	}

	return m[0].match(nodes, b, func(rest []*pytree.Node, inner Bindings) bool {
		return m[1:].match(rest, inner, k)
	})
}

type alternatives []matcher

func (m alternatives) match(nodes []*pytree.Node, b Bindings, k cont) bool {
	for _, alt := range m {
		if alt.match(nodes, b, k) {
			return true
		}
	}

	return false
}

// repeat is greedy: it tries the longest run first and gives nodes back
// when the continuation fails.
type repeat struct {
	inner matcher
	min   int
	max   int
}

func (m repeat) match(nodes []*pytree.Node, b Bindings, k cont) bool {
	return m.step(nodes, b, 0, k)
}

func (m repeat) step(nodes []*pytree.Node, b Bindings, count int, k cont) bool {
	if m.max < 0 || count < m.max {
		more := m.inner.match(nodes, b, func(rest []*pytree.Node, inner Bindings) bool {
			return len(rest) < len(nodes) && m.step(rest, inner, count+1, k)
		})
		if more {
			return true
		}
	}

	return count >= m.min && k(nodes, b)
}

type negation struct {
	inner matcher
}

func (m negation) match(nodes []*pytree.Node, b Bindings, k cont) bool {
	matched := m.inner.match(nodes, b, func([]*pytree.Node, Bindings) bool { return true })

	return !matched && k(nodes, b)
}

// Match is one node found by Find together with its captures.
type Match struct {
	Node     *pytree.Node
	Bindings Bindings
}

// Find walks root in pre-order and yields every node matching p. The
// consumer may replace the yielded node while handling it; the walk then
// skips the replacement and continues with the next sibling.
func Find(p *Pattern, root *pytree.Node) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		find(p, root, yield)
	}
}

func find(p *Pattern, n *pytree.Node, yield func(Match) bool) bool {
	if b, ok := p.Match(n); ok {
		parent := n.Parent()

		if !yield(Match{Node: n, Bindings: b}) {
			return false
		}

		if n.Parent() != parent {
			return true
		}
	}

	for i := 0; i < n.NumChildren(); i++ {
		if !find(p, n.Child(i), yield) {
			return false
		}
	}

	return true
}
