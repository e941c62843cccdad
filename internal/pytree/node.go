// Package pytree holds the concrete syntax tree produced by the parser.
//
// A Node is either a leaf, wrapping one token together with the trivia that
// preceded it, or an interior node labelled with a grammar symbol. Every node
// has at most one parent. Attaching a node that is already owned panics, so
// subtrees move between parents only through Detach, Replace and SetChild,
// which hand back the node that lost its slot.
package pytree

import (
	"iter"
	"slices"

	"github.com/mouse-blink/py3ify/internal/lexer"
)

// Node is a CST element. Leaves have an empty Symbol.
type Node struct {
	// Leaf fields.
	Kind   lexer.Kind
	Value  string
	Prefix string
	Pos    lexer.Position

	// Interior fields.
	Symbol string

	children []*Node
	parent   *Node
}

// NewLeaf creates a detached leaf.
func NewLeaf(kind lexer.Kind, value, prefix string) *Node {
	return &Node{Kind: kind, Value: value, Prefix: prefix}
}

// NewNode creates an interior node owning the given children. It panics if
// any child already has a parent.
func NewNode(symbol string, children ...*Node) *Node {
	n := &Node{Symbol: symbol}
	for _, c := range children {
		n.AppendChild(c)
	}

	return n
}

// IsLeaf reports whether n wraps a token.
func (n *Node) IsLeaf() bool {
	return n.Symbol == ""
}

// Type returns the grammar symbol of an interior node or the token kind name
// of a leaf.
func (n *Node) Type() string {
	if n.IsLeaf() {
		return n.Kind.String()
	}

	return n.Symbol
}

// Parent returns the owning node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// Child returns the i-th child, or nil when i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}

	return n.children[i]
}

// AppendChild attaches c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	n.adopt(c)
	n.children = append(n.children, c)
}

// InsertChild attaches c so that it becomes the i-th child of n.
func (n *Node) InsertChild(i int, c *Node) {
	n.adopt(c)
	n.children = slices.Insert(n.children, i, c)
}

// SetChild puts c into slot i and returns the detached previous occupant.
func (n *Node) SetChild(i int, c *Node) *Node {
	n.adopt(c)

	old := n.children[i]
	old.parent = nil
	n.children[i] = c

	return old
}

// RemoveChild detaches and returns the i-th child.
func (n *Node) RemoveChild(i int) *Node {
	old := n.children[i]
	old.parent = nil
	n.children = slices.Delete(n.children, i, i+1)

	return old
}

// Replace puts repl into the slot n occupies in its parent and returns n,
// now detached. It panics when n is a root.
func (n *Node) Replace(repl *Node) *Node {
	if n.parent == nil {
		panic("pytree: replace of a root node")
	}

	return n.parent.SetChild(n.Index(), repl)
}

// Detach removes n from its parent and returns it. Detaching a root is a
// no-op.
func (n *Node) Detach() *Node {
	if n.parent == nil {
		return n
	}

	return n.parent.RemoveChild(n.Index())
}

// Index returns the position of n among its siblings, or -1 for a root.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}

	return slices.Index(n.parent.children, n)
}

// NextSibling returns the following sibling or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}

	return n.parent.Child(n.Index() + 1)
}

// PrevSibling returns the preceding sibling or nil.
func (n *Node) PrevSibling() *Node {
	if n.parent == nil {
		return nil
	}

	return n.parent.Child(n.Index() - 1)
}

// Clone returns a detached deep copy of n.
func (n *Node) Clone() *Node {
	c := &Node{Kind: n.Kind, Value: n.Value, Prefix: n.Prefix, Pos: n.Pos, Symbol: n.Symbol}
	for _, child := range n.children {
		c.AppendChild(child.Clone())
	}

	return c
}

// FirstLeaf returns the leftmost leaf under n, or nil for an empty interior
// node.
func (n *Node) FirstLeaf() *Node {
	for n != nil && !n.IsLeaf() {
		n = n.Child(0)
	}

	return n
}

// LastLeaf returns the rightmost leaf under n.
func (n *Node) LastLeaf() *Node {
	for n != nil && !n.IsLeaf() {
		n = n.Child(len(n.children) - 1)
	}

	return n
}

// LeadingPrefix returns the trivia in front of the first leaf under n.
func (n *Node) LeadingPrefix() string {
	if leaf := n.FirstLeaf(); leaf != nil {
		return leaf.Prefix
	}

	return ""
}

// SetLeadingPrefix overwrites the trivia in front of the first leaf under n.
func (n *Node) SetLeadingPrefix(prefix string) {
	if leaf := n.FirstLeaf(); leaf != nil {
		leaf.Prefix = prefix
	}
}

// Position returns the source position of the first leaf under n.
func (n *Node) Position() lexer.Position {
	if leaf := n.FirstLeaf(); leaf != nil {
		return leaf.Pos
	}

	return lexer.Position{}
}

// PreOrder yields n and all its descendants, parents before children.
func (n *Node) PreOrder() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}

	for _, c := range n.children {
		if !c.walk(yield) {
			return false
		}
	}

	return true
}

// Leaves yields the leaves under n from left to right.
func (n *Node) Leaves() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for node := range n.PreOrder() {
			if node.IsLeaf() && !yield(node) {
				return
			}
		}
	}
}

// Ancestors yields the parent chain of n, nearest first.
func (n *Node) Ancestors() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for p := n.parent; p != nil; p = p.parent {
			if !yield(p) {
				return
			}
		}
	}
}

func (n *Node) adopt(c *Node) {
	if c == nil {
		panic("pytree: nil child")
	}

	if c.parent != nil {
		panic("pytree: node already has a parent")
	}

	c.parent = n
}
