package pytree

import (
	"fmt"
	"io"
	"strings"
)

// Serialize concatenates the prefix and value of every leaf under n. For a
// tree fresh from the parser this reproduces the source exactly.
func Serialize(n *Node) string {
	var b strings.Builder
	for leaf := range n.Leaves() {
		b.WriteString(leaf.Prefix)
		b.WriteString(leaf.Value)
	}

	return b.String()
}

func (n *Node) String() string {
	return Serialize(n)
}

// WriteTo implements io.WriterTo.
func (n *Node) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for leaf := range n.Leaves() {
		written, err := io.WriteString(w, leaf.Prefix+leaf.Value)
		total += int64(written)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// Dump renders the tree structure one node per line, indented by depth.
func Dump(n *Node) string {
	var b strings.Builder
	dump(&b, n, 0)

	return b.String()
}

func dump(b *strings.Builder, n *Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))

	if n.IsLeaf() {
		fmt.Fprintf(b, "%s %q", n.Kind, n.Value)
		if n.Prefix != "" {
			fmt.Fprintf(b, " prefix=%q", n.Prefix)
		}

		b.WriteByte('\n')

		return
	}

	b.WriteString(n.Symbol)
	b.WriteByte('\n')

	for _, c := range n.children {
		dump(b, c, depth+1)
	}
}
