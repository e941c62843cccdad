// Package pattern matches tree shapes against a pytree.
//
// Patterns are written in a small language:
//
//	any                 any single node
//	'text'              a leaf with this value
//	NAME, STRING, ...   a leaf of this token kind
//	symbol              an interior node with this grammar symbol
//	symbol< p1 p2 ... > an interior node whose children match the sequence
//	name=p              capture what p matched under name
//	p* p+ p?            repetition
//	[ p1 p2 ]           optional sequence
//	( p | q )           grouping and alternatives
//	not p               succeeds, consuming nothing, when p does not match
//
// A compiled Pattern is immutable and safe for concurrent use.
package pattern

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mouse-blink/py3ify/internal/lexer"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// Pattern is a compiled tree pattern.
type Pattern struct {
	src     string
	root    matcher
	symbols []string
}

// Compile parses a pattern.
func Compile(src string) (*Pattern, error) {
	tokens, err := scan(src)
	if err != nil {
		return nil, err
	}

	c := &compiler{tokens: tokens, symbols: map[string]struct{}{}}

	root, err := c.alternatives()
	if err != nil {
		return nil, err
	}

	if tok := c.peek(); tok.typ != tokEOF {
		return nil, c.errorf(tok, "unexpected %q", tok.value)
	}

	return &Pattern{
		src:     src,
		root:    root,
		symbols: slices.Sorted(maps.Keys(c.symbols)),
	}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Pattern {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}

	return p
}

func (p *Pattern) String() string {
	return p.src
}

// Symbols lists the grammar symbols the pattern refers to.
func (p *Pattern) Symbols() []string {
	return slices.Clone(p.symbols)
}

// Match reports whether n matches the pattern and returns the captures.
func (p *Pattern) Match(n *pytree.Node) (Bindings, bool) {
	var result Bindings

	ok := p.root.match([]*pytree.Node{n}, Bindings{}, func(rest []*pytree.Node, b Bindings) bool {
		if len(rest) != 0 {
			return false
		}

		result = b

		return true
	})

	return result, ok
}

// Bindings maps capture names to the nodes they matched.
type Bindings map[string][]*pytree.Node

// Node returns the first node captured under name, or nil.
func (b Bindings) Node(name string) *pytree.Node {
	if nodes := b[name]; len(nodes) > 0 {
		return nodes[0]
	}

	return nil
}

// Nodes returns every node captured under name.
func (b Bindings) Nodes(name string) []*pytree.Node {
	return b[name]
}

// Has reports whether name captured at least one node.
func (b Bindings) Has(name string) bool {
	return len(b[name]) > 0
}

func (b Bindings) with(name string, nodes []*pytree.Node) Bindings {
	out := maps.Clone(b)
	if out == nil {
		out = Bindings{}
	}

	out[name] = slices.Clone(nodes)

	return out
}

type compiler struct {
	tokens  []token
	pos     int
	symbols map[string]struct{}
}

func (c *compiler) peek() token {
	return c.tokens[c.pos]
}

func (c *compiler) next() token {
	tok := c.tokens[c.pos]
	if tok.typ != tokEOF {
		c.pos++
	}

	return tok
}

func (c *compiler) isPunct(value string) bool {
	tok := c.peek()
	return tok.typ == tokPunct && tok.value == value
}

func (c *compiler) expect(value string) error {
	if !c.isPunct(value) {
		tok := c.peek()
		return c.errorf(tok, "expected %q", value)
	}

	c.next()

	return nil
}

func (c *compiler) errorf(tok token, format string, args ...any) error {
	return &SyntaxError{Offset: tok.offset, Msg: fmt.Sprintf(format, args...)}
}

func (c *compiler) alternatives() (matcher, error) {
	first, err := c.sequence()
	if err != nil {
		return nil, err
	}

	alts := []matcher{first}
	for c.isPunct("|") {
		c.next()

		alt, err := c.sequence()
		if err != nil {
			return nil, err
		}

		alts = append(alts, alt)
	}

	if len(alts) == 1 {
		return first, nil
	}

	return alternatives(alts), nil
}

func (c *compiler) sequence() (matcher, error) {
	var items []matcher

	for {
		tok := c.peek()
		if tok.typ == tokEOF || (tok.typ == tokPunct && (tok.value == "|" || tok.value == ")" || tok.value == "]" || tok.value == ">")) {
			break
		}

		item, err := c.unit()
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	switch len(items) {
	case 0:
		return nil, c.errorf(c.peek(), "empty pattern")
	case 1:
		return items[0], nil
	}

	return sequence(items), nil
}

func (c *compiler) unit() (matcher, error) {
	tok := c.peek()

	if tok.typ == tokIdent && tok.value == "not" {
		c.next()

		inner, err := c.unit()
		if err != nil {
			return nil, err
		}

		return negation{inner: inner}, nil
	}

	var name string
	if tok.typ == tokIdent && c.tokens[c.pos+1].typ == tokPunct && c.tokens[c.pos+1].value == "=" {
		name = tok.value
		c.pos += 2
	}

	m, err := c.atom()
	if err != nil {
		return nil, err
	}

	if tok := c.peek(); tok.typ == tokPunct {
		switch tok.value {
		case "*":
			c.next()
			m = repeat{inner: m, min: 0, max: -1}
		case "+":
			c.next()
			m = repeat{inner: m, min: 1, max: -1}
		case "?":
			c.next()
			m = repeat{inner: m, min: 0, max: 1}
		}
	}

	if name != "" {
		m = capture{name: name, inner: m}
	}

	return m, nil
}

func (c *compiler) atom() (matcher, error) {
	tok := c.next()

	switch tok.typ {
	case tokString:
		return leafValue(tok.value), nil

	case tokIdent:
		if tok.value == "any" {
			return anyNode{}, nil
		}

		if kind, ok := lexer.ParseKind(tok.value); ok {
			return leafKind(kind), nil
		}

		if !isSymbolName(tok.value) {
			return nil, c.errorf(tok, "invalid name %q", tok.value)
		}

		c.symbols[tok.value] = struct{}{}

		node := interior{symbol: tok.value}
		if c.isPunct("<") {
			c.next()

			children, err := c.alternatives()
			if err != nil {
				return nil, err
			}

			if err := c.expect(">"); err != nil {
				return nil, err
			}

			node.children = children
		}

		return node, nil

	case tokPunct:
		switch tok.value {
		case "(":
			inner, err := c.alternatives()
			if err != nil {
				return nil, err
			}

			return inner, c.expect(")")

		case "[":
			inner, err := c.alternatives()
			if err != nil {
				return nil, err
			}

			if err := c.expect("]"); err != nil {
				return nil, err
			}

			return repeat{inner: inner, min: 0, max: 1}, nil
		}
	}

	if tok.typ == tokEOF {
		return nil, c.errorf(tok, "unexpected end of pattern")
	}

	return nil, c.errorf(tok, "unexpected %q", tok.value)
}

func isSymbolName(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			return false
		}
	}

	return true
}
