// Package parser builds concrete syntax trees from token streams.
//
// The parser is a packrat interpreter over an EBNF grammar: alternatives are
// ordered choices, repetitions are greedy and every production result is
// memoized by start position, so parsing is linear in the number of tokens.
package parser

import (
	"errors"
	"fmt"

	"golang.org/x/exp/ebnf"

	"github.com/mouse-blink/py3ify/internal/grammar"
	"github.com/mouse-blink/py3ify/internal/lexer"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// Error is a syntax error at a source position.
type Error struct {
	Msg    string
	Line   int
	Column int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Option configures ParseString.
type Option func(*options)

type options struct {
	grammar  *grammar.Grammar
	lexerOps []lexer.Option
}

// WithGrammar forces a grammar instead of choosing one from the module's
// __future__ imports.
func WithGrammar(g *grammar.Grammar) Option {
	return func(o *options) {
		o.grammar = g
	}
}

// WithLexerOptions passes options through to the lexer.
func WithLexerOptions(opts ...lexer.Option) Option {
	return func(o *options) {
		o.lexerOps = append(o.lexerOps, opts...)
	}
}

// ParseString lexes and parses src. Lexical errors are reported as *Error
// too, so callers only need to handle one error type.
//
// Without WithGrammar the grammar follows the module's __future__ imports.
// Source that fails to parse with print as a statement is tried once more
// with print as a name, which accepts code already using print(..., end=x).
// The first error is returned when both attempts fail.
func ParseString(src string, opts ...Option) (*pytree.Node, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.grammar != nil {
		return parseWith(src, o.grammar, o.lexerOps)
	}

	tokens, err := lexer.All(src, o.lexerOps...)
	if err != nil {
		return nil, syntaxError(err)
	}

	g := grammar.ForFutures(DetectFutures(tokens))

	tree, err := parseWith(src, g, o.lexerOps)
	if err == nil || g == grammar.Python2NoPrint() {
		return tree, err
	}

	if tree, retryErr := parseWith(src, grammar.Python2NoPrint(), o.lexerOps); retryErr == nil {
		return tree, nil
	}

	return nil, err
}

func parseWith(src string, g *grammar.Grammar, lexOpts []lexer.Option) (*pytree.Node, error) {
	lexOpts = append(lexOpts[:len(lexOpts):len(lexOpts)], lexer.WithKeywords(g.Keywords()))

	tokens, err := lexer.All(src, lexOpts...)
	if err != nil {
		return nil, syntaxError(err)
	}

	return Parse(tokens, g)
}

// Parse builds a tree rooted at grammar.Start. The token slice must be a full
// stream ending in ENDMARKER, trivia included.
func Parse(tokens []lexer.Token, g *grammar.Grammar) (*pytree.Node, error) {
	p := newParser(tokens, g)

	start := g.Production(grammar.Start)
	if start == nil {
		return nil, fmt.Errorf("grammar %s has no %s production", g.Name(), grammar.Start)
	}

	kids, end, ok := p.match(start.Expr, 0, nil)
	if !ok || end != len(p.tokens) {
		return nil, p.failure()
	}

	return p.build(&cst{symbol: grammar.Start, leaf: -1, kids: kids}), nil
}

func syntaxError(err error) error {
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		return &Error{Msg: lexErr.Msg, Line: lexErr.Pos.Line, Column: lexErr.Pos.Column}
	}

	return err
}

// cst is the parser's private tree. Memoized results are shared between
// alternatives, so nodes carry no parent links until build copies them into
// a pytree.
type cst struct {
	symbol string
	leaf   int
	kids   []*cst
}

type memoKey struct {
	name string
	pos  int
}

type memoEntry struct {
	node *cst
	end  int
	ok   bool
}

type parser struct {
	grammar  *grammar.Grammar
	tokens   []lexer.Token
	prefixes []string
	memo     map[memoKey]memoEntry
	furthest int
}

func newParser(stream []lexer.Token, g *grammar.Grammar) *parser {
	p := &parser{grammar: g, memo: make(map[memoKey]memoEntry)}

	var prefix []byte
	for _, tok := range stream {
		if tok.Kind.IsTrivia() {
			prefix = append(prefix, tok.Value...)
			continue
		}

		p.tokens = append(p.tokens, tok)
		p.prefixes = append(p.prefixes, string(prefix))
		prefix = prefix[:0]

		if tok.Kind == lexer.KindEndMarker {
			break
		}
	}

	return p
}

// match appends the children produced by expr at pos to out.
func (p *parser) match(expr ebnf.Expression, pos int, out []*cst) ([]*cst, int, bool) {
	switch x := expr.(type) {
	case ebnf.Sequence:
		for _, e := range x {
			var ok bool
			if out, pos, ok = p.match(e, pos, out); !ok {
				return out, pos, false
			}
		}

		return out, pos, true

	case ebnf.Alternative:
		mark := len(out)
		for _, e := range x {
			res, end, ok := p.match(e, pos, out[:mark])
			if ok {
				return res, end, true
			}
		}

		return out[:mark], pos, false

	case *ebnf.Group:
		return p.match(x.Body, pos, out)

	case *ebnf.Option:
		mark := len(out)
		if res, end, ok := p.match(x.Body, pos, out); ok {
			return res, end, true
		}

		return out[:mark], pos, true

	case *ebnf.Repetition:
		for {
			mark := len(out)

			res, end, ok := p.match(x.Body, pos, out)
			if !ok || end == pos {
				return out[:mark], pos, true
			}

			out, pos = res, end
		}

	case *ebnf.Token:
		if pos < len(p.tokens) {
			tok := p.tokens[pos]
			if (tok.Kind == lexer.KindKeyword || tok.Kind == lexer.KindOp) && tok.Value == x.String {
				return append(out, &cst{leaf: pos}), pos + 1, true
			}
		}

		p.fail(pos)

		return out, pos, false

	case *ebnf.Name:
		if kind, ok := lexer.ParseKind(x.String); ok {
			if pos < len(p.tokens) && p.tokens[pos].Kind == kind {
				return append(out, &cst{leaf: pos}), pos + 1, true
			}

			p.fail(pos)

			return out, pos, false
		}

		node, end, ok := p.production(x.String, pos)
		if !ok {
			return out, pos, false
		}

		if node != nil {
			out = append(out, node)
		}

		return out, end, true
	}

	return out, pos, false
}

// production parses the named production at pos. A result with a single
// child collapses to that child; a result with no children is nil.
func (p *parser) production(name string, pos int) (*cst, int, bool) {
	key := memoKey{name: name, pos: pos}
	if e, ok := p.memo[key]; ok {
		return e.node, e.end, e.ok
	}

	prod := p.grammar.Production(name)

	kids, end, ok := p.match(prod.Expr, pos, nil)

	var node *cst

	switch {
	case !ok:
		end = pos
	case len(kids) == 1:
		node = kids[0]
	case len(kids) > 1:
		node = &cst{symbol: name, leaf: -1, kids: kids}
	}

	p.memo[key] = memoEntry{node: node, end: end, ok: ok}

	return node, end, ok
}

func (p *parser) fail(pos int) {
	if pos > p.furthest {
		p.furthest = pos
	}
}

func (p *parser) failure() error {
	if p.furthest >= len(p.tokens) {
		return &Error{Msg: "unexpected end of input"}
	}

	tok := p.tokens[p.furthest]
	err := &Error{Line: tok.Start.Line, Column: tok.Start.Column}

	switch {
	case tok.Kind == lexer.KindEndMarker:
		err.Msg = "unexpected end of input"
	case tok.Value == "":
		err.Msg = fmt.Sprintf("unexpected %s", tok.Kind)
	default:
		err.Msg = fmt.Sprintf("unexpected %s %q", tok.Kind, tok.Value)
	}

	return err
}

func (p *parser) build(c *cst) *pytree.Node {
	if c.leaf >= 0 && c.symbol == "" {
		tok := p.tokens[c.leaf]
		n := pytree.NewLeaf(tok.Kind, tok.Value, p.prefixes[c.leaf])
		n.Pos = tok.Start

		return n
	}

	n := pytree.NewNode(c.symbol)
	for _, k := range c.kids {
		n.AppendChild(p.build(k))
	}

	return n
}
