// Package grammar loads EBNF grammars that drive the parser.
//
// A grammar is plain data: a set of productions in the notation accepted by
// golang.org/x/exp/ebnf. Lower-case names refer to productions, upper-case
// names refer to token kinds and quoted strings are literal keywords or
// operators. The keyword set of a grammar is derived from its quoted
// identifiers.
package grammar

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"text/scanner"

	"golang.org/x/exp/ebnf"
)

// Start is the production every file is parsed from.
const Start = "file_input"

// TokenKinds are the upper-case names a grammar may use as terminals.
var TokenKinds = []string{"NAME", "NUMBER", "STRING", "NEWLINE", "INDENT", "DEDENT", "ENDMARKER"}

// ErrInvalidGrammar is wrapped by every validation error returned by Load.
var ErrInvalidGrammar = errors.New("invalid grammar")

//go:embed python2.ebnf
var python2Source string

// Grammar is a validated production table plus the keyword set used to lex
// input for it. A Grammar is immutable and safe for concurrent use.
type Grammar struct {
	name        string
	productions ebnf.Grammar
	keywords    []string
}

// Load parses and validates an EBNF grammar.
func Load(name string, src io.Reader) (*Grammar, error) {
	productions, err := ebnf.Parse(name, src)
	if err != nil {
		return nil, fmt.Errorf("parse grammar %s: %w", name, err)
	}

	if _, ok := productions[Start]; !ok {
		return nil, fmt.Errorf("%w: %s: missing start production %q", ErrInvalidGrammar, name, Start)
	}

	v := validator{productions: productions, keywords: map[string]struct{}{}}
	for _, prodName := range slices.Sorted(maps.Keys(productions)) {
		prod := productions[prodName]
		if prod.Expr == nil {
			return nil, fmt.Errorf("%w: %s: empty production %q", ErrInvalidGrammar, prod.Pos(), prodName)
		}

		if isTokenKind(prodName) {
			return nil, fmt.Errorf("%w: %s: production %q shadows a token kind", ErrInvalidGrammar, prod.Pos(), prodName)
		}

		if err := v.check(prod.Expr); err != nil {
			return nil, err
		}
	}

	return &Grammar{
		name:        name,
		productions: productions,
		keywords:    slices.Sorted(maps.Keys(v.keywords)),
	}, nil
}

// Name returns the name the grammar was loaded under.
func (g *Grammar) Name() string {
	return g.name
}

// Production returns the named production, or nil.
func (g *Grammar) Production(name string) *ebnf.Production {
	return g.productions[name]
}

// Symbols lists the production names in sorted order.
func (g *Grammar) Symbols() []string {
	return slices.Sorted(maps.Keys(g.productions))
}

// Keywords returns the reserved words of the grammar, sorted.
func (g *Grammar) Keywords() []string {
	return slices.Clone(g.keywords)
}

// IsKeyword reports whether word is reserved in this grammar.
func (g *Grammar) IsKeyword(word string) bool {
	_, found := slices.BinarySearch(g.keywords, word)
	return found
}

// WithoutKeywords returns a variant sharing g's productions in which the
// given words lex as plain names. A production that spells one of them as a
// quoted terminal can then never match.
func (g *Grammar) WithoutKeywords(name string, words ...string) *Grammar {
	return &Grammar{
		name:        name,
		productions: g.productions,
		keywords: slices.DeleteFunc(slices.Clone(g.keywords), func(k string) bool {
			return slices.Contains(words, k)
		}),
	}
}

var (
	python2 = sync.OnceValue(func() *Grammar {
		g, err := Load("python2.ebnf", strings.NewReader(python2Source))
		if err != nil {
			panic(err)
		}

		return g
	})

	python2NoPrint = sync.OnceValue(func() *Grammar {
		return python2().WithoutKeywords("python2.ebnf+print_function", "print")
	})
)

// Python2 returns the built-in Python 2.7 grammar.
func Python2() *Grammar {
	return python2()
}

// Python2NoPrint returns the Python 2.7 grammar with print as a plain name,
// as selected by `from __future__ import print_function`.
func Python2NoPrint() *Grammar {
	return python2NoPrint()
}

// ForFutures picks the built-in variant matching a module's __future__
// imports.
func ForFutures(features []string) *Grammar {
	if slices.Contains(features, "print_function") {
		return Python2NoPrint()
	}

	return Python2()
}

type validator struct {
	productions ebnf.Grammar
	keywords    map[string]struct{}
}

func (v *validator) check(expr ebnf.Expression) error {
	switch x := expr.(type) {
	case ebnf.Alternative:
		for _, e := range x {
			if err := v.check(e); err != nil {
				return err
			}
		}
	case ebnf.Sequence:
		for _, e := range x {
			if err := v.check(e); err != nil {
				return err
			}
		}
	case *ebnf.Group:
		return v.check(x.Body)
	case *ebnf.Option:
		return v.check(x.Body)
	case *ebnf.Repetition:
		return v.check(x.Body)
	case *ebnf.Name:
		if _, ok := v.productions[x.String]; !ok && !isTokenKind(x.String) {
			return fmt.Errorf("%w: %s: undefined name %q", ErrInvalidGrammar, x.Pos(), x.String)
		}
	case *ebnf.Token:
		if x.String == "" {
			return fmt.Errorf("%w: %s: empty terminal", ErrInvalidGrammar, x.Pos())
		}

		if isWord(x.String) {
			v.keywords[x.String] = struct{}{}
		}
	case *ebnf.Range:
		return fmt.Errorf("%w: %s: character ranges are not supported", ErrInvalidGrammar, x.Pos())
	default:
		return fmt.Errorf("%w: %s: unsupported expression %T", ErrInvalidGrammar, position(expr), expr)
	}

	return nil
}

func position(expr ebnf.Expression) scanner.Position {
	if expr == nil {
		return scanner.Position{}
	}

	return expr.Pos()
}

func isTokenKind(name string) bool {
	return slices.Contains(TokenKinds, name)
}

func isWord(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '_' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}

	return true
}
