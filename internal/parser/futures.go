package parser

import (
	"github.com/mouse-blink/py3ify/internal/lexer"
)

// DetectFutures returns the feature names imported with
// `from __future__ import ...` at the top of a module, in source order. Only
// the leading docstring and other __future__ imports may precede them.
func DetectFutures(tokens []lexer.Token) []string {
	var sig []lexer.Token
	for _, tok := range tokens {
		if !tok.Kind.IsTrivia() {
			sig = append(sig, tok)
		}
	}

	var (
		features     []string
		hasDocstring bool
		i            int
	)

	peek := func() lexer.Token {
		if i < len(sig) {
			return sig[i]
		}

		return lexer.Token{Kind: lexer.KindEndMarker}
	}

	accept := func(value string) bool {
		if tok := peek(); tok.Value == value && tok.Kind != lexer.KindString {
			i++
			return true
		}

		return false
	}

	for {
		tok := peek()

		switch {
		case tok.Kind == lexer.KindString:
			if hasDocstring {
				return features
			}

			hasDocstring = true
			i++

		case tok.Kind == lexer.KindNewline || (tok.Kind == lexer.KindOp && tok.Value == ";"):
			i++

		case tok.Kind == lexer.KindKeyword && tok.Value == "from":
			i++
			if !accept("__future__") || !accept("import") {
				return features
			}

			parens := accept("(")

			for peek().Kind == lexer.KindName {
				features = append(features, peek().Value)
				i++

				if accept("as") {
					i++
				}

				if !accept(",") {
					break
				}
			}

			if parens && !accept(")") {
				return features
			}

		default:
			return features
		}
	}
}
