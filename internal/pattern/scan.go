package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokString
	tokPunct
)

type token struct {
	typ    tokenType
	value  string
	offset int
}

// SyntaxError reports a malformed pattern.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern: offset %d: %s", e.Offset, e.Msg)
}

const punctuation = "<>()[]|=*+?"

func scan(src string) ([]token, error) {
	var tokens []token

	for i := 0; i < len(src); {
		c := src[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '\'' || c == '"':
			end := i + 1
			for end < len(src) && src[end] != c {
				if src[end] == '\\' {
					end++
				}
				end++
			}

			if end >= len(src) {
				return nil, &SyntaxError{Offset: i, Msg: "unterminated string"}
			}

			value, err := unquote(src[i : end+1])
			if err != nil {
				return nil, &SyntaxError{Offset: i, Msg: err.Error()}
			}

			tokens = append(tokens, token{typ: tokString, value: value, offset: i})
			i = end + 1

		case isIdentByte(c):
			end := i
			for end < len(src) && isIdentByte(src[end]) {
				end++
			}

			tokens = append(tokens, token{typ: tokIdent, value: src[i:end], offset: i})
			i = end

		case strings.IndexByte(punctuation, c) >= 0:
			tokens = append(tokens, token{typ: tokPunct, value: src[i : i+1], offset: i})
			i++

		default:
			return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}

	return append(tokens, token{typ: tokEOF, offset: len(src)}), nil
}

// unquote accepts single- or double-quoted literals with Go escapes.
func unquote(lit string) (string, error) {
	if lit[0] == '\'' {
		body := lit[1 : len(lit)-1]

		var converted []byte
		for i := 0; i < len(body); i++ {
			switch {
			case body[i] == '"':
				converted = append(converted, '\\', '"')
			case body[i] == '\\' && i+1 < len(body) && body[i+1] == '\'':
				converted = append(converted, '\'')
				i++
			default:
				converted = append(converted, body[i])
			}
		}

		lit = `"` + string(converted) + `"`
	}

	return strconv.Unquote(lit)
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
