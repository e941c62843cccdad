// Package lexer turns Python 2 source text into a lossless token stream.
//
// Every byte of the input ends up in exactly one token. Whitespace, comments
// and non-logical newlines are emitted as trivia tokens so a consumer can fold
// them into the prefix of the next significant token and reproduce the input
// exactly.
package lexer

import "fmt"

// Kind classifies a token.
type Kind uint8

const (
	KindEndMarker Kind = iota
	KindKeyword
	KindName
	KindOp
	KindNumber
	KindString
	KindNewline
	KindIndent
	KindDedent
	KindComment
	KindWhitespace
)

var kindNames = map[Kind]string{
	KindEndMarker:  "ENDMARKER",
	KindKeyword:    "KEYWORD",
	KindName:       "NAME",
	KindOp:         "OP",
	KindNumber:     "NUMBER",
	KindString:     "STRING",
	KindNewline:    "NEWLINE",
	KindIndent:     "INDENT",
	KindDedent:     "DEDENT",
	KindComment:    "COMMENT",
	KindWhitespace: "WHITESPACE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "UNKNOWN"
}

// IsTrivia reports whether tokens of this kind carry no syntax.
func (k Kind) IsTrivia() bool {
	return k == KindComment || k == KindWhitespace
}

// ParseKind resolves an upper-case kind name such as "NAME" or "STRING".
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}

	return 0, false
}

// Position is a location in the source. Line is 1-based, Column is a 0-based
// rune offset within the line, Offset is the byte offset in the input.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is an immutable lexical unit.
type Token struct {
	Kind  Kind
	Value string
	Start Position
	End   Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Start, t.Kind, t.Value)
}

// Error is returned for malformed input: unterminated strings, invalid
// characters and inconsistent indentation.
type Error struct {
	Msg string
	Pos Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}
