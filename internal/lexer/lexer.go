package lexer

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"
)

var (
	operators3 = []string{"**=", "//=", ">>=", "<<="}
	operators2 = []string{
		"**", "//", ">>", "<<", "<>", "!=", "==", "<=", ">=",
		"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	}
)

const operators1 = "+-*/%&|^~<>()[]{},:.;@=`"

// Lexer produces tokens one at a time. A Lexer holds per-input state and must
// not be shared between goroutines.
type Lexer struct {
	src string
	cfg config
	pos Position

	indents   []int
	depth     int
	lineStart bool
	content   bool

	queue  []Token
	done   bool
	endTok Token
}

// New returns a Lexer positioned at the start of src.
func New(src string, opts ...Option) *Lexer {
	return &Lexer{
		src:       src,
		cfg:       newConfig(opts),
		pos:       Position{Line: 1},
		indents:   []int{0},
		lineStart: true,
	}
}

// Tokenize returns a lazy token sequence for src. Each iteration starts a new
// Lexer, so the sequence can be ranged over more than once. The sequence ends
// after the ENDMARKER token or after the first error.
func Tokenize(src string, opts ...Option) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		l := New(src, opts...)
		for {
			tok, err := l.Next()
			if err != nil {
				yield(Token{}, err)
				return
			}

			if !yield(tok, nil) || tok.Kind == KindEndMarker {
				return
			}
		}
	}
}

// All collects the full token stream of src.
func All(src string, opts ...Option) ([]Token, error) {
	var tokens []Token
	for tok, err := range Tokenize(src, opts...) {
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
	}

	return tokens, nil
}

// Next returns the next token. Once the input is exhausted it keeps returning
// the ENDMARKER token.
func (l *Lexer) Next() (Token, error) {
	for {
		if len(l.queue) > 0 {
			tok := l.queue[0]
			l.queue = l.queue[1:]

			return tok, nil
		}

		if l.done {
			return l.endTok, nil
		}

		if l.lineStart && l.depth == 0 {
			if err := l.indentation(); err != nil {
				return Token{}, err
			}

			continue
		}

		return l.scan()
	}
}

// indentation runs at the start of every physical line outside brackets and
// queues the INDENT or DEDENT tokens the line implies, followed by the
// indentation itself as trivia.
func (l *Lexer) indentation() error {
	l.lineStart = false
	start := l.pos

	width := 0
	hasTab, hasSpace := false, false
	i := start.Offset

measure:
	for ; i < len(l.src); i++ {
		switch l.src[i] {
		case ' ':
			width++
			hasSpace = true
		case '\t':
			width = (width/l.cfg.tabSize + 1) * l.cfg.tabSize
			hasTab = true
		case '\f':
			width = 0
		default:
			break measure
		}
	}

	if i >= len(l.src) || l.src[i] == '#' || l.src[i] == '\n' || l.src[i] == '\r' {
		// blank and comment-only lines never change the indentation level
		return nil
	}

	if l.cfg.strictIndent && hasTab && hasSpace {
		return &Error{Msg: "inconsistent use of tabs and spaces in indentation", Pos: start}
	}

	top := l.indents[len(l.indents)-1]

	switch {
	case width > top:
		l.indents = append(l.indents, width)
		l.queue = append(l.queue, Token{Kind: KindIndent, Start: start, End: start})
	case width < top:
		for width < l.indents[len(l.indents)-1] {
			l.indents = l.indents[:len(l.indents)-1]
			l.queue = append(l.queue, Token{Kind: KindDedent, Start: start, End: start})
		}

		if width != l.indents[len(l.indents)-1] {
			return &Error{Msg: "unindent does not match any outer indentation level", Pos: start}
		}
	}

	if i > start.Offset {
		l.queue = append(l.queue, l.take(i-start.Offset, KindWhitespace))
	}

	return nil
}

func (l *Lexer) scan() (Token, error) {
	rest := l.src[l.pos.Offset:]
	if rest == "" {
		l.finish()
		return l.Next()
	}

	c := rest[0]

	switch {
	case c == ' ' || c == '\t' || c == '\f':
		return l.take(spanOf(rest, " \t\f"), KindWhitespace), nil

	case c == '\\':
		switch {
		case strings.HasPrefix(rest, "\\\n"):
			return l.take(2, KindWhitespace), nil
		case strings.HasPrefix(rest, "\\\r\n"):
			return l.take(3, KindWhitespace), nil
		case len(rest) == 1:
			return Token{}, &Error{Msg: "unexpected end of input after line continuation", Pos: l.pos}
		default:
			return Token{}, &Error{Msg: "unexpected character after line continuation character", Pos: l.pos}
		}

	case c == '#':
		n := strings.IndexAny(rest, "\r\n")
		if n < 0 {
			n = len(rest)
		}

		return l.take(n, KindComment), nil

	case c == '\n' || strings.HasPrefix(rest, "\r\n"):
		n := 1
		if c == '\r' {
			n = 2
		}

		if l.depth > 0 || !l.content {
			tok := l.take(n, KindWhitespace)
			if l.depth == 0 {
				l.lineStart = true
			}

			return tok, nil
		}

		tok := l.take(n, KindNewline)
		l.content = false
		l.lineStart = true

		return tok, nil

	case c == '\r':
		return l.take(1, KindWhitespace), nil

	case isIdentStart(c):
		n := spanFunc(rest, isIdentChar)
		word := rest[:n]

		if n < len(rest) && (rest[n] == '\'' || rest[n] == '"') && isStringPrefix(word) {
			return l.scanString(n)
		}

		kind := KindName
		if _, ok := l.cfg.keywords[word]; ok {
			kind = KindKeyword
		}

		return l.significant(l.take(n, kind)), nil

	case isDigit(c) || (c == '.' && len(rest) > 1 && isDigit(rest[1])):
		return l.scanNumber()

	case c == '\'' || c == '"':
		return l.scanString(0)
	}

	if op := matchOperator(rest); op != "" {
		switch op {
		case "(", "[", "{":
			l.depth++
		case ")", "]", "}":
			if l.depth > 0 {
				l.depth--
			}
		}

		return l.significant(l.take(len(op), KindOp)), nil
	}

	r, _ := utf8.DecodeRuneInString(rest)

	return Token{}, &Error{Msg: fmt.Sprintf("invalid character %q", r), Pos: l.pos}
}

// scanString scans a string literal whose quote starts prefixLen bytes after
// the current position.
func (l *Lexer) scanString(prefixLen int) (Token, error) {
	rest := l.src[l.pos.Offset:]
	quote := rest[prefixLen]
	i := prefixLen

	closing := strings.Repeat(string(quote), 3)
	if strings.HasPrefix(rest[i:], closing) {
		for i += 3; ; {
			if i >= len(rest) {
				return Token{}, &Error{Msg: "unterminated triple-quoted string literal", Pos: l.pos}
			}

			if rest[i] == '\\' {
				i += 2
				continue
			}

			if strings.HasPrefix(rest[i:], closing) {
				i += 3
				break
			}

			i++
		}

		return l.significant(l.take(i, KindString)), nil
	}

	for i++; ; {
		if i >= len(rest) || rest[i] == '\n' {
			return Token{}, &Error{Msg: "unterminated string literal", Pos: l.pos}
		}

		switch rest[i] {
		case '\\':
			if strings.HasPrefix(rest[i+1:], "\r\n") {
				i += 3
			} else {
				i += 2
			}

			continue
		case quote:
			return l.significant(l.take(i+1, KindString)), nil
		}

		i++
	}
}

func (l *Lexer) scanNumber() (Token, error) {
	rest := l.src[l.pos.Offset:]
	i := 0

	invalid := func() (Token, error) {
		return Token{}, &Error{Msg: fmt.Sprintf("invalid number literal %q", rest[:i]), Pos: l.pos}
	}

	if rest[0] == '0' && len(rest) > 1 && strings.IndexByte("xXoObB", rest[1]) >= 0 {
		var digit func(byte) bool

		switch rest[1] {
		case 'x', 'X':
			digit = isHexDigit
		case 'o', 'O':
			digit = func(b byte) bool { return b >= '0' && b <= '7' }
		default:
			digit = func(b byte) bool { return b == '0' || b == '1' }
		}

		i = 2
		n := spanFunc(rest[i:], digit)
		i += n

		if n == 0 {
			return invalid()
		}

		if i < len(rest) && (rest[i] == 'l' || rest[i] == 'L') {
			i++
		}
	} else {
		i = spanFunc(rest, isDigit)
		intEnd := i

		if i < len(rest) && rest[i] == '.' {
			i++
			i += spanFunc(rest[i:], isDigit)
		}

		if i < len(rest) && (rest[i] == 'e' || rest[i] == 'E') {
			j := i + 1
			if j < len(rest) && (rest[j] == '+' || rest[j] == '-') {
				j++
			}

			n := spanFunc(rest[j:], isDigit)
			i = j + n

			if n == 0 {
				return invalid()
			}
		}

		if i < len(rest) && strings.IndexByte("jJ", rest[i]) >= 0 {
			i++
		} else if i == intEnd {
			// a leading zero makes an integer octal
			if rest[0] == '0' && strings.ContainsAny(rest[:intEnd], "89") {
				return invalid()
			}

			if i < len(rest) && (rest[i] == 'l' || rest[i] == 'L') {
				i++
			}
		}
	}

	if i < len(rest) && isIdentChar(rest[i]) {
		i++
		return invalid()
	}

	return l.significant(l.take(i, KindNumber)), nil
}

func (l *Lexer) finish() {
	at := l.pos

	if l.content {
		l.queue = append(l.queue, Token{Kind: KindNewline, Start: at, End: at})
		l.content = false
	}

	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.queue = append(l.queue, Token{Kind: KindDedent, Start: at, End: at})
	}

	l.endTok = Token{Kind: KindEndMarker, Start: at, End: at}
	l.queue = append(l.queue, l.endTok)
	l.done = true
}

func (l *Lexer) significant(tok Token) Token {
	l.content = true
	return tok
}

// take consumes the next n bytes as a token of the given kind.
func (l *Lexer) take(n int, kind Kind) Token {
	start := l.pos
	value := l.src[start.Offset : start.Offset+n]
	l.advance(value)

	return Token{Kind: kind, Value: value, Start: start, End: l.pos}
}

func (l *Lexer) advance(s string) {
	for i := 0; i < len(s); i++ {
		switch b := s[i]; {
		case b == '\n':
			l.pos.Line++
			l.pos.Column = 0
		case b&0xC0 != 0x80:
			l.pos.Column++
		}
	}

	l.pos.Offset += len(s)
}

func matchOperator(s string) string {
	for _, op := range operators3 {
		if strings.HasPrefix(s, op) {
			return op
		}
	}

	for _, op := range operators2 {
		if strings.HasPrefix(s, op) {
			return op
		}
	}

	if strings.IndexByte(operators1, s[0]) >= 0 {
		return s[:1]
	}

	return ""
}

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "u", "b", "ur", "br":
		return true
	}

	return false
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func spanOf(s, set string) int {
	return spanFunc(s, func(b byte) bool { return strings.IndexByte(set, b) >= 0 })
}

func spanFunc(s string, f func(byte) bool) int {
	i := 0
	for i < len(s) && f(s[i]) {
		i++
	}

	return i
}
