package adapter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mouse-blink/py3ify/internal/lexer"
)

// ErrNotLiteral is returned when the input is not a Python string literal.
var ErrNotLiteral = errors.New("not a string literal")

// DecodeLiteral unquotes a Python string literal such as 'print "a"\n' and
// returns its value with surrounding whitespace removed. Adjacent literals
// are concatenated. Prefixes u, b and r are accepted.
func DecodeLiteral(s string) (string, error) {
	tokens, err := lexer.All(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotLiteral, err)
	}

	var (
		sb    strings.Builder
		found bool
	)

	for _, tok := range tokens {
		switch {
		case tok.Kind == lexer.KindString:
			value, err := unquote(tok.Value)
			if err != nil {
				return "", fmt.Errorf("%w: %s: %w", ErrNotLiteral, tok.Start, err)
			}

			sb.WriteString(value)

			found = true
		case tok.Kind.IsTrivia(), tok.Kind == lexer.KindNewline, tok.Kind == lexer.KindEndMarker:
		default:
			return "", fmt.Errorf("%w: unexpected %s %q at %s", ErrNotLiteral, tok.Kind, tok.Value, tok.Start)
		}
	}

	if !found {
		return "", ErrNotLiteral
	}

	return strings.TrimSpace(sb.String()), nil
}

func unquote(lit string) (string, error) {
	i := strings.IndexAny(lit, `'"`)
	if i < 0 {
		return "", errors.New("missing quote")
	}

	prefix := strings.ToLower(lit[:i])
	body := lit[i:]

	q := 1
	if strings.HasPrefix(body, `"""`) || strings.HasPrefix(body, `'''`) {
		q = 3
	}

	if len(body) < 2*q {
		return "", errors.New("unterminated literal")
	}

	body = body[q : len(body)-q]

	if strings.Contains(prefix, "r") {
		return body, nil
	}

	return unescape(body, !strings.Contains(prefix, "b"))
}

func unescape(s string, unicode bool) (string, error) {
	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}

		i++
		c = s[i]

		switch c {
		case '\n':
		case '\\', '\'', '"':
			sb.WriteByte(c)
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			n := 1
			for n < 3 && i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '7' {
				n++
			}

			v, _ := strconv.ParseUint(s[i:i+n], 8, 32)
			writeCode(&sb, v, unicode)

			i += n - 1
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
			if c != 'x' && !unicode {
				sb.WriteByte('\\')
				sb.WriteByte(c)

				continue
			}

			if i+1+width > len(s) {
				return "", fmt.Errorf("truncated \\%c escape", c)
			}

			v, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid \\%c escape", c)
			}

			writeCode(&sb, v, unicode)

			i += width
		case 'N':
			return "", errors.New(`\N escapes are not supported`)
		default:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		}
	}

	return sb.String(), nil
}

// writeCode writes an escaped code point, or a single byte in a bytes literal.
func writeCode(sb *strings.Builder, v uint64, unicode bool) {
	if unicode {
		sb.WriteRune(rune(v))
		return
	}

	sb.WriteByte(byte(v))
}
