package fixers

import (
	"strings"

	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// NumLiterals drops the long suffix and rewrites old octal literals.
//
//	10L   -> 10
//	0755  -> 0o755
func NumLiterals() fixer.Fixer {
	return fixer.Fixer{
		Name:      "numliterals",
		Pattern:   "NUMBER",
		Transform: transformNumLiteral,
	}
}

func transformNumLiteral(m pattern.Match) *pytree.Node {
	val := m.Node.Value

	out := val
	if strings.HasSuffix(out, "l") || strings.HasSuffix(out, "L") {
		out = out[:len(out)-1]
	}

	if isOldOctal(out) {
		out = "0o" + out[1:]
	}

	if out == val {
		return nil
	}

	return pytree.NewLeaf(m.Node.Kind, out, m.Node.Prefix)
}

// isOldOctal reports whether s is a 0-prefixed integer such as 0755. A lone
// 0 or a run of zeros stays as it is.
func isOldOctal(s string) bool {
	if len(s) < 2 || s[0] != '0' {
		return false
	}

	for _, c := range s[1:] {
		if c < '0' || c > '7' {
			return false
		}
	}

	return strings.Trim(s, "0") != ""
}
