package fixers

import (
	"strings"

	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// XRange renames xrange calls to range. The result is left unwrapped.
func XRange() fixer.Fixer {
	return renameCall("xrange", "range")
}

// RawInput renames raw_input calls to input.
func RawInput() fixer.Fixer {
	return renameCall("raw_input", "input")
}

func renameCall(from, to string) fixer.Fixer {
	return fixer.Fixer{
		Name:    from,
		Pattern: `power< name='` + from + `' trailer< '(' any* ')' > any* >`,
		Transform: func(m pattern.Match) *pytree.Node {
			name := m.Bindings.Node("name")
			name.Replace(newName(to, name.Prefix))

			return m.Node
		},
	}
}

// Getcwdu renames os.getcwdu to os.getcwd.
func Getcwdu() fixer.Fixer {
	return fixer.Fixer{
		Name:    "getcwdu",
		Pattern: `power< 'os' trailer< '.' name='getcwdu' > any* >`,
		Transform: func(m pattern.Match) *pytree.Node {
			name := m.Bindings.Node("name")
			name.Replace(newName("getcwd", name.Prefix))

			return m.Node
		},
	}
}

// Basestring renames the basestring builtin to str.
func Basestring() fixer.Fixer {
	return renameBuiltin("basestring", "str")
}

// Long renames the long builtin to int.
func Long() fixer.Fixer {
	return renameBuiltin("long", "int")
}

// StandardError renames StandardError to Exception.
func StandardError() fixer.Fixer {
	f := renameBuiltin("StandardError", "Exception")
	f.Name = "standarderror"

	return f
}

func renameBuiltin(from, to string) fixer.Fixer {
	return fixer.Fixer{
		Name:    from,
		Pattern: `'` + from + `'`,
		Transform: func(m pattern.Match) *pytree.Node {
			if !isProbablyBuiltin(m.Node) {
				return nil
			}

			return newName(to, m.Node.Prefix)
		},
	}
}

// Unicode drops the u prefix from string literals and renames the unicode
// and unichr builtins.
//
//	u'text'     -> 'text'
//	ur'\d'      -> r'\d'
//	unicode(x)  -> str(x)
//	unichr(i)   -> chr(i)
func Unicode() fixer.Fixer {
	return fixer.Fixer{
		Name:      "unicode",
		Pattern:   `STRING | 'unicode' | 'unichr'`,
		Transform: transformUnicode,
	}
}

var unicodeBuiltins = map[string]string{
	"unicode": "str",
	"unichr":  "chr",
}

func transformUnicode(m pattern.Match) *pytree.Node {
	n := m.Node

	if to, ok := unicodeBuiltins[n.Value]; ok {
		if !isProbablyBuiltin(n) {
			return nil
		}

		return newName(to, n.Prefix)
	}

	if n.Value == "" || !strings.ContainsRune("uU", rune(n.Value[0])) {
		return nil
	}

	return newString(n.Value[1:], n.Prefix)
}

// FuncAttrs renames the func_* function attributes to their dunder names.
func FuncAttrs() fixer.Fixer {
	return fixer.Fixer{
		Name: "funcattrs",
		Pattern: `trailer< '.' attr=('func_closure' | 'func_doc' | 'func_globals' | 'func_name'` +
			` | 'func_defaults' | 'func_code' | 'func_dict') >`,
		Transform: func(m pattern.Match) *pytree.Node {
			attr := m.Bindings.Node("attr")
			attr.Replace(newName("__"+strings.TrimPrefix(attr.Value, "func_")+"__", attr.Prefix))

			return m.Node
		},
	}
}

var methodAttrs = map[string]string{
	"im_func":  "__func__",
	"im_self":  "__self__",
	"im_class": "__self__.__class__",
}

// MethodAttrs renames the im_* bound method attributes.
//
//	m.im_func   -> m.__func__
//	m.im_class  -> m.__self__.__class__
func MethodAttrs() fixer.Fixer {
	return fixer.Fixer{
		Name:    "methodattrs",
		Pattern: `trailer< '.' attr=('im_func' | 'im_self' | 'im_class') >`,
		Transform: func(m pattern.Match) *pytree.Node {
			attr := m.Bindings.Node("attr")
			attr.Replace(newName(methodAttrs[attr.Value], attr.Prefix))

			return m.Node
		},
	}
}
