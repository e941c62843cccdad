package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/py3ify/internal/grammar"
	"github.com/mouse-blink/py3ify/internal/lexer"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

var roundTripSources = []string{
	"",
	"\n",
	"# comment only\n",
	"x = 1",
	"print 'hi'\n",
	"print\n",
	"print >>sys.stderr, 'a', b,\n",
	"exec code in ns\n",
	"def f(a, (b, c)=(1, 2), *args, **kw):\n    '''doc'''\n    return a + b  # sum\n",
	"class C(Base):\n\n    x = `1`\n\n    @staticmethod\n    def m():\n        pass\n",
	"try:\n    import foo\nexcept ImportError, e:\n    raise ValueError, 'no foo', tb\nelse:\n    pass\nfinally:\n    cleanup()\n",
	"for k, v in d.iteritems():\n    if k <> v and not k in d or k is not None:\n        continue\n    else:\n        break\n",
	"x = [i * 2 for i in xrange(10) if i % 2]\ny = {k: v for k, v in pairs}\nz = (a for a in b)\n",
	"with open(f) as fh, lock:\n    data = fh.read()[1:-1:2]\n",
	"lambda: 0\nf = lambda x, y=2: x ** -y\n",
	"a = b = c if d else e\nx += 1; y <<= 2;\n",
	"from . import x\nfrom ..pkg.mod import (a as b, c,)\nimport os.path as p, sys\n",
	"while True:\n\tif x: break\n",
	"s = u'a' 'b' r\"c\"\nn = 0777 + 10L + 0xFFL\n",
	"global a, b\nassert x, 'msg'\ndel a[0], b.c\n",
	"def g():\n    x = yield\n    yield x\n",
	"x = a[...]\nm = {}\nt = ()\nl = []\nset_ = {1, 2}\n",
	"if x:\n    y\n# dedented comment\nz\n",
	"f(*args, **kwargs)\nf(a, b=1, *c, **d)\n",
	"x = (yield)\n",
	"total = (a +\n         b)  \\\n    if c else d\r\n",
}

func TestParseStringRoundTrip(t *testing.T) {
	for _, src := range roundTripSources {
		tree, err := ParseString(src)
		require.NoError(t, err, "source %q", src)
		assert.Equal(t, src, pytree.Serialize(tree), "source %q", src)
		assert.Equal(t, grammar.Start, tree.Symbol)
	}
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "print statement",
			src:  "print 'hi'\n",
			want: "file_input\n" +
				"  simple_stmt\n" +
				"    print_stmt\n" +
				"      KEYWORD \"print\"\n" +
				"      STRING \"'hi'\" prefix=\" \"\n" +
				"    NEWLINE \"\\n\"\n" +
				"  ENDMARKER \"\"\n",
		},
		{
			name: "method call",
			src:  "d.keys()\n",
			want: "file_input\n" +
				"  simple_stmt\n" +
				"    power\n" +
				"      NAME \"d\"\n" +
				"      trailer\n" +
				"        OP \".\"\n" +
				"        NAME \"keys\"\n" +
				"      trailer\n" +
				"        OP \"(\"\n" +
				"        OP \")\"\n" +
				"    NEWLINE \"\\n\"\n" +
				"  ENDMARKER \"\"\n",
		},
		{
			name: "block",
			src:  "if x:\n  pass\n",
			want: "file_input\n" +
				"  if_stmt\n" +
				"    KEYWORD \"if\"\n" +
				"    NAME \"x\" prefix=\" \"\n" +
				"    OP \":\"\n" +
				"    suite\n" +
				"      NEWLINE \"\\n\"\n" +
				"      INDENT \"\"\n" +
				"      simple_stmt\n" +
				"        KEYWORD \"pass\" prefix=\"  \"\n" +
				"        NEWLINE \"\\n\"\n" +
				"      DEDENT \"\"\n" +
				"  ENDMARKER \"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := ParseString(tt.src)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, pytree.Dump(tree)); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLeafPositions(t *testing.T) {
	tree, err := ParseString("x = 1\nprint y\n")
	require.NoError(t, err)

	var y *pytree.Node
	for leaf := range tree.Leaves() {
		if leaf.Value == "y" {
			y = leaf
		}
	}

	require.NotNil(t, y)
	assert.Equal(t, 2, y.Pos.Line)
	assert.Equal(t, 6, y.Pos.Column)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
		line int
		col  int
	}{
		{name: "unbalanced paren", src: "foo(\n", msg: "unexpected NEWLINE", line: 2, col: 0},
		{name: "double equals", src: "x = = 1\n", msg: `unexpected OP "="`, line: 1, col: 4},
		{name: "missing indent", src: "if x:\nprint 'a'\n", msg: `unexpected KEYWORD "print"`, line: 2, col: 0},
		{name: "unterminated string", src: "x = 'abc\n", msg: "unterminated string literal", line: 1, col: 4},
		{name: "end of input", src: "x = (1 +", msg: "unexpected NEWLINE", line: 1, col: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.src)
			require.Error(t, err)

			var parseErr *Error
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.msg, parseErr.Msg)
			assert.Equal(t, tt.line, parseErr.Line)
			assert.Equal(t, tt.col, parseErr.Column)
		})
	}
}

func TestPrintFunctionFuture(t *testing.T) {
	src := "\"\"\"doc\"\"\"\nfrom __future__ import print_function, division\nprint('a', end='')\n"

	tree, err := ParseString(src)
	require.NoError(t, err)
	assert.Equal(t, src, pytree.Serialize(tree))

	for leaf := range tree.Leaves() {
		if leaf.Value == "print" {
			assert.Equal(t, lexer.KindName, leaf.Kind)
		}
	}

	_, err = ParseString(src, WithGrammar(grammar.Python2()))
	require.Error(t, err)
}

func TestPrintCallFallback(t *testing.T) {
	src := "print('a', end=' ')\nprint(x, file=f)\n"

	tree, err := ParseString(src)
	require.NoError(t, err)
	assert.Equal(t, src, pytree.Serialize(tree))
	assert.Equal(t, "power", tree.Child(0).Child(0).Symbol)

	_, err = ParseString(src, WithGrammar(grammar.Python2()))
	require.Error(t, err)

	// the statement form keeps print as a keyword
	tree, err = ParseString("print 'a'\n")
	require.NoError(t, err)
	assert.Equal(t, "print_stmt", tree.Child(0).Child(0).Symbol)

	_, err = ParseString("print 'a' 'b' +\n")

	var parseErr *Error
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, parseErr.Line)
}

func TestDetectFutures(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{name: "none", src: "x = 1\n"},
		{name: "simple", src: "from __future__ import print_function\n", want: []string{"print_function"}},
		{name: "after docstring", src: "'doc'\nfrom __future__ import division\n", want: []string{"division"}},
		{name: "parenthesized", src: "from __future__ import (absolute_import,\n    with_statement as w)\n", want: []string{"absolute_import", "with_statement"}},
		{name: "several statements", src: "from __future__ import a; from __future__ import b\n", want: []string{"a", "b"}},
		{name: "after code", src: "import os\nfrom __future__ import print_function\n"},
		{name: "second docstring", src: "'a'\n'b'\nfrom __future__ import division\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := lexer.All(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, DetectFutures(tokens))
		})
	}
}

func TestParseWithStrictIndent(t *testing.T) {
	_, err := ParseString("if x:\n \ty\n", WithLexerOptions(lexer.WithStrictIndent()))

	var parseErr *Error
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "inconsistent use of tabs and spaces in indentation", parseErr.Msg)
}
