package lexer

// DefaultTabSize is the tab stop used to measure indentation.
const DefaultTabSize = 8

// Python2Keywords are the reserved words of Python 2.7.
var Python2Keywords = []string{
	"and", "as", "assert", "break", "class", "continue", "def", "del",
	"elif", "else", "except", "exec", "finally", "for", "from", "global",
	"if", "import", "in", "is", "lambda", "not", "or", "pass", "print",
	"raise", "return", "try", "while", "with", "yield",
}

// Option configures a Lexer.
type Option func(*config)

type config struct {
	tabSize      int
	strictIndent bool
	keywords     map[string]struct{}
}

func newConfig(opts []Option) config {
	cfg := config{tabSize: DefaultTabSize}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.keywords == nil {
		cfg.keywords = keywordSet(Python2Keywords)
	}

	return cfg
}

// WithTabSize sets the tab stop width used when comparing indentation.
func WithTabSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.tabSize = n
		}
	}
}

// WithStrictIndent rejects indentation that mixes tabs and spaces.
func WithStrictIndent() Option {
	return func(c *config) {
		c.strictIndent = true
	}
}

// WithKeywords replaces the reserved word set.
func WithKeywords(words []string) Option {
	return func(c *config) {
		c.keywords = keywordSet(words)
	}
}

func keywordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}

	return set
}
