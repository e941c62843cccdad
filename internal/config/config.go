// Package config loads py3ify settings from .py3ify.yaml or .py3ify.toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/lexer"
)

// DefaultReportsDir is where conversion reports are kept unless configured.
const DefaultReportsDir = ".py3ify-reports"

// FileNames are the configuration files Discover looks for, in order.
var FileNames = []string{".py3ify.yaml", ".py3ify.yml", ".py3ify.toml"}

var (
	// ErrUnsupportedFormat is returned for a configuration file that is
	// neither YAML nor TOML.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	Target       string        `yaml:"target" toml:"target"`
	MaxPasses    int           `yaml:"max_passes" toml:"max_passes"`
	TabSize      int           `yaml:"tab_size" toml:"tab_size"`
	StrictIndent bool          `yaml:"strict_indent" toml:"strict_indent"`
	Parallel     int           `yaml:"parallel" toml:"parallel"`
	Timeout      time.Duration `yaml:"timeout" toml:"timeout"`
	// Fixers restricts the run to the named fixers. Empty means all.
	Fixers  []string `yaml:"fixers,omitempty" toml:"fixers,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`
	Cache   Cache    `yaml:"cache" toml:"cache"`
}

// Cache configures the report store.
type Cache struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Dir     string `yaml:"dir" toml:"dir"`
}

// Default returns the settings used when no file is found.
func Default() Config {
	return Config{
		Target:    "3",
		MaxPasses: 100,
		TabSize:   8,
		Parallel:  1,
		Timeout:   30 * time.Second,
		Cache: Cache{
			Enabled: true,
			Dir:     DefaultReportsDir,
		},
	}
}

// Load reads path on top of Default. The decoder is chosen by extension.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	case ".toml":
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}

		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
		}
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	return cfg, nil
}

// Save writes cfg to path in the format its extension names.
func Save(path string, cfg Config) error {
	var buf bytes.Buffer

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Discover returns the first configuration file in dir, or "" when there is
// none.
func Discover(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}

// Validate checks budgets and that every configured fixer is registered.
func (c Config) Validate(registry *fixer.Registry) error {
	if strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("%w: target is empty", ErrInvalidConfig)
	}

	if c.MaxPasses <= 0 {
		return fmt.Errorf("%w: max_passes must be positive, got %d", ErrInvalidConfig, c.MaxPasses)
	}

	if c.TabSize <= 0 {
		return fmt.Errorf("%w: tab_size must be positive, got %d", ErrInvalidConfig, c.TabSize)
	}

	if c.Parallel < 0 {
		return fmt.Errorf("%w: parallel must not be negative, got %d", ErrInvalidConfig, c.Parallel)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative, got %s", ErrInvalidConfig, c.Timeout)
	}

	for _, name := range c.Fixers {
		if _, ok := registry.Lookup(name); !ok {
			return fmt.Errorf("%w: %w: %s", ErrInvalidConfig, fixer.ErrUnknownFixer, name)
		}
	}

	return nil
}

// LexerOptions translates the indentation settings for the lexer.
func (c Config) LexerOptions() []lexer.Option {
	opts := []lexer.Option{lexer.WithTabSize(c.TabSize)}
	if c.StrictIndent {
		opts = append(opts, lexer.WithStrictIndent())
	}

	return opts
}

// ReportsDir is the report store directory, or "" when caching is off.
func (c Config) ReportsDir() string {
	if !c.Cache.Enabled {
		return ""
	}

	return c.Cache.Dir
}
