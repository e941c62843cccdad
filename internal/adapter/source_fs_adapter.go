// Package adapter contains the infrastructure adapters of the py3ify CLI:
// file discovery, report persistence and input decoding.
package adapter

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	m "github.com/mouse-blink/py3ify/internal/model"
)

const pythonExt = ".py"

// ErrInvalidPattern is returned for an exclude glob doublestar cannot parse.
var ErrInvalidPattern = errors.New("invalid exclude pattern")

// skippedDirs hold interpreters, caches and third-party installs. Hidden
// directories are skipped as well.
var skippedDirs = map[string]struct{}{
	"__pycache__":   {},
	"venv":          {},
	"env":           {},
	"site-packages": {},
	"node_modules":  {},
}

// SourceFSAdapter is the filesystem boundary of the workflow. Sources are
// located, read and rewritten through it so batch logic can run on mocks.
type SourceFSAdapter interface {
	// Get collects sources under roots. Directory roots are searched
	// recursively for *.py files; file roots are taken whatever their
	// extension. Paths matching an exclude glob are skipped.
	Get(roots []m.Path, exclude []string) ([]m.Source, error)

	// Walk visits root in lexical order, pruning skipped directories.
	Walk(root m.Path, fn fs.WalkDirFunc) error

	ReadFile(path m.Path) ([]byte, error)

	// WriteFile replaces the contents of an existing file, keeping its mode.
	WriteFile(path m.Path, content []byte) error

	Stat(path m.Path) (fs.FileInfo, error)
}

// LocalSourceFSAdapter is the SourceFSAdapter backed by the local disk.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter returns the local disk adapter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// sourceSet accumulates sources in discovery order without duplicates.
type sourceSet struct {
	exclude []string
	seen    map[m.Path]struct{}
	sources []m.Source
}

func (s *sourceSet) wants(base, path string) bool {
	if _, ok := s.seen[m.Path(path)]; ok {
		return false
	}

	return !isExcluded(base, path, s.exclude)
}

func (s *sourceSet) add(source m.Source) {
	s.seen[source.Origin] = struct{}{}
	s.sources = append(s.sources, source)
}

// Get collects Python sources for the provided roots.
func (a *LocalSourceFSAdapter) Get(roots []m.Path, exclude []string) ([]m.Source, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
	}

	set := &sourceSet{
		exclude: exclude,
		seen:    make(map[m.Path]struct{}),
		sources: []m.Source{},
	}

	for _, root := range roots {
		rootPath, err := expandRoot(string(root))
		if err != nil {
			return nil, err
		}

		info, err := a.Stat(m.Path(rootPath))
		if err != nil {
			return nil, fmt.Errorf("root path error: %w", err)
		}

		if !info.IsDir() {
			if err := a.collect(set, filepath.Dir(rootPath), rootPath); err != nil {
				return nil, err
			}

			continue
		}

		err = a.Walk(m.Path(rootPath), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() || filepath.Ext(path) != pythonExt {
				return nil
			}

			return a.collect(set, rootPath, path)
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	return set.sources, nil
}

func (a *LocalSourceFSAdapter) collect(set *sourceSet, base, path string) error {
	if !set.wants(base, path) {
		return nil
	}

	content, err := a.ReadFile(m.Path(path))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	set.add(m.Source{Origin: m.Path(path), Hash: HashContent(content), Content: content})

	return nil
}

// Walk visits every entry under root except skipped and hidden directories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, fn fs.WalkDirFunc) error {
	rootStr := string(root)

	return filepath.WalkDir(rootStr, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() && path != rootStr && skipDir(d.Name()) {
			return filepath.SkipDir
		}

		return fn(path, d, err)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile rewrites an existing file in place.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte) error {
	info, err := os.Stat(string(path))
	if err != nil {
		return err
	}

	return os.WriteFile(string(path), content, info.Mode().Perm())
}

// Stat returns file metadata for path.
func (a *LocalSourceFSAdapter) Stat(path m.Path) (fs.FileInfo, error) {
	return os.Stat(string(path))
}

// HashContent returns the hex SHA-256 of content.
func HashContent(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}

	_, ok := skippedDirs[name]

	return ok
}

// isExcluded matches exclude globs against the path relative to its root and
// against the base name, so both "build/**" and "*_pb2.py" work.
func isExcluded(base, path string, exclude []string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		rel = path
	}

	rel = filepath.ToSlash(rel)
	name := filepath.Base(path)

	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}

		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}

	return false
}

// expandRoot resolves a leading ~ and cleans the path. Relative roots stay
// relative so reports show paths the way the user typed them.
func expandRoot(root string) (string, error) {
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", root, err)
		}

		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}

	if root == "" {
		return ".", nil
	}

	return filepath.Clean(root), nil
}
