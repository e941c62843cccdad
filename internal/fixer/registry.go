// Package fixer holds the registry of rewrite rules.
//
// Fixers are registered explicitly, one call per rule, and the registry is
// then sealed. Sealing checks declared dependencies and fixes the execution
// order: dependencies first, otherwise lower priority first, otherwise
// registration order. A sealed registry is read-only and may be shared by
// concurrent conversions.
package fixer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tidwall/btree"

	"github.com/mouse-blink/py3ify/internal/grammar"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

var (
	ErrDuplicateFixer    = errors.New("duplicate fixer")
	ErrUnknownDependency = errors.New("unknown fixer dependency")
	ErrDependencyCycle   = errors.New("fixer dependency cycle")
	ErrSealed            = errors.New("registry is sealed")
	ErrNotSealed         = errors.New("registry is not sealed")
	ErrUnknownFixer      = errors.New("unknown fixer")
	ErrInvalidFixer      = errors.New("invalid fixer")
)

// Fixer is one syntax migration. Transform receives a node matched by
// Pattern and returns its replacement, the same node after modifying it in
// place, or nil to leave it alone. Transform must not depend on anything but
// the match.
type Fixer struct {
	Name      string
	Priority  int
	Pattern   string
	DependsOn []string
	Transform func(pattern.Match) *pytree.Node
}

// Entry is a registered fixer together with its compiled pattern.
type Entry struct {
	Fixer
	Matcher *pattern.Pattern

	index int
}

// Registry collects fixers and computes their execution order.
type Registry struct {
	grammar *grammar.Grammar
	entries []*Entry
	byName  map[string]*Entry
	order   []*Entry
	sealed  bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithGrammar sets the grammar fixer patterns are checked against.
func WithGrammar(g *grammar.Grammar) Option {
	return func(r *Registry) {
		r.grammar = g
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{byName: make(map[string]*Entry)}
	for _, opt := range opts {
		opt(r)
	}

	if r.grammar == nil {
		r.grammar = grammar.Python2()
	}

	return r
}

// Register compiles the fixer's pattern and adds it to the registry.
func (r *Registry) Register(f Fixer) error {
	if r.sealed {
		return fmt.Errorf("register %s: %w", f.Name, ErrSealed)
	}

	if f.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidFixer)
	}

	if f.Transform == nil {
		return fmt.Errorf("%w: %s has no transform", ErrInvalidFixer, f.Name)
	}

	if _, ok := r.byName[f.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFixer, f.Name)
	}

	p, err := pattern.Compile(f.Pattern)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidFixer, f.Name, err)
	}

	for _, sym := range p.Symbols() {
		if r.grammar.Production(sym) == nil {
			return fmt.Errorf("%w: %s: pattern refers to unknown symbol %q", ErrInvalidFixer, f.Name, sym)
		}
	}

	f.DependsOn = slices.Clone(f.DependsOn)
	e := &Entry{Fixer: f, Matcher: p, index: len(r.entries)}
	r.entries = append(r.entries, e)
	r.byName[f.Name] = e

	return nil
}

// Seal validates dependencies and freezes the execution order.
func (r *Registry) Seal() error {
	if r.sealed {
		return nil
	}

	indegree := make(map[*Entry]int, len(r.entries))
	dependents := make(map[*Entry][]*Entry)

	for _, e := range r.entries {
		for _, name := range e.DependsOn {
			dep, ok := r.byName[name]
			if !ok {
				return fmt.Errorf("%w: %s depends on %q", ErrUnknownDependency, e.Name, name)
			}

			indegree[e]++
			dependents[dep] = append(dependents[dep], e)
		}
	}

	ready := btree.NewBTreeG(func(a, b *Entry) bool {
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}

		return a.index < b.index
	})

	for _, e := range r.entries {
		if indegree[e] == 0 {
			ready.Set(e)
		}
	}

	order := make([]*Entry, 0, len(r.entries))
	for {
		e, ok := ready.PopMin()
		if !ok {
			break
		}

		order = append(order, e)

		for _, d := range dependents[e] {
			indegree[d]--
			if indegree[d] == 0 {
				ready.Set(d)
			}
		}
	}

	if len(order) != len(r.entries) {
		var stuck []string
		for _, e := range r.entries {
			if indegree[e] > 0 {
				stuck = append(stuck, e.Name)
			}
		}

		return fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(stuck, ", "))
	}

	r.order = order
	r.sealed = true

	return nil
}

// Sealed reports whether Seal has succeeded.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Fixers returns the fixers in execution order.
func (r *Registry) Fixers() ([]*Entry, error) {
	if !r.sealed {
		return nil, ErrNotSealed
	}

	return slices.Clone(r.order), nil
}

// FixersFor returns the fixers to run for a target version. Targets outside
// the 3.x family get none, which makes conversion a pass-through.
func (r *Registry) FixersFor(version string) ([]*Entry, error) {
	if !r.sealed {
		return nil, ErrNotSealed
	}

	if !TargetsPython3(version) {
		return nil, nil
	}

	return slices.Clone(r.order), nil
}

// Lookup finds a fixer by name.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Names lists fixer names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.Name)
	}

	return names
}

// Select returns a sealed registry holding the named fixers and everything
// they depend on, registered in the same relative order.
func (r *Registry) Select(names []string) (*Registry, error) {
	keep := make(map[string]bool)

	var visit func(name string) error
	visit = func(name string) error {
		if keep[name] {
			return nil
		}

		e, ok := r.byName[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownFixer, name)
		}

		keep[name] = true

		for _, dep := range e.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}

		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	sub := NewRegistry(WithGrammar(r.grammar))
	for _, e := range r.entries {
		if !keep[e.Name] {
			continue
		}

		if err := sub.Register(e.Fixer); err != nil {
			return nil, err
		}
	}

	if err := sub.Seal(); err != nil {
		return nil, err
	}

	return sub, nil
}

// TargetsPython3 reports whether a target version selects the 3.x family.
func TargetsPython3(version string) bool {
	return strings.HasPrefix(version, "3")
}
