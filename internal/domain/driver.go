package domain

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mouse-blink/py3ify/internal/fixer"
	"github.com/mouse-blink/py3ify/internal/lexer"
	m "github.com/mouse-blink/py3ify/internal/model"
	"github.com/mouse-blink/py3ify/internal/parser"
	"github.com/mouse-blink/py3ify/internal/pattern"
	"github.com/mouse-blink/py3ify/internal/pytree"
)

// DefaultMaxPasses bounds the number of fixer passes per conversion.
const DefaultMaxPasses = 100

var (
	// ErrNoConvergence is returned when fixers keep changing the tree after
	// the pass budget is spent.
	ErrNoConvergence = errors.New("fixers did not converge")
	// ErrRootReplaced is returned when a fixer tries to replace the module node.
	ErrRootReplaced = errors.New("fixer replaced the root node")
)

// State is a step of a driver run.
type State int

// Driver states in the order a successful run visits them.
const (
	StateInit State = iota
	StateParsed
	StateConverging
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateParsed:
		return "PARSED"
	case StateConverging:
		return "CONVERGING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome is everything a driver run produced. Code is empty unless the
// status is converted or unchanged.
type Outcome struct {
	Status  m.Status
	Code    string
	Err     error
	Changes []m.Change
	Passes  int
	States  []State
}

// Driver applies the fixers of a sealed registry to a source until the tree
// stops changing. A Driver holds no per-run state and may be shared.
type Driver struct {
	registry  *fixer.Registry
	maxPasses int
	logger    *zap.Logger
	lexerOpts []lexer.Option
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithMaxPasses sets the pass budget. Values below one are ignored.
func WithMaxPasses(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.maxPasses = n
		}
	}
}

// WithLogger sets the logger used for state transitions and fixer activity.
func WithLogger(logger *zap.Logger) DriverOption {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithLexerOptions passes options to the lexer, e.g. tab size.
func WithLexerOptions(opts ...lexer.Option) DriverOption {
	return func(d *Driver) {
		d.lexerOpts = append(d.lexerOpts, opts...)
	}
}

// NewDriver creates a driver over a sealed registry.
func NewDriver(registry *fixer.Registry, opts ...DriverOption) *Driver {
	d := &Driver{
		registry:  registry,
		maxPasses: DefaultMaxPasses,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// MaxPasses returns the pass budget.
func (d *Driver) MaxPasses() int {
	return d.maxPasses
}

// FixerNames lists the fixers the driver runs, in registration order.
func (d *Driver) FixerNames() []string {
	return d.registry.Names()
}

// Run converts source for the target version. Targets outside the 3.x
// family get the source back unchanged without running any fixer, as do
// sources carrying a bare py3ify:ignore directive in their header.
func (d *Driver) Run(ctx context.Context, source, version string) Outcome {
	r := &run{driver: d, log: d.logger.With(zap.String("target", version))}
	r.enter(StateInit)

	tree, err := parser.ParseString(source, parser.WithLexerOptions(d.lexerOpts...))
	if err != nil {
		r.log.Debug("syntax error", zap.Error(err))
		return r.fail(m.StatusSyntaxError, err)
	}

	r.enter(StateParsed)

	fixers, err := d.registry.FixersFor(version)
	if err != nil {
		return r.fail(m.StatusEngineError, err)
	}

	r.ignore = buildIgnoreIndex(source, d.lexerOpts...)

	if len(fixers) == 0 || r.ignore.file.all {
		return r.done(source, source)
	}

	r.enter(StateConverging)

	for {
		if r.out.Passes == d.maxPasses {
			err := fmt.Errorf("%w after %d passes", ErrNoConvergence, d.maxPasses)
			r.log.Error("conversion aborted", zap.Error(err))

			return r.fail(m.StatusEngineError, err)
		}

		r.out.Passes++

		dirty := false

		for _, e := range fixers {
			if err := ctx.Err(); err != nil {
				return r.fail(m.StatusEngineError, err)
			}

			changed, err := r.apply(e, tree)
			if err != nil {
				return r.fail(m.StatusEngineError, err)
			}

			dirty = dirty || changed
		}

		r.log.Debug("pass finished", zap.Int("pass", r.out.Passes), zap.Bool("dirty", dirty))

		if !dirty {
			break
		}
	}

	return r.done(source, pytree.Serialize(tree))
}

type run struct {
	driver *Driver
	log    *zap.Logger
	ignore ignoreIndex
	out    Outcome
}

func (r *run) enter(s State) {
	r.out.States = append(r.out.States, s)
	r.log.Debug("state", zap.Stringer("state", s))
}

func (r *run) fail(status m.Status, err error) Outcome {
	r.out.Status = status
	r.out.Err = err
	r.out.Code = ""
	r.enter(StateFailed)

	return r.out
}

func (r *run) done(source, code string) Outcome {
	r.out.Code = code

	r.out.Status = m.StatusUnchanged
	if code != source {
		r.out.Status = m.StatusConverted
	}

	r.enter(StateDone)

	return r.out
}

// apply runs one fixer over the tree. Replacements whose text equals the
// original do not count as changes.
func (r *run) apply(e *fixer.Entry, tree *pytree.Node) (bool, error) {
	changed := false

	for match := range pattern.Find(e.Matcher, tree) {
		node := match.Node
		if r.ignore.ignores(e.Name, node) {
			continue
		}

		before := node.String()
		pos := node.Position()

		repl := e.Transform(match)
		if repl == nil {
			continue
		}

		if repl != node {
			if node.Parent() == nil {
				return changed, fmt.Errorf("%s: %w", e.Name, ErrRootReplaced)
			}

			node.Replace(repl)
		}

		after := repl.String()
		if after == before {
			continue
		}

		changed = true
		r.out.Changes = append(r.out.Changes, m.Change{
			Fixer:  e.Name,
			Pass:   r.out.Passes,
			Line:   pos.Line,
			Column: pos.Column,
			Before: before,
			After:  after,
		})

		r.log.Debug("fixer applied",
			zap.String("fixer", e.Name),
			zap.Int("pass", r.out.Passes),
			zap.Int("line", pos.Line),
		)
	}

	return changed, nil
}
