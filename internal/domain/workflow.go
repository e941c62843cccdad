// Package domain runs the conversion engine and the batch workflows built on it.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mouse-blink/py3ify/internal/adapter"
	"github.com/mouse-blink/py3ify/internal/controller"
	m "github.com/mouse-blink/py3ify/internal/model"
)

// DefaultTarget is the target version used when none is configured.
const DefaultTarget = "3"

// ErrConversionFailures is returned by Convert when at least one file could
// not be converted. The batch itself still completes.
var ErrConversionFailures = errors.New("conversion failed")

// Engine converts one source. *Driver implements it.
type Engine interface {
	Run(ctx context.Context, source, version string) Outcome
	FixerNames() []string
}

// ConvertArgs configures a batch conversion.
type ConvertArgs struct {
	Paths    []m.Path
	Exclude  []string
	Target   string
	Parallel int
	// Timeout bounds a single file. Zero means no limit.
	Timeout time.Duration
	// Write rewrites converted files in place.
	Write bool
	// Diff asks the UI to show a unified diff per converted file.
	Diff bool
	// UseCache reuses stored reports whose key still matches.
	UseCache bool
	// Reports is the report store directory. Empty disables persistence.
	Reports m.Path
}

// ListArgs configures a source listing.
type ListArgs struct {
	Paths   []m.Path
	Exclude []string
	Target  string
	Reports m.Path
}

// ViewArgs configures browsing of stored reports.
type ViewArgs struct {
	Reports m.Path
}

// Workflow defines the batch operations of the CLI.
type Workflow interface {
	Convert(ctx context.Context, args ConvertArgs) ([]m.Report, error)
	List(args ListArgs) error
	View(args ViewArgs) error
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*workflow)

// WithWorkflowLogger sets the logger for batch progress.
func WithWorkflowLogger(logger *zap.Logger) WorkflowOption {
	return func(w *workflow) {
		if logger != nil {
			w.log = logger
		}
	}
}

type workflow struct {
	fsAdapter   adapter.SourceFSAdapter
	reportStore adapter.ReportStore
	ui          controller.UI
	engine      Engine
	log         *zap.Logger
}

// NewWorkflow creates a new Workflow instance with the provided adapters.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	engine Engine,
	opts ...WorkflowOption,
) Workflow {
	w := &workflow{
		fsAdapter:   fsAdapter,
		reportStore: reportStore,
		ui:          ui,
		engine:      engine,
		log:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Convert runs the engine over every source under args.Paths with a pool of
// args.Parallel workers. Reports come back in source order. Files that fail
// to convert do not stop the batch; they are counted in the returned
// ErrConversionFailures.
func (w *workflow) Convert(ctx context.Context, args ConvertArgs) ([]m.Report, error) {
	target := args.Target
	if target == "" {
		target = DefaultTarget
	}

	sources, err := w.fsAdapter.Get(args.Paths, args.Exclude)
	if err != nil {
		return nil, fmt.Errorf("get sources: %w", err)
	}

	fixers := w.engine.FixerNames()

	cached, err := w.cachedReports(args)
	if err != nil {
		return nil, err
	}

	if err := w.ui.Start(controller.WithConvertMode(), controller.WithDiffs(args.Diff)); err != nil {
		return nil, fmt.Errorf("start ui: %w", err)
	}
	defer w.ui.Close()

	workers := max(args.Parallel, 1)
	workers = min(workers, max(len(sources), 1))

	w.log.Info("converting",
		zap.Int("files", len(sources)),
		zap.Int("workers", workers),
		zap.String("target", target),
	)
	w.ui.DisplayConversionStart(len(sources), workers)

	reports, err := w.runPool(ctx, sources, workers, func(ctx context.Context, source m.Source, worker int) (m.Report, error) {
		w.ui.DisplayStartingFile(source.Origin, worker)

		report, ok := cached[m.CacheKey(source.Origin, source.Hash, target, fixers)]
		if ok {
			report.Cached = true
		} else {
			report = w.convertSource(ctx, source, target, fixers, args.Timeout)
		}

		if args.Write && report.Status == m.StatusConverted {
			if err := w.fsAdapter.WriteFile(source.Origin, []byte(report.Code)); err != nil {
				return m.Report{}, fmt.Errorf("write %s: %w", source.Origin, err)
			}
		}

		w.ui.DisplayFileResult(m.FileResult{Source: source, Report: report}, worker)

		return report, nil
	})
	if err != nil {
		return reports, err
	}

	if err := w.persist(args.Reports, reports); err != nil {
		return reports, err
	}

	summary := m.Summarize(reports)
	w.ui.DisplaySummary(summary)
	w.ui.Wait()

	if failed := summary.SyntaxErrors + summary.EngineErrors; failed > 0 {
		return reports, fmt.Errorf("%w: %d of %d file(s)", ErrConversionFailures, failed, summary.Total())
	}

	return reports, nil
}

type convertFunc func(ctx context.Context, source m.Source, worker int) (m.Report, error)

// runPool hands sources to workers over a channel so every worker keeps a
// stable index for the UI. The first error cancels the remaining work.
func (w *workflow) runPool(ctx context.Context, sources []m.Source, workers int, fn convertFunc) ([]m.Report, error) {
	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan int)
	results := make([]m.Report, len(sources))
	done := make([]bool, len(sources))

	for worker := range workers {
		g.Go(func() error {
			for i := range jobs {
				report, err := fn(gctx, sources[i], worker)
				if err != nil {
					return err
				}

				results[i] = report
				done[i] = true
			}

			return nil
		})
	}

feed:
	for i := range sources {
		select {
		case jobs <- i:
		case <-gctx.Done():
			break feed
		}
	}

	close(jobs)

	err := g.Wait()

	reports := make([]m.Report, 0, len(sources))
	for i, report := range results {
		if done[i] {
			reports = append(reports, report)
		}
	}

	if err != nil {
		return reports, err
	}

	if err := ctx.Err(); err != nil {
		return reports, fmt.Errorf("conversion interrupted: %w", err)
	}

	return reports, nil
}

func (w *workflow) convertSource(ctx context.Context, source m.Source, target string, fixers []string, timeout time.Duration) m.Report {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out := w.engine.Run(ctx, string(source.Content), target)

	report := m.Report{
		Path:    source.Origin,
		Hash:    source.Hash,
		Target:  target,
		Fixers:  fixers,
		Status:  out.Status,
		Code:    out.Code,
		Passes:  out.Passes,
		Changes: out.Changes,
	}

	log := w.log.With(zap.String("path", string(source.Origin)))

	switch out.Status {
	case m.StatusSyntaxError:
		report.Error = SyntaxErrorMessage
		log.Debug("syntax error", zap.Error(out.Err))
	case m.StatusEngineError:
		report.Error = out.Err.Error()
		log.Error("engine error", zap.Error(out.Err))
	default:
		log.Debug("converted",
			zap.String("status", string(out.Status)),
			zap.Int("passes", out.Passes),
			zap.Int("changes", len(out.Changes)),
		)
	}

	return report
}

// cachedReports indexes stored reports by key when the cache is enabled.
func (w *workflow) cachedReports(args ConvertArgs) (map[string]m.Report, error) {
	cached := make(map[string]m.Report)

	if !args.UseCache || args.Reports == "" {
		return cached, nil
	}

	stored, err := w.reportStore.LoadReports(args.Reports)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}

	for _, r := range stored {
		cached[r.Key()] = r
	}

	w.log.Debug("report cache loaded", zap.Int("reports", len(cached)))

	return cached, nil
}

// persist saves freshly computed reports and refreshes the index.
func (w *workflow) persist(dir m.Path, reports []m.Report) error {
	if dir == "" {
		return nil
	}

	fresh := make([]m.Report, 0, len(reports))
	for _, r := range reports {
		if !r.Cached {
			fresh = append(fresh, r)
		}
	}

	if len(fresh) == 0 {
		return nil
	}

	if err := w.reportStore.SaveReports(dir, fresh); err != nil {
		return fmt.Errorf("save reports: %w", err)
	}

	if err := w.reportStore.RegenerateIndex(dir); err != nil {
		return fmt.Errorf("regenerate index: %w", err)
	}

	return nil
}

// List shows every source under args.Paths and whether a stored report
// still covers it.
func (w *workflow) List(args ListArgs) error {
	target := args.Target
	if target == "" {
		target = DefaultTarget
	}

	sources, err := w.fsAdapter.Get(args.Paths, args.Exclude)
	if err != nil {
		return fmt.Errorf("get sources: %w", err)
	}

	statuses := make([]m.SourceStatus, 0, len(sources))

	stale := make(map[m.Path]struct{}, len(sources))
	if args.Reports == "" {
		for _, s := range sources {
			stale[s.Origin] = struct{}{}
		}
	} else {
		changed, err := w.reportStore.CheckUpdates(args.Reports, sources, target, w.engine.FixerNames())
		if err != nil {
			return fmt.Errorf("check reports: %w", err)
		}

		for _, s := range changed {
			stale[s.Origin] = struct{}{}
		}
	}

	for _, s := range sources {
		_, isStale := stale[s.Origin]
		statuses = append(statuses, m.SourceStatus{Source: s, Cached: !isStale})
	}

	if err := w.ui.Start(controller.WithListMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.ui.Close()

	if err := w.ui.DisplaySources(statuses); err != nil {
		return err
	}

	w.ui.Wait()

	return nil
}

// View shows the reports stored under args.Reports.
func (w *workflow) View(args ViewArgs) error {
	if args.Reports == "" {
		return fmt.Errorf("reports directory path is required")
	}

	reports, err := w.reportStore.LoadReports(args.Reports)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}

	if err := w.ui.Start(controller.WithViewMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.ui.Close()

	if err := w.ui.DisplayReports(reports); err != nil {
		return err
	}

	w.ui.Wait()

	return nil
}
