package domain_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/py3ify/internal/adapter"
	adaptermocks "github.com/mouse-blink/py3ify/internal/adapter/mocks"
	"github.com/mouse-blink/py3ify/internal/controller"
	controllermocks "github.com/mouse-blink/py3ify/internal/controller/mocks"
	"github.com/mouse-blink/py3ify/internal/domain"
	"github.com/mouse-blink/py3ify/internal/domain/fixers"
	domainmocks "github.com/mouse-blink/py3ify/internal/domain/mocks"
	m "github.com/mouse-blink/py3ify/internal/model"
)

var testFixers = []string{"print", "ne"}

type workflowMocks struct {
	fs     *adaptermocks.MockSourceFSAdapter
	store  *adaptermocks.MockReportStore
	ui     *controllermocks.MockUI
	engine *domainmocks.MockEngine
}

func newWorkflowMocks(t *testing.T) (workflowMocks, domain.Workflow) {
	t.Helper()

	mocks := workflowMocks{
		fs:     adaptermocks.NewMockSourceFSAdapter(t),
		store:  adaptermocks.NewMockReportStore(t),
		ui:     controllermocks.NewMockUI(t),
		engine: domainmocks.NewMockEngine(t),
	}

	wf := domain.NewWorkflow(mocks.fs, mocks.store, mocks.ui, mocks.engine)

	return mocks, wf
}

// expectConvertUI sets up the calls every conversion makes on the UI.
func (w workflowMocks) expectConvertUI(total, workers int) {
	w.ui.EXPECT().Start(mock.Anything, mock.Anything).Return(nil)
	w.ui.EXPECT().Close().Return()
	w.ui.EXPECT().DisplayConversionStart(total, workers).Return()
	w.ui.EXPECT().DisplayStartingFile(mock.Anything, mock.Anything).Return().Times(total)
}

func legacySources() []m.Source {
	return []m.Source{
		{Origin: "a.py", Hash: "hash-a", Content: []byte("print 'a'\n")},
		{Origin: "b.py", Hash: "hash-b", Content: []byte("x = 1\n")},
	}
}

func TestWorkflow_Convert_Success(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	sources := legacySources()

	mocks.fs.EXPECT().Get([]m.Path{"."}, []string(nil)).Return(sources, nil)
	mocks.engine.EXPECT().FixerNames().Return(testFixers)
	mocks.engine.EXPECT().Run(mock.Anything, "print 'a'\n", "3").Return(domain.Outcome{
		Status:  m.StatusConverted,
		Code:    "print('a')\n",
		Passes:  2,
		Changes: []m.Change{{Fixer: "print", Pass: 1, Line: 1}},
	})
	mocks.engine.EXPECT().Run(mock.Anything, "x = 1\n", "3").Return(domain.Outcome{
		Status: m.StatusUnchanged,
		Code:   "x = 1\n",
		Passes: 1,
	})
	mocks.fs.EXPECT().WriteFile(m.Path("a.py"), []byte("print('a')\n")).Return(nil)

	mocks.expectConvertUI(2, 2)
	mocks.ui.EXPECT().DisplayFileResult(mock.Anything, mock.Anything).Return().Times(2)
	mocks.ui.EXPECT().DisplaySummary(m.Summary{Converted: 1, Unchanged: 1, Changes: 1}).Return()
	mocks.ui.EXPECT().Wait().Return()

	mocks.store.EXPECT().SaveReports(m.Path(".reports"), mock.MatchedBy(func(reports []m.Report) bool {
		return len(reports) == 2
	})).Return(nil)
	mocks.store.EXPECT().RegenerateIndex(m.Path(".reports")).Return(nil)

	reports, err := wf.Convert(context.Background(), domain.ConvertArgs{
		Paths:    []m.Path{"."},
		Parallel: 4,
		Write:    true,
		Reports:  ".reports",
	})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, m.Path("a.py"), reports[0].Path)
	assert.Equal(t, m.StatusConverted, reports[0].Status)
	assert.Equal(t, "3", reports[0].Target)
	assert.Equal(t, testFixers, reports[0].Fixers)
	assert.Equal(t, "hash-a", reports[0].Hash)
	assert.Equal(t, 2, reports[0].Passes)
	assert.Equal(t, m.StatusUnchanged, reports[1].Status)
	assert.False(t, reports[1].Cached)
}

func TestWorkflow_Convert_GetSourcesError(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)

	mocks.fs.EXPECT().Get(mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := wf.Convert(context.Background(), domain.ConvertArgs{Paths: []m.Path{"missing"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get sources")
}

func TestWorkflow_Convert_ReportsFailures(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	sources := legacySources()

	mocks.fs.EXPECT().Get(mock.Anything, mock.Anything).Return(sources, nil)
	mocks.engine.EXPECT().FixerNames().Return(testFixers)
	mocks.engine.EXPECT().Run(mock.Anything, "print 'a'\n", "2.7").Return(domain.Outcome{
		Status: m.StatusSyntaxError,
		Err:    errors.New("bad input"),
	})
	mocks.engine.EXPECT().Run(mock.Anything, "x = 1\n", "2.7").Return(domain.Outcome{
		Status: m.StatusEngineError,
		Err:    domain.ErrNoConvergence,
	})

	mocks.expectConvertUI(2, 1)
	mocks.ui.EXPECT().DisplayFileResult(mock.Anything, 0).Return().Times(2)
	mocks.ui.EXPECT().DisplaySummary(m.Summary{SyntaxErrors: 1, EngineErrors: 1}).Return()
	mocks.ui.EXPECT().Wait().Return()

	reports, err := wf.Convert(context.Background(), domain.ConvertArgs{
		Paths:    []m.Path{"."},
		Target:   "2.7",
		Parallel: 1,
		Write:    true,
	})
	require.ErrorIs(t, err, domain.ErrConversionFailures)
	assert.Contains(t, err.Error(), "2 of 2 file(s)")

	require.Len(t, reports, 2)
	assert.Equal(t, domain.SyntaxErrorMessage, reports[0].Error)
	assert.Equal(t, domain.ErrNoConvergence.Error(), reports[1].Error)
	assert.Empty(t, reports[0].Code)
}

func TestWorkflow_Convert_UsesCache(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	sources := legacySources()[:1]

	stored := m.Report{
		Path:   "a.py",
		Hash:   "hash-a",
		Target: "3",
		Fixers: testFixers,
		Status: m.StatusConverted,
		Code:   "print('a')\n",
	}

	mocks.fs.EXPECT().Get(mock.Anything, mock.Anything).Return(sources, nil)
	mocks.engine.EXPECT().FixerNames().Return(testFixers)
	mocks.store.EXPECT().LoadReports(m.Path(".reports")).Return([]m.Report{stored}, nil)

	mocks.expectConvertUI(1, 1)
	mocks.ui.EXPECT().DisplayFileResult(mock.MatchedBy(func(r m.FileResult) bool {
		return r.Report.Cached && r.Source.Origin == "a.py"
	}), 0).Return()
	mocks.ui.EXPECT().DisplaySummary(m.Summary{Converted: 1}).Return()
	mocks.ui.EXPECT().Wait().Return()

	reports, err := wf.Convert(context.Background(), domain.ConvertArgs{
		Paths:    []m.Path{"."},
		UseCache: true,
		Reports:  ".reports",
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Cached)
	assert.Equal(t, stored.Code, reports[0].Code)
}

func TestWorkflow_Convert_StaleCacheEntryIsRecomputed(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	sources := legacySources()[:1]

	stale := m.Report{Path: "a.py", Hash: "old-hash", Target: "3", Fixers: testFixers, Status: m.StatusUnchanged}

	mocks.fs.EXPECT().Get(mock.Anything, mock.Anything).Return(sources, nil)
	mocks.engine.EXPECT().FixerNames().Return(testFixers)
	mocks.store.EXPECT().LoadReports(m.Path(".reports")).Return([]m.Report{stale}, nil)
	mocks.engine.EXPECT().Run(mock.Anything, mock.Anything, "3").Return(domain.Outcome{
		Status: m.StatusConverted,
		Code:   "print('a')\n",
	})

	mocks.expectConvertUI(1, 1)
	mocks.ui.EXPECT().DisplayFileResult(mock.Anything, 0).Return()
	mocks.ui.EXPECT().DisplaySummary(mock.Anything).Return()
	mocks.ui.EXPECT().Wait().Return()
	mocks.store.EXPECT().SaveReports(m.Path(".reports"), mock.Anything).Return(nil)
	mocks.store.EXPECT().RegenerateIndex(m.Path(".reports")).Return(nil)

	reports, err := wf.Convert(context.Background(), domain.ConvertArgs{
		Paths:    []m.Path{"."},
		UseCache: true,
		Reports:  ".reports",
	})
	require.NoError(t, err)
	assert.False(t, reports[0].Cached)
}

func TestWorkflow_Convert_SaveReportsError(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	sources := legacySources()[1:]

	mocks.fs.EXPECT().Get(mock.Anything, mock.Anything).Return(sources, nil)
	mocks.engine.EXPECT().FixerNames().Return(testFixers)
	mocks.engine.EXPECT().Run(mock.Anything, mock.Anything, mock.Anything).Return(domain.Outcome{
		Status: m.StatusUnchanged,
		Code:   "x = 1\n",
	})

	mocks.expectConvertUI(1, 1)
	mocks.ui.EXPECT().DisplayFileResult(mock.Anything, 0).Return()
	mocks.store.EXPECT().SaveReports(mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := wf.Convert(context.Background(), domain.ConvertArgs{Paths: []m.Path{"."}, Reports: ".reports"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save reports")
}

func TestWorkflow_Convert_WriteError(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	sources := legacySources()[:1]

	mocks.fs.EXPECT().Get(mock.Anything, mock.Anything).Return(sources, nil)
	mocks.engine.EXPECT().FixerNames().Return(testFixers)
	mocks.engine.EXPECT().Run(mock.Anything, mock.Anything, mock.Anything).Return(domain.Outcome{
		Status: m.StatusConverted,
		Code:   "print('a')\n",
	})
	mocks.fs.EXPECT().WriteFile(m.Path("a.py"), mock.Anything).Return(os.ErrPermission)

	mocks.expectConvertUI(1, 1)

	_, err := wf.Convert(context.Background(), domain.ConvertArgs{Paths: []m.Path{"."}, Write: true})
	require.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "write a.py")
}

func TestWorkflow_Convert_Cancelled(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	sources := legacySources()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mocks.fs.EXPECT().Get(mock.Anything, mock.Anything).Return(sources, nil)
	mocks.engine.EXPECT().FixerNames().Return(testFixers)
	mocks.engine.EXPECT().Run(mock.Anything, mock.Anything, mock.Anything).Return(domain.Outcome{
		Status: m.StatusEngineError,
		Err:    context.Canceled,
	}).Maybe()

	mocks.ui.EXPECT().Start(mock.Anything, mock.Anything).Return(nil)
	mocks.ui.EXPECT().Close().Return()
	mocks.ui.EXPECT().DisplayConversionStart(2, 1).Return()
	mocks.ui.EXPECT().DisplayStartingFile(mock.Anything, mock.Anything).Return().Maybe()
	mocks.ui.EXPECT().DisplayFileResult(mock.Anything, mock.Anything).Return().Maybe()

	_, err := wf.Convert(ctx, domain.ConvertArgs{Paths: []m.Path{"."}, Parallel: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWorkflow_Convert_UIStartError(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)

	mocks.fs.EXPECT().Get(mock.Anything, mock.Anything).Return(nil, nil)
	mocks.engine.EXPECT().FixerNames().Return(testFixers)
	mocks.ui.EXPECT().Start(mock.Anything, mock.Anything).Return(errors.New("no terminal"))

	_, err := wf.Convert(context.Background(), domain.ConvertArgs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start ui")
}

func TestWorkflow_List(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	sources := legacySources()

	mocks.fs.EXPECT().Get([]m.Path{"src"}, []string{"build/**"}).Return(sources, nil)
	mocks.engine.EXPECT().FixerNames().Return(testFixers)
	mocks.store.EXPECT().CheckUpdates(m.Path(".reports"), sources, "3", testFixers).
		Return([]m.Source{sources[1], {Origin: "deleted.py"}}, nil)

	mocks.ui.EXPECT().Start(mock.Anything).Return(nil)
	mocks.ui.EXPECT().DisplaySources([]m.SourceStatus{
		{Source: sources[0], Cached: true},
		{Source: sources[1], Cached: false},
	}).Return(nil)
	mocks.ui.EXPECT().Wait().Return()
	mocks.ui.EXPECT().Close().Return()

	err := wf.List(domain.ListArgs{
		Paths:   []m.Path{"src"},
		Exclude: []string{"build/**"},
		Reports: ".reports",
	})
	require.NoError(t, err)
}

func TestWorkflow_List_WithoutReports(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	sources := legacySources()

	mocks.fs.EXPECT().Get(mock.Anything, mock.Anything).Return(sources, nil)
	mocks.ui.EXPECT().Start(mock.Anything).Return(nil)
	mocks.ui.EXPECT().DisplaySources(mock.MatchedBy(func(statuses []m.SourceStatus) bool {
		return len(statuses) == 2 && !statuses[0].Cached && !statuses[1].Cached
	})).Return(nil)
	mocks.ui.EXPECT().Wait().Return()
	mocks.ui.EXPECT().Close().Return()

	require.NoError(t, wf.List(domain.ListArgs{Paths: []m.Path{"."}}))
}

func TestWorkflow_List_CheckUpdatesError(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)

	mocks.fs.EXPECT().Get(mock.Anything, mock.Anything).Return(legacySources(), nil)
	mocks.engine.EXPECT().FixerNames().Return(testFixers)
	mocks.store.EXPECT().CheckUpdates(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("path is not a directory"))

	err := wf.List(domain.ListArgs{Paths: []m.Path{"."}, Reports: "file.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check reports")
}

func TestWorkflow_View(t *testing.T) {
	mocks, wf := newWorkflowMocks(t)
	reports := []m.Report{{Path: "a.py", Status: m.StatusConverted}}

	mocks.store.EXPECT().LoadReports(m.Path(".reports")).Return(reports, nil)
	mocks.ui.EXPECT().Start(mock.Anything).Return(nil)
	mocks.ui.EXPECT().DisplayReports(reports).Return(nil)
	mocks.ui.EXPECT().Wait().Return()
	mocks.ui.EXPECT().Close().Return()

	require.NoError(t, wf.View(domain.ViewArgs{Reports: ".reports"}))
}

func TestWorkflow_View_Errors(t *testing.T) {
	t.Run("no directory", func(t *testing.T) {
		_, wf := newWorkflowMocks(t)

		err := wf.View(domain.ViewArgs{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reports directory path is required")
	})

	t.Run("load error", func(t *testing.T) {
		mocks, wf := newWorkflowMocks(t)

		mocks.store.EXPECT().LoadReports(mock.Anything).Return(nil, errors.New("decode reports"))

		err := wf.View(domain.ViewArgs{Reports: ".reports"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load reports")
	})
}

// TestWorkflow_ConvertExamples runs the real stack over the legacy examples
// and compares the rewritten files with their .py3 counterparts.
func TestWorkflow_ConvertExamples(t *testing.T) {
	const examples = "../../examples/legacy"

	dir := t.TempDir()
	reportsDir := filepath.Join(dir, ".py3ify-reports")

	names := []string{"counts.py", "errors.py", "greet.py"}
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(examples, name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o644))
	}

	registry, err := fixers.Default()
	require.NoError(t, err)

	driver := domain.NewDriver(registry)

	newWorkflow := func() (domain.Workflow, *bytes.Buffer) {
		var out bytes.Buffer

		cmd := &cobra.Command{}
		cmd.SetOut(&out)

		return domain.NewWorkflow(
			adapter.NewLocalSourceFSAdapter(),
			adapter.NewReportStore(),
			controller.NewSimpleUI(cmd),
			driver,
		), &out
	}

	wf, out := newWorkflow()

	reports, err := wf.Convert(context.Background(), domain.ConvertArgs{
		Paths:    []m.Path{m.Path(dir)},
		Parallel: 2,
		Write:    true,
		UseCache: true,
		Reports:  m.Path(reportsDir),
	})
	require.NoError(t, err, out.String())
	require.Len(t, reports, len(names))

	for _, name := range names {
		want, err := os.ReadFile(filepath.Join(examples, name+"3"))
		require.NoError(t, err)

		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)

		assert.Equal(t, string(want), string(got), name)
	}

	for _, r := range reports {
		assert.Equal(t, m.StatusConverted, r.Status, r.Path)
		assert.NotEmpty(t, r.Changes, r.Path)
	}

	stored, err := adapter.NewReportStore().LoadReports(m.Path(reportsDir))
	require.NoError(t, err)
	assert.Len(t, stored, len(names))
	assert.FileExists(t, filepath.Join(reportsDir, "_index.yaml"))

	// The rewritten files are already Python 3: a second run finds nothing
	// to change.
	wf, out = newWorkflow()

	reports, err = wf.Convert(context.Background(), domain.ConvertArgs{
		Paths:    []m.Path{m.Path(dir)},
		UseCache: true,
		Reports:  m.Path(reportsDir),
	})
	require.NoError(t, err, out.String())

	for _, r := range reports {
		assert.Equal(t, m.StatusUnchanged, r.Status, r.Path)
	}

	// A third run over unchanged content is served from the cache.
	wf, _ = newWorkflow()

	reports, err = wf.Convert(context.Background(), domain.ConvertArgs{
		Paths:    []m.Path{m.Path(dir)},
		UseCache: true,
		Reports:  m.Path(reportsDir),
	})
	require.NoError(t, err)

	for _, r := range reports {
		assert.True(t, r.Cached, r.Path)
	}
}
