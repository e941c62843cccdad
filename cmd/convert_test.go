package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/py3ify/internal/domain"
	domainmocks "github.com/mouse-blink/py3ify/internal/domain/mocks"
	m "github.com/mouse-blink/py3ify/internal/model"
)

func TestConvertCmd_Flags(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newConvertCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("Convert", mock.Anything, mock.MatchedBy(func(args domain.ConvertArgs) bool {
		return args.Parallel == 3 &&
			args.Target == "3.8" &&
			args.Timeout == 5*time.Second &&
			args.Write &&
			args.Diff &&
			!args.UseCache &&
			args.Reports == m.Path(".py3ify-reports") &&
			len(args.Paths) == 1 && args.Paths[0] == m.Path("src")
	})).Return(nil, nil)

	cmd.SetArgs([]string{
		"convert", "-p", "3", "-t", "3.8", "--timeout", "5s",
		"--write", "--diff", "--no-cache", "--fix", "print,dict", "--max-passes", "10",
		"src",
	})
	require.NoError(t, cmd.Execute())
}

func TestConvertCmd_RequiresPaths(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newConvertCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	cmd.SetArgs([]string{"convert"})
	require.Error(t, cmd.Execute())
}

func TestConvertCmd_WithExcludePatterns(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newConvertCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = mockWorkflow
	defer func() { workflow = originalWorkflow }()

	mockWorkflow.On("Convert", mock.Anything, mock.MatchedBy(func(args domain.ConvertArgs) bool {
		return len(args.Exclude) == 2 &&
			args.Exclude[0] == "vendor/**" &&
			args.Exclude[1] == "**/*_py3.py"
	})).Return(nil, nil)

	cmd.SetArgs([]string{"convert", "-x", "vendor/**", "--exclude", "**/*_py3.py", "."})
	require.NoError(t, cmd.Execute())
}

// TestConvertCmd_EndToEnd runs the real engine over a temporary tree.
func TestConvertCmd_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "vendor"), 0o755))

	legacy := filepath.Join(src, "legacy.py")
	vendored := filepath.Join(src, "vendor", "old.py")
	require.NoError(t, os.WriteFile(legacy, []byte("print 'hi'\nif d.has_key(k):\n    pass\n"), 0o644))
	require.NoError(t, os.WriteFile(vendored, []byte("print 'untouched'\n"), 0o644))

	originalWorkflow := workflow
	workflow = nil
	defer func() { workflow = originalWorkflow }()

	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.AddCommand(newConvertCmd())
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	reports := filepath.Join(dir, "reports")
	cmd.SetArgs([]string{"convert", "--write", "--reports", reports, "-x", "**/vendor/**", src})
	require.NoError(t, cmd.Execute())

	got, err := os.ReadFile(legacy)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\nif k in d:\n    pass\n", string(got))

	got, err = os.ReadFile(vendored)
	require.NoError(t, err)
	assert.Equal(t, "print 'untouched'\n", string(got))

	assert.FileExists(t, filepath.Join(reports, "_index.yaml"))
	assert.Contains(t, out.String(), "legacy.py")
}

func TestConvertCmd_EndToEnd_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.py"), []byte("def (:\n"), 0o644))

	originalWorkflow := workflow
	workflow = nil
	defer func() { workflow = originalWorkflow }()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	cmd.SetArgs([]string{"--no-cache", "--reports", filepath.Join(dir, "reports"), dir})
	err := cmd.Execute()
	require.ErrorIs(t, err, domain.ErrConversionFailures)
}
