package adapter

import (
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/py3ify/internal/model"
)

var testFixers = []string{"print", "ne"}

func convertedReport(path, hash string) m.Report {
	return m.Report{
		Path:   m.Path(path),
		Hash:   hash,
		Target: "3",
		Fixers: testFixers,
		Status: m.StatusConverted,
		Code:   "print('a')\n",
		Passes: 2,
		Changes: []m.Change{
			{Fixer: "print", Pass: 1, Line: 1, Before: "print 'a'", After: "print('a')"},
		},
	}
}

func TestLocalReportStore_SaveReports_WritesYAMLPerReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rs := &LocalReportStore{}

	report := convertedReport("/abs/path/file.py", "abc123")

	if err := rs.SaveReports(m.Path(dir), []m.Report{report}); err != nil {
		t.Fatalf("SaveReports returned error: %v", err)
	}

	expectedFile := filepath.Join(dir, report.Key()+".yaml")
	info, err := os.Stat(expectedFile)
	if err != nil {
		t.Fatalf("expected report file %s to exist: %v", expectedFile, err)
	}
	if !info.Mode().IsRegular() {
		t.Fatalf("expected %s to be a regular file", expectedFile)
	}

	matched, err := regexp.MatchString(`^[0-9a-f]{16}\.yaml$`, filepath.Base(expectedFile))
	if err != nil {
		t.Fatalf("regex error: %v", err)
	}
	if !matched {
		t.Fatalf("unexpected filename: %s", filepath.Base(expectedFile))
	}

	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("read report file: %v", err)
	}

	var decoded m.Report
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal YAML: %v", err)
	}

	if decoded.Hash != "abc123" {
		t.Fatalf("unexpected hash: %s", decoded.Hash)
	}
	if decoded.Code != "" {
		t.Fatalf("expected code to be left out of the YAML report")
	}
	if len(decoded.Changes) != 1 || decoded.Changes[0].After != "print('a')" {
		t.Fatalf("unexpected changes: %#v", decoded.Changes)
	}
}

func TestLocalReportStore_SaveThenLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rs := &LocalReportStore{}

	b := convertedReport("/abs/b.py", "hash-b")
	a := convertedReport("/abs/a.py", "hash-a")
	a.Status = m.StatusSyntaxError
	a.Code = ""
	a.Error = "1:8: syntax error"
	a.Changes = nil

	if err := rs.SaveReports(m.Path(dir), []m.Report{b, a}); err != nil {
		t.Fatalf("SaveReports returned error: %v", err)
	}

	loaded, err := rs.LoadReports(m.Path(dir))
	if err != nil {
		t.Fatalf("LoadReports returned error: %v", err)
	}

	want := []m.Report{a, b}
	if !reflect.DeepEqual(loaded, want) {
		t.Fatalf("LoadReports = %#v, want %#v", loaded, want)
	}
}

func TestLocalReportStore_SaveReports_ReplacesReportForSamePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rs := &LocalReportStore{}

	old := convertedReport("/abs/a.py", "old")
	if err := rs.SaveReports(m.Path(dir), []m.Report{old}); err != nil {
		t.Fatalf("SaveReports returned error: %v", err)
	}

	updated := convertedReport("/abs/a.py", "new")
	if err := rs.SaveReports(m.Path(dir), []m.Report{updated}); err != nil {
		t.Fatalf("SaveReports returned error: %v", err)
	}

	loaded, err := rs.LoadReports(m.Path(dir))
	if err != nil {
		t.Fatalf("LoadReports returned error: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Hash != "new" {
		t.Fatalf("expected only the new report, got %#v", loaded)
	}

	if _, err := os.Stat(filepath.Join(dir, old.Key()+".yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected stale YAML report to be removed, stat err = %v", err)
	}
}

func TestLocalReportStore_SaveReports_NoReportsWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rs := &LocalReportStore{}

	if err := rs.SaveReports(m.Path(dir), nil); err != nil {
		t.Fatalf("SaveReports returned error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no report files to be written, found %d", len(entries))
	}
}

func TestLocalReportStore_LoadReports_MissingDir(t *testing.T) {
	t.Parallel()

	rs := &LocalReportStore{}

	loaded, err := rs.LoadReports(m.Path(filepath.Join(t.TempDir(), "does-not-exist")))
	if err != nil {
		t.Fatalf("LoadReports returned error: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected no reports, got %d", len(loaded))
	}
}

func TestLocalReportStore_LoadReports_CorruptCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, cacheFileName), []byte{0xc1}, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rs := &LocalReportStore{}
	_, err := rs.LoadReports(m.Path(dir))
	if err == nil || !strings.Contains(err.Error(), "decode reports") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestLocalReportStore_RegenerateIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rs := &LocalReportStore{}

	a := convertedReport("/abs/a.py", "hash-a")
	b := convertedReport("/abs/b.py", "hash-b")
	b.Status = m.StatusUnchanged
	b.Changes = nil

	if err := rs.SaveReports(m.Path(dir), []m.Report{a, b}); err != nil {
		t.Fatalf("SaveReports returned error: %v", err)
	}

	indexPath := filepath.Join(dir, "_index.yaml")
	if _, err := os.Stat(indexPath); err == nil {
		t.Fatalf("expected _index.yaml to not exist until RegenerateIndex is called")
	}

	if err := rs.RegenerateIndex(m.Path(dir)); err != nil {
		t.Fatalf("RegenerateIndex returned error: %v", err)
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("expected _index.yaml to exist: %v", err)
	}

	var idx indexEntry
	if err := yaml.Unmarshal(data, &idx); err != nil {
		t.Fatalf("unmarshal _index.yaml: %v", err)
	}

	if idx.Summary.Converted != 1 || idx.Summary.Unchanged != 1 || idx.Summary.Changes != 1 {
		t.Fatalf("unexpected summary: %#v", idx.Summary)
	}

	if len(idx.Reports) != 2 {
		t.Fatalf("expected 2 report lines, got %d", len(idx.Reports))
	}
	if idx.Reports[0].Path != a.Path || idx.Reports[0].Report != a.Key()+".yaml" {
		t.Fatalf("unexpected first line: %#v", idx.Reports[0])
	}
}

func TestLocalReportStore_CheckUpdates_NoReportsDir_ReturnsAllSources(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "does-not-exist")
	rs := &LocalReportStore{}

	sources := []m.Source{
		{Origin: m.Path("/abs/a.py"), Hash: "hash-a"},
		{Origin: m.Path("/abs/b.py"), Hash: "hash-b"},
	}

	changed, err := rs.CheckUpdates(m.Path(dir), sources, "3", testFixers)
	if err != nil {
		t.Fatalf("CheckUpdates returned error: %v", err)
	}
	if !reflect.DeepEqual(changed, sources) {
		t.Fatalf("changed sources = %#v, want %#v", changed, sources)
	}
}

func TestLocalReportStore_CheckUpdates_EmptyPath_ReturnsError(t *testing.T) {
	t.Parallel()

	rs := &LocalReportStore{}
	_, err := rs.CheckUpdates("", nil, "3", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "reports directory path is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLocalReportStore_CheckUpdates_PathIsFile_ReturnsError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	filePath := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(filePath, []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rs := &LocalReportStore{}
	_, err := rs.CheckUpdates(m.Path(filePath), nil, "3", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "path is not a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLocalReportStore_CheckUpdates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rs := &LocalReportStore{}

	stored := []m.Report{
		convertedReport("/abs/same.py", "same"),
		convertedReport("/abs/edited.py", "old-code"),
		convertedReport("/abs/deleted.py", "gone"),
	}
	if err := rs.SaveReports(m.Path(dir), stored); err != nil {
		t.Fatalf("SaveReports returned error: %v", err)
	}

	current := []m.Source{
		{Origin: m.Path("/abs/same.py"), Hash: "same"},
		{Origin: m.Path("/abs/edited.py"), Hash: "new-code"},
		{Origin: m.Path("/abs/added.py"), Hash: "fresh"},
	}

	t.Run("same target and fixers", func(t *testing.T) {
		changed, err := rs.CheckUpdates(m.Path(dir), current, "3", testFixers)
		if err != nil {
			t.Fatalf("CheckUpdates returned error: %v", err)
		}

		want := []m.Source{current[1], current[2], {Origin: m.Path("/abs/deleted.py")}}
		if !reflect.DeepEqual(changed, want) {
			t.Fatalf("changed sources = %#v, want %#v", changed, want)
		}
	})

	t.Run("different fixer set invalidates everything", func(t *testing.T) {
		changed, err := rs.CheckUpdates(m.Path(dir), current[:1], "3", []string{"print"})
		if err != nil {
			t.Fatalf("CheckUpdates returned error: %v", err)
		}
		if len(changed) != 3 || changed[0].Origin != "/abs/same.py" {
			t.Fatalf("unexpected changed sources: %#v", changed)
		}
	})
}

func TestSortReports(t *testing.T) {
	reports := []m.Report{{Path: "b.py"}, {Path: "c.py"}, {Path: "a.py"}}
	SortReports(reports)

	if reports[0].Path != "a.py" || reports[2].Path != "c.py" {
		t.Fatalf("unexpected order: %#v", reports)
	}
}
