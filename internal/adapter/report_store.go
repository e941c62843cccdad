package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/btree"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/py3ify/internal/model"
)

const (
	cacheFileName = "reports.msgpack"
	indexFileName = "_index.yaml"
	reportExt     = ".yaml"
)

// ReportStore persists conversion reports between runs.
type ReportStore interface {
	// SaveReports merges reports into the store under dir. A stored report
	// for the same path is replaced.
	SaveReports(dir m.Path, reports []m.Report) error
	// LoadReports returns every stored report ordered by path. A missing
	// directory yields no reports.
	LoadReports(dir m.Path) ([]m.Report, error)
	// RegenerateIndex rewrites the human readable _index.yaml from the
	// stored reports.
	RegenerateIndex(dir m.Path) error
	// CheckUpdates returns the sources without an up to date stored report
	// for the given target and fixer set.
	CheckUpdates(dir m.Path, sources []m.Source, target string, fixers []string) ([]m.Source, error)
}

// LocalReportStore keeps reports on disk: a msgpack file holding every
// report, including converted code, and one YAML file per report named by
// its key for people to read.
type LocalReportStore struct{}

// NewReportStore constructs a ReportStore implementation.
func NewReportStore() ReportStore {
	return &LocalReportStore{}
}

type indexEntry struct {
	Summary m.Summary         `yaml:"summary"`
	Reports []indexReportLine `yaml:"reports"`
}

type indexReportLine struct {
	Path   m.Path   `yaml:"path"`
	Status m.Status `yaml:"status"`
	Report string   `yaml:"report"`
}

// SaveReports merges reports into the msgpack cache and writes their YAML files.
func (rs *LocalReportStore) SaveReports(dir m.Path, reports []m.Report) error {
	if dir == "" {
		return errors.New("reports directory path is required")
	}

	if len(reports) == 0 {
		return nil
	}

	if err := os.MkdirAll(string(dir), 0o755); err != nil {
		return fmt.Errorf("create reports directory: %w", err)
	}

	stored, err := rs.load(dir)
	if err != nil {
		return err
	}

	for _, report := range reports {
		if old, ok := stored.Get(string(report.Path)); ok && old.Key() != report.Key() {
			_ = os.Remove(reportFile(dir, old))
		}

		stored.Set(string(report.Path), report)

		if err := writeYAML(reportFile(dir, report), report); err != nil {
			return err
		}
	}

	data, err := msgpack.Marshal(stored.Values())
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}

	if err := os.WriteFile(filepath.Join(string(dir), cacheFileName), data, 0o644); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}

	return nil
}

// LoadReports decodes the msgpack cache.
func (rs *LocalReportStore) LoadReports(dir m.Path) ([]m.Report, error) {
	if dir == "" {
		return nil, errors.New("reports directory path is required")
	}

	stored, err := rs.load(dir)
	if err != nil {
		return nil, err
	}

	return stored.Values(), nil
}

// RegenerateIndex writes _index.yaml summarizing the stored reports.
func (rs *LocalReportStore) RegenerateIndex(dir m.Path) error {
	reports, err := rs.LoadReports(dir)
	if err != nil {
		return err
	}

	idx := indexEntry{Summary: m.Summarize(reports)}
	for _, r := range reports {
		idx.Reports = append(idx.Reports, indexReportLine{
			Path:   r.Path,
			Status: r.Status,
			Report: r.Key() + reportExt,
		})
	}

	return writeYAML(filepath.Join(string(dir), indexFileName), idx)
}

// CheckUpdates compares sources against the stored reports. Stored reports
// whose file no longer exists are reported as sources with no content so
// callers can prune them.
func (rs *LocalReportStore) CheckUpdates(dir m.Path, sources []m.Source, target string, fixers []string) ([]m.Source, error) {
	if dir == "" {
		return nil, errors.New("reports directory path is required")
	}

	info, err := os.Stat(string(dir))
	if errors.Is(err, os.ErrNotExist) {
		return sources, nil
	}

	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	stored, err := rs.load(dir)
	if err != nil {
		return nil, err
	}

	var changed []m.Source

	current := make(map[m.Path]struct{}, len(sources))

	for _, source := range sources {
		current[source.Origin] = struct{}{}

		old, ok := stored.Get(string(source.Origin))
		if !ok || old.Key() != m.CacheKey(source.Origin, source.Hash, target, fixers) {
			changed = append(changed, source)
		}
	}

	stored.Scan(func(path string, _ m.Report) bool {
		if _, ok := current[m.Path(path)]; !ok {
			changed = append(changed, m.Source{Origin: m.Path(path)})
		}

		return true
	})

	return changed, nil
}

// load reads the msgpack cache into a map ordered by path.
func (rs *LocalReportStore) load(dir m.Path) (*btree.Map[string, m.Report], error) {
	stored := new(btree.Map[string, m.Report])

	data, err := os.ReadFile(filepath.Join(string(dir), cacheFileName))
	if errors.Is(err, os.ErrNotExist) {
		return stored, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read reports: %w", err)
	}

	var reports []m.Report
	if err := msgpack.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}

	for _, r := range reports {
		stored.Set(string(r.Path), r)
	}

	return stored, nil
}

func reportFile(dir m.Path, r m.Report) string {
	return filepath.Join(string(dir), r.Key()+reportExt)
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	return nil
}

// SortReports orders reports by path.
func SortReports(reports []m.Report) {
	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })
}
