package iterlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"
)

// Output documents, written only by this package.
const (
	changelogFile = "CHANGELOG.md"
	storeFile     = "experiments.json"
)

// Log is the append-only experiment log for one prompt directory. All
// mutating operations are serialized by a single mutex to preserve the
// (prompt, version) uniqueness invariant and keep the regenerated changelog
// consistent with the record sequence. Safe for concurrent use.
type Log struct {
	dir string
	now func() time.Time

	mu      sync.Mutex
	records []*Record
}

// Option configures a Log.
type Option func(*Log)

// WithClock replaces the time source used for record dates (default time.Now).
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// Open creates a Log over dir, loading the existing experiment store if one
// is present.
func Open(dir string, opts ...Option) (*Log, error) {
	l := &Log{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	data, err := os.ReadFile(l.StorePath())
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &l.records); err != nil {
			return nil, fmt.Errorf("iterlog: decode store: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// First run; the store is created on the first logged change.
	default:
		return nil, fmt.Errorf("iterlog: read store: %w", err)
	}
	return l, nil
}

// StorePath returns the experiment store location.
func (l *Log) StorePath() string { return filepath.Join(l.dir, storeFile) }

// ChangelogPath returns the changelog document location.
func (l *Log) ChangelogPath() string { return filepath.Join(l.dir, changelogFile) }

// LogChange appends a new record for (promptName, version). Fails with
// *VersionConflictError when the pair was already logged. On success the
// store is persisted, the changelog regenerated, and a copy of the record
// returned.
func (l *Log) LogChange(promptName, version string, changeType ChangeType, description, rationale string, changesMade []string) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.findLocked(promptName, version) != nil {
		return Record{}, &VersionConflictError{Prompt: promptName, Version: version}
	}
	rec := &Record{
		PromptName:  promptName,
		Version:     version,
		ChangeType:  changeType,
		Description: description,
		Rationale:   rationale,
		ChangesMade: slices.Clone(changesMade),
		LoggedAt:    l.now().Format("2006-01-02"),
	}
	l.records = append(l.records, rec)
	if err := l.persistLocked(); err != nil {
		l.records = l.records[:len(l.records)-1]
		return Record{}, err
	}
	return rec.clone(), nil
}

// LogTestResults sets the test results of an existing record, exactly once.
func (l *Log) LogTestResults(promptName, version string, casesRun, casesPassed int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := l.findLocked(promptName, version)
	if rec == nil {
		return &RecordNotFoundError{Prompt: promptName, Version: version}
	}
	if rec.TestResults != nil {
		return fmt.Errorf("%w: test results for %s v%s", ErrAlreadySet, promptName, version)
	}
	rec.TestResults = &TestResults{CasesRun: casesRun, CasesPassed: casesPassed}
	if err := l.persistLocked(); err != nil {
		rec.TestResults = nil
		return err
	}
	return nil
}

// LogQualityMetrics sets the quality metrics of an existing record, exactly
// once. Every value must lie in [0,1].
func (l *Log) LogQualityMetrics(promptName, version string, metrics map[string]float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := l.findLocked(promptName, version)
	if rec == nil {
		return &RecordNotFoundError{Prompt: promptName, Version: version}
	}
	if rec.QualityMetrics != nil {
		return fmt.Errorf("%w: quality metrics for %s v%s", ErrAlreadySet, promptName, version)
	}
	for _, name := range slices.Sorted(maps.Keys(metrics)) {
		if v := metrics[name]; v < 0 || v > 1 {
			return &InvalidMetricError{Metric: name, Value: v}
		}
	}
	rec.QualityMetrics = maps.Clone(metrics)
	if err := l.persistLocked(); err != nil {
		rec.QualityMetrics = nil
		return err
	}
	return nil
}

// SetComparison records which prior version this one was compared against,
// exactly once, together with improvement notes.
func (l *Log) SetComparison(promptName, version, comparedWith, improvementNotes string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := l.findLocked(promptName, version)
	if rec == nil {
		return &RecordNotFoundError{Prompt: promptName, Version: version}
	}
	if rec.ComparedWith != "" {
		return fmt.Errorf("%w: comparison for %s v%s", ErrAlreadySet, promptName, version)
	}
	rec.ComparedWith = comparedWith
	rec.ImprovementNotes = improvementNotes
	if err := l.persistLocked(); err != nil {
		rec.ComparedWith = ""
		rec.ImprovementNotes = ""
		return err
	}
	return nil
}

// History returns copies of the records for promptName in logged order.
func (l *Log) History(promptName string) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Record
	for _, rec := range l.records {
		if rec.PromptName == promptName {
			out = append(out, rec.clone())
		}
	}
	return out
}

// LatestVersion returns the highest logged version for promptName.
func (l *Log) LatestVersion(promptName string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	latest, found := "", false
	for _, rec := range l.records {
		if rec.PromptName != promptName {
			continue
		}
		if !found || compareVersions(rec.Version, latest) > 0 {
			latest, found = rec.Version, true
		}
	}
	return latest, found
}

// Records returns copies of all records in logged order.
func (l *Log) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// RegenerateChangelog renders the changelog from the current record
// sequence. Pure projection: two calls with no intervening mutation return
// byte-identical text. Rendering runs outside the lock on a snapshot.
func (l *Log) RegenerateChangelog() string {
	l.mu.Lock()
	snapshot := l.snapshotLocked()
	l.mu.Unlock()
	return RenderChangelog(snapshot)
}

func (l *Log) snapshotLocked() []Record {
	out := make([]Record, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, rec.clone())
	}
	return out
}

func (l *Log) findLocked(promptName, version string) *Record {
	for _, rec := range l.records {
		if rec.PromptName == promptName && rec.Version == version {
			return rec
		}
	}
	return nil
}

// persistLocked writes the store and the regenerated changelog. Caller holds the lock.
func (l *Log) persistLocked() error {
	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("iterlog: encode store: %w", err)
	}
	if err := os.WriteFile(l.StorePath(), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("iterlog: write store: %w", err)
	}
	changelog := RenderChangelog(l.snapshotLocked())
	if err := os.WriteFile(l.ChangelogPath(), []byte(changelog), 0o644); err != nil {
		return fmt.Errorf("iterlog: write changelog: %w", err)
	}
	return nil
}

// RenderChangelog renders records as the changelog document: one section per
// prompt in first-appearance order, versions ascending within each section.
// Deterministic over the record sequence, so it can rebuild the document from
// a decoded store without replaying the log.
func RenderChangelog(records []Record) string {
	var order []string
	grouped := make(map[string][]Record)
	for _, rec := range records {
		if _, ok := grouped[rec.PromptName]; !ok {
			order = append(order, rec.PromptName)
		}
		grouped[rec.PromptName] = append(grouped[rec.PromptName], rec)
	}
	var sb strings.Builder
	sb.WriteString("# Prompt Iteration Log\n\n")
	sb.WriteString("This file documents the evolution of prompt templates.\n\n")
	sb.WriteString("## Version History\n\n")
	for _, name := range order {
		fmt.Fprintf(&sb, "## %s\n\n", name)
		group := grouped[name]
		slices.SortStableFunc(group, func(a, b Record) int {
			return compareVersions(a.Version, b.Version)
		})
		for i := range group {
			sb.WriteString(group[i].markdown())
		}
		sb.WriteString("---\n\n")
	}
	return sb.String()
}

var headerVersionPattern = regexp.MustCompile(`#\s*Version:\s*(\d+\.\d+)`)

// Bootstrap seeds an initial record for every prompt file in the directory
// that has no history yet, reading the version from the file header
// (defaulting to "1.0"). Returns the names that were seeded.
func (l *Log) Bootstrap() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("iterlog: read dir: %w", err)
	}
	var seeded []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".txt")
		if len(l.History(name)) > 0 {
			continue
		}
		content, err := os.ReadFile(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			return seeded, fmt.Errorf("iterlog: read prompt %q: %w", name, err)
		}
		version := "1.0"
		if m := headerVersionPattern.FindSubmatch(content); m != nil {
			version = string(m[1])
		}
		_, err = l.LogChange(name, version, ChangeInitial,
			"Initial version of "+name+" prompt",
			"Baseline prompt for the analysis pipeline",
			[]string{"Created initial prompt structure"})
		if err != nil {
			return seeded, err
		}
		seeded = append(seeded, name)
	}
	return seeded, nil
}

// Report renders a summary table of all experiments per prompt.
func (l *Log) Report() string {
	records := l.Records()
	var order []string
	grouped := make(map[string][]Record)
	for _, rec := range records {
		if _, ok := grouped[rec.PromptName]; !ok {
			order = append(order, rec.PromptName)
		}
		grouped[rec.PromptName] = append(grouped[rec.PromptName], rec)
	}
	slices.Sort(order)
	var sb strings.Builder
	sb.WriteString("# Prompt Engineering Report\n\n")
	fmt.Fprintf(&sb, "Total experiments logged: %d\n\n", len(records))
	sb.WriteString("| Prompt | Versions | Latest | Tests Run | Pass Rate |\n")
	sb.WriteString("|--------|----------|--------|-----------|-----------|\n")
	for _, name := range order {
		group := grouped[name]
		latest := group[0].Version
		totalRun, totalPassed := 0, 0
		for _, rec := range group {
			if compareVersions(rec.Version, latest) > 0 {
				latest = rec.Version
			}
			if rec.TestResults != nil {
				totalRun += rec.TestResults.CasesRun
				totalPassed += rec.TestResults.CasesPassed
			}
		}
		passRate := "N/A"
		if totalRun > 0 {
			passRate = fmt.Sprintf("%.1f%%", 100*float64(totalPassed)/float64(totalRun))
		}
		fmt.Fprintf(&sb, "| %s | %d | v%s | %d | %s |\n", name, len(group), latest, totalRun, passRate)
	}
	sb.WriteString("\n")
	return sb.String()
}
