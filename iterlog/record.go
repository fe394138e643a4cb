package iterlog

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ChangeType classifies one logged prompt change.
type ChangeType string

// Change types.
const (
	ChangeInitial    ChangeType = "initial"
	ChangeRefinement ChangeType = "refinement"
	ChangeExperiment ChangeType = "experiment"
)

// TestResults holds the outcome of running a test suite against one version.
type TestResults struct {
	CasesRun    int `json:"casesRun"`
	CasesPassed int `json:"casesPassed"`
}

// Record is one experiment log entry. The pair (PromptName, Version) is
// unique across all records ever logged. TestResults, QualityMetrics, and
// the ComparedWith/ImprovementNotes pair are each settable exactly once
// after creation, through Log methods only.
type Record struct {
	PromptName       string             `json:"promptName"`
	Version          string             `json:"version"`
	ChangeType       ChangeType         `json:"changeType"`
	Description      string             `json:"description"`
	Rationale        string             `json:"rationale"`
	ChangesMade      []string           `json:"changesMade"`
	TestResults      *TestResults       `json:"testResults,omitempty"`
	QualityMetrics   map[string]float64 `json:"qualityMetrics,omitempty"`
	ComparedWith     string             `json:"comparedWith,omitempty"`
	ImprovementNotes string             `json:"improvementNotes,omitempty"`
	LoggedAt         string             `json:"loggedAt"`
}

// clone returns a deep copy so callers cannot mutate the log's records.
func (r *Record) clone() Record {
	out := *r
	out.ChangesMade = slices.Clone(r.ChangesMade)
	if r.TestResults != nil {
		tr := *r.TestResults
		out.TestResults = &tr
	}
	if r.QualityMetrics != nil {
		out.QualityMetrics = maps.Clone(r.QualityMetrics)
	}
	return out
}

// markdown renders the record as one changelog block with populated fields in
// fixed order: type, description, rationale, changes, test results, quality
// metrics, comparison.
func (r *Record) markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### v%s (%s)\n", r.Version, r.LoggedAt)
	fmt.Fprintf(&sb, "**Type:** %s\n\n", r.ChangeType)
	fmt.Fprintf(&sb, "**Description:** %s\n\n", r.Description)
	fmt.Fprintf(&sb, "**Rationale:** %s\n\n", r.Rationale)
	if len(r.ChangesMade) > 0 {
		sb.WriteString("**Changes:**\n")
		for _, change := range r.ChangesMade {
			fmt.Fprintf(&sb, "- %s\n", change)
		}
		sb.WriteString("\n")
	}
	if r.TestResults != nil {
		fmt.Fprintf(&sb, "**Testing:** %d/%d test cases passed\n\n", r.TestResults.CasesPassed, r.TestResults.CasesRun)
	}
	if len(r.QualityMetrics) > 0 {
		sb.WriteString("**Quality Metrics:**\n")
		for _, name := range slices.Sorted(maps.Keys(r.QualityMetrics)) {
			fmt.Fprintf(&sb, "- %s: %.2f\n", name, r.QualityMetrics[name])
		}
		sb.WriteString("\n")
	}
	if r.ComparedWith != "" {
		fmt.Fprintf(&sb, "**Compared With:** v%s\n", r.ComparedWith)
		if r.ImprovementNotes != "" {
			fmt.Fprintf(&sb, "**Improvement Notes:** %s\n", r.ImprovementNotes)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// parseVersion splits a dotted MAJOR.MINOR version into its numeric parts.
func parseVersion(v string) (major, minor int, ok bool) {
	before, after, found := strings.Cut(v, ".")
	if !found {
		return 0, 0, false
	}
	major, err := strconv.Atoi(before)
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(after)
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// compareVersions orders versions numerically by major then minor; 1.9 sorts
// before 1.10. Malformed versions sort after numeric ones, between themselves
// lexically.
func compareVersions(a, b string) int {
	amaj, amin, aok := parseVersion(a)
	bmaj, bmin, bok := parseVersion(b)
	switch {
	case aok && bok:
		if amaj != bmaj {
			return amaj - bmaj
		}
		return amin - bmin
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
