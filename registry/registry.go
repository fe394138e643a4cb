package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/sentinel-rag/promptkit"
	"github.com/sentinel-rag/promptkit/fileloader"
	"github.com/sentinel-rag/promptkit/internal/cast"
)

// Category organizes prompts by pipeline stage.
type Category string

// Prompt categories.
const (
	CategoryAnalysis  Category = "analysis"
	CategoryRetrieval Category = "retrieval"
	CategorySynthesis Category = "synthesis"
	CategoryChat      Category = "chat"
	CategorySystem    Category = "system"
	CategoryError     Category = "error"
)

// Categories lists all known categories in documentation order.
var Categories = []Category{
	CategoryAnalysis, CategoryRetrieval, CategorySynthesis,
	CategoryChat, CategorySystem, CategoryError,
}

func validCategory(c Category) bool {
	return slices.Contains(Categories, c)
}

// Entry is the catalog metadata for one prompt template. Params holds
// recommended generation parameters keyed by name (e.g. "temperature",
// "max_tokens"); the entry never stores template content.
type Entry struct {
	Name              string         `yaml:"name"`
	Category          Category       `yaml:"category"`
	Description       string         `yaml:"description"`
	FileName          string         `yaml:"file_name"`
	ExpectedOutput    string         `yaml:"expected_output"`
	UseCases          []string       `yaml:"use_cases"`
	ModelRequirements string         `yaml:"model_requirements"`
	Params            map[string]any `yaml:"params"`
}

// DefaultParams returns the process-wide parameter set used for names with no
// explicit entry.
func DefaultParams() map[string]any {
	return map[string]any{
		"temperature": 0.0,
		"max_tokens":  1024,
	}
}

// Registry maps template names to catalog entries. Construction and Register
// are a bootstrap step; the populated Registry is read-only and safe for
// concurrent readers.
type Registry struct {
	loader  *fileloader.Loader
	entries map[string]Entry
	order   []string
}

// New creates a Registry over loader, populated with the given entries in order.
func New(loader *fileloader.Loader, entries ...Entry) *Registry {
	r := &Registry{
		loader:  loader,
		entries: make(map[string]Entry),
	}
	for _, e := range entries {
		r.Register(e)
	}
	return r
}

// Register adds or replaces an entry. Registration order is preserved for
// GetByCategory and Documentation; not for concurrent use with readers.
func (r *Registry) Register(e Entry) {
	if _, ok := r.entries[e.Name]; !ok {
		r.order = append(r.order, e.Name)
	}
	r.entries[e.Name] = e
}

// Get returns the entry for name.
func (r *Registry) Get(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names lists registered names in registration order.
func (r *Registry) Names() []string { return slices.Clone(r.order) }

// Entries returns all entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// GetByCategory returns the entries in a category, in registration order.
func (r *Registry) GetByCategory(c Category) []Entry {
	var out []Entry
	for _, name := range r.order {
		if e := r.entries[name]; e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// GetTemplate loads the template for name via the Loader. The Registry never
// parses template content itself.
func (r *Registry) GetTemplate(name string) (*promptkit.Template, error) {
	return r.loader.Load(name)
}

// Render loads name and renders it in strict mode.
func (r *Registry) Render(name string, vars map[string]string) (string, error) {
	return r.loader.Render(name, vars)
}

// RecommendedParams returns the entry's configured parameters, or the
// process-wide defaults for an unregistered name. The result is a copy.
func (r *Registry) RecommendedParams(name string) map[string]any {
	e, ok := r.entries[name]
	if !ok || len(e.Params) == 0 {
		return DefaultParams()
	}
	return maps.Clone(e.Params)
}

// Verify checks the invariant that every registered name resolves to a
// loadable template, joining one error per unresolvable entry.
func (r *Registry) Verify() error {
	var errs []error
	for _, name := range r.order {
		if _, err := r.loader.Load(name); err != nil {
			errs = append(errs, fmt.Errorf("registry: entry %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Documentation renders a markdown overview of all entries, grouped by category.
func (r *Registry) Documentation() string {
	var sb strings.Builder
	sb.WriteString("# Prompt Registry Documentation\n\n")
	sb.WriteString("This document provides an overview of all registered prompt templates.\n\n")
	for _, category := range Categories {
		entries := r.GetByCategory(category)
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s Prompts\n\n", titleCase(string(category)))
		for _, e := range entries {
			fmt.Fprintf(&sb, "### %s\n", e.Name)
			fmt.Fprintf(&sb, "**File:** `%s`\n", e.FileName)
			fmt.Fprintf(&sb, "**Description:** %s\n", e.Description)
			fmt.Fprintf(&sb, "**Expected Output:** %s\n\n", e.ExpectedOutput)
			if len(e.UseCases) > 0 {
				sb.WriteString("**Use Cases:**\n")
				for _, uc := range e.UseCases {
					fmt.Fprintf(&sb, "- %s\n", uc)
				}
				sb.WriteString("\n")
			}
			sb.WriteString("**Recommended Settings:**\n")
			for _, key := range slices.Sorted(maps.Keys(e.Params)) {
				fmt.Fprintf(&sb, "- %s: %s\n", key, formatParam(e.Params[key]))
			}
			if e.ModelRequirements != "" {
				fmt.Fprintf(&sb, "- Model: %s\n", e.ModelRequirements)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// formatParam renders a parameter value deterministically regardless of the
// numeric type YAML or literal tables produced.
func formatParam(v any) string {
	switch v.(type) {
	case float64, float32:
		f, _ := cast.ToFloat64(v)
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		if i, ok := cast.ToInt64(v); ok {
			return strconv.FormatInt(i, 10)
		}
		return fmt.Sprintf("%v", v)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
