package promptkit

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity of a validation issue.
type Severity string

// Issue severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Symbolic issue codes. Validate produces all but CodeUndeclaredPlaceholder,
// which only appears in lint suggestions.
const (
	CodeUnbalancedBrace       = "UNBALANCED_BRACE"
	CodeMissingSection        = "MISSING_SECTION"
	CodeDuplicateSection      = "DUPLICATE_SECTION"
	CodeBadVersion            = "BAD_VERSION"
	CodeMissingHeader         = "MISSING_HEADER"
	CodeUndeclaredPlaceholder = "UNDECLARED_PLACEHOLDER"
)

// Issue is one structural finding from Validate.
// Location names the section or header field concerned, or is empty.
type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Location string
}

func (i Issue) String() string {
	if i.Location != "" {
		return fmt.Sprintf("%s [%s] %s: %s", i.Severity, i.Code, i.Location, i.Message)
	}
	return fmt.Sprintf("%s [%s] %s", i.Severity, i.Code, i.Message)
}

// structuralSections are the markers every template must carry exactly once.
var structuralSections = []string{"ROLE", "CONTEXT", "TASK", "CONSTRAINTS", "OUTPUT FORMAT"}

var headerFields = []string{"Prompt", "Version", "Last Updated", "Purpose"}

// Validate runs the structural checks on a template. Unbalanced braces are
// always an error; the remaining checks produce errors when strict and
// warnings otherwise. The template is valid iff no error-severity issue was
// produced.
func Validate(t *Template, strict bool) (bool, []Issue) {
	var issues []Issue
	sev := SeverityWarning
	if strict {
		sev = SeverityError
	}

	// Balance is counted after escape-sequence removal; placeholders always
	// contribute one brace each side, so only literal runs can skew it.
	open, closed := 0, 0
	for _, tok := range t.tokens {
		if tok.kind != tokenLiteral {
			continue
		}
		open += strings.Count(tok.text, "{")
		closed += strings.Count(tok.text, "}")
	}
	if open != closed {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     CodeUnbalancedBrace,
			Message:  fmt.Sprintf("unbalanced braces: %d open, %d close", open, closed),
		})
	}

	for _, field := range headerFields {
		pattern := regexp.MustCompile(`(?im)^#\s*` + regexp.QuoteMeta(field) + `:\s*\S`)
		if !pattern.MatchString(t.Content) {
			issues = append(issues, Issue{
				Severity: sev,
				Code:     CodeMissingHeader,
				Message:  "missing or empty header field: " + field,
				Location: field,
			})
		}
	}

	if !versionPattern.MatchString(t.Meta.Version) {
		issues = append(issues, Issue{
			Severity: sev,
			Code:     CodeBadVersion,
			Message:  fmt.Sprintf("version %q does not match MAJOR.MINOR", t.Meta.Version),
			Location: "Version",
		})
	}

	for _, section := range structuralSections {
		switch n := countSectionMarkers(t.Content, section); {
		case n == 0:
			issues = append(issues, Issue{
				Severity: sev,
				Code:     CodeMissingSection,
				Message:  "missing section: " + section,
				Location: section,
			})
		case n > 1:
			issues = append(issues, Issue{
				Severity: sev,
				Code:     CodeDuplicateSection,
				Message:  fmt.Sprintf("section %s appears %d times", section, n),
				Location: section,
			})
		}
	}

	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return false, issues
		}
	}
	return true, issues
}

// countSectionMarkers counts lines that are exactly a "## NAME" marker.
func countSectionMarkers(content, section string) int {
	n := 0
	for line := range strings.Lines(content) {
		if strings.TrimSpace(strings.TrimPrefix(line, "##")) == section && strings.HasPrefix(line, "## ") {
			n++
		}
	}
	return n
}
