package promptkit

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// defaultMaxLineLength is the line length above which the linter suggests wrapping.
const defaultMaxLineLength = 120

// Linter runs non-blocking style checks over template content.
// Suggestions never affect validation results.
type Linter struct {
	MaxLineLength int // 0 means defaultMaxLineLength
}

// Lint runs the default Linter over content.
func Lint(content string) []string {
	return (&Linter{}).Lint(content)
}

// Lint returns style suggestions for content, in rule order.
func (l *Linter) Lint(content string) []string {
	var out []string
	out = append(out, l.checkLineLength(content)...)
	out = append(out, checkWordCount(content)...)
	out = append(out, checkEscapedPlaceholders(content)...)
	out = append(out, checkConstraintsEmphasis(content)...)
	out = append(out, checkVagueTerms(content)...)
	out = append(out, checkGenericInstructions(content)...)
	out = append(out, checkExamples(content)...)
	return out
}

func (l *Linter) checkLineLength(content string) []string {
	limit := l.MaxLineLength
	if limit <= 0 {
		limit = defaultMaxLineLength
	}
	var out []string
	n := 0
	for line := range strings.Lines(content) {
		n++
		if len(strings.TrimRight(line, "\n")) > limit {
			out = append(out, fmt.Sprintf("line %d exceeds %d characters, consider wrapping", n, limit))
		}
	}
	return out
}

func checkWordCount(content string) []string {
	words := len(strings.Fields(content))
	switch {
	case words < 50:
		return []string{fmt.Sprintf("prompt may be too short (%d words), consider adding more detail", words)}
	case words > 1500:
		return []string{fmt.Sprintf("prompt may be too long (%d words), consider condensing", words)}
	}
	return nil
}

var escapedPlaceholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// checkEscapedPlaceholders flags names that appear both as a live placeholder
// and inside an escaped example, which usually signals a brace typo.
func checkEscapedPlaceholders(content string) []string {
	tpl := New("", content)
	escaped := make(map[string]struct{})
	for _, m := range escapedPlaceholderPattern.FindAllStringSubmatch(content, -1) {
		escaped[m[1]] = struct{}{}
	}
	var names []string
	for name := range escaped {
		if tpl.Declares(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	var out []string
	for _, name := range names {
		out = append(out, fmt.Sprintf("[%s] variable %q used both as {%s} and escaped {{%s}}, check for a brace typo",
			CodeUndeclaredPlaceholder, name, name, name))
	}
	return out
}

var emphasisTerms = []string{"not", "must", "always", "never", "do not"}

// checkConstraintsEmphasis suggests capitalizing key terms in CONSTRAINTS.
func checkConstraintsEmphasis(content string) []string {
	section, ok := extractSection(content, "CONSTRAINTS")
	if !ok {
		return nil
	}
	var out []string
	for _, term := range emphasisTerms {
		lower := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		upper := regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToUpper(term)) + `\b`)
		if lower.MatchString(section) && !upper.MatchString(section) {
			out = append(out, fmt.Sprintf("consider emphasizing %q in CONSTRAINTS section", term))
		}
	}
	return out
}

var vagueTerms = []string{"etc", "and so on", "things like", "stuff"}

func checkVagueTerms(content string) []string {
	lower := strings.ToLower(content)
	var out []string
	for _, term := range vagueTerms {
		if strings.Contains(lower, term) {
			out = append(out, fmt.Sprintf("consider replacing vague term: %q", term))
		}
	}
	return out
}

var genericPhrases = []string{"be helpful", "do your best", "try to"}

func checkGenericInstructions(content string) []string {
	lower := strings.ToLower(content)
	var out []string
	for _, phrase := range genericPhrases {
		if strings.Contains(lower, phrase) {
			out = append(out, fmt.Sprintf("consider a more specific instruction instead of: %q", phrase))
		}
	}
	return out
}

func checkExamples(content string) []string {
	lower := strings.ToLower(content)
	if (strings.Contains(lower, "json") || strings.Contains(lower, "format")) &&
		!strings.Contains(lower, "example") && !strings.Contains(content, "```") {
		return []string{"consider adding examples for complex output formats"}
	}
	return nil
}

// extractSection returns the body of a "## NAME" section up to the next
// section marker or end of content.
func extractSection(content, section string) (string, bool) {
	pattern := regexp.MustCompile(`(?m)^##\s*` + regexp.QuoteMeta(section) + `\s*$`)
	loc := pattern.FindStringIndex(content)
	if loc == nil {
		return "", false
	}
	rest := content[loc[1]:]
	if next := regexp.MustCompile(`(?m)^##\s`).FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	return rest, true
}
