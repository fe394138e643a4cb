package promptkit

import (
	"slices"
	"sort"
	"strings"
)

// tokenKind classifies one scanned run of template content.
type tokenKind int

const (
	tokenLiteral     tokenKind = iota // raw text, emitted verbatim
	tokenEscape                       // "{{" or "}}", emitted as one brace
	tokenPlaceholder                  // "{name}", substituted at render time
)

// token is one scanned run. For tokenPlaceholder, text is the variable name;
// for tokenEscape, the single brace to emit; otherwise the literal text.
type token struct {
	kind tokenKind
	text string
}

// Template is one named, versioned prompt with declared substitution points.
// Fields must not be mutated after New to ensure goroutine safety; declared
// variables are always recomputed from Content, never hand-maintained.
type Template struct {
	Name    string
	Content string
	Meta    Metadata

	tokens []token
	vars   []string // declared names, content order of first occurrence
	varSet map[string]struct{}
}

// New constructs a Template from raw content: parses the header metadata and
// scans placeholders. Escaped braces ({{ and }}) are excluded from declared
// variables and from substitution.
func New(name, content string) *Template {
	t := &Template{
		Name:    name,
		Content: content,
		Meta:    parseHeader(content),
		tokens:  scanContent(content),
		varSet:  make(map[string]struct{}),
	}
	for _, tok := range t.tokens {
		if tok.kind != tokenPlaceholder {
			continue
		}
		if _, ok := t.varSet[tok.text]; !ok {
			t.varSet[tok.text] = struct{}{}
			t.vars = append(t.vars, tok.text)
		}
	}
	return t
}

// Version returns the header version, or "unknown" when the header has none.
func (t *Template) Version() string { return t.Meta.Version }

// Variables returns the declared variable names in content order of first occurrence.
func (t *Template) Variables() []string { return slices.Clone(t.vars) }

// Declares reports whether name is a declared variable of the template.
func (t *Template) Declares(name string) bool {
	_, ok := t.varSet[name]
	return ok
}

// Render substitutes vars into the content in strict mode: every declared
// variable must be present or the call fails with *MissingVariableError
// naming the first unresolved placeholder in content order. Keys in vars that
// the template never references are tolerated.
func (t *Template) Render(vars map[string]string) (string, error) {
	for _, name := range t.vars {
		if _, ok := vars[name]; !ok {
			return "", &MissingVariableError{Template: t.Name, Variable: name}
		}
	}
	var sb strings.Builder
	sb.Grow(len(t.Content))
	for _, tok := range t.tokens {
		if tok.kind == tokenPlaceholder {
			sb.WriteString(vars[tok.text])
		} else {
			sb.WriteString(tok.text)
		}
	}
	return sb.String(), nil
}

// RenderSafe substitutes vars tolerantly and never fails. Missing variables
// are left verbatim as {name} with a "missing variable" warning appended in
// content order, once per name. Supplied keys the template never references
// produce "unused variable" warnings sorted by name.
func (t *Template) RenderSafe(vars map[string]string) (string, []string) {
	var warnings []string
	warned := make(map[string]struct{})
	var sb strings.Builder
	sb.Grow(len(t.Content))
	for _, tok := range t.tokens {
		switch tok.kind {
		case tokenPlaceholder:
			if v, ok := vars[tok.text]; ok {
				sb.WriteString(v)
				continue
			}
			sb.WriteString("{" + tok.text + "}")
			if _, ok := warned[tok.text]; !ok {
				warned[tok.text] = struct{}{}
				warnings = append(warnings, "missing variable: "+tok.text)
			}
		default:
			sb.WriteString(tok.text)
		}
	}
	var unused []string
	for name := range vars {
		if _, ok := t.varSet[name]; !ok {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	for _, name := range unused {
		warnings = append(warnings, "unused variable: "+name)
	}
	return sb.String(), warnings
}

// scanContent classifies content into literal, escape, and placeholder runs,
// left-to-right and non-overlapping. Escapes are consumed before placeholder
// matching, so "{{key}}" yields a literal "{key}".
func scanContent(content string) []token {
	var tokens []token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{kind: tokenLiteral, text: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(content); {
		c := content[i]
		if c == '{' && i+1 < len(content) && content[i+1] == '{' {
			flush()
			tokens = append(tokens, token{kind: tokenEscape, text: "{"})
			i += 2
			continue
		}
		if c == '}' && i+1 < len(content) && content[i+1] == '}' {
			flush()
			tokens = append(tokens, token{kind: tokenEscape, text: "}"})
			i += 2
			continue
		}
		if c == '{' {
			if name, end := matchPlaceholder(content, i); end > 0 {
				flush()
				tokens = append(tokens, token{kind: tokenPlaceholder, text: name})
				i = end
				continue
			}
		}
		lit.WriteByte(c)
		i++
	}
	flush()
	return tokens
}

// matchPlaceholder matches "{identifier}" at offset i, where identifier is
// letters, digits, and underscore, not starting with a digit. Returns the
// identifier and the offset past the closing brace, or ("", 0) on no match.
func matchPlaceholder(content string, i int) (string, int) {
	j := i + 1
	if j >= len(content) || !isIdentStart(content[j]) {
		return "", 0
	}
	for j < len(content) && isIdentPart(content[j]) {
		j++
	}
	if j < len(content) && content[j] == '}' {
		return content[i+1 : j], j + 1
	}
	return "", 0
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}
