package fileloader

import (
	"fmt"
	"strings"

	"github.com/sentinel-rag/promptkit"
)

// InvalidTemplateError reports a template that failed strict validation at
// load time. Issues carries the full finding list; only error-severity
// entries block the load. Unwraps to promptkit.ErrInvalidTemplate.
type InvalidTemplateError struct {
	Name   string
	Issues []promptkit.Issue
}

// Error implements error.
func (e *InvalidTemplateError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Severity == promptkit.SeverityError {
			msgs = append(msgs, issue.Message)
		}
	}
	return fmt.Sprintf("fileloader: template %q is invalid: %s", e.Name, strings.Join(msgs, "; "))
}

// Unwrap returns promptkit.ErrInvalidTemplate for errors.Is.
func (e *InvalidTemplateError) Unwrap() error { return promptkit.ErrInvalidTemplate }

// Compile-time check that InvalidTemplateError implements error.
var _ error = (*InvalidTemplateError)(nil)
