package promptkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for template operations.
// All use prefix "promptkit:" for identification. Callers should use errors.Is/errors.As.
var (
	ErrTemplateNotFound = errors.New("promptkit: template not found")
	ErrMissingVariable  = errors.New("promptkit: required template variable not provided")
	ErrInvalidTemplate  = errors.New("promptkit: template failed strict validation")
	ErrInvalidManifest  = errors.New("promptkit: registry manifest is malformed")
)

// MissingVariableError wraps ErrMissingVariable with variable and template context.
// Use errors.Is(err, ErrMissingVariable) and errors.As(err, &missingErr) to inspect.
type MissingVariableError struct {
	Template string
	Variable string
}

// Error implements error.
func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("promptkit: variable %q in template %q: missing", e.Variable, e.Template)
}

// Unwrap returns ErrMissingVariable for errors.Is.
func (e *MissingVariableError) Unwrap() error { return ErrMissingVariable }

// Compile-time check that MissingVariableError implements error.
var _ error = (*MissingVariableError)(nil)
