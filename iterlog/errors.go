package iterlog

import (
	"errors"
	"fmt"
)

// Sentinel errors for iteration log operations.
// Callers should use errors.Is to check.
var (
	// ErrVersionConflict indicates a (prompt, version) pair was already logged.
	ErrVersionConflict = errors.New("iterlog: version already logged")
	// ErrRecordNotFound indicates no record exists for the (prompt, version) pair.
	ErrRecordNotFound = errors.New("iterlog: record not found")
	// ErrAlreadySet indicates a once-only field was set before.
	ErrAlreadySet = errors.New("iterlog: field already set")
	// ErrInvalidMetric indicates a quality metric value outside [0,1].
	ErrInvalidMetric = errors.New("iterlog: metric value out of range")
)

// VersionConflictError wraps ErrVersionConflict with the conflicting pair.
type VersionConflictError struct {
	Prompt  string
	Version string
}

// Error implements error.
func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("iterlog: prompt %q version %q already logged", e.Prompt, e.Version)
}

// Unwrap returns ErrVersionConflict for errors.Is.
func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

// RecordNotFoundError wraps ErrRecordNotFound with the missing pair.
type RecordNotFoundError struct {
	Prompt  string
	Version string
}

// Error implements error.
func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("iterlog: no record for prompt %q version %q", e.Prompt, e.Version)
}

// Unwrap returns ErrRecordNotFound for errors.Is.
func (e *RecordNotFoundError) Unwrap() error { return ErrRecordNotFound }

// InvalidMetricError wraps ErrInvalidMetric with the offending metric.
type InvalidMetricError struct {
	Metric string
	Value  float64
}

// Error implements error.
func (e *InvalidMetricError) Error() string {
	return fmt.Sprintf("iterlog: metric %q value %v outside [0,1]", e.Metric, e.Value)
}

// Unwrap returns ErrInvalidMetric for errors.Is.
func (e *InvalidMetricError) Unwrap() error { return ErrInvalidMetric }

// Compile-time checks that the wrappers implement error.
var (
	_ error = (*VersionConflictError)(nil)
	_ error = (*RecordNotFoundError)(nil)
	_ error = (*InvalidMetricError)(nil)
)
