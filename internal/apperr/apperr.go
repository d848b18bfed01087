// Package apperr defines the error taxonomy shared by the scoring core and
// the pipeline composer. Handlers map these onto HTTP status codes; internal
// callers branch with errors.As.
package apperr

import "fmt"

// NotFoundError reports a referenced entity that is missing or soft-deleted.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError reports malformed or out-of-range input. Values are never
// silently clamped into range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a sequence collision detected by the concurrency
// guard. The score ledger retries these internally and surfaces one only when
// retries are exhausted.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s", e.Key)
}

func Conflict(key string) error {
	return &ConflictError{Key: key}
}

// ConfigurationError reports a pipeline composed against an undefined join or
// field. It fails at composition time, not per request.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return "pipeline configuration: " + e.Detail
}

func Configuration(format string, args ...interface{}) error {
	return &ConfigurationError{Detail: fmt.Sprintf(format, args...)}
}
