package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an identifier does not resolve to a live record.
var ErrNotFound = errors.New("not found")

// FieldIssue is one rejected field of a request.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field issue found in a request.
type ValidationError struct {
	Issues []FieldIssue `json:"issues"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records an issue for field.
func (e *ValidationError) Add(field, format string, args ...any) {
	e.Issues = append(e.Issues, FieldIssue{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err returns e when it holds issues and nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

// Invalid builds a single-issue ValidationError.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Field: field, Message: message}}}
}

// TransientError marks a storage failure that may succeed on retry, such as a
// timeout or a dropped connection.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient store error during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is, or wraps, a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
