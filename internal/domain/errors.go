package domain

import "fmt"

// ValidationError reports input rejected before any remote call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// RemoteError reports a failed read or write against the backing row store.
// Op and Table identify the failing step so callers can decide retry vs abort.
type RemoteError struct {
	Op    string
	Table string
	Err   error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s on %s failed: %v", e.Op, e.Table, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// NewRemoteError wraps err with the failing operation and table.
func NewRemoteError(op, table string, err error) *RemoteError {
	return &RemoteError{Op: op, Table: table, Err: err}
}
