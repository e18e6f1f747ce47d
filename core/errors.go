package core

import (
	"context"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// StoreError marks a transient backing-store failure (network, backend outage,
// bounded-wait timeout). It is always retryable by the user, never automatically.
type StoreError struct {
	Op      string
	Err     error
	timeout bool
}

func NewStoreError(op string, err error) error {
	return &StoreError{
		Op:      op,
		Err:     err,
		timeout: errors.Cause(err) == context.DeadlineExceeded,
	}
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was the bounded wait elapsing.
func (e *StoreError) Timeout() bool { return e.timeout }

func IsStoreError(err error) bool {
	_, ok := errors.Cause(err).(*StoreError)
	return ok
}
