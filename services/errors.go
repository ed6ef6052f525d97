package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrSubmissionNotFound is returned for lookups of unknown submission ids.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrAuthenticationRequired is returned when an operation needs an actor
	// and none was supplied.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrForbidden is returned when the actor's role cannot perform the
	// operation.
	ErrForbidden = errors.New("operation not permitted for role")
	// ErrProtectedModule is returned when disabling a module that must stay on.
	ErrProtectedModule = errors.New("module cannot be disabled")
	// ErrUnknownModule is returned for flag operations on unknown module keys.
	ErrUnknownModule = errors.New("unknown module key")
	// ErrInvalidCredentials is returned for failed logins. The message is
	// intentionally the same for unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountInactive is returned for logins against deactivated accounts.
	ErrAccountInactive = errors.New("account is deactivated")
	// ErrOTPInvalid is returned for a wrong, expired or already-used code.
	ErrOTPInvalid = errors.New("invalid or expired OTP")
)

// StorageError wraps a persistence failure so callers can distinguish it
// from domain errors and decide whether to retry or abort.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// ValidationErrors maps field names to messages. A non-empty map aborts the
// operation with no side effects.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationErrors unwraps err into a ValidationErrors map if it is one.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
