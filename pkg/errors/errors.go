// Package errors provides structured error types for gridview.
//
// Three families of failure exist in the engine and each maps to its own
// code so callers can tell them apart with [Is]:
//
//   - INVALID_TEMPLATE: structural misuse detected when a template is
//     sealed (empty row range, frozen tracks over the row range, star or
//     auto tracks on a disallowed axis). Always returned, never panicked.
//   - CONTRACT_VIOLATION: a programming error such as realizing an ordinal
//     past the container count or virtualizing a view that is not realized.
//     These are raised with panic(Violation(...)) and are never swallowed.
//   - ROW_SOURCE: an error returned by the row source collaborator while the
//     engine was fetching or applying a change. The engine rolls back the
//     operation in progress and propagates the error to the host.
//
// The remaining codes cover CLI and configuration input, and the network
// failures of remote row sources.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "unknown source kind: %s", kind)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRowSource, origErr, "fetch row %d", i)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors
	ErrCodeInvalidTemplate   Code = "INVALID_TEMPLATE"
	ErrCodeContractViolation Code = "CONTRACT_VIOLATION"

	// Data errors
	ErrCodeRowSource Code = "ROW_SOURCE"
	ErrCodeNotFound  Code = "NOT_FOUND"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Violation creates a contract-violation error. Callers panic with it:
//
//	panic(errors.Violation("realize: ordinal %d out of range [0,%d)", k, n))
func Violation(format string, args ...any) *Error {
	return New(ErrCodeContractViolation, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recover converts a recovered contract-violation panic back into an error.
// Any other panic value is re-panicked. It is meant for process boundaries
// (the CLI, the HTTP inspector) that must report violations instead of
// crashing:
//
//	defer func() { err = errors.Recover(recover(), err) }()
func Recover(r any, err error) error {
	if r == nil {
		return err
	}
	if e, ok := r.(*Error); ok && e.Code == ErrCodeContractViolation {
		return e
	}
	panic(r)
}

// TemplateError describes a template rule that failed at seal time.
type TemplateError struct {
	Rule    string // short rule identifier, e.g. "row-range-empty"
	Subject string // offending binding or track, if any
	Message string
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s (%s): %s", e.Rule, e.Subject, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

// Code returns the error code for this error type.
func (e *TemplateError) Code() Code {
	return ErrCodeInvalidTemplate
}

// Template wraps a TemplateError into a structured INVALID_TEMPLATE error.
func Template(rule, subject, format string, args ...any) *Error {
	te := &TemplateError{Rule: rule, Subject: subject, Message: fmt.Sprintf(format, args...)}
	return &Error{Code: ErrCodeInvalidTemplate, Message: te.Error(), Cause: te}
}
