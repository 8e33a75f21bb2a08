// Package errors provides structured error types for the Shelfstack application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the session API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes split into two families. Placement codes describe expected
// planogram rule failures (a drop that doesn't fit); the mutation engine
// returns them alongside the unchanged container and never panics for them.
// The remaining codes cover input validation, missing resources, and
// unexpected internal failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCapacityExceeded, "row %s is full", rowID)
//	if errors.Is(err, errors.ErrCodeCapacityExceeded) {
//	    // Surface the rejected drop to the user
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "decode snapshot %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Placement failures (expected, returned by the mutation engine)
	ErrCodeCapacityExceeded      Code = "CAPACITY_EXCEEDED"
	ErrCodeInvalidStack          Code = "INVALID_STACK"
	ErrCodeProductTypeNotAllowed Code = "PRODUCT_TYPE_NOT_ALLOWED"

	// Resource not found errors
	ErrCodeItemNotFound    Code = "ITEM_NOT_FOUND"
	ErrCodeLayoutNotFound  Code = "LAYOUT_NOT_FOUND"
	ErrCodeSKUNotFound     Code = "SKU_NOT_FOUND"
	ErrCodeRowNotFound     Code = "ROW_NOT_FOUND"
	ErrCodeDoorNotFound    Code = "DOOR_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidTarget Code = "INVALID_TARGET"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

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

// IsPlacement reports whether err is an expected placement failure, i.e.
// a rule rejection the caller should surface to the user rather than treat
// as a fault.
func IsPlacement(err error) bool {
	switch GetCode(err) {
	case ErrCodeCapacityExceeded, ErrCodeInvalidStack, ErrCodeProductTypeNotAllowed:
		return true
	}
	return false
}
