// Package errors provides structured error types for Parallax.
//
// Every fallible operation on a graph handle, a solver or the generator
// returns an *Error carrying a machine-readable [Code]. The taxonomy is
// shared by the Go API, the CLI and the HTTP server:
//
//   - INVALID_ARGUMENT: out-of-range vertex ids, malformed descriptors,
//     invalid damping factors or initial guesses
//   - UNSUPPORTED_TYPE: a buffer of the wrong element type (e.g. integer weights)
//   - MISSING_VIEW: a view must be derived but no source view exists
//   - ALREADY_PRESENT: a view is installed over an existing one
//   - ALLOCATION_FAILURE: memory exhaustion while building a view
//
// Non-convergence of PageRank is not an error; it is reported as a status
// on the result.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidArgument, "vertex %d out of range [0, %d)", v, n)
//	if errors.Is(err, errors.ErrCodeInvalidArgument) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, origErr, "load %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph and algorithm errors
	ErrCodeInvalidArgument   Code = "INVALID_ARGUMENT"
	ErrCodeUnsupportedType   Code = "UNSUPPORTED_TYPE"
	ErrCodeMissingView       Code = "MISSING_VIEW"
	ErrCodeAlreadyPresent    Code = "ALREADY_PRESENT"
	ErrCodeAllocationFailure Code = "ALLOCATION_FAILURE"

	// Input and configuration errors
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// HTTPStatus maps an error code to the status the HTTP server replies with.
// Errors without a code map to 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidArgument, ErrCodeInvalidConfig, ErrCodeInvalidFormat, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeUnsupportedType:
		return http.StatusUnsupportedMediaType
	case ErrCodeMissingView, ErrCodeAlreadyPresent:
		return http.StatusConflict
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeAllocationFailure:
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}
