// Package errors provides structured error types for the schemadraw core.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI, and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - VALIDATION_*: Malformed input (diagram text, payload fields)
//   - NOT_FOUND_*: Referenced entity already absent
//   - UPSTREAM_*: Persistence or generation boundary rejected
//   - INCONSISTENT: Recoverable model inconsistency, recorded and non-fatal
//
// # Usage
//
//	err := errors.New(errors.ErrCodeValidation, "malformed attribute line: %s", line)
//	if errors.Is(err, errors.ErrCodeValidation) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeUpstream, origErr, "store rejected shape %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors (returned, never panicked)
	ErrCodeValidation      Code = "VALIDATION_FAILED"
	ErrCodeInvalidDialect  Code = "INVALID_DIALECT"
	ErrCodeInvalidShape    Code = "INVALID_SHAPE"
	ErrCodeInvalidGeometry Code = "INVALID_GEOMETRY"

	// Resource not found errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeShapeNotFound     Code = "SHAPE_NOT_FOUND"
	ErrCodeConnectorNotFound Code = "CONNECTOR_NOT_FOUND"
	ErrCodeDiagramNotFound   Code = "DIAGRAM_NOT_FOUND"

	// Boundary errors
	ErrCodeUpstream   Code = "UPSTREAM_FAILED"
	ErrCodeGeneration Code = "GENERATION_FAILED"

	// Recoverable model inconsistencies
	ErrCodeInconsistent Code = "INCONSISTENT"

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

// ParseError reports a malformed line in diagram text. It carries enough
// position information for an editor to highlight the offending line.
type ParseError struct {
	Line    int    // 1-based line number within the source text
	Text    string // The offending line, trimmed
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Text)
	}
	return e.Message
}

// Code returns the error code for this error type.
func (e *ParseError) Code() Code {
	return ErrCodeValidation
}
