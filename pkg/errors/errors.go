// Package errors provides structured error types for the design studio.
//
// Every failure boundary of the studio has its own machine-readable code so
// that the CLI and library callers can tell a bad aspect ratio from an
// undecodable upload or a failed remote generation without string matching.
//
// # Error Codes
//
//   - INVALID_*: Input validation failures (ratios, formats, sizes)
//   - IMAGE_DECODE, ASSET_LOAD: Raster data that cannot be decoded
//   - CANVAS_UNAVAILABLE: A rendering surface could not be created
//   - GENERATION_FAILED, EDIT_FAILED, BRIEF_FAILED: Remote collaborator failures
//   - EXPORT_FAILED: Final encode or save failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRatio, "invalid aspect ratio %q", ratio)
//	if errors.Is(err, errors.ErrCodeInvalidRatio) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeExport, encErr, "encode %s", format)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the studio failure boundaries.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidRatio  Code = "INVALID_RATIO"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidLayout Code = "INVALID_LAYOUT"

	// Raster and canvas errors
	ErrCodeImageDecode       Code = "IMAGE_DECODE"
	ErrCodeAssetLoad         Code = "ASSET_LOAD"
	ErrCodeCanvasUnavailable Code = "CANVAS_UNAVAILABLE"

	// Remote collaborator errors
	ErrCodeGeneration Code = "GENERATION_FAILED"
	ErrCodeEdit       Code = "EDIT_FAILED"
	ErrCodeBrief      Code = "BRIEF_FAILED"

	// Output errors
	ErrCodeExport Code = "EXPORT_FAILED"

	// Account and storage errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeQuotaExceeded Code = "QUOTA_EXCEEDED"

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

// Is reports whether any *Error in err's chain carries the given code.
// An export failure caused by an undecodable asset therefore matches both
// ErrCodeExport and ErrCodeAssetLoad.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
