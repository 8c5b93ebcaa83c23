// Package errors provides structured error types for typeviz.
//
// Every failure that crosses a package boundary carries a [Code] so the CLI
// can print a short user message and the HTTP server can pick a status code
// without string matching.
//
// # Error Codes
//
// Codes are grouped by category:
//   - INVALID_*: malformed input, structure templates or configuration
//   - *NOT_FOUND: missing files or resources
//   - NETWORK_ERROR, TIMEOUT: transport failures talking to TypeDB
//   - UNAUTHORIZED, FORBIDDEN: rejected credentials
//   - INTERNAL_ERROR, UNSUPPORTED: violated invariants and unknown variants
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidStructure, "branch %d out of range", b)
//	if errors.Is(err, errors.ErrCodeInvalidStructure) {
//	    // reject the payload
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "query %s", database)
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
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidStructure Code = "INVALID_STRUCTURE"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeForbidden    Code = "FORBIDDEN"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a [Code] alongside the message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an *Error with a formatted message that wraps cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It looks at the outermost *Error in the chain only, so a wrapped
// INVALID_STRUCTURE inside an INTERNAL_ERROR reports INTERNAL_ERROR.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// if there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage renders err without code prefixes, for printing to a user.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

var httpStatus = map[Code]int{
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidFormat:    http.StatusBadRequest,
	ErrCodeInvalidStructure: http.StatusBadRequest,
	ErrCodeInvalidConfig:    http.StatusBadRequest,
	ErrCodeInvalidPath:      http.StatusBadRequest,
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeForbidden:        http.StatusForbidden,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeFileNotFound:     http.StatusNotFound,
	ErrCodeUnsupported:      http.StatusUnprocessableEntity,
	ErrCodeNetwork:          http.StatusBadGateway,
	ErrCodeTimeout:          http.StatusGatewayTimeout,
}

// HTTPStatus returns the status the API server replies with for err.
// Errors without a known code are internal server errors.
func HTTPStatus(err error) int {
	if status, ok := httpStatus[GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
