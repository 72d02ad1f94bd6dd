// Package errors defines the pipeline error taxonomy.
//
// Every failure that crosses a package boundary is wrapped in an *Error
// carrying a stable code, so callers can branch on the class of failure
// (errors.IsCode) without string matching, and bulk computation can decide
// which failures are skippable.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies the class of a pipeline error.
type Code string

const (
	// CodeConfig marks a malformed or missing profile entry or function reference.
	CodeConfig Code = "CONFIG"
	// CodeUnknownMeasure marks a measure id absent from the profile.
	CodeUnknownMeasure Code = "UNKNOWN_MEASURE"
	// CodeConnectivity marks a network or database transport failure.
	CodeConnectivity Code = "CONNECTIVITY"
	// CodeUpstream marks a remote API that reported a non-success status.
	CodeUpstream Code = "UPSTREAM"
	// CodeSchema marks an expected date/value column absent from a fetched result.
	CodeSchema Code = "SCHEMA"
	// CodeEmptyResult marks a computer that produced zero rows where the
	// caller requires at least one.
	CodeEmptyResult Code = "EMPTY_RESULT"
)

// Error is a coded pipeline error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without a cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error wrapping cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

// IsCode reports whether the first coded error in err's chain carries code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first coded error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ConfigError marks a malformed profile entry or function reference.
func ConfigError(format string, args ...any) *Error {
	return New(CodeConfig, format, args...)
}

// UnknownMeasure marks a measure id that is not declared in the profile.
func UnknownMeasure(measureID string) *Error {
	return New(CodeUnknownMeasure, "measure %q is not declared in the profile", measureID)
}

// Connectivity wraps a transport failure.
func Connectivity(cause error, format string, args ...any) *Error {
	return Wrap(CodeConnectivity, cause, format, args...)
}

// Upstream marks a remote API that reported a non-success status.
func Upstream(status string) *Error {
	return New(CodeUpstream, "remote API returned status %q", status)
}

// Schema marks a fetched result missing an expected column.
func Schema(format string, args ...any) *Error {
	return New(CodeSchema, format, args...)
}

// EmptyResult marks a computer that produced no rows.
func EmptyResult(measureID string) *Error {
	return New(CodeEmptyResult, "measure %q produced an empty series", measureID)
}
