// internal/core/errors.go
package core

import (
	"errors"
	"fmt"
)

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no price data available"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "fewer than 2 valid return rows"}

	// Simulation errors
	ErrEmptyResultSet = &Error{Code: "EMPTY_RESULT_SET", Message: "simulation produced no valid portfolios"}

	// Source errors
	ErrSourceFailed = &Error{Code: "SOURCE_FAILED", Message: "price source failed"}

	// Storage errors
	ErrStoreFailed = &Error{Code: "STORE_FAILED", Message: "run store failed"}
	ErrRunNotFound = &Error{Code: "RUN_NOT_FOUND", Message: "run not found"}
	ErrJobNotFound = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Insight errors
	ErrInsightFailed = &Error{Code: "INSIGHT_FAILED", Message: "insight generation failed"}

	// Notify errors
	ErrNotifyFailed = &Error{Code: "NOTIFY_FAILED", Message: "notification delivery failed"}
)

// Common causes used by constructors in this package.
var (
	errNoTickers    = errors.New("ticker set is empty")
	errUnsortedRows = errors.New("rows must be strictly ascending by date")
)
