// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Configuration errors (100-199): invalid parameters or rule combinations (ConfigError)
//   - Data errors (200-299): missing or malformed bars, NaN values (DataError)
//   - Sizing (300-399): degenerate order sizes, recovered locally (SizingDegenerate)
//   - Broker errors (500-599): rejected orders and position bookkeeping
//   - Run errors (600-699): a single simulation aborted (RunFailed)
//   - Sweep errors (700-799): orchestration level failures
//   - Storage errors (800-899): result persistence failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidMaxHold, "max_hold must be positive")
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeRunFailed, "simulation aborted", cause)
//
//	// Check error category anywhere in the chain
//	if errors.IsDataError(err) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// HasCategory walks the whole chain and reports whether any *Error in it
// belongs to the given category. A RunFailed wrapping a DataError is both.
func HasCategory(err error, category Category) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}

		if e.Code.Category() == category {
			return true
		}

		err = e.Cause
	}

	return false
}

// IsConfigError reports whether err carries a configuration error code.
func IsConfigError(err error) bool {
	return HasCategory(err, CategoryConfig)
}

// IsDataError reports whether err carries a data error code.
func IsDataError(err error) bool {
	return HasCategory(err, CategoryData)
}

// IsRunFailed reports whether err marks an aborted simulation run.
func IsRunFailed(err error) bool {
	return HasCategory(err, CategoryRun)
}

// RunFailed wraps the cause of an aborted simulation run.
func RunFailed(runID string, cause error) *Error {
	return Wrapf(ErrCodeRunFailed, cause, "run %s failed", runID)
}
