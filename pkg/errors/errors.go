package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad   ErrorCode = "CONFIG_LOAD"
	ErrConfigParse  ErrorCode = "CONFIG_PARSE"
	ErrConfigValid  ErrorCode = "CONFIG_INVALID"
	ErrConfigEncode ErrorCode = "CONFIG_ENCODE"

	// Job errors
	ErrJobInvalid   ErrorCode = "JOB_INVALID"
	ErrJobFailed    ErrorCode = "JOB_FAILED"
	ErrJobCancelled ErrorCode = "JOB_CANCELLED"

	// Output and metrics errors
	ErrOutputFormat ErrorCode = "OUTPUT_FORMAT"
	ErrMetrics      ErrorCode = "METRICS"
	ErrServe        ErrorCode = "SERVE"
)

// BusyError represents a structured error with code and details
type BusyError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *BusyError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *BusyError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *BusyError) Is(target error) bool {
	var targetErr *BusyError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

func newError(err error, code ErrorCode, message string) *BusyError {
	return &BusyError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// New creates a new BusyError with the given code and message
func New(code ErrorCode, message string) *BusyError {
	return newError(nil, code, message)
}

// Newf creates a new BusyError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BusyError {
	return newError(nil, code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code. It returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *BusyError {
	if err == nil {
		return nil
	}
	return newError(err, code, message)
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BusyError {
	if err == nil {
		return nil
	}
	return newError(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *BusyError) WithDetail(key string, value interface{}) *BusyError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var busyErr *BusyError
	if errors.As(err, &busyErr) {
		return busyErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a BusyError
func GetErrorCode(err error) ErrorCode {
	var busyErr *BusyError
	if errors.As(err, &busyErr) {
		return busyErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a BusyError
func GetErrorDetails(err error) map[string]interface{} {
	var busyErr *BusyError
	if errors.As(err, &busyErr) {
		return busyErr.Details
	}
	return nil
}
// Reason is the innermost message worth showing a user: the wrapped cause
// when there is one, otherwise the message, without code or details
func Reason(err error) string {
	var busyErr *BusyError
	if !errors.As(err, &busyErr) {
		return err.Error()
	}
	if busyErr.Wrapped != nil {
		return Reason(busyErr.Wrapped)
	}
	return busyErr.Message
}

// Exit statuses returned by the busy binary
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitCancelled = 130
)

// ExitCode maps err to a process exit status. Bad input and bad config are
// usage errors; a cancelled run exits like an interrupted shell command.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetErrorCode(err) {
	case ErrInvalidInput, ErrJobInvalid, ErrOutputFormat,
		ErrConfigLoad, ErrConfigParse, ErrConfigValid, ErrConfigEncode, ErrNotFound:
		return ExitUsage
	case ErrJobCancelled:
		return ExitCancelled
	default:
		return ExitFailure
	}
}
