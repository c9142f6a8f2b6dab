package errors

import "fmt"

// ErrorCode represents a captrack error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"       // 400
	ErrInvalidUserKey     ErrorCode = "INVALID_USER_KEY"      // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"             // 404
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"        // 404
	ErrFileTooLarge       ErrorCode = "FILE_TOO_LARGE"        // 413
	ErrCapacityOutOfRange ErrorCode = "CAPACITY_OUT_OF_RANGE" // 422
	ErrCancelled          ErrorCode = "CANCELLED"             // 499
	ErrInternal           ErrorCode = "INTERNAL"              // 500
)

// TrackerError represents a structured error with code, status, and details.
type TrackerError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TrackerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TrackerError {
	return &TrackerError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidUserKey creates a 400 error for a user key that is not 0x-prefixed hex.
func NewInvalidUserKey(key string) *TrackerError {
	return &TrackerError{
		Code:    ErrInvalidUserKey,
		Status:  400,
		Message: fmt.Sprintf("invalid user key %q: expected 0x followed by hex digits (e.g. 0xA1B2C3)", key),
		Details: map[string]any{"key": key},
	}
}

// NewNotFound creates a 404 error for a missing resource.
func NewNotFound(identifier string) *TrackerError {
	return &TrackerError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *TrackerError {
	return &TrackerError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewFileTooLarge creates a 413 error when an import file exceeds the size limit.
func NewFileTooLarge(max, actual int64) *TrackerError {
	return &TrackerError{
		Code:    ErrFileTooLarge,
		Status:  413,
		Message: fmt.Sprintf("file exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewCapacityOutOfRange creates a 422 error for a sub-score outside [min, max].
func NewCapacityOutOfRange(field string, value, min, max int) *TrackerError {
	return &TrackerError{
		Code:    ErrCapacityOutOfRange,
		Status:  422,
		Message: fmt.Sprintf("%s must be between %d and %d, got %d", field, min, max, value),
		Details: map[string]any{"field": field, "value": value, "min": min, "max": max},
	}
}

// NewCancelled creates a 499 error when an operation's context is done.
func NewCancelled(op string) *TrackerError {
	return &TrackerError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TrackerError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TrackerError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a TrackerError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TrackerError); ok {
		return tErr.Code == code
	}
	return false
}
