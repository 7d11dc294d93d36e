package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeUnreadableSource marks a corrupt or unsupported source file.
	// The pipeline degrades to an empty extraction for it.
	ErrTypeUnreadableSource ErrorType = "UNREADABLE_SOURCE"
	// ErrTypeExtractionIO marks a read failure in the middle of a tabular parse.
	ErrTypeExtractionIO ErrorType = "EXTRACTION_IO"
	// ErrTypeWriteIO marks an artifact that could not be written.
	ErrTypeWriteIO    ErrorType = "WRITE_IO"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewUnreadableSourceError creates an error for a source file that cannot be opened or decoded
func NewUnreadableSourceError(path string, cause error) *AppError {
	return NewAppError(ErrTypeUnreadableSource, "source file is unreadable", cause).WithContext("path", path)
}

// NewExtractionIOError creates an error for a failed tabular read
func NewExtractionIOError(path string, cause error) *AppError {
	return NewAppError(ErrTypeExtractionIO, "failed to read tabular data", cause).WithContext("path", path)
}

// NewWriteIOError creates an error for an artifact that could not be written
func NewWriteIOError(path string, cause error) *AppError {
	return NewAppError(ErrTypeWriteIO, "failed to write artifact", cause).WithContext("path", path)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or ""
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}
