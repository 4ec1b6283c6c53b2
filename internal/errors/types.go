// Package errors defines the operational error types used across redactor
// and the collector that gathers per-file lint issues from concurrent
// workers.
//
// Document problems are never Go errors: the markup engine reports them as
// issues. This package covers everything around it (I/O, configuration,
// invalid requests) and the file-located view of issues used by reports.
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeInvalidPath    = "ERR_INVALID_PATH"
	ErrCodeFileNotFound   = "ERR_FILE_NOT_FOUND"
	ErrCodeReadFailed     = "ERR_READ_FAILED"
	ErrCodeWriteFailed    = "ERR_WRITE_FAILED"
	ErrCodeConfigInvalid  = "ERR_CONFIG_INVALID"
	ErrCodeCatalogInvalid = "ERR_CATALOG_INVALID"
	ErrCodeInvalidRequest = "ERR_INVALID_REQUEST"
	ErrCodeLintFailed     = "ERR_LINT_FAILED"
	ErrCodeInternalError  = "ERR_INTERNAL"
)

// RedactorError is a structured error type with context.
type RedactorError struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	Context  map[string]interface{}
	FilePath string
	Line     int
	Column   int
}

// Error implements the error interface.
func (e *RedactorError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
			if e.Column > 0 {
				location += fmt.Sprintf(":%d", e.Column)
			}
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *RedactorError) Unwrap() error {
	return e.Cause
}

// Is matches another RedactorError with the same type and code.
func (e *RedactorError) Is(target error) bool {
	var t *RedactorError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *RedactorError) WithContext(key string, value interface{}) *RedactorError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *RedactorError) WithLocation(filePath string, line, column int) *RedactorError {
	e.FilePath = filePath
	e.Line = line
	e.Column = column

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *RedactorError {
	return &RedactorError{Type: ErrorTypeValidation, Code: code, Message: message}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *RedactorError {
	return &RedactorError{Type: ErrorTypeIO, Code: code, Message: message, Cause: cause}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *RedactorError {
	return &RedactorError{Type: ErrorTypeConfig, Code: code, Message: message, Cause: cause}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *RedactorError {
	return &RedactorError{Type: ErrorTypeInternal, Code: code, Message: message, Cause: cause}
}

// HasErrorType reports whether err wraps a RedactorError of the given type.
func HasErrorType(err error, errType ErrorType) bool {
	var te *RedactorError
	if errors.As(err, &te) {
		return te.Type == errType
	}

	return false
}

// HasErrorCode reports whether err wraps a RedactorError with the given code.
func HasErrorCode(err error, code string) bool {
	var te *RedactorError
	if errors.As(err, &te) {
		return te.Code == code
	}

	return false
}

// ErrInvalidPath creates a path validation error.
func ErrInvalidPath(path string, cause error) *RedactorError {
	return &RedactorError{
		Type:     ErrorTypeValidation,
		Code:     ErrCodeInvalidPath,
		Message:  "invalid path",
		Cause:    cause,
		FilePath: path,
	}
}

// ErrReadFailed creates a file read error.
func ErrReadFailed(path string, cause error) *RedactorError {
	code := ErrCodeReadFailed
	if errors.Is(cause, fs.ErrNotExist) {
		code = ErrCodeFileNotFound
	}

	return NewIOError(code, "failed to read document", cause).WithLocation(path, 0, 0)
}

// ErrWriteFailed creates a file write error.
func ErrWriteFailed(path string, cause error) *RedactorError {
	return NewIOError(ErrCodeWriteFailed, "failed to write document", cause).WithLocation(path, 0, 0)
}
