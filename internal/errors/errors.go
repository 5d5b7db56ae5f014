package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the asset identifier tooling
type ErrorType string

const (
	// Codec errors: the transformation does not apply to the input
	ErrorTypeLength   ErrorType = "length"
	ErrorTypeHex      ErrorType = "hex"
	ErrorTypeInternal ErrorType = "internal"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Sentinels matched by CodecError.Is so callers can write errors.Is(err, ErrLength).
var (
	ErrLength   = errors.New("unexpected identifier length")
	ErrHex      = errors.New("unparseable hex content")
	ErrInternal = errors.New("internal codec failure")
)

// CodecError reports why an identifier transformation was not applied.
type CodecError struct {
	Type       ErrorType
	Operation  string
	Input      string
	Underlying error
	Timestamp  time.Time
}

// NewCodecError creates a codec error of the given type
func NewCodecError(errType ErrorType, op string, err error) *CodecError {
	return &CodecError{
		Type:       errType,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithInput records the input that could not be transformed
func (e *CodecError) WithInput(input string) *CodecError {
	e.Input = input
	return e
}

// Error implements the error interface
func (e *CodecError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("%s %s not applied to %q: %v", e.Type, e.Operation, e.Input, e.Underlying)
	}
	return fmt.Sprintf("%s %s not applied: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *CodecError) Unwrap() error {
	return e.Underlying
}

// Is matches the sentinel belonging to the error's type
func (e *CodecError) Is(target error) bool {
	switch e.Type {
	case ErrorTypeLength:
		return target == ErrLength
	case ErrorTypeHex:
		return target == ErrHex
	case ErrorTypeInternal:
		return target == ErrInternal
	}
	return false
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// isPermissionError checks if the error is a permission error
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
