package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// Conversion errors. All four are fatal to the current conversion:
	// no retry, no partial output, no silent coercion.
	ErrTypeUnsupportedType ErrorType = "unsupported_type"
	ErrTypeMissingField    ErrorType = "missing_field"
	ErrTypeBadConstraint   ErrorType = "bad_constraint"
	ErrTypeDuplicateName   ErrorType = "duplicate_name"

	// Ambient errors raised around the conversion core.
	ErrTypeParse    ErrorType = "parse"
	ErrTypeConfig   ErrorType = "config"
	ErrTypeIO       ErrorType = "io"
	ErrTypeDatabase ErrorType = "database"
	ErrTypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, an optional
// schema.table.column path, and optional suggestions
type Error struct {
	Type        ErrorType
	Path        string
	Message     string
	Cause       error
	Suggestions []string
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Message)
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Type, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithPath records the schema.table.column path the error refers to
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithSuggestion adds a suggestion for resolving the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// New creates a new structured error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new structured error with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type == errType
	}

	return false
}

// GetType returns the error type if it's a structured error
func GetType(err error) ErrorType {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type
	}

	return ErrTypeInternal
}

// PathOf returns the schema.table.column path carried by a structured
// error, or "" when the error has none
func PathOf(err error) string {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Path
	}

	return ""
}

// IsSchemaError reports whether an error belongs to the conversion
// taxonomy (as opposed to an ambient parse/config/io failure)
func IsSchemaError(err error) bool {
	switch GetType(err) {
	case ErrTypeUnsupportedType, ErrTypeMissingField, ErrTypeBadConstraint, ErrTypeDuplicateName:
		return true
	default:
		return false
	}
}

// NewConfigError creates a configuration error with suggestions
func NewConfigError(message, field string) *Error {
	err := New(ErrTypeConfig, message)
	if field != "" {
		err.Message = fmt.Sprintf("%s (field: %s)", message, field)
	}

	return err.
		WithSuggestion("Check your configuration file syntax").
		WithSuggestion("Run with --help to see valid configuration options")
}
