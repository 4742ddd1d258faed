package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput     = errors.New("input is empty or contains only whitespace")
	ErrNotContainer   = errors.New("value is not an array or object")
	ErrUnknownNode    = errors.New("node does not exist")
	ErrUnknownSubview = errors.New("subview does not exist")
	ErrWrongMode      = errors.New("operation is not available in the current view mode")
	ErrNotTabular     = errors.New("value cannot be shown as a table")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeParse     ErrorType = "parse"
	ErrorTypeCoercion  ErrorType = "coercion"
	ErrorTypeInvariant ErrorType = "invariant"
	ErrorTypeInput     ErrorType = "input"
	ErrorTypeOutput    ErrorType = "output"
	ErrorTypeState     ErrorType = "state"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewParseError creates an error for text that is not valid JSON.
func NewParseError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeParse, Message: message, Err: err}
}

// NewCoercionError creates an error for edited text that does not fit the
// target value kind.
func NewCoercionError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeCoercion, Message: message, Err: err}
}

// NewInvariantError creates an error for a broken internal consistency
// contract. It is never caused by user input.
func NewInvariantError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInvariant, Message: message, Err: err}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInput, Message: message, Err: err}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeOutput, Message: message, Err: err}
}

// NewStateError creates an error for an operation issued against the wrong
// view state (unknown node, wrong mode, closed subview).
func NewStateError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeState, Message: message, Err: err}
}

// Sentinel values usable with errors.Is to match on type only.
var (
	Parse     = &AppError{Type: ErrorTypeParse}
	Coercion  = &AppError{Type: ErrorTypeCoercion}
	Invariant = &AppError{Type: ErrorTypeInvariant}
	State     = &AppError{Type: ErrorTypeState}
	Input     = &AppError{Type: ErrorTypeInput}
	Output    = &AppError{Type: ErrorTypeOutput}
)

// IsFatal reports whether err signals a broken internal invariant.
func IsFatal(err error) bool {
	return errors.Is(err, Invariant)
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide a JSON document."
	}
	if errors.Is(err, ErrNotTabular) {
		return "Error: Only objects and arrays of objects can be shown as a table."
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeParse:
			return fmt.Sprintf("Invalid JSON: %s", appErr.Message)
		case ErrorTypeCoercion:
			return fmt.Sprintf("Invalid value: %s", appErr.Message)
		case ErrorTypeInvariant:
			return fmt.Sprintf("Internal error: %s", appErr.Message)
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeState:
			return fmt.Sprintf("Not possible: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	return fmt.Sprintf("Error: %v", err)
}
