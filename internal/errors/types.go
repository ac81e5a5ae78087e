package errors

import (
	"fmt"
)

// ReviewError describes a failed review operation with enough context to report it to
// the client
type ReviewError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Context    string    `json:"context,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	Field      string    `json:"field,omitempty"`
	Cause      error     `json:"-"`
}

// ErrorType represents different categories of review errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeInvalidArgument
	ErrorTypeInvalidState
	ErrorTypeValidation
	ErrorTypeLoad
	ErrorTypeSecurity
	ErrorTypeExport
)

// Sentinel values usable with errors.Is; matching is by type only
var (
	ErrNotFound        = &ReviewError{Type: ErrorTypeNotFound, Message: "not found"}
	ErrInvalidArgument = &ReviewError{Type: ErrorTypeInvalidArgument, Message: "invalid argument"}
	ErrInvalidState    = &ReviewError{Type: ErrorTypeInvalidState, Message: "invalid state"}
	ErrValidation      = &ReviewError{Type: ErrorTypeValidation, Message: "validation failed"}
	ErrLoad            = &ReviewError{Type: ErrorTypeLoad, Message: "load failed"}
	ErrSecurity        = &ReviewError{Type: ErrorTypeSecurity, Message: "security validation failed"}
	ErrExport          = &ReviewError{Type: ErrorTypeExport, Message: "export failed"}
)

// Error implements the error interface
func (e *ReviewError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.DocumentID != "" {
		msg += fmt.Sprintf(" (document %s", e.DocumentID)
		if e.Field != "" {
			msg += fmt.Sprintf(", field %s", e.Field)
		}
		msg += ")"
	}
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *ReviewError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ReviewError of the same type
func (e *ReviewError) Is(target error) bool {
	t, ok := target.(*ReviewError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeInvalidArgument:
		return "INVALID_ARGUMENT"
	case ErrorTypeInvalidState:
		return "INVALID_STATE"
	case ErrorTypeValidation:
		return "VALIDATION"
	case ErrorTypeLoad:
		return "LOAD"
	case ErrorTypeSecurity:
		return "SECURITY"
	case ErrorTypeExport:
		return "EXPORT"
	default:
		return "UNKNOWN"
	}
}

// New creates a ReviewError
func New(errorType ErrorType, message string) *ReviewError {
	return &ReviewError{
		Type:    errorType,
		Message: message,
	}
}

// Newf creates a ReviewError with a formatted message
func Newf(errorType ErrorType, format string, args ...any) *ReviewError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// Wrap wraps err as a ReviewError of the given type
func Wrap(errorType ErrorType, message string, err error) *ReviewError {
	return &ReviewError{
		Type:    errorType,
		Message: message,
		Cause:   err,
	}
}

// WithContext adds context to an existing ReviewError
func (e *ReviewError) WithContext(context string) *ReviewError {
	e.Context = context
	return e
}

// WithDocument adds the document the error refers to
func (e *ReviewError) WithDocument(documentID string) *ReviewError {
	e.DocumentID = documentID
	return e
}

// WithField adds the field the error refers to
func (e *ReviewError) WithField(field string) *ReviewError {
	e.Field = field
	return e
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown when err is not a
// ReviewError
func TypeOf(err error) ErrorType {
	for err != nil {
		if re, ok := err.(*ReviewError); ok {
			return re.Type
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ErrorTypeUnknown
		}
		err = u.Unwrap()
	}
	return ErrorTypeUnknown
}
