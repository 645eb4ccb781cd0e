package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an AppError. The HTTP layer maps each type to a status.
type ErrorType string

const (
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// Kind sentinels match any AppError of the same type with errors.Is:
//
//	if errors.Is(err, apierrors.KindParsing) { ... }
var (
	KindNetwork    = &AppError{Type: ErrTypeNetwork}
	KindParsing    = &AppError{Type: ErrTypeParsing}
	KindValidation = &AppError{Type: ErrTypeValidation}
	KindNotFound   = &AppError{Type: ErrTypeNotFound}
	KindConfig     = &AppError{Type: ErrTypeConfig}
)

// AppError is a typed error raised below the HTTP layer. Context entries are
// surfaced as problem extensions.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the kind sentinel of e's type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Message != "" || t.Cause != nil {
		return false
	}
	return t.Type == e.Type
}

// WithContext attaches key=value to e and returns e.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// TypeOf returns the type of the first AppError in err's chain, or "" if
// there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewAppValidationError is the AppError counterpart of NewValidationError,
// for code that has no HTTP status of its own.
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError reports that resource does not exist. cause may be nil.
func NewNotFoundError(resource string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), cause)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
