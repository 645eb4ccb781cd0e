package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried by APIError.ErrorCode and echoed as the problem's
// error_code extension.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidJSON        = "INVALID_JSON"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeDatasetNotLoaded   = "DATASET_NOT_LOADED"
	CodeSourceUnavailable  = "SOURCE_UNAVAILABLE"
	CodeDatasetUnparseable = "DATASET_UNPARSEABLE"
)

// APIError is an error with a fixed HTTP status, raised by handlers and
// middleware.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one invalid request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the details payload of a multi-field validation failure.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message, Details: details}
}

// InvalidRequestWithError reports a request that could not be read or decoded.
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation reports a single invalid field, typically a query parameter.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed",
		ValidationError{Field: field, Message: message})
}

// NewValidationError reports a validation failure without field details.
func NewValidationError(message string) *APIError {
	return New(http.StatusBadRequest, CodeValidationFailed, message)
}

// NewValidationErrors reports several invalid fields at once.
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed",
		ValidationErrors{Errors: errs})
}

// ErrPayloadTooLarge reports a request body over limit bytes.
func ErrPayloadTooLarge(limit, size int64) *APIError {
	details := map[string]int64{"max_size": limit}
	if size > 0 {
		details["size"] = size
	}
	return NewWithDetails(http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
		fmt.Sprintf("Request body exceeds maximum allowed size of %d bytes", limit), details)
}

// ErrDatasetNotLoaded reports an operation that needs a loaded survey.
func ErrDatasetNotLoaded() *APIError {
	return New(http.StatusConflict, CodeDatasetNotLoaded, "No survey dataset has been loaded")
}

// ErrDatasetLoad creates the error reported when a survey document cannot be
// loaded. Unparseable documents are 422, unreachable sources 502.
func ErrDatasetLoad(err error) *APIError {
	if TypeOf(err) == ErrTypeParsing {
		return NewWithDetails(http.StatusUnprocessableEntity, CodeDatasetUnparseable, "Survey document could not be parsed", err.Error())
	}
	return NewWithDetails(http.StatusBadGateway, CodeSourceUnavailable, "Survey source could not be fetched", err.Error())
}
