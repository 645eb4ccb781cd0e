package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem type URIs (RFC 7807).
const (
	TypeValidation         = "/errors/validation"
	TypeNotFound           = "/errors/not-found"
	TypeRateLimit          = "/errors/rate-limit"
	TypeInternal           = "/errors/internal"
	TypeServiceDown        = "/errors/service-unavailable"
	TypeTimeout            = "/errors/timeout"
	TypeConflict           = "/errors/conflict"
	TypePayloadTooLarge    = "/errors/payload-too-large"
	TypeMethodNotAllowed   = "/errors/method-not-allowed"
	TypeSourceUnavailable  = "/errors/dataset/source-unavailable"
	TypeDatasetUnparseable = "/errors/dataset/unparseable"
	TypeConfiguration      = "/errors/configuration"
)

// problemTypeByCode maps APIError codes to problem types. Unlisted codes are
// derived from the status.
var problemTypeByCode = map[string]string{
	CodeInvalidRequest:     TypeValidation,
	CodeInvalidJSON:        TypeValidation,
	CodeValidationFailed:   TypeValidation,
	CodePayloadTooLarge:    TypePayloadTooLarge,
	CodeDatasetNotLoaded:   TypeConflict,
	CodeSourceUnavailable:  TypeSourceUnavailable,
	CodeDatasetUnparseable: TypeDatasetUnparseable,
}

var problemTypeByStatus = map[int]string{
	http.StatusBadRequest:         TypeValidation,
	http.StatusNotFound:           TypeNotFound,
	http.StatusConflict:           TypeConflict,
	http.StatusTooManyRequests:    TypeRateLimit,
	http.StatusServiceUnavailable: TypeServiceDown,
	http.StatusGatewayTimeout:     TypeTimeout,
}

type appProblem struct {
	status int
	typ    string
	title  string
}

var problemByAppErrorType = map[ErrorType]appProblem{
	ErrTypeNetwork:    {http.StatusBadGateway, TypeSourceUnavailable, "Survey Source Unavailable"},
	ErrTypeParsing:    {http.StatusUnprocessableEntity, TypeDatasetUnparseable, "Survey Document Unparseable"},
	ErrTypeValidation: {http.StatusBadRequest, TypeValidation, "Validation Failed"},
	ErrTypeNotFound:   {http.StatusNotFound, TypeNotFound, "Resource Not Found"},
	ErrTypeConfig:     {http.StatusInternalServerError, TypeConfiguration, "Configuration Error"},
}

// ErrorHandler renders errors as RFC 7807 problem documents and logs them.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler. includeStack adds stack traces
// to responses and is meant for development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and writes it as a problem document.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)

	problem := h.ErrorToProblem(err, r)
	if h.includeStack {
		problem.WithExtension("stack", string(debug.Stack()))
	}
	h.write(w, r, problem)
}

// ErrorToProblem converts err to a problem document. APIError keeps its own
// status; AppError is mapped by type; anything else is a 500 whose message
// is not exposed.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", r.URL.Path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorProblem(appErr, r)
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return NewProblemDetails(http.StatusRequestEntityTooLarge, TypePayloadTooLarge, "Payload Too Large",
			fmt.Sprintf("The request body exceeds %d bytes", maxBytesErr.Limit), r.URL.Path)
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred while processing your request", r.URL.Path)
}

func apiErrorProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType, ok := problemTypeByCode[apiErr.ErrorCode]
	if !ok {
		problemType, ok = problemTypeByStatus[apiErr.StatusCode]
	}
	if !ok {
		problemType = TypeInternal
	}

	problem := NewProblemDetails(apiErr.StatusCode, problemType, http.StatusText(apiErr.StatusCode),
		apiErr.Message, r.URL.Path).
		WithExtension("error_code", apiErr.ErrorCode)
	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// appErrorProblem maps typed application errors. Network failures are the
// upstream's fault (502); parse failures mean the document itself is bad (422).
func appErrorProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	p, ok := problemByAppErrorType[appErr.Type]
	if !ok {
		return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
			"An unexpected error occurred while processing your request", r.URL.Path)
	}

	detail := appErr.Message
	if appErr.Type == ErrTypeNetwork || appErr.Type == ErrTypeParsing {
		detail = appErr.Error()
	}

	problem := NewProblemDetails(p.status, p.typ, p.title, detail, r.URL.Path).
		WithExtension("error_type", string(appErr.Type))
	for k, v := range appErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}

// HandlePanic writes a 500 problem for a recovered panic. The panic value is
// only exposed when stacks are included.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	stack := string(debug.Stack())
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", stack),
	)

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred", r.URL.Path)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", stack)
	}
	h.write(w, r, problem)
}

// NotFound is the router's 404 handler.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path))
}

// MethodNotAllowed is the router's 405 handler.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, NewProblemDetails(http.StatusMethodNotAllowed, TypeMethodNotAllowed, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path))
}

// write stamps the request ID as trace_id and renders problem.
func (h *ErrorHandler) write(w http.ResponseWriter, r *http.Request, problem *ProblemDetails) {
	problem.WithExtension("trace_id", middleware.GetReqID(r.Context()))
	if err := render.Render(w, r, problem); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render problem", slog.String("error", err.Error()))
	}
}
