package middleware

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "campuspulse/internal/errors"
)

// ProblemFromStatus creates a problem document for an HTTP status code.
func ProblemFromStatus(status int, detail, instance string) *apierrors.ProblemDetails {
	var problemType string

	switch status {
	case http.StatusBadRequest:
		problemType = apierrors.TypeValidation
	case http.StatusNotFound:
		problemType = apierrors.TypeNotFound
	case http.StatusMethodNotAllowed:
		problemType = apierrors.TypeMethodNotAllowed
	case http.StatusRequestEntityTooLarge:
		problemType = apierrors.TypePayloadTooLarge
	case http.StatusTooManyRequests:
		problemType = apierrors.TypeRateLimit
	case http.StatusServiceUnavailable:
		problemType = apierrors.TypeServiceDown
	case http.StatusGatewayTimeout:
		problemType = apierrors.TypeTimeout
	default:
		problemType = apierrors.TypeInternal
	}

	return apierrors.NewProblemDetails(status, problemType, http.StatusText(status), detail, instance)
}

// writeProblem renders a problem response tagged with the request ID.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := ProblemFromStatus(status, detail, r.URL.Path).
		WithExtension("trace_id", GetRequestID(r.Context()))
	_ = render.Render(w, r, problem)
}
