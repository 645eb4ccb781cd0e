package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse/internal/shared/testutil"
)

func TestNewErrorHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	h := NewErrorHandler(logger, true)
	assert.True(t, h.includeStack)
	assert.NotNil(t, h.logger)
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "deadline exceeded",
			err:        fmt.Errorf("fetch: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api error",
			err:        ErrValidation("min_rating", "must be an integer"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "network app error",
			err:        fmt.Errorf("load: %w", NewNetworkError("fetch survey", errors.New("refused"))),
			wantStatus: http.StatusBadGateway,
			wantType:   TypeSourceUnavailable,
		},
		{
			name:       "parsing app error",
			err:        NewParsingError("parse survey", errors.New("bare quote")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDatasetUnparseable,
		},
		{
			name:       "config app error",
			err:        NewConfigError("bad", nil),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeConfiguration,
		},
		{
			name:       "not found app error",
			err:        NewNotFoundError("survey file", nil),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "dataset not loaded",
			err:        ErrDatasetNotLoaded(),
			wantStatus: http.StatusConflict,
			wantType:   TypeConflict,
		},
		{
			name:       "body too large",
			err:        fmt.Errorf("read body: %w", &http.MaxBytesError{Limit: 10}),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
		},
		{
			name:       "untyped not found message stays internal",
			err:        errors.New("survey file not found"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/survey/kpis", nil)
			h.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/survey/kpis", body["instance"])
			assert.Contains(t, body, "trace_id")
			assert.NotContains(t, body, "stack")

			assert.True(t, logs.ContainsMessage("request failed"))
			assert.True(t, logs.ContainsAttr("component", "error_handler"))
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, w.Body.Len())
	assert.Zero(t, logs.Count())
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))

	assert.Contains(t, w.Body.String(), "stack")
}

func TestErrorHandler_AppErrorContext(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	err := NewNetworkError("fetch survey", errors.New("status 404")).WithContext("location", "https://example.org/s.csv")
	p := h.ErrorToProblem(err, httptest.NewRequest(http.MethodPost, "/api/survey/load", nil))

	assert.Equal(t, "https://example.org/s.csv", p.Extensions["location"])
	assert.Equal(t, "NETWORK", p.Extensions["error_type"])
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	h.HandlePanic(w, httptest.NewRequest(http.MethodGet, "/api/survey/data", nil), "nil map")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "nil map")
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/survey/kpis", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "Method DELETE is not allowed")
}

func TestErrorHandler_UnknownCodeUsesStatus(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	p := h.ErrorToProblem(New(http.StatusTooManyRequests, "SLOW_DOWN", "slow down"),
		httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, TypeRateLimit, p.Type)
	assert.Equal(t, "SLOW_DOWN", p.Extensions["error_code"])
}
