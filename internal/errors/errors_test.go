package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "VALIDATION_FAILED", "bad facility")
	assert.Equal(t, "bad facility", err.Error())
	assert.Nil(t, err.Details)

	withDetails := ErrValidation("min_rating", "must be an integer")
	assert.Equal(t, http.StatusBadRequest, withDetails.StatusCode)
	assert.Equal(t, ValidationError{Field: "min_rating", Message: "must be an integer"}, withDetails.Details)
}

func TestErrDatasetLoad(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "parse failure",
			err:        NewParsingError("parse survey", errors.New("bare quote")),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "DATASET_UNPARSEABLE",
		},
		{
			name:       "network failure",
			err:        NewNetworkError("fetch survey", errors.New("connection refused")),
			wantStatus: http.StatusBadGateway,
			wantCode:   "SOURCE_UNAVAILABLE",
		},
		{
			name:       "untyped failure",
			err:        errors.New("boom"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "SOURCE_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := ErrDatasetLoad(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
			assert.Equal(t, tt.err.Error(), apiErr.Details)
		})
	}
}

func TestErrPayloadTooLarge(t *testing.T) {
	err := ErrPayloadTooLarge(1024, 2048)
	assert.Equal(t, http.StatusRequestEntityTooLarge, err.StatusCode)
	assert.Equal(t, CodePayloadTooLarge, err.ErrorCode)
	assert.Equal(t, map[string]int64{"max_size": 1024, "size": 2048}, err.Details)

	unknownSize := ErrPayloadTooLarge(1024, 0)
	assert.Equal(t, map[string]int64{"max_size": 1024}, unknownSize.Details)
}

func TestErrDatasetNotLoaded(t *testing.T) {
	err := ErrDatasetNotLoaded()
	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.Equal(t, CodeDatasetNotLoaded, err.ErrorCode)
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "facility", Message: "too long"},
		{Field: "year", Message: "too long"},
	})
	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusBadGateway, TypeSourceUnavailable, "Survey Source Unavailable", "timeout", "/api/survey/load").
		WithExtension("trace_id", "abc").
		WithExtension("status", 999)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeSourceUnavailable, got["type"])
	assert.Equal(t, float64(http.StatusBadGateway), got["status"], "standard members take precedence")
	assert.Equal(t, "abc", got["trace_id"])
	assert.Equal(t, "/api/survey/load", got["instance"])
}

func TestProblemDetails_OmitsEmptyMembers(t *testing.T) {
	data, err := json.Marshal(&ProblemDetails{Type: TypeInternal, Title: "x", Status: 500})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "detail")
	assert.NotContains(t, string(data), "instance")
}
