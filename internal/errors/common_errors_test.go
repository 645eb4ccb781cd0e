package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with cause",
			err:  NewNetworkError("fetch survey", io.ErrUnexpectedEOF),
			want: "[NETWORK] fetch survey: unexpected EOF",
		},
		{
			name: "without cause",
			err:  NewAppValidationError("min_rating must be an integer"),
			want: "[VALIDATION] min_rating must be an integer",
		},
		{
			name: "not found",
			err:  NewNotFoundError("survey file", nil),
			want: "[NOT_FOUND] survey file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("bad quote")
	err := fmt.Errorf("load: %w", NewParsingError("parse survey", cause))

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrTypeParsing, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewConfigError("invalid port", nil).WithContext("port", 0)
	assert.Equal(t, 0, err.Context["port"])

	bare := &AppError{Type: ErrTypeConfig}
	bare.WithContext("k", "v")
	assert.Equal(t, "v", bare.Context["k"])
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypeNetwork, TypeOf(NewNetworkError("x", nil)))
	assert.Equal(t, ErrTypeParsing, TypeOf(fmt.Errorf("wrapped: %w", NewParsingError("x", nil))))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}

func TestAppError_IsKind(t *testing.T) {
	err := fmt.Errorf("load: %w", NewParsingError("parse survey", io.ErrUnexpectedEOF))

	assert.ErrorIs(t, err, KindParsing)
	assert.NotErrorIs(t, err, KindNetwork)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	other := NewParsingError("other", nil)
	assert.False(t, errors.Is(err, other), "only kind sentinels match by type")
}

func TestNewNotFoundError_KeepsCause(t *testing.T) {
	err := NewNotFoundError("survey file /tmp/a.csv", io.EOF)

	assert.ErrorIs(t, err, KindNotFound)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "[NOT_FOUND] survey file /tmp/a.csv not found: EOF", err.Error())
}
