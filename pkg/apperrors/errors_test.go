package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{NewNotFound("order", "order_1"), http.StatusNotFound},
		{NewMissingParameter("client_id"), http.StatusBadRequest},
		{NewInvalidCursor(errors.New("bad base64")), http.StatusBadRequest},
		{NewValidation("quantity must be positive"), http.StatusBadRequest},
		{NewUnauthorized(""), http.StatusUnauthorized},
		{NewForbidden(""), http.StatusForbidden},
		{NewPreconditionFailed("quotation is not PAID"), http.StatusConflict},
		{NewMalformedKey("proj_1", 2), http.StatusInternalServerError},
		{NewTransactionAborted("create orders", errors.New("boom")), http.StatusInternalServerError},
		{NewUnavailable("query", errors.New("timeout")), http.StatusServiceUnavailable},
		{NewUnknown("query", errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus, "%s", tc.err.Type)
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := NewUnavailable("query", errors.New("connection reset"))
	assert.Contains(t, err.Error(), "UNAVAILABLE")
	assert.Contains(t, err.Error(), "connection reset")

	bare := NewValidation("bad input")
	assert.Equal(t, "VALIDATION: bad input", bare.Error())
}

func TestGetUnwrapsChain(t *testing.T) {
	inner := NewNotFound("part", "part_1")
	wrapped := fmt.Errorf("loading part: %w", inner)

	got := Get(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, ErrorTypeNotFound, got.Type)

	assert.Nil(t, Get(errors.New("plain")))
	assert.Nil(t, Get(nil))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("throttled")
	err := NewUnavailable("query", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("project", "proj_1")))
	assert.True(t, IsPreconditionFailed(NewPreconditionFailed("gate")))
	assert.True(t, IsInvalidCursor(NewInvalidCursor(errors.New("bad"))))
	assert.True(t, IsUnavailable(NewUnavailable("get", errors.New("x"))))

	assert.False(t, IsNotFound(NewValidation("nope")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, NewUnavailable("query", errors.New("x")).Retryable())

	assert.False(t, NewPreconditionFailed("gate").Retryable())
	assert.False(t, NewTransactionAborted("op", errors.New("x")).Retryable())
	assert.False(t, NewInvalidCursor(errors.New("x")).Retryable())
	assert.False(t, NewUnknown("op", errors.New("x")).Retryable())
}

func TestWithDetailsAndCause(t *testing.T) {
	cause := errors.New("underlying")
	err := NewValidation("bad").
		WithCause(cause).
		WithDetails(map[string]interface{}{"field": "quantity"})

	assert.Equal(t, cause, err.Cause)
	assert.Equal(t, "quantity", err.Details["field"])
}

func TestDefaultMessages(t *testing.T) {
	assert.Equal(t, "UNAUTHORIZED: unauthorized", NewUnauthorized("").Error())
	assert.Equal(t, "FORBIDDEN: forbidden", NewForbidden("").Error())
	assert.Contains(t, NewUnauthorized("token expired").Error(), "token expired")
}
