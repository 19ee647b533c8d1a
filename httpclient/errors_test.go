package httpclient

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConnectionFailed = "connection failed"

func TestErrorTypeFormatting(t *testing.T) {
	tests := []struct {
		name     string
		error    ClientError
		contains []string
	}{
		{
			name:     "network error without wrapped error",
			error:    NewNetworkError(testConnectionFailed, nil),
			contains: []string{"network error", testConnectionFailed},
		},
		{
			name:     "network error with wrapped error",
			error:    NewNetworkError(testConnectionFailed, errors.New("underlying issue")),
			contains: []string{"network error", testConnectionFailed, "underlying issue"},
		},
		{
			name:     "timeout error",
			error:    NewTimeoutError("request timeout", 30*time.Second, nil),
			contains: []string{"timeout error", "request timeout", "30s"},
		},
		{
			name:     "http error",
			error:    NewHTTPError("bad request", 400, []byte("invalid input")),
			contains: []string{"HTTP error", "bad request", "400"},
		},
		{
			name:     "parse error",
			error:    NewParseError("invalid JSON response from server (/listings)", 502, errors.New("unexpected EOF")),
			contains: []string{"parse error", "/listings", "502", "unexpected EOF"},
		},
		{
			name:     "auth failure",
			error:    NewAuthFailure("no identity", 1, nil),
			contains: []string{"auth failure", "no identity", "attempts: 1"},
		},
		{
			name:     "token expired",
			error:    newTokenExpiredError("Token expired", 401),
			contains: []string{"credential expired", "Token expired", "401"},
		},
		{
			name:     "validation error with field",
			error:    NewValidationError("invalid payload", "payload"),
			contains: []string{"validation error", "invalid payload", "payload"},
		},
		{
			name:     "interceptor error",
			error:    NewInterceptorError("processing failed", "request", errors.New("parsing error")),
			contains: []string{"interceptor error", "processing failed", "request", "parsing error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errorMsg := tt.error.Error()
			for _, expected := range tt.contains {
				assert.Contains(t, errorMsg, expected)
			}
		})
	}
}

func TestErrorTypeIdentification(t *testing.T) {
	tests := []struct {
		error    ClientError
		expected ErrorType
	}{
		{NewNetworkError("test", nil), NetworkError},
		{NewTimeoutError("test", time.Second, nil), TimeoutError},
		{NewHTTPError("test", 500, nil), HTTPError},
		{NewParseError("test", 500, nil), ParseError},
		{NewAuthFailure("test", 0, nil), AuthFailure},
		{newTokenExpiredError("test", 401), TokenExpiredError},
		{NewValidationError("test", "field"), ValidationError},
		{NewInterceptorError("test", "stage", nil), InterceptorError},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.error.Type())
			assert.True(t, IsErrorType(tt.error, tt.expected))
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	underlying := errors.New("connection refused")

	assert.ErrorIs(t, NewNetworkError("failed to connect", underlying), underlying)
	assert.ErrorIs(t, NewTimeoutError("request timeout", 0, context.DeadlineExceeded), context.DeadlineExceeded)
	assert.ErrorIs(t, NewParseError("bad json", 500, underlying), underlying)
	assert.ErrorIs(t, NewAuthFailure("credential refresh failed", 1, underlying), underlying)
	assert.ErrorIs(t, NewInterceptorError("failed", "response", underlying), underlying)
}

func TestWrappedClientErrorsAreDetected(t *testing.T) {
	err := fmt.Errorf("load listings: %w", NewHTTPError("Listing not found", 404, nil))

	assert.True(t, IsErrorType(err, HTTPError))
	assert.True(t, IsHTTPStatusError(err, 404))
	assert.False(t, IsHTTPStatusError(err, 500))

	msg, ok := HTTPErrorMessage(err)
	require.True(t, ok)
	assert.Equal(t, "Listing not found", msg)

	_, ok = HTTPErrorMessage(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsErrorType(nil, HTTPError))
}

func TestHTTPErrorAccessors(t *testing.T) {
	err := NewHTTPError("Internal error", 500, []byte("Internal error"))

	var httpErr *httpError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 500, httpErr.StatusCode())
	assert.Equal(t, []byte("Internal error"), httpErr.Body())
	assert.Equal(t, "Internal error", httpErr.Message())
}

func TestAuthFailureAttempts(t *testing.T) {
	base := &authFailure{reason: "retry limit reached"}
	withCount := base.withAttempts(6)

	assert.Equal(t, 0, base.Attempts(), "withAttempts must not modify the original")
	assert.Equal(t, 6, withCount.Attempts())
	assert.Equal(t, "retry limit reached", withCount.Reason())

	wrapped := fmt.Errorf("checkout: %w", withCount)
	assert.True(t, IsAuthFailure(wrapped))
	attempts, ok := AuthFailureAttempts(wrapped)
	require.True(t, ok)
	assert.Equal(t, 6, attempts)

	_, ok = AuthFailureAttempts(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsAuthFailure(NewHTTPError("x", 401, nil)))
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, IsSuccessStatus(200))
	assert.True(t, IsSuccessStatus(204))
	assert.False(t, IsSuccessStatus(304))

	assert.False(t, IsErrorStatus(399))
	assert.True(t, IsErrorStatus(400))
	assert.True(t, IsErrorStatus(599))
	assert.False(t, IsErrorStatus(600))
}
