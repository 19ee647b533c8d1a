package httpclient

import (
	"errors"
	"fmt"
	"time"
)

// ClientError is implemented by every failure the client returns
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of client error
type ErrorType string

const (
	NetworkError      ErrorType = "network"
	TimeoutError      ErrorType = "timeout"
	HTTPError         ErrorType = "http"
	ParseError        ErrorType = "parse"
	AuthFailure       ErrorType = "auth"
	ValidationError   ErrorType = "validation"
	InterceptorError  ErrorType = "interceptor"
	TokenExpiredError ErrorType = "token_expired"
)

// networkError represents network-related errors
type networkError struct {
	message string
	wrapped error
}

func (e *networkError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("network error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("network error: %s", e.message)
}

func (e *networkError) Type() ErrorType {
	return NetworkError
}

func (e *networkError) Unwrap() error {
	return e.wrapped
}

type timeoutError struct {
	message string
	timeout time.Duration
	wrapped error
}

func (e *timeoutError) Error() string {
	if e.timeout > 0 {
		return fmt.Sprintf("timeout error: %s (timeout: %v)", e.message, e.timeout)
	}
	return fmt.Sprintf("timeout error: %s", e.message)
}

func (e *timeoutError) Type() ErrorType {
	return TimeoutError
}

func (e *timeoutError) Unwrap() error {
	return e.wrapped
}

// httpError is a classified error status. Message follows the backend's own
// wording when it provided one.
type httpError struct {
	message    string
	statusCode int
	body       []byte
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP error: %s (status: %d)", e.message, e.statusCode)
}

func (e *httpError) Type() ErrorType {
	return HTTPError
}

func (e *httpError) StatusCode() int {
	return e.statusCode
}

func (e *httpError) Body() []byte {
	return e.body
}

func (e *httpError) Message() string {
	return e.message
}

type parseError struct {
	message    string
	statusCode int
	wrapped    error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("parse error: %s (status: %d): %v", e.message, e.statusCode, e.wrapped)
}

func (e *parseError) Type() ErrorType {
	return ParseError
}

func (e *parseError) StatusCode() int {
	return e.statusCode
}

func (e *parseError) Unwrap() error {
	return e.wrapped
}

// tokenExpiredError tags a failure that the refresh path recovers from.
// It never reaches callers.
type tokenExpiredError struct {
	message    string
	statusCode int
}

func (e *tokenExpiredError) Error() string {
	return fmt.Sprintf("credential expired: %s (status: %d)", e.message, e.statusCode)
}

func (e *tokenExpiredError) Type() ErrorType {
	return TokenExpiredError
}

// authFailure is terminal: the credential could not be recovered and the
// user has been signed out.
type authFailure struct {
	reason   string
	attempts int
	wrapped  error
}

func (e *authFailure) Error() string {
	msg := fmt.Sprintf("auth failure: %s (attempts: %d)", e.reason, e.attempts)
	if e.wrapped != nil {
		msg += ": " + e.wrapped.Error()
	}
	return msg
}

func (e *authFailure) Type() ErrorType {
	return AuthFailure
}

func (e *authFailure) Unwrap() error {
	return e.wrapped
}

// Reason names why the session was terminated.
func (e *authFailure) Reason() string {
	return e.reason
}

// Attempts is the number of attempts made by the failed logical call.
func (e *authFailure) Attempts() int {
	return e.attempts
}

func (e *authFailure) withAttempts(attempts int) *authFailure {
	cp := *e
	cp.attempts = attempts
	return &cp
}

// validationError represents request validation errors
type validationError struct {
	message string
	field   string
}

func (e *validationError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("validation error: %s (field: %s)", e.message, e.field)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

func (e *validationError) Type() ErrorType {
	return ValidationError
}

// interceptorError represents interceptor-related errors
type interceptorError struct {
	message string
	wrapped error
	stage   string
}

func (e *interceptorError) Error() string {
	return fmt.Sprintf("interceptor error: %s (stage: %s): %v", e.message, e.stage, e.wrapped)
}

func (e *interceptorError) Type() ErrorType {
	return InterceptorError
}

func (e *interceptorError) Unwrap() error {
	return e.wrapped
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, wrapped error) ClientError {
	return &networkError{
		message: message,
		wrapped: wrapped,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, timeout time.Duration, wrapped error) ClientError {
	return &timeoutError{
		message: message,
		timeout: timeout,
		wrapped: wrapped,
	}
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(message string, statusCode int, body []byte) ClientError {
	return &httpError{
		message:    message,
		statusCode: statusCode,
		body:       body,
	}
}

// NewParseError creates an error for an unparseable error-status body
func NewParseError(message string, statusCode int, wrapped error) ClientError {
	return &parseError{
		message:    message,
		statusCode: statusCode,
		wrapped:    wrapped,
	}
}

// NewAuthFailure creates a terminal authentication failure
func NewAuthFailure(reason string, attempts int, wrapped error) ClientError {
	return &authFailure{
		reason:   reason,
		attempts: attempts,
		wrapped:  wrapped,
	}
}

func newTokenExpiredError(message string, statusCode int) ClientError {
	return &tokenExpiredError{
		message:    message,
		statusCode: statusCode,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message, field string) ClientError {
	return &validationError{
		message: message,
		field:   field,
	}
}

// NewInterceptorError creates a new interceptor error
func NewInterceptorError(message, stage string, wrapped error) ClientError {
	return &interceptorError{
		message: message,
		wrapped: wrapped,
		stage:   stage,
	}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// IsHTTPStatusError checks if an error is an HTTP error with a specific status code
func IsHTTPStatusError(err error, statusCode int) bool {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode() == statusCode
	}
	return false
}

// IsAuthFailure reports whether err ended the session.
func IsAuthFailure(err error) bool {
	var authErr *authFailure
	return errors.As(err, &authErr)
}

// AuthFailureAttempts returns the attempt count recorded on an auth failure.
func AuthFailureAttempts(err error) (int, bool) {
	var authErr *authFailure
	if errors.As(err, &authErr) {
		return authErr.Attempts(), true
	}
	return 0, false
}

// HTTPErrorMessage returns the classified message of an HTTP error.
func HTTPErrorMessage(err error) (string, bool) {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.Message(), true
	}
	return "", false
}

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// IsErrorStatus reports whether statusCode is classified as a failure.
func IsErrorStatus(statusCode int) bool {
	return statusCode >= 400 && statusCode < 600
}
