package httpclient

import (
	"fmt"
	"strings"
)

// DefaultExpiredMessage is the backend's wording for an expired credential.
const DefaultExpiredMessage = "Token expired"

// DefaultExpiryDetector matches a 401 whose message is "Token expired".
func DefaultExpiryDetector(status int, message string) bool {
	return NewExpiryDetector(401, DefaultExpiredMessage)(status, message)
}

// NewExpiryDetector matches failures with the given status whose message
// equals expiredMessage, ignoring case and surrounding whitespace. A zero
// status matches any status.
func NewExpiryDetector(status int, expiredMessage string) ExpiryDetector {
	want := strings.TrimSpace(expiredMessage)
	return func(got int, message string) bool {
		if status != 0 && got != status {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(message), want)
	}
}

// failureMessage picks the human-readable message of an error response: the
// "error" field of an object body, then a text body, then a generic message.
func failureMessage(status int, content Content) string {
	if v, ok := content.Field("error"); ok {
		if msg, ok := v.(string); ok && msg != "" {
			return msg
		}
	}
	if content.Kind == ContentText && content.Text != "" {
		return content.Text
	}
	// A JSON string body counts as text.
	if msg, ok := content.Data.(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("Request failed with status %d", status)
}

// classifyFailure turns an error status into the failure handed to the caller,
// or into a token expiry the dispatcher recovers from.
func (c *client) classifyFailure(status int, content Content, raw []byte) ClientError {
	msg := failureMessage(status, content)
	if c.expired(status, msg) {
		return newTokenExpiredError(msg, status)
	}
	return NewHTTPError(msg, status, raw)
}

func (c *client) expired(status int, msg string) bool {
	detect := c.config.ExpiryDetector
	if detect == nil {
		detect = DefaultExpiryDetector
	}
	return detect(status, msg)
}
