package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureMessagePriority(t *testing.T) {
	t.Run("error field wins over everything", func(t *testing.T) {
		content := Content{Kind: ContentStructured, Data: map[string]any{"error": "Bid too low", "message": "ignored"}}
		assert.Equal(t, "Bid too low", failureMessage(400, content))
	})

	t.Run("text body when no error field", func(t *testing.T) {
		content := Content{Kind: ContentText, Text: "Internal error"}
		assert.Equal(t, "Internal error", failureMessage(500, content))
	})

	t.Run("generic message when body has neither", func(t *testing.T) {
		assert.Equal(t, "Request failed with status 503", failureMessage(503, Content{Kind: ContentNone}))
	})

	t.Run("structured body without error field falls back", func(t *testing.T) {
		content := Content{Kind: ContentStructured, Data: map[string]any{"message": "nope"}}
		assert.Equal(t, "Request failed with status 422", failureMessage(422, content))
	})

	t.Run("non-string error field falls back", func(t *testing.T) {
		content := Content{Kind: ContentStructured, Data: map[string]any{"error": map[string]any{"code": 7}}}
		assert.Equal(t, "Request failed with status 400", failureMessage(400, content))
	})

	t.Run("array body falls back", func(t *testing.T) {
		content := Content{Kind: ContentStructured, Data: []any{"error"}}
		assert.Equal(t, "Request failed with status 400", failureMessage(400, content))
	})

	t.Run("binary body falls back", func(t *testing.T) {
		content := Content{Kind: ContentBinary, Binary: []byte("oops")}
		assert.Equal(t, "Request failed with status 500", failureMessage(500, content))
	})
}

func TestClassifyFailure(t *testing.T) {
	c := &client{logger: &fakeLogger{}, config: &Config{ExpiryDetector: DefaultExpiryDetector}}

	t.Run("expired credential is tagged", func(t *testing.T) {
		content := Content{Kind: ContentStructured, Data: map[string]any{"error": "Token expired"}}
		err := c.classifyFailure(401, content, nil)
		assert.Equal(t, TokenExpiredError, err.Type())
	})

	t.Run("other 401 stays an HTTP error", func(t *testing.T) {
		content := Content{Kind: ContentStructured, Data: map[string]any{"error": "Invalid signature"}}
		err := c.classifyFailure(401, content, []byte(`{"error":"Invalid signature"}`))
		require.Equal(t, HTTPError, err.Type())
		assert.True(t, IsHTTPStatusError(err, 401))
		msg, _ := HTTPErrorMessage(err)
		assert.Equal(t, "Invalid signature", msg)
	})

	t.Run("expiry text on another status is not expiry", func(t *testing.T) {
		content := Content{Kind: ContentText, Text: "Token expired"}
		err := c.classifyFailure(500, content, nil)
		assert.Equal(t, HTTPError, err.Type())
	})

	t.Run("nil detector uses default", func(t *testing.T) {
		bare := &client{logger: &fakeLogger{}, config: &Config{}}
		content := Content{Kind: ContentText, Text: " token EXPIRED "}
		assert.Equal(t, TokenExpiredError, bare.classifyFailure(401, content, nil).Type())
	})
}

func TestNewExpiryDetector(t *testing.T) {
	anyStatus := NewExpiryDetector(0, "Session expired")
	assert.True(t, anyStatus(403, "session expired"))
	assert.True(t, anyStatus(401, "Session expired"))
	assert.False(t, anyStatus(401, "Token expired"))

	only419 := NewExpiryDetector(419, DefaultExpiredMessage)
	assert.True(t, only419(419, "Token expired"))
	assert.False(t, only419(401, "Token expired"))

	assert.False(t, DefaultExpiryDetector(401, "Token expired soon"))
}

func TestFailureMessageJSONString(t *testing.T) {
	content := Content{Kind: ContentStructured, Data: "Token expired"}
	assert.Equal(t, "Token expired", failureMessage(401, content))
}
