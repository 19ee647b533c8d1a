package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(log *fakeLogger) *client {
	return &client{logger: log, config: &Config{}}
}

func TestInterpretBodyNoContent(t *testing.T) {
	c := newTestClient(&fakeLogger{})

	tests := []struct {
		name          string
		status        int
		contentLength int64
		contentType   string
		raw           []byte
	}{
		{"zero length json", 200, 0, ContentTypeJSON, nil},
		{"zero length error status", 500, 0, ContentTypeJSON, nil},
		{"zero length text", 404, 0, "text/plain", nil},
		{"absent length", 200, -1, ContentTypeJSON, []byte(`{"ok":true}`)},
		{"absent length binary", 200, -1, "image/png", []byte{0x89}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := c.interpretBody("/listings", tt.status, tt.contentLength, tt.contentType, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, ContentNone, content.Kind)
		})
	}
}

func TestInterpretBodyStructured(t *testing.T) {
	c := newTestClient(&fakeLogger{})
	raw := []byte(`{"listings": [], "total": 0}`)

	content, err := c.interpretBody("/listings", 200, int64(len(raw)), "application/json; charset=utf-8", raw)
	require.NoError(t, err)

	assert.Equal(t, ContentStructured, content.Kind)
	assert.Equal(t, map[string]any{"listings": []any{}, "total": float64(0)}, content.Data)

	var typed struct {
		Listings []string `json:"listings"`
		Total    int      `json:"total"`
	}
	require.NoError(t, content.Decode(&typed))
	assert.NotNil(t, typed.Listings)
	assert.Equal(t, 0, typed.Total)
}

func TestInterpretBodyVendorJSON(t *testing.T) {
	c := newTestClient(&fakeLogger{})
	raw := []byte(`{"type":"about:blank"}`)

	content, err := c.interpretBody("/bids", 200, int64(len(raw)), "application/problem+json", raw)
	require.NoError(t, err)
	assert.Equal(t, ContentStructured, content.Kind)
}

func TestInterpretBodyMalformedJSON(t *testing.T) {
	raw := []byte(`{"listings": [`)

	t.Run("success status yields nothing", func(t *testing.T) {
		log := &fakeLogger{}
		c := newTestClient(log)

		content, err := c.interpretBody("/listings", 200, int64(len(raw)), ContentTypeJSON, raw)
		require.NoError(t, err)
		assert.Equal(t, ContentNone, content.Kind)

		warnings := log.eventsByLevel("warn")
		require.Len(t, warnings, 1)
		assert.Equal(t, "/listings", warnings[0].fields["path"])
	})

	t.Run("error status yields parse error", func(t *testing.T) {
		c := newTestClient(&fakeLogger{})

		_, err := c.interpretBody("/listings", 502, int64(len(raw)), ContentTypeJSON, raw)
		require.Error(t, err)
		assert.True(t, IsErrorType(err, ParseError))
		assert.Contains(t, err.Error(), "invalid JSON response from server (/listings)")
	})
}

func TestInterpretBodyTextAndBinary(t *testing.T) {
	c := newTestClient(&fakeLogger{})

	text, err := c.interpretBody("/health", 200, 2, "text/plain; charset=utf-8", []byte("ok"))
	require.NoError(t, err)
	assert.Equal(t, ContentText, text.Kind)
	assert.Equal(t, "ok", text.Text)

	png := []byte{0x89, 0x50, 0x4e, 0x47}
	binary, err := c.interpretBody("/media/1", 200, int64(len(png)), "image/png", png)
	require.NoError(t, err)
	assert.Equal(t, ContentBinary, binary.Kind)
	assert.Equal(t, png, binary.Binary)

	missingType, err := c.interpretBody("/media/2", 200, 3, "", []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, ContentBinary, missingType.Kind)
}

func TestContentDecodeRequiresStructured(t *testing.T) {
	var v map[string]any
	err := Content{Kind: ContentText, Text: "hello"}.Decode(&v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text")
}

func TestContentKindString(t *testing.T) {
	assert.Equal(t, "none", ContentNone.String())
	assert.Equal(t, "structured", ContentStructured.String())
	assert.Equal(t, "text", ContentText.String())
	assert.Equal(t, "binary", ContentBinary.String())
}
