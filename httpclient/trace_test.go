package httpclient

import (
	"context"
	nethttp "net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIDFromContext(t *testing.T) {
	_, ok := TraceIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = TraceIDFromContext(WithTraceID(context.Background(), ""))
	assert.False(t, ok, "empty ids are ignored")

	id, ok := TraceIDFromContext(WithTraceID(context.Background(), "trace-1"))
	assert.True(t, ok)
	assert.Equal(t, "trace-1", id)
}

func TestEnsureTraceIDGeneratesUUID(t *testing.T) {
	id := EnsureTraceID(context.Background())
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.NotEqual(t, id, EnsureTraceID(context.Background()))
	assert.Equal(t, "kept", EnsureTraceID(WithTraceID(context.Background(), "kept")))
}

func TestTraceIDInterceptor(t *testing.T) {
	ctx := WithTraceID(context.Background(), "trace-2")

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, "http://example.test", nil)
	require.NoError(t, err)
	require.NoError(t, NewTraceIDInterceptorFor("X-Correlation-ID")(ctx, req))
	assert.Equal(t, "trace-2", req.Header.Get("X-Correlation-ID"))

	req.Header.Set(HeaderXRequestID, "caller")
	require.NoError(t, NewTraceIDInterceptorFor("")(ctx, req))
	assert.Equal(t, "caller", req.Header.Get(HeaderXRequestID), "existing header wins")
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"https://api.bidzu.test", "/listings", "https://api.bidzu.test/listings"},
		{"https://api.bidzu.test/", "listings", "https://api.bidzu.test/listings"},
		{"https://api.bidzu.test/v1/", "/listings", "https://api.bidzu.test/v1/listings"},
		{"https://api.bidzu.test", "?page=2", "https://api.bidzu.test?page=2"},
		{"https://api.bidzu.test", "", "https://api.bidzu.test"},
		{"", "https://other.test/x", "https://other.test/x"},
		{"https://api.bidzu.test", "https://other.test/x", "https://other.test/x"},
	}

	for _, tt := range tests {
		c := &client{config: &Config{BaseURL: tt.base}}
		assert.Equal(t, tt.want, c.resolveURL(tt.path), "base=%q path=%q", tt.base, tt.path)
	}
}

func TestContentTypeHint(t *testing.T) {
	assert.Equal(t, ContentTypeJSON, contentTypeHint(&Request{}))
	assert.Equal(t, ContentTypeForm, contentTypeHint(&Request{Form: map[string][]string{}}))
	assert.Equal(t, ContentTypeMultipart, contentTypeHint(&Request{Multipart: &MultipartForm{}}))
	assert.Equal(t, "text/csv", contentTypeHint(&Request{ContentType: "text/csv", Body: []byte("a,b")}))

	assert.True(t, isMultipart("multipart/form-data; boundary=x"))
	assert.True(t, isMultipart("Multipart/Form-Data"))
	assert.False(t, isMultipart(ContentTypeJSON))
}
