// Package httpclient is the single authenticated chokepoint between the
// marketplace client and its backend. It attaches the bearer credential,
// interprets response bodies, classifies failures and recovers from an
// expired credential by refreshing it and replaying the call.
package httpclient

import (
	"context"
	"io"
	nethttp "net/http"
	"net/url"
	"time"
)

// Content type hints understood by the dispatcher.
const (
	ContentTypeJSON        = "application/json"
	ContentTypeForm        = "application/x-www-form-urlencoded"
	ContentTypeMultipart   = "multipart/form-data"
	ContentTypeOctetStream = "application/octet-stream"
)

const (
	// HeaderAuthorization carries the credential verbatim, without a scheme prefix.
	HeaderAuthorization = "Authorization"
	// HeaderContentType is the canonical content type header name
	HeaderContentType = "Content-Type"
)

// Client defines the backend client used by every feature of the application.
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)

	// SetCredential installs the bearer credential after sign-in.
	SetCredential(credential string)
	// Credential returns the credential currently attached to requests.
	Credential() string
	// ClearCredential removes the credential; later requests go out unauthenticated.
	ClearCredential()
}

// Request describes one logical call. It is never modified by the client, so
// the same value can be dispatched concurrently and replayed after a refresh.
// At most one of Body, Form, Stream and Multipart may be set.
type Request struct {
	// Path is joined to the configured base URL. Absolute URLs are used as is.
	Path    string
	Headers map[string]string

	Body []byte
	Form url.Values
	// Stream is called once per attempt so a replay gets a fresh reader.
	Stream    func() (io.Reader, error)
	Multipart *MultipartForm

	// ContentType overrides the hint derived from the payload variant.
	ContentType string
}

// Response is a successful outcome.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
	Content    Content
	Stats      Stats
}

// Stats contains request execution statistics
type Stats struct {
	// ElapsedTime covers the whole logical call, replays included.
	ElapsedTime time.Duration
	// CallCount is the client-wide number of logical calls so far.
	CallCount int64
	// Attempt is the zero-based attempt that produced the response.
	Attempt int
}

// CredentialProvider exposes the signed-in identity. A nil Identity with a nil
// error means nobody is signed in.
type CredentialProvider interface {
	CurrentIdentity(ctx context.Context) (Identity, error)
	ForceLogout(ctx context.Context) error
}

// Identity can mint a fresh credential for the signed-in user.
type Identity interface {
	FreshCredential(ctx context.Context) (string, error)
}

// SessionStore persists the backend session for the current credential.
type SessionStore interface {
	Clear(ctx context.Context) error
	Create(ctx context.Context, credential string) error
}

// ExpiryDetector reports whether a classified failure means the credential expired.
type ExpiryDetector func(status int, message string) bool

// RequestInterceptor is called before sending the request
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving the response
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error

// Config holds the client configuration
type Config struct {
	BaseURL              string
	Timeout              time.Duration
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	DefaultHeaders       map[string]string
	// MaxAuthRetries bounds the replays after a credential refresh (default: 5)
	MaxAuthRetries int
	// ExpiryDetector tags failures as an expired credential (default: DefaultExpiryDetector)
	ExpiryDetector ExpiryDetector
	// RateLimit caps outgoing attempts per second; zero disables limiting
	RateLimit float64
	RateBurst int
	// LogPayloads enables debug-level logging of headers and body payloads
	LogPayloads bool
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int
	// TraceIDHeader configures the header name used for trace ID propagation (default: X-Request-ID)
	TraceIDHeader string
}
