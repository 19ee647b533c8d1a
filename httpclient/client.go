package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	nethttp "net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/Bidzuweb/Bidzu-Final/httpclient/internal/tracking"
	"github.com/Bidzuweb/Bidzu-Final/logger"
)

// client implements the Client interface
type client struct {
	httpClient           *nethttp.Client
	logger               logger.Logger
	config               *Config
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	limiter              *rate.Limiter
	provider             CredentialProvider
	store                SessionStore

	mu         sync.RWMutex
	credential string

	refreshGroup singleflight.Group
	callCount    int64
}

// Get performs a GET request
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Patch performs a PATCH request
func (c *client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

// Delete performs a DELETE request
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

func (c *client) SetCredential(credential string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = credential
}

func (c *client) Credential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credential
}

func (c *client) ClearCredential() {
	c.SetCredential("")
}

// Do dispatches one logical call. An expired credential is refreshed and the
// call replayed with the same method, path and payload, at most
// MaxAuthRetries times; past that the user is signed out and an AuthFailure
// is returned without sending again.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	callCount := atomic.AddInt64(&c.callCount, 1)
	// Replays share the request id of the logical call.
	ctx = WithTraceID(ctx, EnsureTraceID(ctx))

	for attempt := 0; ; attempt++ {
		credential := c.Credential()

		resp, err := c.exchange(ctx, method, req, credential, Stats{CallCount: callCount, Attempt: attempt}, start)
		if err == nil {
			return resp, nil
		}
		if !IsErrorType(err, TokenExpiredError) {
			return nil, err
		}

		next := attempt + 1
		if next > c.maxAuthRetries() {
			return nil, c.forceLogout(ctx, "retry limit reached", err).withAttempts(next)
		}
		if failure := c.refreshCredential(ctx, credential); failure != nil {
			return nil, failure.withAttempts(next)
		}

		c.logger.Info().
			Str("method", method).
			Str("path", req.Path).
			Int("attempt", next).
			Msg("Replaying request with refreshed credential")
	}
}

// exchange performs a single network attempt and classifies its outcome.
func (c *client) exchange(ctx context.Context, method string, req *Request, credential string, stats Stats, start time.Time) (*Response, error) {
	// Wait before the payload is opened so a cancelled wait leaves nothing to close.
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.transportError(err)
		}
	}

	httpReq, logBody, err := c.buildRequest(ctx, method, req, credential)
	if err != nil {
		return nil, err
	}

	traceID := httpReq.Header.Get(c.traceIDHeader())
	c.logRequest(httpReq, logBody, traceID)

	sent := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		clientErr := c.transportError(err)
		tracking.RecordAttempt(ctx, method, 0, stats.Attempt, time.Since(sent), string(clientErr.Type()))
		return nil, clientErr
	}
	tracking.RecordAttempt(ctx, method, httpResp.StatusCode, stats.Attempt, time.Since(sent), "")

	stats.ElapsedTime = time.Since(start)
	resp, err := c.buildResponse(ctx, req.Path, httpReq, httpResp, stats)
	if err != nil {
		return nil, err
	}
	c.logResponse(resp, traceID)

	if IsErrorStatus(resp.StatusCode) {
		return nil, c.classifyFailure(resp.StatusCode, resp.Content, resp.Body)
	}
	return resp, nil
}

func (c *client) maxAuthRetries() int {
	if c.config.MaxAuthRetries < 0 {
		return 0
	}
	return c.config.MaxAuthRetries
}

func (c *client) traceIDHeader() string {
	if c.config.TraceIDHeader != "" {
		return c.config.TraceIDHeader
	}
	return HeaderXRequestID
}

// validateRequest validates the request before sending
func (c *client) validateRequest(req *Request) error {
	if req == nil {
		return NewValidationError("request cannot be nil", "request")
	}
	if req.Path == "" && c.config.BaseURL == "" {
		return NewValidationError("URL cannot be empty", "path")
	}

	payloads := 0
	if req.Body != nil {
		payloads++
	}
	if req.Form != nil {
		payloads++
	}
	if req.Stream != nil {
		payloads++
	}
	if req.Multipart != nil {
		payloads++
	}
	if payloads > 1 {
		return NewValidationError("only one of Body, Form, Stream and Multipart may be set", "payload")
	}
	return nil
}

// resolveURL joins path to the base URL with exactly one slash between them.
func (c *client) resolveURL(path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	base := c.config.BaseURL
	switch {
	case base == "":
		return path
	case path == "":
		return base
	case strings.HasPrefix(path, "?"):
		return base + path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// contentTypeHint returns the explicit hint, or the default for the payload variant.
func contentTypeHint(req *Request) string {
	switch {
	case req.ContentType != "":
		return req.ContentType
	case req.Form != nil:
		return ContentTypeForm
	case req.Multipart != nil:
		return ContentTypeMultipart
	default:
		return ContentTypeJSON
	}
}

func isMultipart(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(contentType), ContentTypeMultipart)
	}
	return mediaType == ContentTypeMultipart
}

// encodePayload produces a fresh body for one attempt, the bytes to log and
// the Content-Type header value. An empty content type means the header is omitted.
func (c *client) encodePayload(req *Request) (io.Reader, []byte, string, error) {
	hint := contentTypeHint(req)
	contentType := hint
	if isMultipart(hint) {
		contentType = ""
	}

	switch {
	case req.Multipart != nil:
		buf, boundaryType, err := req.Multipart.encode()
		if err != nil {
			return nil, nil, "", NewValidationError(fmt.Sprintf("failed to encode multipart form: %v", err), "multipart")
		}
		if contentType == "" {
			contentType = boundaryType
		}
		return buf, buf.Bytes(), contentType, nil
	case req.Form != nil:
		encoded := req.Form.Encode()
		return strings.NewReader(encoded), []byte(encoded), contentType, nil
	case req.Stream != nil:
		r, err := req.Stream()
		if err != nil {
			return nil, nil, "", NewValidationError(fmt.Sprintf("failed to open request stream: %v", err), "stream")
		}
		return r, nil, contentType, nil
	case req.Body != nil:
		return bytes.NewReader(req.Body), req.Body, contentType, nil
	}
	return nil, nil, contentType, nil
}

// applyHeaders fills the attempt's own header map: defaults, caller headers,
// request id, credential and content type, later entries winning.
func (c *client) applyHeaders(ctx context.Context, httpReq *nethttp.Request, req *Request, credential, contentType string) {
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	traceHeader := c.traceIDHeader()
	if httpReq.Header.Get(traceHeader) == "" {
		httpReq.Header.Set(traceHeader, EnsureTraceID(ctx))
	}

	if credential != "" {
		httpReq.Header.Set(HeaderAuthorization, credential)
	}

	if contentType != "" {
		httpReq.Header.Set(HeaderContentType, contentType)
	}
}

// buildRequest constructs an *http.Request, applies headers, and runs request interceptors.
func (c *client) buildRequest(ctx context.Context, method string, req *Request, credential string) (*nethttp.Request, []byte, error) {
	body, logBody, contentType, err := c.encodePayload(req)
	if err != nil {
		return nil, nil, err
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, c.resolveURL(req.Path), body)
	if err != nil {
		closeReader(body)
		return nil, nil, NewNetworkError("failed to create HTTP request", err)
	}

	c.applyHeaders(ctx, httpReq, req, credential, contentType)

	if err := c.runRequestInterceptors(ctx, httpReq); err != nil {
		closeReader(body)
		return nil, nil, NewInterceptorError("request interceptor failed", "request", err)
	}
	return httpReq, logBody, nil
}

// buildResponse runs response interceptors, reads the body and interprets it.
func (c *client) buildResponse(ctx context.Context, path string, httpReq *nethttp.Request, httpResp *nethttp.Response, stats Stats) (*Response, error) {
	defer httpResp.Body.Close()

	if err := c.runResponseInterceptors(ctx, httpReq, httpResp); err != nil {
		return nil, NewInterceptorError("response interceptor failed", "response", err)
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	content, err := c.interpretBody(path, httpResp.StatusCode, bodyLength(httpResp, respBody), httpResp.Header.Get(HeaderContentType), respBody)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		Content:    content,
		Stats:      stats,
	}, nil
}

// bodyLength is the declared body length. The transport drops Content-Length
// when it transparently decompresses a gzip response, so the decoded size
// stands in for it there.
func bodyLength(resp *nethttp.Response, body []byte) int64 {
	if resp.Uncompressed {
		return int64(len(body))
	}
	return resp.ContentLength
}

func (c *client) transportError(err error) ClientError {
	if isTimeout(err) {
		return NewTimeoutError("request timeout", c.config.Timeout, err)
	}
	return NewNetworkError("request execution failed", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// runRequestInterceptors executes all request interceptors
func (c *client) runRequestInterceptors(ctx context.Context, req *nethttp.Request) error {
	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// runResponseInterceptors executes all response interceptors
func (c *client) runResponseInterceptors(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error {
	for _, interceptor := range c.responseInterceptors {
		if err := interceptor(ctx, req, resp); err != nil {
			return err
		}
	}
	return nil
}
