package fixtures

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// Reply is one scripted backend response.
type Reply struct {
	Status      int
	ContentType string
	Body        string
	// Chunked omits Content-Length by flushing before the body is written.
	Chunked bool
	// Gzip compresses the body and sends Content-Encoding: gzip with the
	// compressed length.
	Gzip bool
}

// JSONReply answers with an application/json body.
func JSONReply(status int, body string) Reply {
	return Reply{Status: status, ContentType: "application/json", Body: body}
}

// TextReply answers with a text/plain body.
func TextReply(status int, body string) Reply {
	return Reply{Status: status, ContentType: "text/plain; charset=utf-8", Body: body}
}

// GzipJSONReply answers with a gzip-encoded application/json body.
func GzipJSONReply(status int, body string) Reply {
	reply := JSONReply(status, body)
	reply.Gzip = true
	return reply
}

// ExpiredReply is the backend's rejection of an expired credential.
func ExpiredReply() Reply {
	return JSONReply(http.StatusUnauthorized, `{"error":"Token expired"}`)
}

// Recorded is a request as the backend received it.
type Recorded struct {
	Method  string
	Path    string
	Query   string
	Headers http.Header
	Body    []byte
}

// Backend is an httptest server answering from a script. Once the script is
// exhausted the last reply repeats.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	script   []Reply
	requests []Recorded
	handler  func(r *http.Request, hit int) Reply
}

// NewBackend starts a scripted backend that is closed when the test ends.
func NewBackend(t testing.TB, script ...Reply) *Backend {
	t.Helper()
	b := &Backend{script: script}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// NewBackendFunc starts a backend whose replies are computed per request.
// hit is the zero-based index of the request.
func NewBackendFunc(t testing.TB, fn func(r *http.Request, hit int) Reply) *Backend {
	t.Helper()
	b := &Backend{handler: fn}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	hit := len(b.requests)
	b.requests = append(b.requests, Recorded{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Headers: r.Header.Clone(),
		Body:    body,
	})
	reply := b.next(hit)
	handler := b.handler
	b.mu.Unlock()

	if handler != nil {
		reply = handler(r, hit)
	}
	write(w, reply)
}

func (b *Backend) next(hit int) Reply {
	switch {
	case len(b.script) == 0:
		return Reply{Status: http.StatusNoContent}
	case hit < len(b.script):
		return b.script[hit]
	default:
		return b.script[len(b.script)-1]
	}
}

func write(w http.ResponseWriter, reply Reply) {
	if reply.ContentType != "" {
		w.Header().Set("Content-Type", reply.ContentType)
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}

	if reply.Chunked {
		w.WriteHeader(status)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		_, _ = io.WriteString(w, reply.Body)
		return
	}

	body := []byte(reply.Body)
	if reply.Gzip {
		body = gzipped(body)
		w.Header().Set("Content-Encoding", "gzip")
	}
	if len(body) > 0 {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func gzipped(data []byte) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}

// Hits returns the number of requests received.
func (b *Backend) Hits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// Requests returns a copy of the received requests in arrival order.
func (b *Backend) Requests() []Recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Recorded(nil), b.requests...)
}

// Request returns the i-th received request.
func (b *Backend) Request(i int) Recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[i]
}
