package httpclient

import (
	"context"
	nethttp "net/http"

	"github.com/google/uuid"
)

// HeaderXRequestID is the default header name for request tracing
const HeaderXRequestID = "X-Request-ID"

type traceIDKey struct{}

// WithTraceID adds a trace ID to the context for propagation to the backend
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns a trace ID from context if present
func TraceIDFromContext(ctx context.Context) (string, bool) {
	if traceID, ok := ctx.Value(traceIDKey{}).(string); ok && traceID != "" {
		return traceID, true
	}
	return "", false
}

// EnsureTraceID returns an existing trace ID from context or generates a new one
func EnsureTraceID(ctx context.Context) string {
	if traceID, ok := TraceIDFromContext(ctx); ok {
		return traceID
	}
	return uuid.New().String()
}

// NewTraceIDInterceptorFor creates an interceptor that stamps the trace ID on
// an additional header, for backends that expect a correlation header of their own.
func NewTraceIDInterceptorFor(header string) RequestInterceptor {
	if header == "" {
		header = HeaderXRequestID
	}
	return func(ctx context.Context, req *nethttp.Request) error {
		if req.Header.Get(header) == "" {
			req.Header.Set(header, EnsureTraceID(ctx))
		}
		return nil
	}
}
