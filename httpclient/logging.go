package httpclient

import (
	nethttp "net/http"
	"strconv"

	"github.com/Bidzuweb/Bidzu-Final/logger"
)

// DefaultMaxPayloadLogBytes caps logged body previews when no limit is configured.
const DefaultMaxPayloadLogBytes = 1024

var redactedHeaders = []string{HeaderAuthorization, "Cookie", "Set-Cookie", "Proxy-Authorization"}

// logRequest logs the outgoing attempt. Headers and a body preview are only
// logged at debug level when payload logging is enabled.
func (c *client) logRequest(req *nethttp.Request, body []byte, traceID string) {
	event := c.logger.Info().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", traceID)

	if n := len(req.Header); n > 0 {
		event = event.Int("header_count", n)
	}
	if len(body) > 0 {
		event = event.Int("body_size", len(body))
	}
	event.Msg("REST client request")

	if !c.config.LogPayloads {
		return
	}

	debug := c.logger.Debug().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", traceID).
		Interface("headers", redactHeaders(req.Header))
	debug = c.withBodyPreview(debug, body)
	debug.Msg("REST client request")
}

// logResponse logs the received response with its interpreted body kind.
func (c *client) logResponse(resp *Response, traceID string) {
	event := c.logger.Info().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Int64("call_count", resp.Stats.CallCount).
		Int("attempt", resp.Stats.Attempt).
		Str("request_id", traceID).
		Str("content_kind", resp.Content.Kind.String())

	if ct := resp.Headers.Get(HeaderContentType); ct != "" {
		event = event.Str("content_type", ct)
	}
	if len(resp.Body) > 0 {
		event = event.Int("body_size", len(resp.Body))
	}
	event.Msg("REST client response")

	if !c.config.LogPayloads {
		return
	}

	debug := c.logger.Debug().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Str("request_id", traceID).
		Interface("headers", redactHeaders(resp.Headers))
	debug = c.withBodyPreview(debug, resp.Body)
	debug.Msg("REST client response")
}

// withBodyPreview attaches size, truncation flag and a capped preview of body.
func (c *client) withBodyPreview(event logger.LogEvent, body []byte) logger.LogEvent {
	if len(body) == 0 {
		return event
	}
	limit := c.config.MaxPayloadLogBytes
	if limit <= 0 {
		limit = DefaultMaxPayloadLogBytes
	}
	preview := body
	truncated := false
	if len(body) > limit {
		preview = body[:limit]
		truncated = true
	}
	return event.
		Int("body_size", len(body)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview)
}

// redactHeaders copies h with credential-bearing values masked.
func redactHeaders(h nethttp.Header) nethttp.Header {
	out := h.Clone()
	if out == nil {
		return nethttp.Header{}
	}
	for _, name := range redactedHeaders {
		if out.Get(name) != "" {
			out.Set(name, "***")
		}
	}
	return out
}
