package httpclient

import (
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

// ContentKind identifies how a response body was interpreted.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentStructured
	ContentText
	ContentBinary
)

func (k ContentKind) String() string {
	switch k {
	case ContentStructured:
		return "structured"
	case ContentText:
		return "text"
	case ContentBinary:
		return "binary"
	default:
		return "none"
	}
}

// Content is the interpreted response body. Exactly one of Data, Text and
// Binary is populated, according to Kind.
type Content struct {
	Kind ContentKind
	// Data holds the decoded JSON value (map[string]any, []any, string, float64, bool or nil).
	Data   any
	Text   string
	Binary []byte

	raw []byte
}

// Decode unmarshals structured content into v.
func (c Content) Decode(v any) error {
	if c.Kind != ContentStructured {
		return fmt.Errorf("decode: content is %s, not structured", c.Kind)
	}
	return json.Unmarshal(c.raw, v)
}

// Field returns a top-level field of a structured object body.
func (c Content) Field(name string) (any, bool) {
	obj, ok := c.Data.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := obj[name]
	return v, ok
}

// interpretBody decides the body kind from the response metadata. A missing
// or zero Content-Length always yields ContentNone.
func (c *client) interpretBody(path string, status int, contentLength int64, contentType string, raw []byte) (Content, error) {
	if contentLength <= 0 || len(raw) == 0 {
		return Content{Kind: ContentNone}, nil
	}

	switch {
	case isJSONContentType(contentType):
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			if IsErrorStatus(status) {
				return Content{}, NewParseError(fmt.Sprintf("invalid JSON response from server (%s)", path), status, err)
			}
			c.logger.Warn().
				Err(err).
				Str("path", path).
				Int("status", status).
				Msg("Discarding malformed JSON response body")
			return Content{Kind: ContentNone}, nil
		}
		return Content{Kind: ContentStructured, Data: data, raw: raw}, nil
	case strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "text/"):
		return Content{Kind: ContentText, Text: string(raw)}, nil
	default:
		return Content{Kind: ContentBinary, Binary: raw}, nil
	}
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), ContentTypeJSON)
	}
	return mediaType == ContentTypeJSON || strings.HasSuffix(mediaType, "+json")
}

