package observability

import "errors"

// ErrMissingServiceName is returned when metrics are enabled but no application name is configured.
var ErrMissingServiceName = errors.New("observability: service name is required when metrics are enabled")

// ErrInvalidEndpoint is returned when the endpoint is neither host:port nor an absolute URL.
var ErrInvalidEndpoint = errors.New("observability: endpoint must be host:port or an absolute URL")
