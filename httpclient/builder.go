package httpclient

import (
	"maps"
	nethttp "net/http"
	"slices"
	"time"

	"golang.org/x/time/rate"

	"github.com/Bidzuweb/Bidzu-Final/config"
	"github.com/Bidzuweb/Bidzu-Final/logger"
)

// DefaultMaxAuthRetries bounds replays after a credential refresh: a logical
// call makes at most six network attempts.
const DefaultMaxAuthRetries = 5

// NewClient creates a client for baseURL with default configuration and no
// credential provider; an expired credential then ends the session.
func NewClient(log logger.Logger, baseURL string) Client {
	return NewBuilder(log).WithBaseURL(baseURL).Build()
}

// Builder provides a fluent interface for configuring the client
type Builder struct {
	config     *Config
	logger     logger.Logger
	httpClient *nethttp.Client
	provider   CredentialProvider
	store      SessionStore
	credential string
}

// NewBuilder creates a new client builder
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		config: &Config{
			MaxAuthRetries:       DefaultMaxAuthRetries,
			ExpiryDetector:       DefaultExpiryDetector,
			RequestInterceptors:  []RequestInterceptor{},
			ResponseInterceptors: []ResponseInterceptor{},
			DefaultHeaders:       make(map[string]string),
			MaxPayloadLogBytes:   DefaultMaxPayloadLogBytes,
			TraceIDHeader:        HeaderXRequestID,
		},
		logger: log,
	}
}

// NewBuilderFromConfig applies the api configuration section.
func NewBuilderFromConfig(cfg *config.APIConfig, log logger.Logger) *Builder {
	b := NewBuilder(log).
		WithBaseURL(cfg.BaseURL).
		WithTimeout(cfg.Timeout).
		WithMaxAuthRetries(cfg.Auth.MaxRetries).
		WithPayloadLogging(cfg.LogPayloads, cfg.MaxPayloadLogBytes).
		WithRateLimit(cfg.Rate.Limit, cfg.Rate.Burst)

	if cfg.Auth.ExpiredMessage != "" || cfg.Auth.ExpiredStatus != 0 {
		msg := cfg.Auth.ExpiredMessage
		if msg == "" {
			msg = DefaultExpiredMessage
		}
		b.WithExpiryDetector(NewExpiryDetector(cfg.Auth.ExpiredStatus, msg))
	}
	if cfg.TraceIDHeader != "" {
		b.WithTraceIDHeader(cfg.TraceIDHeader)
	}
	for key, value := range cfg.Headers {
		b.WithDefaultHeader(key, value)
	}
	return b
}

// WithBaseURL sets the address every request path is joined to
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithTimeout sets a per-attempt timeout; zero leaves cancellation to the context
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithHTTPClient replaces the underlying transport client
func (b *Builder) WithHTTPClient(httpClient *nethttp.Client) *Builder {
	b.httpClient = httpClient
	return b
}

// WithDefaultHeader adds a default header that will be sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithRequestInterceptor adds a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds a response interceptor
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithCredentialProvider sets the source of fresh credentials
func (b *Builder) WithCredentialProvider(provider CredentialProvider) *Builder {
	b.provider = provider
	return b
}

// WithSessionStore sets where refreshed sessions are persisted
func (b *Builder) WithSessionStore(store SessionStore) *Builder {
	b.store = store
	return b
}

// WithCredential installs an initial credential
func (b *Builder) WithCredential(credential string) *Builder {
	b.credential = credential
	return b
}

// WithMaxAuthRetries bounds the replays after a refresh
func (b *Builder) WithMaxAuthRetries(maxRetries int) *Builder {
	b.config.MaxAuthRetries = maxRetries
	return b
}

// WithExpiryDetector overrides how an expired credential is recognised
func (b *Builder) WithExpiryDetector(detector ExpiryDetector) *Builder {
	if detector != nil {
		b.config.ExpiryDetector = detector
	}
	return b
}

// WithRateLimit caps outgoing attempts; a non-positive limit disables it
func (b *Builder) WithRateLimit(limit float64, burst int) *Builder {
	b.config.RateLimit = limit
	b.config.RateBurst = burst
	return b
}

// WithPayloadLogging enables debug logging of headers and body previews
func (b *Builder) WithPayloadLogging(enabled bool, maxBytes int) *Builder {
	b.config.LogPayloads = enabled
	if maxBytes > 0 {
		b.config.MaxPayloadLogBytes = maxBytes
	}
	return b
}

// WithTraceIDHeader sets the header carrying the request id
func (b *Builder) WithTraceIDHeader(header string) *Builder {
	b.config.TraceIDHeader = header
	return b
}

// Build creates the client with the configured options
func (b *Builder) Build() Client {
	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &nethttp.Client{Timeout: b.config.Timeout}
	}

	var limiter *rate.Limiter
	if b.config.RateLimit > 0 {
		burst := b.config.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(b.config.RateLimit), burst)
	}

	// The client owns its configuration; later builder calls must not reach it.
	cfg := *b.config
	cfg.DefaultHeaders = maps.Clone(b.config.DefaultHeaders)
	cfg.RequestInterceptors = slices.Clone(b.config.RequestInterceptors)
	cfg.ResponseInterceptors = slices.Clone(b.config.ResponseInterceptors)

	return &client{
		httpClient:           httpClient,
		logger:               b.logger,
		config:               &cfg,
		requestInterceptors:  cfg.RequestInterceptors,
		responseInterceptors: cfg.ResponseInterceptors,
		limiter:              limiter,
		provider:             b.provider,
		store:                b.store,
		credential:           b.credential,
	}
}
