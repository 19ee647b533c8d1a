// Package auth supplies the credential provider the client refreshes expired
// credentials from. The signed-in identity is an OAuth2 refresh token; a
// fresh credential is minted by exchanging it at the token endpoint.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/Bidzuweb/Bidzu-Final/config"
	"github.com/Bidzuweb/Bidzu-Final/httpclient"
	"github.com/Bidzuweb/Bidzu-Final/logger"
)

// IDTokenField is the token response field preferred over the access token.
const IDTokenField = "id_token"

// ErrEmptyToken is returned when the token endpoint answers without a usable credential.
var ErrEmptyToken = errors.New("auth: token endpoint returned no credential")

// Option configures an OAuth2Provider.
type Option func(*OAuth2Provider)

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(client *http.Client) Option {
	return func(p *OAuth2Provider) {
		p.httpClient = client
	}
}

// WithAuthStyle fixes how client credentials are sent. By default the style
// is auto-detected on the first exchange.
func WithAuthStyle(style oauth2.AuthStyle) Option {
	return func(p *OAuth2Provider) {
		p.oauth.Endpoint.AuthStyle = style
	}
}

// OnLogout registers a hook run after every forced logout.
func OnLogout(fn func(ctx context.Context)) Option {
	return func(p *OAuth2Provider) {
		p.onLogout = append(p.onLogout, fn)
	}
}

// OAuth2Provider implements httpclient.CredentialProvider with the OAuth2
// refresh-token grant.
type OAuth2Provider struct {
	oauth      *oauth2.Config
	logger     logger.Logger
	httpClient *http.Client
	onLogout   []func(ctx context.Context)

	mu           sync.RWMutex
	refreshToken string
}

var _ httpclient.CredentialProvider = (*OAuth2Provider)(nil)

// NewOAuth2Provider creates a provider for the identity section. A configured
// refresh token signs the user in immediately.
func NewOAuth2Provider(cfg config.IdentityConfig, log logger.Logger, opts ...Option) (*OAuth2Provider, error) {
	if cfg.TokenURL == "" {
		return nil, config.NewMissingFieldError("identity.tokenurl")
	}

	p := &OAuth2Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
		},
		logger:       log,
		refreshToken: cfg.RefreshToken,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SignIn installs the refresh token obtained at login.
func (p *OAuth2Provider) SignIn(refreshToken string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshToken = refreshToken
}

// SignedIn reports whether a user is signed in.
func (p *OAuth2Provider) SignedIn() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.refreshToken != ""
}

// CurrentIdentity returns the signed-in identity, or nil when nobody is signed in.
func (p *OAuth2Provider) CurrentIdentity(ctx context.Context) (httpclient.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.refreshToken == "" {
		return nil, nil
	}
	return &identity{provider: p, refreshToken: p.refreshToken}, nil
}

// ForceLogout forgets the refresh token and runs the logout hooks.
func (p *OAuth2Provider) ForceLogout(ctx context.Context) error {
	p.mu.Lock()
	p.refreshToken = ""
	hooks := p.onLogout
	p.mu.Unlock()

	for _, hook := range hooks {
		hook(ctx)
	}
	p.logger.Info().Int("hooks", len(hooks)).Msg("User signed out")
	return nil
}

// identity is a signed-in user bound to the refresh token seen at lookup.
type identity struct {
	provider     *OAuth2Provider
	refreshToken string
}

func (i *identity) FreshCredential(ctx context.Context) (string, error) {
	return i.provider.mint(ctx, i.refreshToken)
}

// mint exchanges refreshToken for a new credential, preferring the ID token.
func (p *OAuth2Provider) mint(ctx context.Context, refreshToken string) (string, error) {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	tok, err := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			event := p.logger.Warn().Str("error_code", retrieveErr.ErrorCode)
			if retrieveErr.Response != nil {
				event = event.Int("status", retrieveErr.Response.StatusCode)
			}
			event.Msg("Token endpoint rejected refresh token")
		}
		return "", fmt.Errorf("refresh token exchange: %w", err)
	}

	p.rotate(refreshToken, tok.RefreshToken)

	credential := tok.AccessToken
	if idToken, ok := tok.Extra(IDTokenField).(string); ok && idToken != "" {
		credential = idToken
	}
	if credential == "" {
		return "", ErrEmptyToken
	}

	event := p.logger.Debug()
	if subject, err := Subject(credential); err == nil {
		event = event.Str("subject", subject)
	}
	event.Msg("Minted fresh credential")
	return credential, nil
}

// rotate installs a refresh token issued in exchange for used. A sign-in or
// sign-out that happened meanwhile is kept.
func (p *OAuth2Provider) rotate(used, issued string) {
	if issued == "" || issued == used {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refreshToken == used {
		p.refreshToken = issued
	}
}
