// Package session persists the backend session created for the current
// credential. The client replaces it after every credential refresh and
// clears it on forced logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Bidzuweb/Bidzu-Final/config"
	"github.com/Bidzuweb/Bidzu-Final/httpclient"
	"github.com/Bidzuweb/Bidzu-Final/logger"
)

var (
	// ErrNoSession is returned by Load when nothing is stored.
	ErrNoSession = errors.New("session: no session stored")
	// ErrEmptyCredential is returned by Create for an empty credential.
	ErrEmptyCredential = errors.New("session: credential is empty")
)

// Session is a persisted credential.
type Session struct {
	Credential string
	CreatedAt  time.Time
}

// Store is a httpclient.SessionStore that can also restore the stored session,
// typically at startup.
type Store interface {
	httpclient.SessionStore

	// Load returns the stored session or ErrNoSession.
	Load(ctx context.Context) (Session, error)
}

// NewStore builds the store selected by cfg.Type. An empty type means memory.
func NewStore(cfg config.SessionConfig, log logger.Logger) (Store, error) {
	switch cfg.Type {
	case "", config.SessionMemory:
		return NewMemoryStore(), nil
	case config.SessionFile:
		if cfg.Path == "" {
			return nil, config.NewMissingFieldError("session.path")
		}
		return NewFileStore(cfg.Path, log), nil
	default:
		return nil, config.NewInvalidFieldError("session.type", fmt.Sprintf("unsupported store type %q", cfg.Type),
			[]string{config.SessionMemory, config.SessionFile})
	}
}
