package httpclient

import (
	"context"
	"errors"

	"github.com/Bidzuweb/Bidzu-Final/httpclient/internal/tracking"
)

const refreshFlightKey = "credential-refresh"

// Refresh outcomes reported to metrics.
const (
	refreshSuccess = "success"
	refreshSkipped = "skipped"
	refreshFailed  = "failed"
)

// refreshCredential replaces the stale credential. Concurrent callers share a
// single refresh, and a caller whose credential was already replaced by
// another dispatch replays without refreshing again. A non-nil result means
// the user has been signed out.
func (c *client) refreshCredential(ctx context.Context, stale string) *authFailure {
	if c.replaced(stale) {
		tracking.RecordRefresh(ctx, refreshSkipped)
		return nil
	}

	// The flight is shared, so the first caller giving up must not cancel it
	// for everyone else waiting on the result.
	flightCtx := context.WithoutCancel(ctx)
	_, err, _ := c.refreshGroup.Do(refreshFlightKey, func() (any, error) {
		// The previous flight may have finished between the check above and Do.
		if c.replaced(stale) {
			tracking.RecordRefresh(flightCtx, refreshSkipped)
			return nil, nil
		}
		if failure := c.runRefresh(flightCtx); failure != nil {
			tracking.RecordRefresh(flightCtx, refreshFailed)
			return nil, failure
		}
		tracking.RecordRefresh(flightCtx, refreshSuccess)
		return nil, nil
	})
	if err == nil {
		return nil
	}

	var failure *authFailure
	if errors.As(err, &failure) {
		return failure
	}
	return c.forceLogout(ctx, "refresh failed", err)
}

func (c *client) replaced(stale string) bool {
	current := c.Credential()
	return current != "" && current != stale
}

// runRefresh asks the provider for a fresh credential and installs it.
func (c *client) runRefresh(ctx context.Context) *authFailure {
	if c.provider == nil {
		return c.forceLogout(ctx, "no credential provider", nil)
	}

	identity, err := c.provider.CurrentIdentity(ctx)
	if err != nil {
		return c.forceLogout(ctx, "identity lookup failed", err)
	}
	if identity == nil {
		return c.forceLogout(ctx, "no identity", nil)
	}

	credential, err := identity.FreshCredential(ctx)
	if err != nil {
		return c.forceLogout(ctx, "credential refresh failed", err)
	}
	if credential == "" {
		return c.forceLogout(ctx, "empty credential", nil)
	}

	c.SetCredential(credential)
	c.persistSession(ctx, credential)

	c.logger.Info().Msg("Credential refreshed")
	return nil
}

// persistSession replaces the backend session. Failures are logged only; the
// in-memory credential is already usable for the replay.
func (c *client) persistSession(ctx context.Context, credential string) {
	if c.store == nil {
		return
	}
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to clear previous session")
	}
	if err := c.store.Create(ctx, credential); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to create session for refreshed credential")
	}
}

// forceLogout is the terminal transition: the credential is dropped, the
// persisted session cleared and the provider told to sign the user out.
func (c *client) forceLogout(ctx context.Context, reason string, cause error) *authFailure {
	c.ClearCredential()

	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to clear session during logout")
		}
	}

	if c.provider != nil {
		if err := c.provider.ForceLogout(ctx); err != nil {
			c.logger.Error().Err(err).Msg("Forced logout failed")
		}
	}

	event := c.logger.Warn().Str("reason", reason)
	if cause != nil {
		event = event.Err(cause)
	}
	event.Msg("Session terminated")

	tracking.RecordAuthFailure(ctx, reason)
	return &authFailure{reason: reason, wrapped: cause}
}
