package observability

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultShutdownTimeout is the default timeout for graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Shutdown creates a context with timeout and shuts the provider down,
// flushing the last batch of metrics.
func Shutdown(provider Provider, timeout time.Duration) error {
	if provider == nil {
		return nil
	}

	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("observability shutdown failed: %w", err)
	}

	return nil
}
