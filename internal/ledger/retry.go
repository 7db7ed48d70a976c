package ledger

import (
	"context"
	"fmt"
	"minelens/internal/providers"
	"minelens/internal/structures"
	"time"
)

type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries:     4,
	InitialBackoff: 250 * time.Millisecond,
	MaxBackoff:     10 * time.Second,
	BackoffFactor:  2.0,
}

func RetryConfigFrom(conf *structures.Config) RetryConfig {
	cfg := DefaultRetryConfig
	r := conf.Ledger.Retry
	if r.MaxRetries > 0 {
		cfg.MaxRetries = r.MaxRetries
	}
	if r.InitialBackoff > 0 {
		cfg.InitialBackoff = r.InitialBackoff
	}
	if r.MaxBackoff > 0 {
		cfg.MaxBackoff = r.MaxBackoff
	}
	if r.BackoffFactor > 1 {
		cfg.BackoffFactor = r.BackoffFactor
	}
	return cfg
}

// RetryWithBackoff runs fn until it succeeds, the retries run out or ctx ends.
func RetryWithBackoff(ctx context.Context, cfg RetryConfig, logger providers.Logger, name string, fn func() error) error {
	var lastErr error
	backoff := cfg.InitialBackoff

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Warnf(providers.TypeLedger, "%s: attempt %d/%d after %v: %s", name, attempt, cfg.MaxRetries, backoff, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := fn(); err != nil {
			lastErr = err
			if attempt < cfg.MaxRetries {
				backoff = time.Duration(float64(backoff) * cfg.BackoffFactor)
				if backoff > cfg.MaxBackoff {
					backoff = cfg.MaxBackoff
				}
			}
			continue
		}
		return nil
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, cfg.MaxRetries+1, lastErr)
}
