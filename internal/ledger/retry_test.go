package ledger_test

import (
	"context"
	"errors"
	"minelens/internal/ledger"
	"minelens/internal/structures"
	"minelens/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(retries int) ledger.RetryConfig {
	return ledger.RetryConfig{
		MaxRetries:     retries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		BackoffFactor:  2,
	}
}

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	logger := &testutil.MockLogger{}
	attempts := 0
	err := ledger.RetryWithBackoff(context.Background(), fastRetry(3), logger, "scan", func() error {
		attempts++
		if attempts < 3 {
			return ledger.ErrUpstreamUnavailable
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, logger.Count("warn"))
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	attempts := 0
	err := ledger.RetryWithBackoff(context.Background(), fastRetry(2), &testutil.MockLogger{}, "scan", func() error {
		attempts++
		return ledger.ErrUpstreamUnavailable
	})

	assert.ErrorIs(t, err, ledger.ErrUpstreamUnavailable)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}

func TestRetryWithBackoff_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry(5)
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour

	attempts := 0
	err := ledger.RetryWithBackoff(ctx, cfg, &testutil.MockLogger{}, "scan", func() error {
		attempts++
		cancel()
		return errors.New("boom")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestRetryConfigFrom(t *testing.T) {
	conf := &structures.Config{}
	assert.Equal(t, ledger.DefaultRetryConfig, ledger.RetryConfigFrom(conf))

	conf.Ledger.Retry = structures.RetryConfig{MaxRetries: 7, InitialBackoff: time.Second, BackoffFactor: 0.5}
	cfg := ledger.RetryConfigFrom(conf)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.InitialBackoff)
	assert.Equal(t, ledger.DefaultRetryConfig.MaxBackoff, cfg.MaxBackoff)
	assert.Equal(t, ledger.DefaultRetryConfig.BackoffFactor, cfg.BackoffFactor)
}
