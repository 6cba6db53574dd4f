package infra

import (
	"context"
	"time"

	"github.com/caikaidev/CoinCow/internal/domain"
)

// RetryConfig bounds the retry loop. The defaults mirror the upstream API's
// free-tier behavior: short linear backoff for server hiccups, a full-minute
// cooldown when the minute budget is exhausted.
type RetryConfig struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	RateLimitCooldown time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BaseDelay:         1 * time.Second,
		RateLimitCooldown: 60 * time.Second,
	}
}

// RetryDelay returns the wait before the next attempt, given the failure
// kind of the attempt that just ran. attempt is 1-based.
// Rate limiting waits out the full cooldown; every other transient kind
// backs off linearly: base, 2*base, 3*base, ...
func RetryDelay(kind domain.FailureKind, attempt int, cfg RetryConfig) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if kind == domain.FailureRateLimited {
		return cfg.RateLimitCooldown
	}
	return cfg.BaseDelay * time.Duration(attempt)
}

// Sleep waits for d or until ctx is cancelled, whichever comes first.
// Never busy-waits; a cancelled wait unwinds with ctx.Err().
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
