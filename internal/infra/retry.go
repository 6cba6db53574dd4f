package infra

import (
	"context"
	"log/slog"

	"github.com/caikaidev/CoinCow/internal/domain"
)

// Retry runs op up to cfg.MaxAttempts times, waiting between attempts
// according to the classified failure kind. Terminal failures (404, other
// 4xx, unknown) return immediately; transient ones retry until the attempt
// budget runs out, at which point the last failure is returned as-is.
//
// op must perform exactly one network call and classify its own failures
// into *domain.Failure; anything else is treated as terminal.
func Retry[T any](ctx context.Context, cfg RetryConfig, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		kind := domain.KindOf(err)
		if !kind.Retryable() {
			return zero, err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := RetryDelay(kind, attempt, cfg)
		slog.Warn("request failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("kind", kind.String()),
			slog.Duration("delay", delay))
		if err := Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}
