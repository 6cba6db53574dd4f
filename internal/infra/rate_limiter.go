package infra

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiter serializes outbound API calls so consecutive dispatches are at
// least minInterval apart. The last-dispatch timestamp is the only shared
// mutable state in the transport path; concurrent callers reserve dispatch
// slots under the mutex and then sleep outside it, so a slow waiter never
// blocks the next reservation.
type RateLimiter struct {
	mu           sync.Mutex
	minInterval  time.Duration
	cooldown     time.Duration
	lastDispatch time.Time
}

// NewRateLimiter creates a limiter with the given minimum inter-request
// interval and the long cooldown used after a server-signaled throttle.
func NewRateLimiter(minInterval, cooldown time.Duration) *RateLimiter {
	return &RateLimiter{
		minInterval: minInterval,
		cooldown:    cooldown,
	}
}

// Wait blocks until this caller's dispatch slot arrives, or until ctx is
// cancelled. The slot is reserved before sleeping; a cancelled wait leaves
// the reservation in place, which errs on the side of dispatching less.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	next := r.lastDispatch.Add(r.minInterval)
	if next.Before(now) {
		next = now
	}
	r.lastDispatch = next
	r.mu.Unlock()

	return Sleep(ctx, time.Until(next))
}

// Cooldown absorbs an upstream 429: it waits out the long cooldown and
// resets the dispatch clock so the follow-up request goes out immediately
// after. Cancellable like any other wait.
func (r *RateLimiter) Cooldown(ctx context.Context) error {
	slog.Warn("rate limited by upstream, cooling down", slog.Duration("cooldown", r.cooldown))
	if err := Sleep(ctx, r.cooldown); err != nil {
		return err
	}

	r.mu.Lock()
	r.lastDispatch = time.Now()
	r.mu.Unlock()
	return nil
}
