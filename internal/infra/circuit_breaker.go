package infra

import (
	"log/slog"
	"sync"
	"time"
)

// BreakerState is the circuit breaker state for the upstream API.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // normal operation
	BreakerOpen                         // upstream considered down, reject calls
	BreakerHalfOpen                     // probing recovery
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "OPEN"
	case BreakerHalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}

// Breaker short-circuits calls to an upstream that keeps failing, so an
// outage degrades to cache fallbacks instead of a retry storm. Thread-safe.
type Breaker struct {
	name string
	mu   sync.Mutex

	state        BreakerState
	failureCount int
	successCount int
	lastFailure  time.Time

	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
}

// NewBreaker creates a closed breaker. It opens after failureThreshold
// consecutive failures and probes again after openTimeout.
func NewBreaker(name string, failureThreshold, successThreshold int, openTimeout time.Duration) *Breaker {
	return &Breaker{
		name:             name,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		openTimeout:      openTimeout,
	}
}

// DefaultBreaker returns the breaker used in front of the market-data API.
func DefaultBreaker(name string) *Breaker {
	return NewBreaker(name, 5, 2, 30*time.Second)
}

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed, BreakerHalfOpen:
		return true
	case BreakerOpen:
		if time.Since(b.lastFailure) > b.openTimeout {
			b.state = BreakerHalfOpen
			b.successCount = 0
			slog.Info("circuit breaker half-open", slog.String("name", b.name))
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess notes a successful upstream call.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failureCount = 0
	case BreakerHalfOpen:
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.state = BreakerClosed
			b.failureCount = 0
			b.successCount = 0
			slog.Info("circuit breaker closed", slog.String("name", b.name))
		}
	}
}

// RecordFailure notes a failed upstream call.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = time.Now()

	switch b.state {
	case BreakerClosed:
		b.failureCount++
		if b.failureCount >= b.failureThreshold {
			b.state = BreakerOpen
			slog.Warn("circuit breaker open",
				slog.String("name", b.name),
				slog.Int("failures", b.failureCount))
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.successCount = 0
		slog.Warn("circuit breaker reopened", slog.String("name", b.name))
	}
}

// State returns the current state, for logging and tests.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
