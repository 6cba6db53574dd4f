package infra

import (
	"context"
	"testing"
	"time"

	"github.com/caikaidev/CoinCow/internal/domain"
)

func TestRetryDelay(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: 1 * time.Second, RateLimitCooldown: 60 * time.Second}

	tests := []struct {
		name    string
		kind    domain.FailureKind
		attempt int
		want    time.Duration
	}{
		{"server error attempt 1", domain.FailureServerError, 1, 1 * time.Second},
		{"server error attempt 2", domain.FailureServerError, 2, 2 * time.Second},
		{"timeout attempt 3", domain.FailureTimeout, 3, 3 * time.Second},
		{"connectivity attempt 1", domain.FailureConnectivity, 1, 1 * time.Second},
		{"rate limited always cooldown", domain.FailureRateLimited, 1, 60 * time.Second},
		{"rate limited later attempt", domain.FailureRateLimited, 2, 60 * time.Second},
		{"negative attempt clamped", domain.FailureServerError, -1, 1 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RetryDelay(tt.kind, tt.attempt, cfg); got != tt.want {
				t.Errorf("RetryDelay(%s, %d) = %s, want %s", tt.kind, tt.attempt, got, tt.want)
			}
		})
	}
}

func TestSleep_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Sleep(ctx, 10*time.Second)
	}()

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Sleep did not unwind after cancellation")
	}
}

func TestSleep_ZeroDuration(t *testing.T) {
	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) = %v, want nil", err)
	}
}
