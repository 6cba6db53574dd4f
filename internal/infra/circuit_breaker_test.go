package infra

import (
	"testing"
	"time"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewBreaker("test", 3, 1, time.Minute)

	for i := 0; i < 2; i++ {
		b.RecordFailure()
	}
	if !b.Allow() {
		t.Error("breaker should stay closed below the failure threshold")
	}

	b.RecordFailure()
	if b.State() != BreakerOpen {
		t.Errorf("expected OPEN after 3 failures, got %s", b.State())
	}
	if b.Allow() {
		t.Error("open breaker must reject calls")
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker("test", 2, 1, time.Minute)

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()

	if b.State() != BreakerClosed {
		t.Errorf("expected CLOSED, got %s", b.State())
	}
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b := NewBreaker("test", 1, 2, 10*time.Millisecond)

	b.RecordFailure()
	if b.Allow() {
		t.Fatal("breaker should be open")
	}

	time.Sleep(20 * time.Millisecond)

	if !b.Allow() {
		t.Fatal("breaker should probe after the open timeout")
	}
	if b.State() != BreakerHalfOpen {
		t.Fatalf("expected HALF_OPEN, got %s", b.State())
	}

	b.RecordSuccess()
	b.RecordSuccess()
	if b.State() != BreakerClosed {
		t.Errorf("expected CLOSED after recovery, got %s", b.State())
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker("test", 1, 1, 10*time.Millisecond)

	b.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	if !b.Allow() {
		t.Fatal("breaker should probe after the open timeout")
	}

	b.RecordFailure()
	if b.State() != BreakerOpen {
		t.Errorf("expected OPEN after failed probe, got %s", b.State())
	}
}
