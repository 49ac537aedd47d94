// ABOUTME: Tests for retry backoff helpers
// ABOUTME: Verifies delay growth, caps, and context cancellation

package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoff_ZeroForFirstAttempt(t *testing.T) {
	if d := Backoff(time.Second, 0); d != 0 {
		t.Errorf("Backoff(attempt=0) = %v, want 0", d)
	}
	if d := Backoff(time.Second, -1); d != 0 {
		t.Errorf("Backoff(attempt=-1) = %v, want 0", d)
	}
}

func TestBackoff_GrowsWithAttempts(t *testing.T) {
	base := 100 * time.Millisecond

	// With ±25% jitter, attempt 1 is within [150ms, 250ms] and
	// attempt 3 within [600ms, 1000ms]; ranges do not overlap.
	d1 := Backoff(base, 1)
	d3 := Backoff(base, 3)

	if d1 >= d3 {
		t.Errorf("Backoff(1) = %v should be less than Backoff(3) = %v", d1, d3)
	}
}

func TestBackoff_Capped(t *testing.T) {
	// Large attempt counts must not overflow or exceed the cap plus jitter.
	d := Backoff(2*time.Second, 100)
	limit := 30*time.Second + 30*time.Second/4
	if d <= 0 || d > limit {
		t.Errorf("Backoff(attempt=100) = %v, want within (0, %v]", d, limit)
	}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("always fails")
	calls := 0
	err := Do(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Do() error = %v, want wrapped %v", err, wantErr)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, 5, time.Minute, func(context.Context) error {
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("Do() with cancelled context should fail")
	}
}
