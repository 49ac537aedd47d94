// ABOUTME: Retry helpers with exponential backoff and jitter
// ABOUTME: Shared by the OpenAI client and the condensation pipeline
package util

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// maxBackoff caps a single delay between attempts
const maxBackoff = 30 * time.Second

// Backoff returns the delay before the given retry attempt.
// Attempt 0 has no delay; later attempts double the base delay with
// random jitter of up to ±25%.
func Backoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}

// Do runs fn up to maxAttempts times, sleeping Backoff between
// attempts. It stops early when fn succeeds or ctx is cancelled.
func Do(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(Backoff(baseDelay, attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := fn(ctx); err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}
		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
