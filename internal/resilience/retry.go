package resilience

import (
	"context"
	"time"
)

// RetryConfig controls bounded retry of transient failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first try.
	// A value of 1 means no retries. Default: 3.
	MaxAttempts int

	// Backoff is the fixed delay between attempts. Zero means retry
	// immediately; upstream pacing is the rate limiter's job, not ours.
	Backoff time.Duration

	// ShouldRetry overrides the default IsTransient check when non-nil.
	ShouldRetry func(err error) bool

	// OnRetry is called before each retry with the attempt number (1-based)
	// and the error that triggered it.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns the retry settings used for upstream requests.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3}
}

// DoVal runs fn up to cfg.MaxAttempts times, returning the first successful
// value. Only transient errors are retried; anything else returns
// immediately. After exhaustion the last error is returned. Context
// cancellation stops retries at once.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
		if !shouldRetry(lastErr) {
			return zero, lastErr
		}
		if attempt >= cfg.MaxAttempts-1 {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, lastErr)
		}
		if cfg.Backoff > 0 {
			timer := time.NewTimer(cfg.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, lastErr
			case <-timer.C:
			}
		}
	}
	return zero, lastErr
}

// Do is DoVal for functions with no return value.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
