// Package resilience provides retry and circuit-breaker primitives for
// external provider calls.
package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls bounded retry with a fixed inter-attempt delay.
// Provider stages default to two attempts spaced two seconds apart.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	// A value of 1 disables retries. Default: 2.
	MaxAttempts int

	// Delay is the pause between attempts. Default: 2s.
	Delay time.Duration

	// ShouldRetry decides whether an error is worth another attempt.
	// If nil, every error is retried. Context cancellation always stops
	// retrying regardless of this predicate.
	ShouldRetry func(err error) bool

	// OnRetry is called before each retry sleep with the upcoming attempt
	// number (2-based) and the error that triggered it.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns the stage-runner defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 2,
		Delay:       2 * time.Second,
	}
}

func (cfg RetryConfig) withDefaults() RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	return cfg
}

// DoVal runs fn up to cfg.MaxAttempts times, pausing cfg.Delay between
// attempts, and returns the first successful value. The delay is a timer
// select so cancellation interrupts the sleep.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(lastErr) {
			return zero, lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, lastErr)
		}

		timer := time.NewTimer(cfg.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

// Do is DoVal for operations without a return value.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(stage, domain string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying stage",
			zap.String("stage", stage),
			zap.String("domain", domain),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
