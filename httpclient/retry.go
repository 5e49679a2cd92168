package httpclient

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for buffered requests.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// Jitter adds randomness to backoff (0.0 to 1.0).
	Jitter float64
	// RetryIf decides whether an error should be retried. Defaults to
	// IsRetryable.
	RetryIf func(error) bool
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Jitter:         0.1,
		RetryIf:        IsRetryable,
	}
}

// Validate checks that the retry configuration is valid.
func (c *RetryConfig) Validate() error {
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("httpclient: retry max attempts must be positive")
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		return fmt.Errorf("httpclient: retry jitter must be in [0, 1]")
	}
	return nil
}

// retry runs fn up to cfg.MaxAttempts times with exponential backoff.
func retry(ctx context.Context, cfg RetryConfig, fn func() (*Response, error)) (*Response, error) {
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = IsRetryable
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryIf(err) || attempt == cfg.MaxAttempts {
			break
		}

		timer := time.NewTimer(retryDelay(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// retryDelay computes the exponential backoff delay for an attempt.
func retryDelay(attempt int, cfg RetryConfig) time.Duration {
	initial := cfg.InitialBackoff
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	maxDelay := cfg.MaxBackoff
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}

	delay := float64(initial) * math.Pow(2, float64(attempt-1))
	if cfg.Jitter > 0 {
		span := delay * cfg.Jitter
		delay += (rand.Float64()*2 - 1) * span
	}
	if delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}
	if delay < 0 {
		delay = float64(initial)
	}
	return time.Duration(delay)
}
