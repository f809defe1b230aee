package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/smallnest/wikirag"
	"github.com/smallnest/wikirag/log"
)

// RetryConfig bounds the dispatch retry loop. Only transient provider errors
// (rate limit, overload) are retried; everything else fails on the first
// attempt.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// sleep is swapped out in tests.
	sleep func(context.Context, time.Duration) error
}

// DefaultRetryConfig returns the dispatch retry defaults: three attempts with
// a 500ms base delay doubling each attempt.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
	}
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryGenerate runs fn up to MaxAttempts times with exponential backoff
// between transient failures.
func retryGenerate(ctx context.Context, cfg RetryConfig, fn func() (string, error)) (string, error) {
	cfg = cfg.withDefaults()

	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		text, err := fn()
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !wikirag.IsTransient(err) {
			return "", err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		log.Warn("transient provider error on attempt %d/%d, retrying in %v: %v",
			attempt, cfg.MaxAttempts, delay, err)
		if err := cfg.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("retry cancelled: %w", err)
		}
		delay *= 2
	}

	return "", fmt.Errorf("all %d attempts failed: %w", cfg.MaxAttempts, lastErr)
}
