package llm

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/wikirag"
)

func testRetryConfig(delays *[]time.Duration) RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		sleep: func(_ context.Context, d time.Duration) error {
			*delays = append(*delays, d)
			return nil
		},
	}
}

func TestRetryGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("two 503s then success uses exactly two backoffs", func(t *testing.T) {
		var delays []time.Duration
		calls := 0

		text, err := retryGenerate(ctx, testRetryConfig(&delays), func() (string, error) {
			calls++
			if calls <= 2 {
				return "", &wikirag.ProviderError{Provider: "p", StatusCode: http.StatusServiceUnavailable}
			}
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, delays)
	})

	t.Run("401 fails immediately with zero retries", func(t *testing.T) {
		var delays []time.Duration
		calls := 0

		_, err := retryGenerate(ctx, testRetryConfig(&delays), func() (string, error) {
			calls++
			return "", &wikirag.ProviderError{Provider: "p", StatusCode: http.StatusUnauthorized}
		})

		assert.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, delays)
	})

	t.Run("persistent overload exhausts attempts", func(t *testing.T) {
		var delays []time.Duration
		calls := 0

		_, err := retryGenerate(ctx, testRetryConfig(&delays), func() (string, error) {
			calls++
			return "", &wikirag.ProviderError{Provider: "p", StatusCode: 529}
		})

		assert.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Len(t, delays, 2)
	})

	t.Run("429 is retried", func(t *testing.T) {
		var delays []time.Duration
		calls := 0

		text, err := retryGenerate(ctx, testRetryConfig(&delays), func() (string, error) {
			calls++
			if calls == 1 {
				return "", &wikirag.ProviderError{Provider: "p", StatusCode: http.StatusTooManyRequests}
			}
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.Len(t, delays, 1)
	})

	t.Run("cancelled context stops the backoff wait", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}
		_, err := retryGenerate(cancelled, cfg, func() (string, error) {
			return "", &wikirag.ProviderError{Provider: "p", StatusCode: 529}
		})

		assert.ErrorIs(t, err, context.Canceled)
	})
}
