package deka

import (
	"context"
	"errors"
	"time"
)

// RetryConfig controls how often a vendor call is repeated after a
// retryable failure (rate limiting, 5xx, dropped connections).
type RetryConfig struct {
	MaxRetries int           // attempts after the first one
	BaseDelay  time.Duration // wait before the first retry, doubled each time
	MaxDelay   time.Duration // upper bound for a single wait
}

// DefaultRetryConfig is what Registry.CreateInstance uses when a provider is
// configured with max_retries; only MaxRetries is overridden.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// backoff returns the wait before retry number n (0-based).
func (c RetryConfig) backoff(n int) time.Duration {
	delay := c.BaseDelay << n
	if delay <= 0 || delay > c.MaxDelay {
		return c.MaxDelay
	}
	return delay
}

// RetryFunc performs one attempt; attempt counts from 1.
type RetryFunc[T any] func(attempt int) (T, error)

// WithRetry calls fn until it succeeds, fails with an error IsRetryable
// rejects, or runs out of attempts. Cancellation during a backoff wait
// returns ctx.Err() so the engine can record the slot as cancelled.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var zero T
	var lastErr error

	for n := 0; n <= cfg.MaxRetries; n++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(n + 1)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsRetryable(err) || n == cfg.MaxRetries {
			break
		}

		timer := time.NewTimer(cfg.backoff(n))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}

// IsRetryable reports whether a provider failure is worth repeating. Only
// *ProviderError values flagged Retryable by the vendor classification
// qualify; cancellation and deadline errors never do.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var providerErr *ProviderError
	return errors.As(err, &providerErr) && providerErr.Retryable
}

// RetryableProvider repeats Translate on retryable vendor failures. The
// other Provider methods go straight to the wrapped instance, so descriptors,
// models and languages look the same to the registry and the engine.
type RetryableProvider struct {
	Provider
	config RetryConfig
}

func NewRetryableProvider(provider Provider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{Provider: provider, config: cfg}
}

// Translate records the number of attempts in the result metadata under
// "attempts" when more than one was needed.
func (p *RetryableProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslationResult, error) {
	var attempts int
	result, err := WithRetry(ctx, p.config, func(attempt int) (*TranslationResult, error) {
		attempts = attempt
		return p.Provider.Translate(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	if attempts > 1 && result != nil {
		if result.Metadata == nil {
			result.Metadata = make(map[string]any, 1)
		}
		result.Metadata["attempts"] = attempts
	}
	return result, nil
}

// Unwrap returns the wrapped provider.
func (p *RetryableProvider) Unwrap() Provider {
	return p.Provider
}
