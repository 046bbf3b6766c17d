package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig controls exponential backoff between attempts.
type RetryConfig struct {
	// MaxAttempts counts the initial request.
	MaxAttempts int

	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// forClass adjusts the base configuration for an error class. Rate limited
// requests start from a longer backoff.
func (c RetryConfig) forClass(class ErrorClass) RetryConfig {
	if class == ErrorClassRateLimit {
		c.InitialBackoff *= 4
		c.MaxBackoff = max(c.MaxBackoff, c.InitialBackoff)
	}
	if c.BackoffMultiplier < 1 {
		c.BackoffMultiplier = 1
	}
	return c
}

// backoff returns the jittered wait before the attempt following attempt
// (1-based), honouring a Retry-After hint up to MaxBackoff.
func (c RetryConfig) backoff(attempt int, retryAfter time.Duration) time.Duration {
	d := float64(c.InitialBackoff)
	for range attempt - 1 {
		d *= c.BackoffMultiplier
	}
	wait := min(time.Duration(d), c.MaxBackoff)

	// ±20% jitter
	wait = time.Duration(float64(wait) * (0.8 + rand.Float64()*0.4))
	if retryAfter > wait {
		wait = min(retryAfter, c.MaxBackoff)
	}
	return wait
}

// retryWithBackoff runs fn until it succeeds, fails with a non-retriable
// error or the attempts are used up. Failed attempts report their class
// through the returned *HTTPError.
func retryWithBackoff(ctx context.Context, base RetryConfig, logger zerolog.Logger, fn func(attempt int) error) error {
	var lastErr error
	var class ErrorClass

	attempts := max(base.MaxAttempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Str("error_class", string(class)).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}
		lastErr = err

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || !shouldRetry(httpErr.ErrorClass) {
			return err
		}
		class = httpErr.ErrorClass

		if attempt == attempts {
			break
		}

		cfg := base.forClass(class)
		wait := cfg.backoff(attempt, httpErr.RetryAfter)
		retriesTotal.WithLabelValues(string(class)).Inc()
		retryBackoffSeconds.WithLabelValues(string(class)).Observe(wait.Seconds())

		logger.Warn().
			Str("error_class", string(class)).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("Retrying request after backoff")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Debug().Int("attempt", attempt).Msg("Context cancelled during retry backoff")
			return fmt.Errorf("retry backoff: %w", ctx.Err())
		case <-timer.C:
		}
	}

	retryExhaustedTotal.WithLabelValues(string(class)).Inc()
	logger.Warn().
		Str("error_class", string(class)).
		Int("max_attempts", attempts).
		Msg("Retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempts, lastErr)
}
