package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        300 * time.Millisecond,
		BackoffMultiplier: 2,
	}

	tests := []struct {
		name       string
		attempt    int
		retryAfter time.Duration
		min, max   time.Duration
	}{
		{"first retry", 1, 0, 80 * time.Millisecond, 120 * time.Millisecond},
		{"second retry doubles", 2, 0, 160 * time.Millisecond, 240 * time.Millisecond},
		{"capped", 5, 0, 240 * time.Millisecond, 360 * time.Millisecond},
		{"retry-after honoured", 1, 250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond},
		{"retry-after capped", 1, time.Minute, 300 * time.Millisecond, 300 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 20 {
				got := cfg.backoff(tt.attempt, tt.retryAfter)
				if got < tt.min || got > tt.max {
					t.Fatalf("backoff() = %v, want within [%v, %v]", got, tt.min, tt.max)
				}
			}
		})
	}
}

func TestRetryConfig_ForClass(t *testing.T) {
	base := DefaultRetryConfig()

	if got := base.forClass(ErrorClassServer); got.InitialBackoff != base.InitialBackoff {
		t.Errorf("Server InitialBackoff = %v, want %v", got.InitialBackoff, base.InitialBackoff)
	}
	if got := base.forClass(ErrorClassRateLimit); got.InitialBackoff != 4*base.InitialBackoff {
		t.Errorf("RateLimit InitialBackoff = %v, want %v", got.InitialBackoff, 4*base.InitialBackoff)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 2}
	plain := errors.New("plain")

	tests := []struct {
		name      string
		failures  []error
		wantCalls int
		wantErr   error
	}{
		{"success first try", nil, 1, nil},
		{"success after retry", []error{&HTTPError{ErrorClass: ErrorClassServer}}, 2, nil},
		{"client error stops", []error{&HTTPError{ErrorClass: ErrorClassClient}}, 1, nil},
		{"plain error stops", []error{plain}, 1, plain},
		{
			"exhausted",
			[]error{
				&HTTPError{ErrorClass: ErrorClassNetwork},
				&HTTPError{ErrorClass: ErrorClassNetwork},
				&HTTPError{ErrorClass: ErrorClassNetwork},
			},
			3, ErrRetryExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retryWithBackoff(context.Background(), cfg, zerolog.Nop(), func(attempt int) error {
				calls++
				if attempt <= len(tt.failures) {
					return tt.failures[attempt-1]
				}
				return nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			switch {
			case tt.name == "client error stops":
				var httpErr *HTTPError
				if !errors.As(err, &httpErr) || errors.Is(err, ErrRetryExhausted) {
					t.Errorf("Expected unwrapped client error, got %v", err)
				}
			case tt.wantErr == nil && err != nil:
				t.Errorf("Unexpected error: %v", err)
			case tt.wantErr != nil && !errors.Is(err, tt.wantErr):
				t.Errorf("Error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialBackoff: time.Hour, MaxBackoff: time.Hour, BackoffMultiplier: 2}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retryWithBackoff(ctx, cfg, zerolog.Nop(), func(int) error {
		return &HTTPError{ErrorClass: ErrorClassServer}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
