package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRetryExhausted is returned when every attempt failed with a retriable
// error. The last *HTTPError is wrapped alongside it.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// ErrorClass classifies a failed upstream request.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx errors other than 429. Not retried.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents transport errors and timeouts.
	ErrorClassNetwork ErrorClass = "network"
)

// HTTPError is a failed upstream request.
type HTTPError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string

	// RetryAfter is the upstream Retry-After hint, zero when absent.
	RetryAfter time.Duration

	Err error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error: %v", e.ErrorClass, e.Err)
	}
	return fmt.Sprintf("upstream %s error (status %d): %s", e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the upstream failure onto the status served to callers.
func (e *HTTPError) HTTPStatus() int {
	if e.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func classify(statusCode int, err error) ErrorClass {
	switch {
	case err != nil:
		return ErrorClassNetwork
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// shouldRetry reports whether requests failing with class are retried.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}
