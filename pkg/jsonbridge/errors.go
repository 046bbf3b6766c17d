package jsonbridge

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMalformedDocument is returned when the top-level body is not valid
	// JSON. It is fatal for the whole read and cached by the Reader.
	ErrMalformedDocument = errors.New("malformed JSON document")

	// ErrClosed is returned by a Reader after Close.
	ErrClosed = errors.New("reader closed")

	// ErrUnsupportedType is returned by Registry.Encode for values that are
	// not paged sequences.
	ErrUnsupportedType = errors.New("unsupported sequence type")
)

// StatusError is returned by FromResponse for non-2xx responses.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus maps the upstream failure onto the status served to callers.
func (e *StatusError) HTTPStatus() int {
	if e.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
