package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is returned when the server answers with something that is not JSON.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is a failure reported by the server with an {"error": "..."} body.
type APIError struct {
	Status  int
	Message string
	// Locked is set when the server refused the call because of its app lock.
	Locked bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
}

// IsAuth reports whether the server rejected the caller's credentials.
func (e *APIError) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// NetworkError is a transport failure or an unreadable response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsAPIError reports whether err carries a server-reported failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsLocked reports whether err is the server's app lock.
func IsLocked(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Locked
}

// IsNetworkError reports whether err is a transport-level failure.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
