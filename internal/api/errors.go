package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetwork wraps transport-level failures where no HTTP status was
// received.
var ErrNetwork = errors.New("network error")

// Error is a backend rejection carrying the HTTP status and any
// server-supplied message.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %s (%d)", e.Message, e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 rejection. Callers use
// this to invalidate the session and force re-login.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 rejection.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
