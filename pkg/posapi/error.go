// Package posapi holds types shared by the POS provider API clients.
package posapi

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from a provider REST API. Providers return
// wildly inconsistent error bodies, so the raw body is carried verbatim for
// logging and for the caller's auth-failure heuristics.
type APIError struct {
	Provider   string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d: %s", e.Provider, e.Endpoint, e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err is an APIError with HTTP status 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}
