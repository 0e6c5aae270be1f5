package service

import (
	"errors"
	"strings"

	"github.com/barterly/pos-sync/pkg/posapi"
)

// Common sync errors used across services. Handlers map these onto HTTP
// status codes.
var (
	ErrIntegrationNotFound = errors.New("INTEGRATION_NOT_FOUND")
	ErrProgressNotFound    = errors.New("PROGRESS_NOT_FOUND")
	ErrIntegrationInactive = errors.New("INTEGRATION_INACTIVE")
	ErrCredential          = errors.New("CREDENTIAL_ERROR")
	ErrProviderUnsupported = errors.New("PROVIDER_UNSUPPORTED")
	ErrMissingConfig       = errors.New("INTEGRATION_CONFIG_INCOMPLETE")
	ErrAuthExpired         = errors.New("PROVIDER_AUTH_EXPIRED")
	ErrRefreshUnsupported  = errors.New("REFRESH_UNSUPPORTED")
	ErrNoRefreshToken      = errors.New("NO_REFRESH_TOKEN")
)

// authErrorNeedles are the substrings that mark a provider error as an
// authentication failure. Providers return inconsistent error shapes, so
// detection is heuristic: HTTP 401 or one of these phrases. Fragile against
// provider wording changes, but there are no certified error codes to rely on.
var authErrorNeedles = []string{
	"unauthorized",
	"token expired",
	"invalid token",
	"authentication failed",
}

// IsAuthExpired reports whether err looks like an expired or revoked
// provider credential.
func IsAuthExpired(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthExpired) {
		return true
	}
	if posapi.IsUnauthorized(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range authErrorNeedles {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
