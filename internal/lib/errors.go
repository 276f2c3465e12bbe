package lib

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is returned when a requester lacks permission for an
// owner-only operation.
var ErrUnauthorized = errors.New("only the server owner can do this")

// ErrNoVerifiedMembers is returned when a sync is requested for a guild
// with no verified members on record.
var ErrNoVerifiedMembers = errors.New("no verified members found in this server")

// TokenExchangeError means the OAuth provider rejected the
// authorization-code grant. Detail carries the remote response body.
type TokenExchangeError struct {
	Detail string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: %s", e.Detail)
}

// IdentityFetchError means the provider rejected the identity lookup for
// an exchanged access token.
type IdentityFetchError struct {
	StatusCode int
	Detail     string
}

func (e *IdentityFetchError) Error() string {
	return fmt.Sprintf("identity fetch failed (status %d): %s", e.StatusCode, e.Detail)
}

// HandleError maps an error to an HTTP status code and a user-visible
// message. Unknown errors stay internal.
func HandleError(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var exchangeErr *TokenExchangeError
	if errors.As(err, &exchangeErr) {
		return http.StatusBadRequest, fmt.Sprintf("Error fetching token: %s", exchangeErr.Detail)
	}

	var identityErr *IdentityFetchError
	if errors.As(err, &identityErr) {
		return http.StatusBadRequest, "Error fetching user info"
	}

	if errors.Is(err, ErrUnauthorized) {
		return http.StatusForbidden, ErrUnauthorized.Error()
	}
	if errors.Is(err, ErrNoVerifiedMembers) {
		return http.StatusNotFound, ErrNoVerifiedMembers.Error()
	}

	return http.StatusInternalServerError, "An unexpected error occurred."
}
