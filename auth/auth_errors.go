package auth

import "errors"

var (
	// StateMismatchErr means the callback state did not match a pending
	// authorization request (CSRF defense, or a replayed/expired request).
	StateMismatchErr = errors.New("state mismatch")

	// ExchangeFailedErr means the provider rejected the authorization code.
	// Codes are single-use and short-lived, so this is never retried.
	ExchangeFailedErr = errors.New("code exchange failed")

	// TransientNetworkErr means the token-endpoint call failed at the
	// network level after exhausting retries.
	TransientNetworkErr = errors.New("transient network error")

	// MissingIDTokenErr means the provider's token response carried no ID
	// token, so no identity can be established.
	MissingIDTokenErr = errors.New("no id_token in token response")
)
