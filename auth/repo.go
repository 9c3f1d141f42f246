package auth

import "time"

// RequestRepo stores pending authorization requests keyed by state value.
//
// Consume must be atomic: it returns the request and removes it in one
// step, so two concurrent callbacks replaying the same state can never both
// observe it. This is what makes state and nonce single-use.
type RequestRepo interface {
	Upsert(state string, req *AuthorizationRequest) error
	Consume(state string) (*AuthorizationRequest, error)
	PurgeExpired(cutoff time.Time) int
}
