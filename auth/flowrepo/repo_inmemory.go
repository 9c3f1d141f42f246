// Package flowrepo provides the in-memory implementation of the pending
// authorization-request store.
package flowrepo

import (
	"errors"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-relay/auth"
)

// InMemoryRepo is a thread-safe in-memory implementation of auth.RequestRepo
type InMemoryRepo struct {
	mu       sync.Mutex
	requests map[string]*auth.AuthorizationRequest
}

// NewInMemoryRepo creates a new in-memory authorization request repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		requests: make(map[string]*auth.AuthorizationRequest),
	}
}

// Upsert stores a pending authorization request under its state value
func (r *InMemoryRepo) Upsert(state string, req *auth.AuthorizationRequest) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if req == nil {
		return errors.New("request cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to prevent external modifications
	stored := *req
	r.requests[state] = &stored
	return nil
}

// Consume returns the request for state and deletes it under a single lock,
// so at most one caller ever receives a given request.
func (r *InMemoryRepo) Consume(state string) (*auth.AuthorizationRequest, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	req, exists := r.requests[state]
	if !exists {
		return nil, errors.New("state not found")
	}
	delete(r.requests, state)

	out := *req
	return &out, nil
}

// PurgeExpired removes requests created before cutoff and returns how many
// were removed. Abandoned login attempts never get consumed, so a periodic
// sweep keeps the map bounded.
func (r *InMemoryRepo) PurgeExpired(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for state, req := range r.requests {
		if req.CreatedAt.Before(cutoff) {
			delete(r.requests, state)
			removed++
		}
	}
	return removed
}
