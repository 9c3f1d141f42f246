package keys

import (
	"fmt"
	"sync"
	"time"
)

// Keyring holds the set of keys that are valid for verification plus the
// single key used for new signatures. Reads vastly outnumber writes (every
// verification reads the set; writes happen on rotation or a provider JWKS
// refresh), so the key slice is treated as an immutable snapshot: every
// mutation installs a new slice and in-flight verifications keep observing
// the set they started with.
type Keyring struct {
	mu     sync.RWMutex
	active *SigningKey
	keys   []*SigningKey
}

// NewKeyring creates a keyring with active as the current signing key.
// Additional keys are verify-only members of the set.
func NewKeyring(active *SigningKey, extra ...*SigningKey) (*Keyring, error) {
	if active == nil {
		return nil, fmt.Errorf("active key is required")
	}
	if !active.CanSign() {
		return nil, fmt.Errorf("active key %s has no signing material", active.ID)
	}

	keys := make([]*SigningKey, 0, len(extra)+1)
	keys = append(keys, active)
	keys = append(keys, extra...)

	return &Keyring{active: active, keys: keys}, nil
}

// NewVerifyOnlyKeyring creates a keyring that can verify but never sign,
// used for an identity provider's published key set.
func NewVerifyOnlyKeyring(keys ...*SigningKey) *Keyring {
	return &Keyring{keys: append([]*SigningKey(nil), keys...)}
}

// Active returns the key used for new signatures, or nil for a verify-only
// keyring.
func (r *Keyring) Active() *SigningKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Rotate installs next as the signing key. The previous active key stays in
// the verification set until its grace window elapses, so artifacts signed
// before the rotation keep verifying. A non-positive grace retires the old
// key immediately.
func (r *Keyring) Rotate(next *SigningKey, grace time.Duration) error {
	if next == nil {
		return fmt.Errorf("next key is required")
	}
	if !next.CanSign() {
		return fmt.Errorf("next key %s has no signing material", next.ID)
	}

	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]*SigningKey, 0, len(r.keys)+1)
	keys = append(keys, next)
	for _, k := range r.keys {
		if k == r.active {
			// Retire a copy so the shared snapshot is never mutated.
			retired := *k
			retired.NotAfter = now.Add(grace)
			if grace <= 0 {
				continue
			}
			keys = append(keys, &retired)
			continue
		}
		if k.ActiveAt(now) {
			keys = append(keys, k)
		}
	}

	r.active = next
	r.keys = keys
	return nil
}

// Replace swaps the whole verification set, keeping the keyring verify-only.
// Used when a provider JWKS refresh yields a new key set.
func (r *Keyring) Replace(keys []*SigningKey) {
	snapshot := append([]*SigningKey(nil), keys...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = nil
	r.keys = snapshot
}

// Candidates returns the keys to attempt verification with, in order. When
// the token header carried a kid, only keys with that ID (and a live
// validity window) are returned; otherwise all live keys are.
func (r *Keyring) Candidates(kid string, now time.Time) []*SigningKey {
	r.mu.RLock()
	snapshot := r.keys
	r.mu.RUnlock()

	candidates := make([]*SigningKey, 0, len(snapshot))
	for _, k := range snapshot {
		if !k.ActiveAt(now) {
			continue
		}
		if kid != "" && k.ID != kid {
			continue
		}
		candidates = append(candidates, k)
	}
	return candidates
}

// Len returns the number of keys currently in the set, expired or not.
func (r *Keyring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}
