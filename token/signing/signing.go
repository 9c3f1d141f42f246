// Package signing computes and verifies signatures over raw byte payloads.
// It knows nothing about tokens or protocols: callers hand it the exact
// bytes that were (or will be) signed together with a provisioned key.
package signing

import (
	"crypto"
	"fmt"

	"github.com/jrsteele09/go-auth-relay/token/keys"
)

// Method signs and verifies byte payloads under a single algorithm.
type Method interface {
	// Alg returns the algorithm identifier (e.g. "HS256", "RS256")
	Alg() string

	// Sign computes the signature over signingInput with the given key
	Sign(signingInput []byte, key *keys.SigningKey) ([]byte, error)

	// Verify reports whether signature is valid for signingInput under the
	// given key. Malformed input is reported as false, never as a panic.
	Verify(signingInput, signature []byte, key *keys.SigningKey) bool
}

// ForKey returns the signing method declared by the trusted key. The
// algorithm is always taken from the provisioned key, never from an
// untrusted token header: a token claiming a different algorithm than the
// key was provisioned for must fail signature verification, not switch
// verification modes. An algorithm the engine does not support is a
// provisioning error, not a verification failure.
func ForKey(key *keys.SigningKey) (Method, error) {
	if key == nil {
		return nil, fmt.Errorf("signing key is required")
	}

	switch key.Algorithm {
	case keys.HS256:
		return hmacSHA256, nil
	case keys.HS384:
		return hmacSHA384, nil
	case keys.HS512:
		return hmacSHA512, nil
	case keys.RS256:
		return rsaSHA256, nil
	case keys.RS384:
		return rsaSHA384, nil
	case keys.RS512:
		return rsaSHA512, nil
	default:
		return nil, fmt.Errorf("unsupported algorithm %q on key %s", key.Algorithm, key.ID)
	}
}

func hashAvailable(h crypto.Hash) bool {
	return h.Available()
}
