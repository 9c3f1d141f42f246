package signing

import (
	"crypto"
	"crypto/hmac"
	"fmt"

	"github.com/jrsteele09/go-auth-relay/token/keys"
)

type hmacMethod struct {
	name     string
	hashFunc crypto.Hash
}

var (
	hmacSHA256 = &hmacMethod{keys.HS256, crypto.SHA256}
	hmacSHA384 = &hmacMethod{keys.HS384, crypto.SHA384}
	hmacSHA512 = &hmacMethod{keys.HS512, crypto.SHA512}
)

func (m *hmacMethod) Alg() string {
	return m.name
}

func (m *hmacMethod) Sign(signingInput []byte, key *keys.SigningKey) ([]byte, error) {
	if !key.Symmetric() {
		return nil, fmt.Errorf("key %s has no HMAC secret", key.ID)
	}
	if !hashAvailable(m.hashFunc) {
		return nil, fmt.Errorf("hash function %v not available", m.hashFunc)
	}

	hasher := hmac.New(m.hashFunc.New, key.Secret)
	hasher.Write(signingInput)
	return hasher.Sum(nil), nil
}

func (m *hmacMethod) Verify(signingInput, signature []byte, key *keys.SigningKey) bool {
	if !key.Symmetric() || !hashAvailable(m.hashFunc) {
		return false
	}

	// A length mismatch can never verify; reject before comparing anything.
	if len(signature) != m.hashFunc.Size() {
		return false
	}

	hasher := hmac.New(m.hashFunc.New, key.Secret)
	hasher.Write(signingInput)
	expected := hasher.Sum(nil)

	// hmac.Equal is constant time, preventing timing side channels.
	return hmac.Equal(signature, expected)
}
