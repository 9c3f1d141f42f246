package signing

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"github.com/jrsteele09/go-auth-relay/token/keys"
)

type rsaMethod struct {
	name     string
	hashFunc crypto.Hash
}

var (
	rsaSHA256 = &rsaMethod{keys.RS256, crypto.SHA256}
	rsaSHA384 = &rsaMethod{keys.RS384, crypto.SHA384}
	rsaSHA512 = &rsaMethod{keys.RS512, crypto.SHA512}
)

func (m *rsaMethod) Alg() string {
	return m.name
}

func (m *rsaMethod) Sign(signingInput []byte, key *keys.SigningKey) ([]byte, error) {
	if key.PrivateKey == nil {
		return nil, fmt.Errorf("key %s has no private key", key.ID)
	}
	if !hashAvailable(m.hashFunc) {
		return nil, fmt.Errorf("hash function %v not available", m.hashFunc)
	}

	hasher := m.hashFunc.New()
	hasher.Write(signingInput)

	signature, err := rsa.SignPKCS1v15(rand.Reader, key.PrivateKey, m.hashFunc, hasher.Sum(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to sign with key %s: %w", key.ID, err)
	}
	return signature, nil
}

func (m *rsaMethod) Verify(signingInput, signature []byte, key *keys.SigningKey) bool {
	if key.PublicKey == nil || !hashAvailable(m.hashFunc) {
		return false
	}

	hasher := m.hashFunc.New()
	hasher.Write(signingInput)

	return rsa.VerifyPKCS1v15(key.PublicKey, m.hashFunc, hasher.Sum(nil), signature) == nil
}
