package keys

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

// JWKS represents a JSON Web Key Set
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kty string `json:"kty"`           // Key type (RSA)
	Use string `json:"use,omitempty"` // sig or enc
	Kid string `json:"kid,omitempty"` // Key ID
	Alg string `json:"alg,omitempty"` // Algorithm
	N   string `json:"n,omitempty"`   // Modulus
	E   string `json:"e,omitempty"`   // Exponent
}

// ToJWK converts the key's public half to JWK format. Symmetric keys have no
// publishable form and return an error.
func (k *SigningKey) ToJWK() (*JWK, error) {
	if k.PublicKey == nil {
		return nil, fmt.Errorf("key %s has no public key", k.ID)
	}

	return &JWK{
		Kty: "RSA",
		Use: "sig",
		Kid: k.ID,
		Alg: k.Algorithm,
		N:   base64.RawURLEncoding.EncodeToString(k.PublicKey.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(k.PublicKey.E)).Bytes()),
	}, nil
}

// ParseJWKS parses a JWKS document into verify-only signing keys. Keys with
// an unsupported type or a non-signature use are skipped rather than failing
// the whole set, since provider key sets routinely carry encryption keys.
func ParseJWKS(data []byte) ([]*SigningKey, error) {
	var set JWKS
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JWKS: %w", err)
	}
	if len(set.Keys) == 0 {
		return nil, fmt.Errorf("JWKS contains no keys")
	}

	keys := make([]*SigningKey, 0, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		if jwk.Use != "" && jwk.Use != "sig" {
			continue
		}

		pub, err := jwk.rsaPublicKey()
		if err != nil {
			return nil, fmt.Errorf("failed to parse JWK %q: %w", jwk.Kid, err)
		}

		alg := jwk.Alg
		if alg == "" {
			alg = RS256
		}

		keys = append(keys, &SigningKey{
			ID:        jwk.Kid,
			Algorithm: alg,
			PublicKey: pub,
		})
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("JWKS contains no usable signature keys")
	}
	return keys, nil
}

func (j JWK) rsaPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}
	if len(nBytes) == 0 || len(eBytes) == 0 {
		return nil, fmt.Errorf("missing modulus or exponent")
	}

	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() > int64(1<<31-1) || e.Int64() < 3 {
		return nil, fmt.Errorf("exponent out of range")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}
