package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
)

// Algorithm identifiers (string values used in JWKs and token headers)
const (
	HS256 = "HS256"
	HS384 = "HS384"
	HS512 = "HS512"
	RS256 = "RS256"
	RS384 = "RS384"
	RS512 = "RS512"
)

const minRSABits = 2048

// SigningKey is a single key with an identifier, a provisioned algorithm and
// a validity window. Exactly one of Secret (symmetric) or the key pair fields
// is populated. Verify-only keys (e.g. parsed from a provider JWKS) carry a
// public key and no private key.
type SigningKey struct {
	ID        string
	Algorithm string

	Secret     []byte // symmetric (HS*)
	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey

	NotBefore time.Time
	NotAfter  time.Time // zero value means no expiry
}

// Symmetric reports whether the key is an HMAC secret.
func (k *SigningKey) Symmetric() bool {
	return len(k.Secret) > 0
}

// CanSign reports whether the key holds signing material (a secret or a
// private key). JWKS-sourced keys are verify-only.
func (k *SigningKey) CanSign() bool {
	return len(k.Secret) > 0 || k.PrivateKey != nil
}

// ActiveAt reports whether now falls inside the key's validity window.
func (k *SigningKey) ActiveAt(now time.Time) bool {
	if !k.NotBefore.IsZero() && now.Before(k.NotBefore) {
		return false
	}
	if !k.NotAfter.IsZero() && now.After(k.NotAfter) {
		return false
	}
	return true
}

// NewHMACKey creates a symmetric signing key from raw secret bytes.
func NewHMACKey(keyID, algorithm string, secret []byte) (*SigningKey, error) {
	switch algorithm {
	case HS256, HS384, HS512:
	default:
		return nil, fmt.Errorf("algorithm %q is not an HMAC algorithm", algorithm)
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("HMAC secret too short: minimum 32 bytes, got %d", len(secret))
	}
	return &SigningKey{
		ID:        keyID,
		Algorithm: algorithm,
		Secret:    secret,
	}, nil
}

// DeriveHMACKey derives a per-key-ID HMAC key from a master secret using
// HKDF-SHA256. Rotating the key ID yields an independent secret, so the
// master secret is the only configuration a deployment has to manage.
func DeriveHMACKey(master []byte, keyID, algorithm string) (*SigningKey, error) {
	if len(master) < 32 {
		return nil, fmt.Errorf("master secret too short: minimum 32 bytes, got %d", len(master))
	}

	var size int
	switch algorithm {
	case HS256:
		size = 32
	case HS384:
		size = 48
	case HS512:
		size = 64
	default:
		return nil, fmt.Errorf("algorithm %q is not an HMAC algorithm", algorithm)
	}

	derived := make([]byte, size)
	kdf := hkdf.New(sha256.New, master, nil, []byte("signing-key:"+keyID))
	if _, err := io.ReadFull(kdf, derived); err != nil {
		return nil, fmt.Errorf("failed to derive key %s: %w", keyID, err)
	}

	return NewHMACKey(keyID, algorithm, derived)
}

// GenerateRSAKey generates a new RSA key pair for RS256 signing.
func GenerateRSAKey(keyID string, bits int) (*SigningKey, error) {
	if bits < minRSABits {
		bits = minRSABits
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	return &SigningKey{
		ID:         keyID,
		Algorithm:  RS256,
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
	}, nil
}

// ExportPublicKeyPEM exports the public key as PEM.
func (k *SigningKey) ExportPublicKeyPEM() (string, error) {
	if k.PublicKey == nil {
		return "", fmt.Errorf("key %s has no public key", k.ID)
	}

	pubKeyBytes, err := x509.MarshalPKIXPublicKey(k.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}

	pubKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubKeyBytes,
	})

	return string(pubKeyPEM), nil
}

// ExportPrivateKeyPEM exports the RSA private key as PEM.
func (k *SigningKey) ExportPrivateKeyPEM() (string, error) {
	if k.PrivateKey == nil {
		return "", fmt.Errorf("key %s has no private key", k.ID)
	}

	privateKeyBytes := x509.MarshalPKCS1PrivateKey(k.PrivateKey)
	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: privateKeyBytes,
	})

	return string(privateKeyPEM), nil
}

// LoadRSAKeyFromPEM loads a signing key pair from PEM-encoded strings.
func LoadRSAKeyFromPEM(keyID, privateKeyPEM string) (*SigningKey, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	privKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA private key: %w", err)
	}

	if privKey.N.BitLen() < minRSABits {
		return nil, fmt.Errorf("RSA key too small: minimum %d bits, got %d", minRSABits, privKey.N.BitLen())
	}

	return &SigningKey{
		ID:         keyID,
		Algorithm:  RS256,
		PrivateKey: privKey,
		PublicKey:  &privKey.PublicKey,
	}, nil
}
