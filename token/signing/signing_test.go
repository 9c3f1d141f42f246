package signing_test

import (
	"crypto/rand"
	"testing"

	"github.com/jrsteele09/go-auth-relay/token/keys"
	"github.com/jrsteele09/go-auth-relay/token/signing"
	"github.com/stretchr/testify/require"
)

func hmacKey(t *testing.T, id, alg string) *keys.SigningKey {
	t.Helper()
	secret := make([]byte, 64)
	_, err := rand.Read(secret)
	require.NoError(t, err)
	key, err := keys.NewHMACKey(id, alg, secret)
	require.NoError(t, err)
	return key
}

func TestHMACSignVerify(t *testing.T) {
	input := []byte("header.payload")

	for _, alg := range []string{keys.HS256, keys.HS384, keys.HS512} {
		t.Run(alg, func(t *testing.T) {
			key := hmacKey(t, "k1", alg)
			method, err := signing.ForKey(key)
			require.NoError(t, err)
			require.Equal(t, alg, method.Alg())

			signature, err := method.Sign(input, key)
			require.NoError(t, err)
			require.True(t, method.Verify(input, signature, key))
		})
	}
}

func TestHMACVerifyRejects(t *testing.T) {
	key := hmacKey(t, "k1", keys.HS256)
	otherKey := hmacKey(t, "k2", keys.HS256)
	method, err := signing.ForKey(key)
	require.NoError(t, err)

	input := []byte("header.payload")
	signature, err := method.Sign(input, key)
	require.NoError(t, err)

	t.Run("different key", func(t *testing.T) {
		require.False(t, method.Verify(input, signature, otherKey))
	})

	t.Run("modified input", func(t *testing.T) {
		tampered := append([]byte(nil), input...)
		tampered[0] ^= 0x01
		require.False(t, method.Verify(tampered, signature, key))
	})

	t.Run("single flipped signature bit", func(t *testing.T) {
		corrupted := append([]byte(nil), signature...)
		corrupted[len(corrupted)-1] ^= 0x01
		require.False(t, method.Verify(input, corrupted, key))
	})

	t.Run("truncated signature", func(t *testing.T) {
		require.False(t, method.Verify(input, signature[:len(signature)-1], key))
	})

	t.Run("empty signature", func(t *testing.T) {
		require.False(t, method.Verify(input, nil, key))
	})

	t.Run("key without secret", func(t *testing.T) {
		rsaKey, err := keys.GenerateRSAKey("r1", 2048)
		require.NoError(t, err)
		require.False(t, method.Verify(input, signature, rsaKey))
	})
}

func TestRSASignVerify(t *testing.T) {
	key, err := keys.GenerateRSAKey("r1", 2048)
	require.NoError(t, err)

	input := []byte("header.payload")
	method, err := signing.ForKey(key)
	require.NoError(t, err)
	require.Equal(t, keys.RS256, method.Alg())

	signature, err := method.Sign(input, key)
	require.NoError(t, err)
	require.True(t, method.Verify(input, signature, key))

	t.Run("verify-only public key", func(t *testing.T) {
		public := &keys.SigningKey{ID: key.ID, Algorithm: key.Algorithm, PublicKey: key.PublicKey}
		require.True(t, method.Verify(input, signature, public))

		_, err := method.Sign(input, public)
		require.Error(t, err)
	})

	t.Run("different key pair", func(t *testing.T) {
		other, err := keys.GenerateRSAKey("r2", 2048)
		require.NoError(t, err)
		require.False(t, method.Verify(input, signature, other))
	})

	t.Run("corrupted signature", func(t *testing.T) {
		corrupted := append([]byte(nil), signature...)
		corrupted[0] ^= 0x01
		require.False(t, method.Verify(input, corrupted, key))
	})
}

func TestForKey(t *testing.T) {
	t.Run("nil key", func(t *testing.T) {
		_, err := signing.ForKey(nil)
		require.Error(t, err)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		key := &keys.SigningKey{ID: "k1", Algorithm: "none", Secret: make([]byte, 32)}
		_, err := signing.ForKey(key)
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported algorithm")
	})

	t.Run("method follows the key not the input", func(t *testing.T) {
		// Two keys with the same secret but different provisioned algorithms
		// produce incompatible signatures.
		secret := make([]byte, 64)
		_, err := rand.Read(secret)
		require.NoError(t, err)

		key256, err := keys.NewHMACKey("k1", keys.HS256, secret)
		require.NoError(t, err)
		key512, err := keys.NewHMACKey("k1", keys.HS512, secret)
		require.NoError(t, err)

		m256, err := signing.ForKey(key256)
		require.NoError(t, err)
		m512, err := signing.ForKey(key512)
		require.NoError(t, err)

		input := []byte("header.payload")
		sig256, err := m256.Sign(input, key256)
		require.NoError(t, err)
		require.False(t, m512.Verify(input, sig256, key512))
	})
}
