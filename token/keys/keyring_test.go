package keys_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-relay/token/keys"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T, id string) *keys.SigningKey {
	t.Helper()
	key, err := keys.DeriveHMACKey(bytes.Repeat([]byte{0x42}, 32), id, keys.HS256)
	require.NoError(t, err)
	return key
}

func TestNewKeyring(t *testing.T) {
	t.Run("active key required", func(t *testing.T) {
		_, err := keys.NewKeyring(nil)
		require.Error(t, err)
	})

	t.Run("active key must sign", func(t *testing.T) {
		verifyOnly := &keys.SigningKey{ID: "pub", Algorithm: keys.RS256}
		_, err := keys.NewKeyring(verifyOnly)
		require.Error(t, err)
	})

	t.Run("extra keys join the verification set", func(t *testing.T) {
		ring, err := keys.NewKeyring(testKey(t, "k1"), testKey(t, "k0"))
		require.NoError(t, err)
		require.Equal(t, 2, ring.Len())
		require.Equal(t, "k1", ring.Active().ID)
	})
}

func TestKeyringRotate(t *testing.T) {
	now := time.Now()

	t.Run("old key verifies through the grace window", func(t *testing.T) {
		ring, err := keys.NewKeyring(testKey(t, "k1"))
		require.NoError(t, err)

		require.NoError(t, ring.Rotate(testKey(t, "k2"), time.Hour))
		require.Equal(t, "k2", ring.Active().ID)

		candidates := ring.Candidates("k1", now)
		require.Len(t, candidates, 1)
		require.Equal(t, "k1", candidates[0].ID)

		// After the grace window the retired key is no longer a candidate.
		require.Empty(t, ring.Candidates("k1", now.Add(2*time.Hour)))
		require.Len(t, ring.Candidates("k2", now.Add(2*time.Hour)), 1)
	})

	t.Run("zero grace retires immediately", func(t *testing.T) {
		ring, err := keys.NewKeyring(testKey(t, "k1"))
		require.NoError(t, err)

		require.NoError(t, ring.Rotate(testKey(t, "k2"), 0))
		require.Empty(t, ring.Candidates("k1", now))
		require.Equal(t, 1, ring.Len())
	})

	t.Run("next key must sign", func(t *testing.T) {
		ring, err := keys.NewKeyring(testKey(t, "k1"))
		require.NoError(t, err)
		require.Error(t, ring.Rotate(&keys.SigningKey{ID: "pub", Algorithm: keys.RS256}, time.Hour))
		require.Equal(t, "k1", ring.Active().ID)
	})
}

func TestKeyringCandidates(t *testing.T) {
	now := time.Now()
	k1 := testKey(t, "k1")
	k2 := testKey(t, "k2")
	ring, err := keys.NewKeyring(k1, k2)
	require.NoError(t, err)

	t.Run("kid narrows the set", func(t *testing.T) {
		candidates := ring.Candidates("k2", now)
		require.Len(t, candidates, 1)
		require.Equal(t, "k2", candidates[0].ID)
	})

	t.Run("unknown kid yields nothing", func(t *testing.T) {
		require.Empty(t, ring.Candidates("k9", now))
	})

	t.Run("empty kid yields all live keys", func(t *testing.T) {
		require.Len(t, ring.Candidates("", now), 2)
	})
}

func TestVerifyOnlyKeyring(t *testing.T) {
	ring := keys.NewVerifyOnlyKeyring(testKey(t, "k1"))
	require.Nil(t, ring.Active())
	require.Len(t, ring.Candidates("k1", time.Now()), 1)

	t.Run("replace swaps the whole set", func(t *testing.T) {
		ring.Replace([]*keys.SigningKey{testKey(t, "k3"), testKey(t, "k4")})
		require.Equal(t, 2, ring.Len())
		require.Empty(t, ring.Candidates("k1", time.Now()))
		require.Len(t, ring.Candidates("k3", time.Now()), 1)
	})
}
