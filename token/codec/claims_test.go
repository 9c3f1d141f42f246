package codec_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-relay/token/codec"
	"github.com/stretchr/testify/require"
)

func TestClaimsAudience(t *testing.T) {
	t.Run("single string", func(t *testing.T) {
		c := codec.Claims{"aud": "client-123"}
		require.Equal(t, []string{"client-123"}, c.Audience())
		require.True(t, c.HasAudience("client-123"))
	})

	t.Run("list with multiple audiences", func(t *testing.T) {
		c := codec.Claims{"aud": []any{"client-123", "other-service"}}
		require.True(t, c.HasAudience("client-123"))
		require.True(t, c.HasAudience("other-service"))
		require.False(t, c.HasAudience("client-999"))
	})

	t.Run("absent", func(t *testing.T) {
		c := codec.Claims{}
		require.Nil(t, c.Audience())
		require.False(t, c.HasAudience("client-123"))
	})

	t.Run("wrong type", func(t *testing.T) {
		c := codec.Claims{"aud": 42.0}
		require.Nil(t, c.Audience())
	})
}

func TestClaimsTimeAccessors(t *testing.T) {
	at := time.Unix(1700000000, 0)

	t.Run("float64 from JSON decode", func(t *testing.T) {
		var c codec.Claims
		require.NoError(t, json.Unmarshal([]byte(`{"exp":1700000000}`), &c))
		exp, ok := c.ExpiresAt()
		require.True(t, ok)
		require.True(t, exp.Equal(at))
	})

	t.Run("int64 from local construction", func(t *testing.T) {
		c := codec.Claims{"iat": at.Unix()}
		iat, ok := c.IssuedAt()
		require.True(t, ok)
		require.True(t, iat.Equal(at))
	})

	t.Run("absent", func(t *testing.T) {
		c := codec.Claims{}
		_, ok := c.NotBefore()
		require.False(t, ok)
	})

	t.Run("non-numeric", func(t *testing.T) {
		c := codec.Claims{"exp": "tomorrow"}
		_, ok := c.ExpiresAt()
		require.False(t, ok)
	})
}

func TestClaimsStringAccessors(t *testing.T) {
	c := codec.Claims{
		"iss":   "https://issuer.example",
		"sub":   "user-42",
		"nonce": "n-1",
		"jti":   "id-1",
	}
	require.Equal(t, "https://issuer.example", c.Issuer())
	require.Equal(t, "user-42", c.Subject())
	require.Equal(t, "n-1", c.Nonce())
	require.Equal(t, "id-1", c.TokenID())

	empty := codec.Claims{"sub": 12345}
	require.Equal(t, "", empty.Subject())
}
