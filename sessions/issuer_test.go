package sessions_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-relay/sessions"
	"github.com/jrsteele09/go-auth-relay/token/keys"
	"github.com/jrsteele09/go-auth-relay/token/verify"
	"github.com/stretchr/testify/require"
)

const issuerName = "go-auth-relay"

func sessionKey(t *testing.T, id string) *keys.SigningKey {
	t.Helper()
	key, err := keys.DeriveHMACKey(bytes.Repeat([]byte{0x42}, 32), id, keys.HS256)
	require.NoError(t, err)
	return key
}

func newIssuer(t *testing.T, options ...sessions.IssuerOption) (*sessions.Issuer, *keys.Keyring) {
	t.Helper()
	ring, err := keys.NewKeyring(sessionKey(t, "session-1"))
	require.NoError(t, err)
	issuer, err := sessions.NewIssuer(ring, issuerName, options...)
	require.NoError(t, err)
	return issuer, ring
}

func TestNewIssuerValidation(t *testing.T) {
	ring, err := keys.NewKeyring(sessionKey(t, "session-1"))
	require.NoError(t, err)

	t.Run("nil keyring", func(t *testing.T) {
		_, err := sessions.NewIssuer(nil, issuerName)
		require.Error(t, err)
	})

	t.Run("verify-only keyring", func(t *testing.T) {
		verifyOnly := keys.NewVerifyOnlyKeyring(sessionKey(t, "session-1"))
		_, err := sessions.NewIssuer(verifyOnly, issuerName)
		require.Error(t, err)
	})

	t.Run("empty issuer", func(t *testing.T) {
		_, err := sessions.NewIssuer(ring, "")
		require.Error(t, err)
	})
}

func TestIssueAndVerify(t *testing.T) {
	issuer, _ := newIssuer(t)

	session, artifact, err := issuer.Issue("user-42", nil, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	require.Equal(t, "user-42", session.Subject)
	require.WithinDuration(t, session.IssuedAt.Add(time.Hour), session.ExpiresAt, time.Second)

	claims, err := issuer.Verify(artifact)
	require.NoError(t, err)
	require.Equal(t, "user-42", claims.Subject())
	require.Equal(t, issuerName, claims.Issuer())
	require.Equal(t, session.ID, claims.TokenID())

	exp, ok := claims.ExpiresAt()
	require.True(t, ok)
	require.True(t, exp.Equal(session.ExpiresAt.Truncate(time.Second)))
}

func TestIssueExtras(t *testing.T) {
	issuer, _ := newIssuer(t)

	t.Run("extras survive the round trip", func(t *testing.T) {
		_, artifact, err := issuer.Issue("user-42", map[string]any{"email": "u@example.com"}, time.Hour)
		require.NoError(t, err)

		claims, err := issuer.Verify(artifact)
		require.NoError(t, err)
		require.Equal(t, "u@example.com", claims["email"])
	})

	t.Run("reserved claims are rejected", func(t *testing.T) {
		for _, reserved := range []string{"iss", "sub", "aud", "exp", "nbf", "iat", "jti"} {
			_, _, err := issuer.Issue("user-42", map[string]any{reserved: "x"}, time.Hour)
			require.Error(t, err, "claim %q must be reserved", reserved)
		}
	})
}

func TestIssueDefaults(t *testing.T) {
	t.Run("empty subject rejected", func(t *testing.T) {
		issuer, _ := newIssuer(t)
		_, _, err := issuer.Issue("", nil, time.Hour)
		require.Error(t, err)
	})

	t.Run("non-positive ttl uses the default", func(t *testing.T) {
		issuer, _ := newIssuer(t, sessions.WithDefaultTTL(10*time.Minute))
		session, _, err := issuer.Issue("user-42", nil, 0)
		require.NoError(t, err)
		require.WithinDuration(t, session.IssuedAt.Add(10*time.Minute), session.ExpiresAt, time.Second)
	})
}

func TestVerifyRejectsTampering(t *testing.T) {
	issuer, _ := newIssuer(t)
	_, artifact, err := issuer.Issue("user-42", nil, time.Hour)
	require.NoError(t, err)

	t.Run("artifact from a different secret", func(t *testing.T) {
		otherKey, err := keys.DeriveHMACKey(bytes.Repeat([]byte{0x66}, 32), "session-1", keys.HS256)
		require.NoError(t, err)
		otherRing, err := keys.NewKeyring(otherKey)
		require.NoError(t, err)
		other, err := sessions.NewIssuer(otherRing, issuerName)
		require.NoError(t, err)

		_, verr := other.Verify(artifact)
		require.ErrorIs(t, verr, verify.ErrBadSignature)
	})

	t.Run("truncated artifact", func(t *testing.T) {
		_, err := issuer.Verify(artifact[:len(artifact)-2])
		require.Error(t, err)
	})
}

func TestExpiredSessionRejected(t *testing.T) {
	current := time.Now()
	issuer, _ := newIssuer(t, sessions.WithNowFunc(func() time.Time { return current }))

	_, artifact, err := issuer.Issue("user-42", nil, time.Minute)
	require.NoError(t, err)

	current = current.Add(5 * time.Minute)
	_, err = issuer.Verify(artifact)
	require.ErrorIs(t, err, verify.ErrExpiredToken)
}

func TestRotationKeepsLiveSessions(t *testing.T) {
	issuer, ring := newIssuer(t)

	_, oldArtifact, err := issuer.Issue("user-42", nil, time.Hour)
	require.NoError(t, err)

	require.NoError(t, issuer.Rotate(sessionKey(t, "session-2"), time.Hour))
	require.Equal(t, "session-2", ring.Active().ID)

	t.Run("old session still verifies inside grace", func(t *testing.T) {
		_, err := issuer.Verify(oldArtifact)
		require.NoError(t, err)
	})

	t.Run("new sessions sign with the new key", func(t *testing.T) {
		_, artifact, err := issuer.Issue("user-43", nil, time.Hour)
		require.NoError(t, err)
		claims, err := issuer.Verify(artifact)
		require.NoError(t, err)
		require.Equal(t, "user-43", claims.Subject())
	})

	t.Run("zero grace cuts old sessions off", func(t *testing.T) {
		issuer2, _ := newIssuer(t)
		_, artifact, err := issuer2.Issue("user-42", nil, time.Hour)
		require.NoError(t, err)

		require.NoError(t, issuer2.Rotate(sessionKey(t, "session-3"), 0))
		_, err = issuer2.Verify(artifact)
		require.ErrorIs(t, err, verify.ErrBadSignature)
	})
}
