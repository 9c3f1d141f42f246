package auth

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// randomValueLength is the byte length of generated state and nonce values.
// 32 bytes = 256 bits of entropy, double the 128-bit floor.
const randomValueLength = 32

// AuthorizationRequest is the transient state of one login attempt: the
// anti-CSRF state, the nonce the provider must echo inside the ID token,
// and where to send the user afterwards. It exists only between redirect
// issuance and code receipt and is consumed exactly once on return.
type AuthorizationRequest struct {
	State       string
	Nonce       string
	RedirectURI string
	ReturnURL   string
	CreatedAt   time.Time
}

// NewAuthorizationRequest generates a request with fresh random state and
// nonce values.
func NewAuthorizationRequest(redirectURI, returnURL string, now time.Time) *AuthorizationRequest {
	return &AuthorizationRequest{
		State:       generateRandomString(randomValueLength),
		Nonce:       generateRandomString(randomValueLength),
		RedirectURI: redirectURI,
		ReturnURL:   returnURL,
		CreatedAt:   now,
	}
}

// generateRandomString creates a random base64url string from n bytes of
// crypto/rand output.
func generateRandomString(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand is unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
