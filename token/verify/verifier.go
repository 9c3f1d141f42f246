// Package verify validates compact tokens against a trusted key set and a
// configured issuer and audience. Verification is a pure, synchronous
// decision over token + key set + current time; there are no retries and no
// I/O here.
package verify

import (
	"time"

	"github.com/jrsteele09/go-auth-relay/token/codec"
	"github.com/jrsteele09/go-auth-relay/token/keys"
	"github.com/jrsteele09/go-auth-relay/token/signing"
	"github.com/pkg/errors"
)

// DefaultLeeway is the clock-skew tolerance applied to exp and nbf when no
// explicit leeway is configured.
const DefaultLeeway = 60 * time.Second

// Verifier validates a token's signature and semantic claims. It is
// stateless and safe for concurrent use; the key set behind the keyring may
// rotate underneath it.
type Verifier struct {
	keyring  *keys.Keyring
	issuer   string
	audience string
	leeway   time.Duration
	nowFunc  func() time.Time
}

// Option modifies a Verifier at construction time.
type Option func(*Verifier)

// WithLeeway sets the clock-skew tolerance for time-based claims.
func WithLeeway(d time.Duration) Option {
	return func(v *Verifier) {
		v.leeway = d
	}
}

// WithNowFunc sets the time source (primarily for testing).
func WithNowFunc(now func() time.Time) Option {
	return func(v *Verifier) {
		v.nowFunc = now
	}
}

// New creates a Verifier for the given trusted key set, issuer and audience.
func New(keyring *keys.Keyring, issuer, audience string, options ...Option) (*Verifier, error) {
	if keyring == nil {
		return nil, errors.New("[verify.New] keyring is required")
	}
	if issuer == "" {
		return nil, errors.New("[verify.New] issuer is required")
	}
	if audience == "" {
		return nil, errors.New("[verify.New] audience is required")
	}

	v := &Verifier{
		keyring:  keyring,
		issuer:   issuer,
		audience: audience,
		leeway:   DefaultLeeway,
		nowFunc:  time.Now,
	}

	for _, opt := range options {
		opt(v)
	}

	return v, nil
}

// Verify runs the full decision over a single token: decode, candidate key
// resolution, signature check, then claim validation. expectedNonce is the
// nonce bound at authorization-request time; pass "" when the token is not
// nonce-bound. On success the decoded payload is returned as a trusted
// claim set; on failure the error is a *RejectedError.
func (v *Verifier) Verify(wire string, expectedNonce string) (codec.Claims, error) {
	token, err := codec.Decode(wire)
	if err != nil {
		return nil, reject(ReasonMalformed, ErrMalformedToken, "%s", err.Error())
	}

	now := v.nowFunc()

	if err := v.verifySignature(token, now); err != nil {
		return nil, err
	}
	if err := v.verifyClaims(token.Claims, expectedNonce, now); err != nil {
		return nil, err
	}

	return token.Claims, nil
}

// verifySignature tries every candidate key in order; the first success
// wins, exhaustion is a rejection. The signing algorithm is always taken
// from the trusted key, never from the token header — the header's kid is
// used only to narrow the candidate set.
func (v *Verifier) verifySignature(token *codec.Token, now time.Time) error {
	candidates := v.keyring.Candidates(token.Header.KeyID, now)
	if len(candidates) == 0 {
		return reject(ReasonBadSignature, ErrBadSignature, "no candidate keys for kid %q", token.Header.KeyID)
	}

	for _, key := range candidates {
		method, err := signing.ForKey(key)
		if err != nil {
			// Provisioning error on the trusted key itself, not a property
			// of the untrusted token.
			return errors.Wrap(err, "[Verifier.verifySignature] bad key provisioning")
		}
		if method.Verify(token.SigningInput, token.Signature, key) {
			return nil
		}
	}

	return reject(ReasonBadSignature, ErrBadSignature, "signature did not verify under any of %d candidate keys", len(candidates))
}

func (v *Verifier) verifyClaims(claims codec.Claims, expectedNonce string, now time.Time) error {
	exp, ok := claims.ExpiresAt()
	if !ok {
		return reject(ReasonExpired, ErrExpiredToken, "missing exp claim")
	}
	if !exp.After(now.Add(-v.leeway)) {
		return reject(ReasonExpired, ErrExpiredToken, "token expired at %s", exp.UTC().Format(time.RFC3339))
	}

	if nbf, ok := claims.NotBefore(); ok && nbf.After(now.Add(v.leeway)) {
		return reject(ReasonNotYetValid, ErrClaimMismatch, "token not valid before %s", nbf.UTC().Format(time.RFC3339))
	}

	if claims.Issuer() != v.issuer {
		return reject(ReasonIssuerMismatch, ErrClaimMismatch, "issuer %q does not match trusted issuer", claims.Issuer())
	}

	if !claims.HasAudience(v.audience) {
		return reject(ReasonAudienceMismatch, ErrClaimMismatch, "audience does not contain %q", v.audience)
	}

	if expectedNonce != "" && claims.Nonce() != expectedNonce {
		return reject(ReasonNonceMismatch, ErrClaimMismatch, "nonce claim does not match authorization request")
	}

	return nil
}
