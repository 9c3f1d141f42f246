package sessions

import (
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-relay/token/codec"
	"github.com/jrsteele09/go-auth-relay/token/keys"
	"github.com/jrsteele09/go-auth-relay/token/signing"
	"github.com/jrsteele09/go-auth-relay/token/verify"
	"github.com/pkg/errors"
)

// DefaultTTL is the session lifetime when the caller does not pass one.
const DefaultTTL = 30 * time.Minute

// reservedClaims are set by the issuer itself; caller-supplied extras may
// not shadow them.
var reservedClaims = map[string]struct{}{
	"iss": {}, "sub": {}, "aud": {}, "exp": {}, "nbf": {}, "iat": {}, "jti": {},
}

// Issuer mints and verifies the service's own signed session artifacts.
// Issuer and verifier are the same trust domain, so symmetric HMAC keys
// are sufficient. Signing always uses the keyring's single active key;
// verification accepts any key still inside its grace window, which is what
// lets keys rotate without invalidating live sessions.
type Issuer struct {
	keyring    *keys.Keyring
	verifier   *verify.Verifier
	issuer     string
	defaultTTL time.Duration
	nowFunc    func() time.Time
}

// IssuerOption defines a function type to modify the Issuer instance.
type IssuerOption func(*Issuer)

// WithNowFunc sets the time source (primarily for testing)
func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

// WithDefaultTTL sets the session lifetime used when Issue receives a
// non-positive ttl.
func WithDefaultTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.defaultTTL = ttl
	}
}

// NewIssuer creates a session issuer. The issuer string doubles as the
// audience of self-issued artifacts, since this service is both minter and
// consumer.
func NewIssuer(keyring *keys.Keyring, issuer string, options ...IssuerOption) (*Issuer, error) {
	if keyring == nil {
		return nil, errors.New("[NewIssuer] keyring is required")
	}
	if keyring.Active() == nil {
		return nil, errors.New("[NewIssuer] keyring has no signing key")
	}
	if issuer == "" {
		return nil, errors.New("[NewIssuer] issuer is required")
	}

	iss := &Issuer{
		keyring:    keyring,
		issuer:     issuer,
		defaultTTL: DefaultTTL,
		nowFunc:    time.Now,
	}

	for _, opt := range options {
		opt(iss)
	}

	sessionVerifier, err := verify.New(keyring, issuer, issuer, verify.WithNowFunc(iss.nowFunc))
	if err != nil {
		return nil, errors.Wrap(err, "[NewIssuer] failed to build verifier")
	}
	iss.verifier = sessionVerifier

	return iss, nil
}

// Issue mints a signed session artifact for a verified subject. extra
// carries only the claims the caller deliberately opts into — nothing from
// the provider's ID token is embedded implicitly.
func (i *Issuer) Issue(subject string, extra map[string]any, ttl time.Duration) (*Session, string, error) {
	if subject == "" {
		return nil, "", errors.New("[Issuer.Issue] subject is required")
	}
	if ttl <= 0 {
		ttl = i.defaultTTL
	}

	now := i.nowFunc()
	session := &Session{
		ID:        uuid.New().String(),
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	claims := codec.Claims{
		"iss": i.issuer,
		"aud": i.issuer,
		"sub": session.Subject,
		"iat": session.IssuedAt.Unix(),
		"exp": session.ExpiresAt.Unix(),
		"jti": session.ID,
	}
	for name, value := range extra {
		if _, reserved := reservedClaims[name]; reserved {
			return nil, "", errors.Errorf("[Issuer.Issue] claim %q is reserved", name)
		}
		claims[name] = value
	}

	key := i.keyring.Active()
	method, err := signing.ForKey(key)
	if err != nil {
		return nil, "", errors.Wrap(err, "[Issuer.Issue] bad signing key")
	}

	header := codec.Header{
		Algorithm: key.Algorithm,
		Type:      "JWT",
		KeyID:     key.ID,
	}

	signingInput, err := codec.EncodeSigningInput(header, claims)
	if err != nil {
		return nil, "", errors.Wrap(err, "[Issuer.Issue] failed to encode")
	}

	signature, err := method.Sign(signingInput, key)
	if err != nil {
		return nil, "", errors.Wrap(err, "[Issuer.Issue] failed to sign")
	}

	return session, codec.AppendSignature(signingInput, signature), nil
}

// Verify validates a session artifact and returns its claims. The checks
// are the same structural pipeline as ID token verification, scoped to the
// self-issued key set and issuer value.
func (i *Issuer) Verify(wire string) (codec.Claims, error) {
	return i.verifier.Verify(wire, "")
}

// Rotate installs a new signing key. Sessions signed with the previous key
// keep verifying until grace elapses.
func (i *Issuer) Rotate(next *keys.SigningKey, grace time.Duration) error {
	return i.keyring.Rotate(next, grace)
}
