package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/go-auth-relay/token/codec"
	"github.com/jrsteele09/go-auth-relay/token/verify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	defaultRequestTimeout = 15 * time.Minute
	defaultMaxAttempts    = 3
	defaultBackoffBase    = 200 * time.Millisecond
)

// ExchangeResult is the provider's token response. The raw ID token is
// consumed during the exchange (verified, then discarded by the caller) and
// must never be persisted or logged.
type ExchangeResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time

	// ReturnURL is carried over from the originating authorization request
	// so the caller can finish the redirect it started.
	ReturnURL string
}

// ExchangeFunc performs the server-to-server code exchange. It exists as a
// seam so tests can stand in for the provider's token endpoint.
type ExchangeFunc func(ctx context.Context, code string) (*oauth2.Token, error)

// Exchanger drives the authorization-code flow against one identity
// provider: it builds the authorization redirect and exchanges returned
// codes for verified identities. It is stateless apart from the injected
// request store and safe for concurrent use.
type Exchanger struct {
	oauthConfig    *oauth2.Config
	verifier       *verify.Verifier
	requests       RequestRepo
	requestTimeout time.Duration
	maxAttempts    int
	backoffBase    time.Duration
	exchange       ExchangeFunc
	nowFunc        func() time.Time
}

// ExchangerOption defines a function type to modify the Exchanger instance.
type ExchangerOption func(*Exchanger)

// WithNowFunc sets the time source (primarily for testing)
func WithNowFunc(now func() time.Time) ExchangerOption {
	return func(e *Exchanger) {
		e.nowFunc = now
	}
}

// WithRetryPolicy sets the bounded backoff applied to transient
// network failures of the token-endpoint call.
func WithRetryPolicy(maxAttempts int, backoffBase time.Duration) ExchangerOption {
	return func(e *Exchanger) {
		e.maxAttempts = maxAttempts
		e.backoffBase = backoffBase
	}
}

// WithRequestTimeout sets how long a pending authorization request stays
// consumable before the callback is rejected.
func WithRequestTimeout(d time.Duration) ExchangerOption {
	return func(e *Exchanger) {
		e.requestTimeout = d
	}
}

// WithExchangeFunc replaces the token-endpoint call (primarily for testing)
func WithExchangeFunc(fn ExchangeFunc) ExchangerOption {
	return func(e *Exchanger) {
		e.exchange = fn
	}
}

// NewExchanger creates an Exchanger for the given provider and client
// registration. The scopes must include "openid"; the response type is
// fixed to "code" — implicit variants that hand tokens to a user agent are
// deliberately unsupported.
func NewExchanger(provider *Provider, clientID, clientSecret, redirectURI string, scopes []string, requestVerifier *verify.Verifier, requests RequestRepo, options ...ExchangerOption) (*Exchanger, error) {
	if provider == nil {
		return nil, errors.New("[NewExchanger] provider is required")
	}
	if clientID == "" {
		return nil, errors.New("[NewExchanger] clientID is required")
	}
	if clientSecret == "" {
		return nil, errors.New("[NewExchanger] clientSecret is required")
	}
	if redirectURI == "" {
		return nil, errors.New("[NewExchanger] redirectURI is required")
	}
	if requestVerifier == nil {
		return nil, errors.New("[NewExchanger] verifier is required")
	}
	if requests == nil {
		return nil, errors.New("[NewExchanger] request repo is required")
	}
	if !containsScope(scopes, "openid") {
		return nil, errors.New("[NewExchanger] scopes must include openid")
	}

	e := &Exchanger{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  redirectURI,
			Scopes:       scopes,
		},
		verifier:       requestVerifier,
		requests:       requests,
		requestTimeout: defaultRequestTimeout,
		maxAttempts:    defaultMaxAttempts,
		backoffBase:    defaultBackoffBase,
		nowFunc:        time.Now,
	}
	e.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return e.oauthConfig.Exchange(ctx, code)
	}

	for _, opt := range options {
		opt(e)
	}

	return e, nil
}

// BuildAuthorizationURL generates a fresh authorization request, stores it
// keyed by state, and returns the provider redirect URL carrying
// response_type=code, the configured client and scopes, and the generated
// state and nonce.
func (e *Exchanger) BuildAuthorizationURL(returnURL string) (string, *AuthorizationRequest, error) {
	req := NewAuthorizationRequest(e.oauthConfig.RedirectURL, returnURL, e.nowFunc())

	if err := e.requests.Upsert(req.State, req); err != nil {
		return "", nil, errors.Wrap(err, "[Exchanger.BuildAuthorizationURL] failed to store request")
	}

	authURL := e.oauthConfig.AuthCodeURL(req.State, oauth2.SetAuthURLParam("nonce", req.Nonce))
	return authURL, req, nil
}

// Exchange redeems an authorization code for a verified identity.
//
// The state is checked and invalidated atomically before any network call,
// so a replayed callback fails with StateMismatchErr even when it races a
// live one. The provider's ID token is verified against the request nonce;
// any verification failure is fatal to the login attempt and no identity is
// returned. The request-side nonce is gone either way — consumption is not
// conditional on success.
func (e *Exchanger) Exchange(ctx context.Context, code, receivedState string) (*ExchangeResult, codec.Claims, error) {
	if code == "" {
		return nil, nil, errors.Wrap(ExchangeFailedErr, "[Exchanger.Exchange] missing code")
	}
	if receivedState == "" {
		return nil, nil, errors.Wrap(StateMismatchErr, "[Exchanger.Exchange] missing state")
	}

	req, err := e.requests.Consume(receivedState)
	if err != nil {
		return nil, nil, errors.Wrap(StateMismatchErr, "[Exchanger.Exchange] no pending request for state")
	}

	if e.nowFunc().Sub(req.CreatedAt) > e.requestTimeout {
		return nil, nil, errors.Wrap(StateMismatchErr, "[Exchanger.Exchange] authorization request expired")
	}

	oauthToken, err := e.exchangeWithRetry(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	rawIDToken, ok := oauthToken.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, nil, errors.Wrap(MissingIDTokenErr, "[Exchanger.Exchange] token response")
	}

	claims, err := e.verifier.Verify(rawIDToken, req.Nonce)
	if err != nil {
		log.Warn().Str("reason", string(verify.ReasonOf(err))).Msg("id token rejected")
		return nil, nil, errors.Wrap(err, "[Exchanger.Exchange] id token verification failed")
	}

	return &ExchangeResult{
		AccessToken:  oauthToken.AccessToken,
		RefreshToken: oauthToken.RefreshToken,
		TokenType:    oauthToken.TokenType,
		Expiry:       oauthToken.Expiry,
		ReturnURL:    req.ReturnURL,
	}, claims, nil
}

// exchangeWithRetry performs the token-endpoint call, retrying only
// transient network failures with bounded exponential backoff. Provider
// rejections are terminal: an expired or reused code can never succeed on
// retry.
func (e *Exchanger) exchangeWithRetry(ctx context.Context, code string) (*oauth2.Token, error) {
	backoff := e.backoffBase
	var lastErr error

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		token, err := e.exchange(ctx, code)
		if err == nil {
			return token, nil
		}

		if providerErr, terminal := classifyExchangeError(err); terminal {
			return nil, errors.Wrap(ExchangeFailedErr, providerErr)
		}
		lastErr = err

		if attempt == e.maxAttempts {
			break
		}

		log.Debug().Int("attempt", attempt).Err(err).Msg("token endpoint call failed, backing off")
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(TransientNetworkErr, ctx.Err().Error())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, errors.Wrapf(TransientNetworkErr, "after %d attempts: %v", e.maxAttempts, lastErr)
}

func containsScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}
