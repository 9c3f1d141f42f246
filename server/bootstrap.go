package server

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-relay/auth"
	"github.com/jrsteele09/go-auth-relay/auth/flowrepo"
	"github.com/jrsteele09/go-auth-relay/internal/config"
	"github.com/jrsteele09/go-auth-relay/sessions"
	"github.com/jrsteele09/go-auth-relay/token/keys"
	"github.com/jrsteele09/go-auth-relay/token/verify"
)

// sessionIssuer is the iss claim stamped into locally minted session
// artifacts. It never matches a provider issuer, so a provider ID token
// can not be replayed as a session.
const sessionIssuer = "go-auth-relay"

const (
	keyRefreshInterval  = 15 * time.Minute
	requestPurgeMaxAge  = 15 * time.Minute
	providerHTTPTimeout = 10 * time.Second
)

// Bootstrap builds the full pipeline from configuration: provider
// discovery, JWKS fetch, verifier, code exchanger and session issuer.
// The returned server is ready to serve; background key refresh and
// request purging stop when ctx is cancelled.
func Bootstrap(ctx context.Context, cfg config.Config) (*Server, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "[Bootstrap] invalid configuration")
	}

	provider, err := auth.Discover(ctx, cfg.GetProviderIssuer())
	if err != nil {
		return nil, errors.Wrap(err, "[Bootstrap] provider discovery failed")
	}

	httpClient := &http.Client{Timeout: providerHTTPTimeout}
	providerKeys, err := provider.FetchKeys(ctx, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "[Bootstrap] provider key fetch failed")
	}
	providerKeyring := keys.NewVerifyOnlyKeyring(providerKeys...)

	verifier, err := verify.New(
		providerKeyring,
		provider.Issuer,
		cfg.GetClientID(),
		verify.WithLeeway(cfg.GetClockSkewTolerance()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[Bootstrap] verifier setup failed")
	}

	requests := flowrepo.NewInMemoryRepo()
	exchanger, err := auth.NewExchanger(
		provider,
		cfg.GetClientID(),
		cfg.GetClientSecret(),
		cfg.GetRedirectURI(),
		cfg.GetScopes(),
		verifier,
		requests,
		auth.WithRetryPolicy(cfg.GetExchangeMaxAttempts(), cfg.GetExchangeBackoffBase()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[Bootstrap] exchanger setup failed")
	}

	issuer, err := buildSessionIssuer(cfg, time.Now())
	if err != nil {
		return nil, err
	}

	srv, err := New(cfg, exchanger, issuer)
	if err != nil {
		return nil, err
	}

	go maintenanceLoop(ctx, cfg, provider, httpClient, providerKeyring, requests, issuer)

	return srv, nil
}

// buildSessionIssuer derives the day's session signing key from the master
// secret. Yesterday's key joins the keyring verify-only for the grace
// window, so sessions issued shortly before midnight survive a restart.
func buildSessionIssuer(cfg config.Config, now time.Time) (*sessions.Issuer, error) {
	active, err := sessionKeyForDay(cfg.GetSessionSecret(), now)
	if err != nil {
		return nil, errors.Wrap(err, "[Bootstrap] session key derivation failed")
	}

	previous, err := sessionKeyForDay(cfg.GetSessionSecret(), now.AddDate(0, 0, -1))
	if err != nil {
		return nil, errors.Wrap(err, "[Bootstrap] session key derivation failed")
	}
	previous.NotAfter = now.UTC().Truncate(24 * time.Hour).Add(cfg.GetKeyGraceWindow())

	sessionKeyring, err := keys.NewKeyring(active, previous)
	if err != nil {
		return nil, errors.Wrap(err, "[Bootstrap] session keyring setup failed")
	}

	issuer, err := sessions.NewIssuer(
		sessionKeyring,
		sessionIssuer,
		sessions.WithDefaultTTL(cfg.GetSessionTTL()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[Bootstrap] session issuer setup failed")
	}
	return issuer, nil
}

// sessionKeyForDay derives a deterministic per-day key, so every process
// sharing the master secret signs with the same key on the same day.
func sessionKeyForDay(secret []byte, day time.Time) (*keys.SigningKey, error) {
	return keys.DeriveHMACKey(secret, "session-"+day.UTC().Format("2006-01-02"), keys.HS256)
}

// maintenanceLoop periodically re-fetches the provider's published keys,
// drops stale authorization requests that were never completed, and rolls
// the session signing key over when the day changes.
func maintenanceLoop(ctx context.Context, cfg config.Config, provider *auth.Provider, client *http.Client, keyring *keys.Keyring, requests auth.RequestRepo, issuer *sessions.Issuer) {
	ticker := time.NewTicker(keyRefreshInterval)
	defer ticker.Stop()

	currentDay := time.Now().UTC().Format("2006-01-02")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := provider.RefreshKeys(ctx, client, keyring); err != nil {
				log.Warn().Err(err).Msg("provider key refresh failed, keeping previous keys")
			}
			if purged := requests.PurgeExpired(time.Now().Add(-requestPurgeMaxAge)); purged > 0 {
				log.Debug().Int("purged", purged).Msg("expired authorization requests removed")
			}

			if day := time.Now().UTC().Format("2006-01-02"); day != currentDay {
				next, err := sessionKeyForDay(cfg.GetSessionSecret(), time.Now())
				if err != nil {
					log.Error().Err(err).Msg("session key rollover failed, keeping previous key")
					continue
				}
				if err := issuer.Rotate(next, cfg.GetKeyGraceWindow()); err != nil {
					log.Error().Err(err).Msg("session key rollover failed, keeping previous key")
					continue
				}
				currentDay = day
				log.Info().Str("kid", next.ID).Msg("session signing key rotated")
			}
		}
	}
}
