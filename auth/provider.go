package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-auth-relay/token/keys"
	"golang.org/x/oauth2"
)

// Provider describes the identity provider endpoints the exchanger talks
// to. Populate it via Discover or statically from configuration.
type Provider struct {
	Issuer                string
	AuthorizationEndpoint string
	TokenEndpoint         string
	JWKSURI               string
}

// Discover resolves provider endpoints via OpenID Connect discovery
// (/.well-known/openid-configuration on the issuer).
func Discover(ctx context.Context, issuer string) (*Provider, error) {
	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery failed: %w", err)
	}

	var meta struct {
		Issuer        string `json:"issuer"`
		Authorization string `json:"authorization_endpoint"`
		Token         string `json:"token_endpoint"`
		JWKSURI       string `json:"jwks_uri"`
	}
	if err := oidcProvider.Claims(&meta); err != nil {
		return nil, fmt.Errorf("invalid discovery metadata: %w", err)
	}

	missing := []string{}
	if meta.Authorization == "" {
		missing = append(missing, "authorization_endpoint")
	}
	if meta.Token == "" {
		missing = append(missing, "token_endpoint")
	}
	if meta.JWKSURI == "" {
		missing = append(missing, "jwks_uri")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("discovery incomplete: missing %s", strings.Join(missing, ", "))
	}

	return &Provider{
		Issuer:                meta.Issuer,
		AuthorizationEndpoint: meta.Authorization,
		TokenEndpoint:         meta.Token,
		JWKSURI:               meta.JWKSURI,
	}, nil
}

// Endpoint returns the provider endpoints in x/oauth2 form.
func (p *Provider) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  p.AuthorizationEndpoint,
		TokenURL: p.TokenEndpoint,
	}
}

// FetchKeys downloads and parses the provider's published JWKS into
// verify-only signing keys.
func (p *Provider) FetchKeys(ctx context.Context, client *http.Client) ([]*keys.SigningKey, error) {
	if p.JWKSURI == "" {
		return nil, fmt.Errorf("provider %s has no jwks_uri", p.Issuer)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.JWKSURI, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build JWKS request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read JWKS response: %w", err)
	}

	return keys.ParseJWKS(body)
}

// RefreshKeys fetches the provider key set and installs it atomically into
// keyring. In-flight verifications keep the snapshot they started with.
func (p *Provider) RefreshKeys(ctx context.Context, client *http.Client, keyring *keys.Keyring) error {
	fetched, err := p.FetchKeys(ctx, client)
	if err != nil {
		return err
	}
	keyring.Replace(fetched)
	return nil
}
