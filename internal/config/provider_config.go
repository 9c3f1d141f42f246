package config

import (
	"strings"
	"time"
)

const (
	providerIssuerVar = "PROVIDER_ISSUER"
	clientIDVar       = "CLIENT_ID"
	clientSecretVar   = "CLIENT_SECRET"
	redirectURIVar    = "REDIRECT_URI"
	scopesVar         = "SCOPES"
)

type ProviderConfig interface {
	GetProviderIssuer() string
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetScopes() []string
	GetClockSkewTolerance() time.Duration
	GetExchangeMaxAttempts() int
	GetExchangeBackoffBase() time.Duration
}

type Provider struct{}

var _ ProviderConfig = Provider{}

func (Provider) GetProviderIssuer() string {
	return GetEnv(providerIssuerVar, "")
}

func (Provider) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

func (Provider) GetClientSecret() string {
	return GetEnv(clientSecretVar, "")
}

func (Provider) GetRedirectURI() string {
	return GetEnv(redirectURIVar, "")
}

func (Provider) GetScopes() []string {
	return strings.Fields(GetEnv(scopesVar, "openid profile email"))
}

func (Provider) GetClockSkewTolerance() time.Duration {
	return 60 * time.Second
}

func (Provider) GetExchangeMaxAttempts() int {
	return 3
}

func (Provider) GetExchangeBackoffBase() time.Duration {
	return 200 * time.Millisecond
}
