package config

import (
	"fmt"
	"strings"
)

type Config interface {
	EnvConfig
	ProviderConfig
	SessionConfig
}

type mainConfig struct {
	EnvVars
	Provider
	Session
}

func New() Config {
	return mainConfig{}
}

// Validate checks the values that have no safe default. Anything security
// relevant (issuer, client credentials, redirect URI, session secret) must
// be configured explicitly; a missing value is a startup error, never a
// weaker fallback.
func Validate(c Config) error {
	missing := []string{}
	if c.GetProviderIssuer() == "" {
		missing = append(missing, providerIssuerVar)
	}
	if c.GetClientID() == "" {
		missing = append(missing, clientIDVar)
	}
	if c.GetClientSecret() == "" {
		missing = append(missing, clientSecretVar)
	}
	if c.GetRedirectURI() == "" {
		missing = append(missing, redirectURIVar)
	}
	if len(c.GetSessionSecret()) == 0 {
		missing = append(missing, sessionSecretVar)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if len(c.GetSessionSecret()) < 32 {
		return fmt.Errorf("%s must be at least 32 bytes", sessionSecretVar)
	}

	return nil
}
