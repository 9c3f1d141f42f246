package config

import "time"

const sessionSecretVar = "SESSION_SECRET"

type SessionConfig interface {
	GetSessionSecret() []byte
	GetSessionTTL() time.Duration
	GetKeyGraceWindow() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionSecret() []byte {
	return []byte(GetEnv(sessionSecretVar, ""))
}

func (Session) GetSessionTTL() time.Duration {
	return 30 * time.Minute
}

// GetKeyGraceWindow is how long a retired session key keeps verifying after
// rotation. It should be at least the session TTL or rotation logs users out.
func (Session) GetKeyGraceWindow() time.Duration {
	return 45 * time.Minute
}
