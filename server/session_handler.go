package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// SessionInfo is the JSON shape returned by the session endpoint.
type SessionInfo struct {
	Subject   string    `json:"subject"`
	SessionID string    `json:"session_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
}

// SessionHandler reports the authenticated session's claims. It only runs
// behind RequireSession, so a missing context entry is a server bug.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := SessionClaims(r.Context())
		if claims == nil {
			authenticationFailed(w)
			return
		}

		info := SessionInfo{
			Subject:   claims.Subject(),
			SessionID: claims.TokenID(),
		}
		if exp, ok := claims.ExpiresAt(); ok {
			info.ExpiresAt = exp
		}
		if email, ok := claims["email"].(string); ok {
			info.Email = email
		}
		if name, ok := claims["name"].(string); ok {
			info.Name = name
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(info); err != nil {
			log.Error().Err(err).Msg("failed to write session response")
		}
	}
}
