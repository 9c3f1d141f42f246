package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// LogoutHandler clears the session cookie. The session artifact itself
// stays valid until it expires, so the TTL bounds the exposure window.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ClearSessionCookie(w, r)
		log.Debug().Msg("session cookie cleared")
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// HealthHandler reports process liveness.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
