package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-relay/token/codec"
	"github.com/jrsteele09/go-auth-relay/token/verify"
)

type contextKey string

const sessionClaimsKey contextKey = "sessionClaims"

// RequireSession verifies the session cookie and injects the verified
// claims into the request context. Requests without a valid session get
// an opaque 401.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			authenticationFailed(w)
			return
		}

		claims, err := s.issuer.Verify(cookie.Value)
		if err != nil {
			log.Warn().Str("reason", string(verify.ReasonOf(err))).Msg("session rejected")
			authenticationFailed(w)
			return
		}

		ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// SessionClaims returns the verified session claims stored by
// RequireSession, or nil when the request carries no session.
func SessionClaims(ctx context.Context) codec.Claims {
	claims, _ := ctx.Value(sessionClaimsKey).(codec.Claims)
	return claims
}
