package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// CallbackHandler receives the provider redirect, exchanges the code for a
// verified identity and mints the local session. It accepts both GET
// (query response mode) and POST (form_post); r.FormValue covers both.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")

		if errorParam != "" {
			// The provider declined; error_description stays out of the
			// response on purpose.
			log.Warn().Str("error", errorParam).Str("error_description", r.FormValue("error_description")).Msg("provider returned authorization error")
			authenticationFailed(w)
			return
		}

		if code == "" || state == "" {
			authenticationFailed(w)
			return
		}

		result, claims, err := s.exchanger.Exchange(r.Context(), code, state)
		if err != nil {
			log.Warn().Err(err).Msg("code exchange rejected")
			authenticationFailed(w)
			return
		}

		// Only identity basics cross into the session; provider tokens and
		// the remaining ID token claims are dropped here.
		extra := map[string]any{}
		if email, ok := claims["email"].(string); ok {
			extra["email"] = email
		}
		if name, ok := claims["name"].(string); ok {
			extra["name"] = name
		}

		session, artifact, err := s.issuer.Issue(claims.Subject(), extra, s.config.GetSessionTTL())
		if err != nil {
			log.Error().Err(err).Msg("failed to issue session")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		maxAge := int(time.Until(session.ExpiresAt).Seconds())
		s.SetSessionCookie(w, r, artifact, maxAge)

		log.Info().
			Str("sub", session.Subject).
			Str("session_id", session.ID).
			Time("provider_token_expiry", result.Expiry).
			Msg("session issued")

		returnTo := result.ReturnURL
		if !safeReturnURL(returnTo) {
			returnTo = "/"
		}
		http.Redirect(w, r, returnTo, http.StatusFound)
	}
}
