package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// LoginHandler starts a login attempt: it generates a fresh authorization
// request and redirects the user agent to the provider.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnURL := r.URL.Query().Get("return_to")
		if !safeReturnURL(returnURL) {
			returnURL = "/"
		}

		authURL, req, err := s.exchanger.BuildAuthorizationURL(returnURL)
		if err != nil {
			log.Error().Err(err).Msg("failed to build authorization URL")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		log.Debug().Str("state", req.State).Msg("login redirect issued")
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// safeReturnURL only accepts local absolute paths, preventing open
// redirects via the return_to parameter.
func safeReturnURL(u string) bool {
	return len(u) > 0 && u[0] == '/' && (len(u) == 1 || u[1] != '/')
}
