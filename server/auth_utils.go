package server

import (
	"net/http"
)

// sessionCookieName is the cookie carrying the signed session artifact.
const sessionCookieName = "relay_session"

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, artifact string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    artifact,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// authenticationFailed is the single opaque outcome every rejected login
// attempt maps to. The specific reason goes to server logs only, never to
// the user agent.
func authenticationFailed(w http.ResponseWriter) {
	http.Error(w, "authentication failed", http.StatusUnauthorized)
}
