package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-relay/auth"
	"github.com/jrsteele09/go-auth-relay/internal/config"
	"github.com/jrsteele09/go-auth-relay/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Server is the thin HTTP layer in front of the token pipeline: it owns
// routing, cookies and redirects, and delegates every trust decision to the
// exchanger and the session issuer.
type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	exchanger *auth.Exchanger
	issuer    *sessions.Issuer
}

func New(cfg config.Config, exchanger *auth.Exchanger, issuer *sessions.Issuer) (*Server, error) {
	if exchanger == nil {
		return nil, errors.New("[Server New] exchanger is required")
	}
	if issuer == nil {
		return nil, errors.New("[Server New] session issuer is required")
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		exchanger: exchanger,
		issuer:    issuer,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) == 2 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		}
	}
}
