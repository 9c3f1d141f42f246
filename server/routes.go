package server

// Route paths
const (
	RouteLogin    = "/auth/login"
	RouteCallback = "/auth/callback"
	RouteLogout   = "/auth/logout"
	RouteSession  = "/auth/session"
	RouteHealth   = "/healthz"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.StdMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.StdMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.StdMiddleware()...)) // form_post response mode
	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.StdMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteSession, ChainMiddleware(s.SessionHandler(), append(s.StdMiddleware(), s.RequireSession)...))
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
}
