package server

import (
	"github.com/jrsteele09/ga-dashboard/reports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("GET "+RouteAuthGoogle, ChainMiddleware(s.LoginHandler(), s.SessionMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthCallback, ChainMiddleware(s.CallbackHandler(), s.SessionMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.SessionMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthStatus, ChainMiddleware(s.StatusHandler(), s.APIMiddleware()...))

	// DATA (session must hold credentials)
	for _, name := range reports.Names() {
		s.RegisterRouteHandler("GET "+RouteAPIData+name, ChainMiddleware(s.ReportHandler(name), s.APIMiddleware(s.RequireCredentials())...))
	}
	s.RegisterRouteHandler("GET "+RouteAPIDashboard, ChainMiddleware(s.DashboardHandler(), s.APIMiddleware(s.RequireCredentials())...))

	// OPERATIONS
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.BaseMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, ChainMiddleware(promhttp.Handler().ServeHTTP, s.BaseMiddleware()...))

	// CORS preflight; the cors middleware answers before the handler runs
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(s.PreflightHandler(), s.BaseMiddleware(s.CorsMiddleware)...))
}
