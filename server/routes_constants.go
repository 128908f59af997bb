package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthGoogle   = "/auth/google"
	RouteAuthCallback = "/auth/google/callback"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthStatus   = "/auth/status"

	// API Routes
	RouteAPIData      = "/api/data/" // + report name
	RouteAPIDashboard = "/api/dashboard"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
