package server

// Route path constants
const (
	// Token exchange proxy
	RouteAuthenticate = "/auth/authenticate"
	RouteRefresh      = "/auth/refresh"

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
