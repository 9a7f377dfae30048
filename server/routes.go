package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// Proxy routes take every method so non-POST requests get the 405 and Allow header.
	s.RegisterRouteHandler(RouteAuthenticate, ChainMiddleware(s.AuthenticateHandler(), s.ProxyMiddleware(RouteAuthenticate)...))
	s.RegisterRouteHandler(RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.ProxyMiddleware(RouteRefresh)...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
}
