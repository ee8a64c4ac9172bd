// Package middleware provides the HTTP middleware used by the eyeball API.
//
// Files are organised by concern:
//
//   - recovery.go: panic recovery
//   - logging.go: structured request logging
//   - request_id.go: request ID generation and propagation
//   - cors.go: Cross-Origin Resource Sharing
//   - security_headers.go: browser hardening headers
//   - body_limit.go: request body size limits
//   - metrics.go: Prometheus request metrics labelled by route name
//
// Every middleware has the shape func(http.Handler) http.Handler and can be
// chained:
//
//	handler := middleware.PanicRecovery(logger)(mux)
//	handler = middleware.Metrics(registry, routes)(handler)
//	handler = middleware.Logging(logger, middleware.GetRequestID)(handler)
//	handler = middleware.RequestID()(handler)
//	handler = middleware.CORS(middleware.DefaultCORSConfig())(handler)
package middleware
