package restapi

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Trip rankings depend on live crowd forecasts, so shared caches keep them briefly.
const tripResponseMaxAge = 30

// SetRoutes registers every endpoint on mux. Only the trip endpoints are
// counted by the rate limiter.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	limited := func(h http.HandlerFunc) http.Handler {
		return api.rateLimiter.Handler()(CacheControlMiddleware(tripResponseMaxAge, h))
	}

	mux.Handle("GET /api/v3/optimal", limited(api.optimalHandler))
	mux.Handle("GET /api/v3/comfort", limited(api.comfortHandler))

	mux.Handle("GET /healthz", CacheControlMiddleware(0, http.HandlerFunc(api.healthHandler)))

	if api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{
			ErrorLog: slog.NewLogLogger(api.Logger.Handler(), slog.LevelError),
		}))
	}

	mux.HandleFunc("/", api.endpointNotFoundHandler)
}

// WithMiddleware wraps the router in the middleware shared by every endpoint.
// Metrics sit closest to the mux so the matched route pattern is visible.
func (api *RestAPI) WithMiddleware(mux http.Handler) http.Handler {
	handler := MetricsHandler(api.Metrics)(mux)
	handler = CompressionMiddleware(handler)
	handler = NewRequestLoggingMiddleware(api.Logger, api.Config.TrustProxyHeaders)(handler)
	return RequestIDMiddleware(handler)
}

func (api *RestAPI) endpointNotFoundHandler(w http.ResponseWriter, r *http.Request) {
	api.sendNotFound(w, r, "Endpoint not found")
}
