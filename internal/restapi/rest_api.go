package restapi

import (
	"github.com/go-playground/validator/v10"
	"tripranker.dev/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
	validate    *validator.Validate
}

// NewRestAPI creates a RestAPI with its own request counter.
func NewRestAPI(app *app.Application) *RestAPI {
	cfg := app.Config
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(RateLimitConfig{
			Limit:             cfg.RateLimit,
			Window:            cfg.RateLimitWindow,
			ResetAll:          cfg.RateLimitResetAll,
			ExemptAddresses:   cfg.ExemptAddresses,
			TrustProxyHeaders: cfg.TrustProxyHeaders,
		}, app.Clock, app.Metrics, app.Logger),
		validate: newValidator(),
	}
}

// RateLimitCounts exposes the request counters for the debug pages.
func (api *RestAPI) RateLimitCounts() map[string]int {
	return api.rateLimiter.Counts()
}

// Shutdown stops background work owned by the API.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}
