// Package webui serves HTML debug pages that dump live service state.
package webui

import (
	"net/http"

	"tripranker.dev/internal/app"
)

// RateLimitSource exposes the per-address request counters.
type RateLimitSource interface {
	RateLimitCounts() map[string]int
}

type WebUI struct {
	*app.Application
	RateLimits RateLimitSource
}

// SetWebUIRoutes registers the debug pages on mux.
func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug", webUI.debugIndexHandler)
}
