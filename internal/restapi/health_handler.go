package restapi

import (
	"encoding/json"
	"net/http"

	"tripranker.dev/internal/models"
)

// healthHandler reports whether the service can reach the reisinformatie API
// with credentials. It does not call upstream, so it never spends request budget.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if api.Application == nil || api.Planner == nil || !api.NSClient.Configured() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(models.HealthResponse{
			Status: "unavailable",
			Detail: "upstream client not configured",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(models.HealthResponse{Status: "ok"})
}
