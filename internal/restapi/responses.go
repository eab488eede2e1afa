package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"tripranker.dev/internal/models"
)

func setJSONResponseType(w *http.ResponseWriter) {
	(*w).Header().Set("Content-Type", "application/json")
}

func (api *RestAPI) sendJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	setJSONResponseType(&w)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		api.Logger.Debug("failed to write response", "error", err, "path", r.URL.Path)
	}
}

func (api *RestAPI) sendError(w http.ResponseWriter, r *http.Request, code int, message string) {
	writeErrorResponse(w, api.Logger, models.NewErrorResponse(code, message, r.URL.Path, api.Clock))
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request, message string) {
	api.sendError(w, r, http.StatusNotFound, message)
}

func writeErrorResponse(w http.ResponseWriter, logger *slog.Logger, response models.ErrorResponse) {
	setJSONResponseType(&w)
	w.WriteHeader(response.Code)
	if err := json.NewEncoder(w).Encode(response); err != nil && logger != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}
