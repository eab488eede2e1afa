package restapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"tripranker.dev/internal/logging"
	"tripranker.dev/internal/nsapi"
)

const unknownErrorMessage = "An unknown error occurred"

// errorResponse maps an error from the ranking layer to a response. Only
// upstream messages reach the client; everything else is logged and replaced
// by a generic message.
func (api *RestAPI) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logger := api.requestLogger(r)

	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		logger.Debug("client went away before the response was ready", slog.String("path", r.URL.Path))
		return
	}

	var upstreamErr *nsapi.UpstreamError
	if errors.As(err, &upstreamErr) {
		logging.LogError(logger, "upstream request failed", err,
			slog.String("path", r.URL.Path),
			slog.Int("upstream_status", upstreamErr.StatusCode))
		api.sendError(w, r, http.StatusInternalServerError, "[NS API ERROR] "+upstreamErr.Message)
		return
	}

	api.serverErrorResponse(w, r, err)
}

// requestLogger returns the logger NewRequestLoggingMiddleware stored for r,
// which carries the request id. Outside that middleware it tags api.Logger.
func (api *RestAPI) requestLogger(r *http.Request) *slog.Logger {
	if logging.HasLogger(r.Context()) {
		return logging.FromContext(r.Context())
	}
	return api.Logger.With(slog.String("request_id", GetRequestID(r.Context())))
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.requestLogger(r), "internal server error", err,
		slog.String("path", r.URL.Path))
	api.sendError(w, r, http.StatusInternalServerError, unknownErrorMessage)
}

// validationErrorResponse sends a 400 naming every invalid field.
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(fieldErrors[field], ", "))
	}

	api.sendError(w, r, http.StatusBadRequest, "Invalid query: "+strings.Join(parts, "; "))
}
