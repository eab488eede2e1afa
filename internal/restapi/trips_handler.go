package restapi

import (
	"net/http"
)

func (api *RestAPI) optimalHandler(w http.ResponseWriter, r *http.Request) {
	req, fieldErrors := api.parseTripRequest(r)
	if fieldErrors != nil {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	trip, err := api.Planner.MostOptimal(r.Context(), req)
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}
	if trip == nil {
		api.sendNotFound(w, r, "No optimal trip found")
		return
	}

	api.sendJSON(w, r, http.StatusOK, trip)
}

func (api *RestAPI) comfortHandler(w http.ResponseWriter, r *http.Request) {
	req, fieldErrors := api.parseTripRequest(r)
	if fieldErrors != nil {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	trips, err := api.Planner.ByComfort(r.Context(), req)
	if err != nil {
		api.errorResponse(w, r, err)
		return
	}
	if len(trips) == 0 {
		api.sendNotFound(w, r, "No trips found")
		return
	}

	api.sendJSON(w, r, http.StatusOK, trips)
}
