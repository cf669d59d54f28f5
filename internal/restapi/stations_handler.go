package restapi

import (
	"net/http"

	"ridehub.org/transit/internal/utils"
)

// DefaultNearbyRadius applies when a proximity search names no radius.
const DefaultNearbyRadius = 1000.0

func (api *RestAPI) stationSearchHandler(w http.ResponseWriter, r *http.Request) {
	stations, err := api.Transit.SearchStations(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		api.queryErrorResponse(w, r, err)
		return
	}

	sendList(api, w, r, stations)
}

func (api *RestAPI) nearbyStationsHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	lat, fieldErrors := utils.RequireFloatParam(queryParams, "lat", nil)
	lon, _ := utils.RequireFloatParam(queryParams, "lon", fieldErrors)
	radius, _ := utils.ParseFloatParam(queryParams, "radius", fieldErrors)

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	if queryParams.Get("radius") == "" {
		radius = DefaultNearbyRadius
	}

	stations, err := api.Transit.SearchNearbyStations(r.Context(), lat, lon, radius)
	if err != nil {
		api.queryErrorResponse(w, r, err)
		return
	}

	sendList(api, w, r, stations)
}
