package restapi

import (
	"net/http"

	"ridehub.org/transit/internal/utils"
)

func (api *RestAPI) departuresHandler(w http.ResponseWriter, r *http.Request) {
	station := utils.ExtractIDFromParams(r, "station")

	departures, err := api.Transit.GetDepartures(r.Context(), station)
	if err != nil {
		api.queryErrorResponse(w, r, err)
		return
	}

	sendList(api, w, r, departures)
}
