package restapi

import (
	"net/http"
)

func (api *RestAPI) routeSearchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	itineraries, err := api.Transit.SearchRoute(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		api.queryErrorResponse(w, r, err)
		return
	}

	sendList(api, w, r, itineraries)
}
