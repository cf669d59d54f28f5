package restapi

import (
	"encoding/json"
	"net/http"

	"ridehub.org/transit/internal/models"
)

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	api.sendStatus(w, r, http.StatusOK, response)
}

func (api *RestAPI) sendStatus(w http.ResponseWriter, r *http.Request, status int, response models.ResponseModel) {
	setJSONResponseType(&w)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.Logger.Error("failed to encode response", "error", err, "path", r.URL.Path)
	}
}

// sendList wraps items in a list envelope. A nil slice is sent as [].
func sendList[T any](api *RestAPI, w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	api.sendResponse(w, r, models.NewListResponse(items, len(items)))
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request) {
	api.sendStatus(w, r, http.StatusNotFound, models.NewResponse(http.StatusNotFound, nil, "resource not found"))
}

func setJSONResponseType(w *http.ResponseWriter) {
	(*w).Header().Set("Content-Type", "application/json")
}
