package restapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ridehub.org/transit/internal/logging"
	"ridehub.org/transit/internal/models"
	"ridehub.org/transit/internal/query"
)

// ambiguityData is the payload of a 409 response.
type ambiguityData struct {
	Endpoints  []string            `json:"endpoints"`
	Candidates map[string][]string `json:"candidates"`
}

// invalidAPIKeyResponse sends a 401 Unauthorized response with the required format
// for invalid API key errors
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Code        int    `json:"code"`
		CurrentTime int64  `json:"currentTime"`
		Text        string `json:"text"`
		Version     int    `json:"version"`
	}{
		Code:        http.StatusUnauthorized,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "permission denied",
		Version:     2,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		api.Logger.Error("failed to encode invalid API key response", "error", err)
	}
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("path", r.URL.Path))
	api.sendStatus(w, r, http.StatusInternalServerError,
		models.NewResponse(http.StatusInternalServerError, nil, "internal server error"))
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		Code        int                 `json:"code"`
		CurrentTime int64               `json:"currentTime"`
		Text        string              `json:"text"`
		Version     int                 `json:"version"`
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		Code:        http.StatusBadRequest,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "invalid input",
		Version:     2,
		FieldErrors: fieldErrors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		api.Logger.Error("failed to encode validation error response", "error", err)
	}
}

// queryErrorResponse maps a query.Error kind onto its HTTP status.
func (api *RestAPI) queryErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var qerr *query.Error
	if !errors.As(err, &qerr) {
		api.serverErrorResponse(w, r, err)
		return
	}

	switch qerr.Kind {
	case query.KindInvalidInput:
		api.validationErrorResponse(w, r, qerr.Fields)
	case query.KindAmbiguousLocation:
		data := ambiguityData{Endpoints: qerr.Endpoints, Candidates: qerr.Candidates}
		if data.Candidates == nil {
			data.Candidates = map[string][]string{}
		}
		api.sendStatus(w, r, http.StatusConflict,
			models.NewResponse(http.StatusConflict, data, "ambiguous location"))
	case query.KindNotFound:
		text := "station not found"
		if qerr.Detail != "" {
			text = qerr.Detail
		}
		api.sendStatus(w, r, http.StatusNotFound, models.NewResponse(http.StatusNotFound, nil, text))
	case query.KindUpstreamUnavailable:
		status := http.StatusBadGateway
		text := "transit provider unavailable"
		if qerr.Timeout {
			status = http.StatusGatewayTimeout
			text = "transit provider timed out"
		}
		api.sendStatus(w, r, status, models.NewResponse(status, nil, text))
	default:
		api.serverErrorResponse(w, r, err)
	}
}
