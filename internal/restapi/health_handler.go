package restapi

import (
	"net/http"
	"time"

	"ridehub.org/transit/internal/models"
)

type healthData struct {
	Status        string `json:"status"`
	CacheReady    bool   `json:"cacheReady"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// healthHandler always answers 200: an unreachable cache degrades the
// service but queries still go to the provider.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	data := healthData{
		Status:     "ok",
		CacheReady: api.Transit.Ready(r.Context()),
	}
	if !data.CacheReady {
		data.Status = "degraded"
	}
	if !api.StartedAt.IsZero() {
		data.UptimeSeconds = int64(time.Since(api.StartedAt).Seconds())
	}

	api.sendResponse(w, r, models.NewOKResponse(data))
}
