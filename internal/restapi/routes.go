package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

// protected applies the per-key rate limit and the API key check.
func (api *RestAPI) protected(h handlerFunc) http.Handler {
	next := validateAPIKey(api, h)
	if api.rateLimiter == nil {
		return next
	}
	return api.rateLimiter.Handler(next)
}

// SetRoutes registers the transit API on router.
func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/transit/routes", api.protected(api.routeSearchHandler))
	router.Handler(http.MethodGet, "/api/transit/stations", api.protected(api.stationSearchHandler))
	router.Handler(http.MethodGet, "/api/transit/stations/nearby", api.protected(api.nearbyStationsHandler))
	router.Handler(http.MethodGet, "/api/transit/departures/:station", api.protected(api.departuresHandler))
	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}

// Handler wraps router in the middleware chain shared by every route.
func (api *RestAPI) Handler(router http.Handler) http.Handler {
	var h http.Handler = router
	h = CompressionMiddleware(h)
	h = corsMiddleware(api.Config.Server.CORSOrigins)(h)
	h = securityHeaders(h)
	h = NewRequestLoggingMiddleware(api.Logger)(h)
	return h
}
