package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"ridehub.org/transit/internal/appconf"
)

// SetWebUIRoutes registers the debug pages. They are never served in production.
func (webUI *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	if webUI.Config.Environment() == appconf.Production {
		return
	}
	router.HandlerFunc(http.MethodGet, "/debug/", webUI.debugIndexHandler)
}
