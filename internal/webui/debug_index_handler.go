package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"ridehub.org/transit/internal/app"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// WebUI serves the debugging pages.
type WebUI struct {
	*app.Application
}

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "service":
		data = webUI.Transit.Stats()
		title = "Transit Queries - Terminal States"
	case "cache":
		data = webUI.QueryCache.Stats()
		title = "Query Cache - Counters"
	case "provider":
		data = webUI.Provider.Stats()
		title = "Provider - Calls"
	case "config":
		data = redactedConfig(webUI.Config)
		title = "Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: service, cache, provider, config.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
