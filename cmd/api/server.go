package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"ridehub.org/transit/internal/app"
	"ridehub.org/transit/internal/restapi"
	"ridehub.org/transit/internal/webui"
)

// newServer wires the API and debug routes into an http.Server. The returned
// func releases the API's background work.
func newServer(application *app.Application) (*http.Server, func()) {
	api := restapi.NewRestAPI(application)

	router := httprouter.New()
	api.SetRoutes(router)
	ui := &webui.WebUI{Application: application}
	ui.SetWebUIRoutes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", application.Config.Server.Port),
		Handler:      api.Handler(router),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(application.Logger.Handler(), slog.LevelError),
	}
	return srv, api.Close
}
