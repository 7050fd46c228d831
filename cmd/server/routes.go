package main

import (
	"net/http"

	"github.com/helsedok/dokjournal/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes configures the HTTP routes and middleware stack for the service.
func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/journalforing", app.handler.Journal)

	mux.HandleFunc("GET /healthz", handleHealthCheck)
	mux.HandleFunc("GET /readyz", handleHealthCheck)
	mux.Handle("GET /metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	var handler http.Handler = mux
	handler = middleware.Logger(app.logger)(handler)
	handler = middleware.RequestID()(handler)
	return handler
}

// handleHealthCheck responds with OK status for health monitoring.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
