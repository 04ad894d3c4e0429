package app

import (
	"context"
	"net/http"
	"time"

	"busmonitor.luzern.ch/internal/middleware"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
)

// Routes registers all endpoints and returns the final http.Handler.
//
// The three /api endpoints read only from the snapshot store and the static
// configuration; none of them ever triggers a fetch. /metrics serves the
// Prometheus exposition through a short-lived cache. Unknown paths and
// methods get 404/405 from the router itself.
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/api/status", app.statusHandler)
	router.HandlerFunc(http.MethodGet, "/api/bus_departures", app.busDeparturesHandler)
	router.HandlerFunc(http.MethodGet, "/api/routes", app.routesHandler)
	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, 10*time.Second))

	handler := middleware.RequestID(router)
	handler = middleware.CORS(handler)
	handler = middleware.SecurityHeaders(handler)
	return middleware.SentryMiddleware(handler)
}
