package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/konflabs/konf-server/internal/api/middleware"
)

// SetupRouter builds the chi router for app. snapshotMode selects between
// the filesystem and snapshot (git) route shapes for GET /data (§6):
// filesystem mode has no :commit segment and ignores the token header.
func (app *Application) SetupRouter(snapshotMode bool) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	r.Get("/live", app.liveHandler)
	r.Get("/metrics", app.metricsHandler)
	r.Post("/reload", app.reloadHandler)

	if snapshotMode {
		r.Get("/data/{commit}/{format}/*", app.dataHandler)
	} else {
		r.Get("/data/{format}/*", app.dataHandler)
	}

	return r
}
