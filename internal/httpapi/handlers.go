package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/konflabs/konf-server/internal/api"
	"github.com/konflabs/konf-server/internal/api/middleware"
	"github.com/konflabs/konf-server/internal/api/shared"
	"github.com/konflabs/konf-server/internal/encode"
	"github.com/konflabs/konf-server/internal/platform/metrics"
)

// liveHandler answers GET /live with a bare 200; it never touches the
// active graph, so it stays truthful even while a reload is in flight.
func (app *Application) liveHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// metricsHandler answers GET /metrics with Prometheus text exposition,
// merging in the snapshot cache's hit/miss counters when running in
// snapshot mode.
func (app *Application) metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	var extra []metrics.Counter
	if app.Cache != nil {
		hits, misses := app.Cache.Stats()
		extra = append(extra,
			metrics.Counter{Name: "konf_cache_hits_total", Help: "Total number of snapshot cache hits.", Value: hits},
			metrics.Counter{Name: "konf_cache_misses_total", Help: "Total number of snapshot cache misses.", Value: misses},
		)
	}
	if err := app.Metrics.WriteTo(w, extra...); err != nil {
		app.Logger.Error("failed to write metrics response", "error", err)
	}
}

// reloadHandler answers POST /reload by delegating to the engine: a
// filesystem reload rebuilds the active graph in place, a snapshot-mode
// reload re-fetches the git remote so future commits become resolvable.
func (app *Application) reloadHandler(w http.ResponseWriter, r *http.Request) {
	err := app.Engine.Reload(r.Context())
	app.Metrics.RecordReload(err == nil)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "reload failed", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// dataHandler answers GET /data/:format/*path (filesystem mode) and
// GET /data/:commit/:format/*path (snapshot mode), rendering the named
// document and encoding it in the requested wire format.
func (app *Application) dataHandler(w http.ResponseWriter, r *http.Request) {
	format := encode.Format(chi.URLParam(r, "format"))
	path := chi.URLParam(r, "*")
	ref := chi.URLParam(r, "commit")
	token := r.Header.Get(middleware.TokenHeader)

	val, diag, err := app.Engine.Render(r.Context(), ref, path, token)
	app.Metrics.RecordRender(err == nil)
	if err != nil {
		status := api.MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, api.SafeErrorMessage(err), err)
		return
	}

	body, err := encode.Encode(format, val)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "unsupported format", err)
		return
	}

	for _, warn := range diag.Warnings {
		w.Header().Add("X-Konf-Warning", warn.Kind.String()+": "+warn.Path)
	}
	w.Header().Set("Content-Type", encode.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
