package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/konflabs/konf-server/internal/auth"
	"github.com/konflabs/konf-server/internal/platform/metrics"
	"github.com/konflabs/konf-server/internal/resolver"
	"github.com/konflabs/konf-server/internal/value"
)

type fakeEngine struct {
	renderVal   value.Value
	renderDiag  resolver.Diagnostics
	renderErr   error
	reloadErr   error
	lastRef     string
	lastPath    string
	lastToken   string
	reloadCalls int
}

func (f *fakeEngine) Render(ctx context.Context, ref, path, token string) (value.Value, resolver.Diagnostics, error) {
	f.lastRef, f.lastPath, f.lastToken = ref, path, token
	return f.renderVal, f.renderDiag, f.renderErr
}

func (f *fakeEngine) Reload(ctx context.Context) error {
	f.reloadCalls++
	return f.reloadErr
}

func newTestApp(engine Engine) *Application {
	return &Application{
		Config:  nil,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})),
		Metrics: metrics.NewRegistry(),
		Engine:  engine,
	}
}

func TestLiveHandler(t *testing.T) {
	app := newTestApp(&fakeEngine{})
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	w := httptest.NewRecorder()

	app.liveHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
}

func TestReloadHandlerSuccess(t *testing.T) {
	engine := &fakeEngine{}
	app := newTestApp(engine)
	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	w := httptest.NewRecorder()

	app.reloadHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	if engine.reloadCalls != 1 {
		t.Fatalf("expected exactly one reload call, got %d", engine.reloadCalls)
	}
}

func TestReloadHandlerFailure(t *testing.T) {
	engine := &fakeEngine{reloadErr: errors.New("boom")}
	app := newTestApp(engine)
	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	w := httptest.NewRecorder()

	app.reloadHandler(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", w.Code)
	}
}

func TestDataHandlerRendersYAML(t *testing.T) {
	engine := &fakeEngine{
		renderVal: value.NewMapping([]string{"host"}, map[string]value.Value{"host": value.NewString("db.internal")}),
	}
	app := newTestApp(engine)

	r := app.SetupRouter(false)
	req := httptest.NewRequest(http.MethodGet, "/data/yaml/common/database", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "db.internal") {
		t.Fatalf("expected rendered body to contain host value, got %q", w.Body.String())
	}
	if engine.lastPath != "common/database" {
		t.Fatalf("expected path common/database, got %q", engine.lastPath)
	}
}

func TestDataHandlerSnapshotModePassesCommitAndToken(t *testing.T) {
	engine := &fakeEngine{renderVal: value.NewString("ok")}
	app := newTestApp(engine)

	r := app.SetupRouter(true)
	req := httptest.NewRequest(http.MethodGet, "/data/abc123/json/service/api", nil)
	req.Header.Set("token", "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}
	if engine.lastRef != "abc123" {
		t.Fatalf("expected ref abc123, got %q", engine.lastRef)
	}
	if engine.lastToken != "secret" {
		t.Fatalf("expected token secret, got %q", engine.lastToken)
	}
}

func TestDataHandlerMapsAuthErrorToUnauthorized(t *testing.T) {
	engine := &fakeEngine{renderErr: auth.ErrDenied}
	app := newTestApp(engine)

	r := app.SetupRouter(true)
	req := httptest.NewRequest(http.MethodGet, "/data/abc123/yaml/service/api", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
}

func TestDataHandlerUnknownFormatFails(t *testing.T) {
	engine := &fakeEngine{renderVal: value.NewString("ok")}
	app := newTestApp(engine)

	r := app.SetupRouter(false)
	req := httptest.NewRequest(http.MethodGet, "/data/weird/service/api", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestMetricsHandlerWritesPrometheusText(t *testing.T) {
	app := newTestApp(&fakeEngine{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	app.metricsHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "konf_renders_total") {
		t.Fatalf("expected metrics body to contain konf_renders_total, got %q", w.Body.String())
	}
}
