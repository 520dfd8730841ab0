package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownTimeout bounds how long Serve waits for in-flight requests to
// finish once a shutdown signal arrives.
const ShutdownTimeout = 10 * time.Second

// Serve runs the HTTP server for router until ctx is cancelled or a
// SIGINT/SIGTERM arrives, then drains in-flight requests within
// ShutdownTimeout before returning.
func (app *Application) Serve(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.Config.Server.Port),
		Handler: router,
	}

	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	go func() {
		app.Logger.Info("starting server", "port", app.Config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Error("server failed", "error", err)
			cancel()
		}
	}()

	select {
	case <-shutdownCh:
		app.Logger.Info("shutdown signal received")
	case <-serverCtx.Done():
		app.Logger.Info("server context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.Logger.Info("server shutdown completed")
	return nil
}
