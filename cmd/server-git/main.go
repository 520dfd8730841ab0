// Package main implements the snapshot-mode konf server: configuration
// documents are read at an arbitrary git commit, cached per commit, with
// per-document token authentication.
package main

import (
	"context"
	"log"
	"os"

	"github.com/konflabs/konf-server/internal/config"
	"github.com/konflabs/konf-server/internal/httpapi"
	"github.com/konflabs/konf-server/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("failed to set up logger: %v", err)
	}

	ctx := context.Background()
	app, err := httpapi.NewSnapshotApplication(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	router := app.SetupRouter(true)
	if err := app.Serve(ctx, router); err != nil {
		appLogger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
