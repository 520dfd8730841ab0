// Package main implements the filesystem-mode konf server: a single
// directory tree of configuration documents, reloaded on demand via
// POST /reload, with no authentication.
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
	app, err := httpapi.NewFilesystemApplication(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	router := app.SetupRouter(false)
	if err := app.Serve(ctx, router); err != nil {
		appLogger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
