package httpapi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/konflabs/konf-server/internal/cache"
	"github.com/konflabs/konf-server/internal/config"
	"github.com/konflabs/konf-server/internal/graph"
	"github.com/konflabs/konf-server/internal/platform/metrics"
	"github.com/konflabs/konf-server/internal/reload"
	"github.com/konflabs/konf-server/internal/source"
)

// DefaultGraphWorkers bounds how many documents load concurrently when a
// graph is built, independent of the snapshot cache's own capacity.
const DefaultGraphWorkers = 8

// Application holds the shared dependencies every handler needs,
// independent of which source mode the process was started in.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Registry
	Engine  Engine

	// Cache is non-nil only in snapshot (git) mode, so the metrics
	// handler can report its hit/miss counters.
	Cache *cache.Cache
}

// NewFilesystemApplication wires an Application backed by a
// FilesystemSource: a single reload.Coordinator holds the active graph,
// rebuilt in full on every /reload.
func NewFilesystemApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	src := source.NewFilesystemSource(cfg.Source.Root)
	build := buildGraph(src, DefaultGraphWorkers)

	coordinator, err := reload.New(ctx, func(ctx context.Context) (*graph.Graph, error) {
		return build(ctx, "")
	})
	if err != nil {
		return nil, fmt.Errorf("build initial graph: %w", err)
	}

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewRegistry(),
		Engine:  &FilesystemEngine{Coordinator: coordinator},
	}, nil
}

// NewSnapshotApplication wires an Application backed by a GitSource: a
// bounded LRU of per-commit graphs, built lazily and single-flighted on
// first request for each commit.
func NewSnapshotApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	gitSrc, err := source.NewGitSource(cfg.Source.Root)
	if err != nil {
		return nil, fmt.Errorf("open git source: %w", err)
	}

	capacity := cfg.Cache.Capacity
	if capacity <= 0 {
		capacity = cache.DefaultCapacity
	}
	snapshotCache, err := cache.New(capacity, buildGraph(gitSrc, DefaultGraphWorkers))
	if err != nil {
		return nil, fmt.Errorf("create snapshot cache: %w", err)
	}

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewRegistry(),
		Engine:  &SnapshotEngine{Cache: snapshotCache, Source: gitSrc},
		Cache:   snapshotCache,
	}, nil
}
