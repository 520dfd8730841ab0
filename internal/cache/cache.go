// Package cache memoises per-snapshot graphs for snapshot-rooted sources, so
// that repeated requests against the same commit do not re-walk and re-load
// the whole tree. Built on a bounded LRU plus a per-key single-flight lock,
// mirroring how the teacher caches repeatedly-fetched, rarely-changing
// resources behind a hit/miss signal consumable by metrics.
package cache

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/konflabs/konf-server/internal/graph"
)

// DefaultCapacity is the bound used when none is configured, resolving
// spec's own open question about the snapshot cache's LRU capacity.
const DefaultCapacity = 32

// BuildFunc constructs the graph for a snapshot not yet in the cache.
type BuildFunc func(ctx context.Context, snapshot string) (*graph.Graph, error)

// Cache memoises graph.Graph values by snapshot id. Safe for concurrent
// use. A failed build is never cached, so the next request for the same
// snapshot retries from scratch.
type Cache struct {
	lru    *lru.Cache[string, *graph.Graph]
	flight singleflight.Group
	build  BuildFunc

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Cache with the given capacity (DefaultCapacity if <= 0),
// calling build to materialise a graph the first time each snapshot is
// requested.
func New(capacity int, build BuildFunc) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l, err := lru.New[string, *graph.Graph](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, build: build}, nil
}

// Get returns the graph for snapshot, building it via the configured
// BuildFunc on first access. Concurrent Get calls for the same missing
// snapshot coalesce onto a single build (§4.F single-flight requirement).
func (c *Cache) Get(ctx context.Context, snapshot string) (*graph.Graph, error) {
	if g, ok := c.lru.Get(snapshot); ok {
		c.hits.Add(1)
		return g, nil
	}
	c.misses.Add(1)

	v, err, _ := c.flight.Do(snapshot, func() (interface{}, error) {
		// Re-check under the single-flight lock: another caller may have
		// just finished building and populated the LRU while we were
		// queued behind it.
		if g, ok := c.lru.Get(snapshot); ok {
			return g, nil
		}
		g, err := c.build(ctx, snapshot)
		if err != nil {
			return nil, err
		}
		c.lru.Add(snapshot, g)
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*graph.Graph), nil
}

// Stats reports cumulative hit/miss counts for metrics exposition.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len reports the number of snapshots currently cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}
