package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/konflabs/konf-server/internal/graph"
)

func TestCacheBuildsOncePerSnapshot(t *testing.T) {
	var builds atomic.Int64
	c, err := New(4, func(ctx context.Context, snapshot string) (*graph.Graph, error) {
		builds.Add(1)
		return &graph.Graph{}, nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := c.Get(context.Background(), "abc"); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if builds.Load() != 1 {
		t.Fatalf("builds = %d, want 1", builds.Load())
	}
	hits, misses := c.Stats()
	if hits != 4 || misses != 1 {
		t.Fatalf("hits=%d misses=%d, want 4,1", hits, misses)
	}
}

func TestCacheSingleFlightConcurrent(t *testing.T) {
	var builds atomic.Int64
	release := make(chan struct{})
	c, err := New(4, func(ctx context.Context, snapshot string) (*graph.Graph, error) {
		builds.Add(1)
		<-release
		return &graph.Graph{}, nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(context.Background(), "snap"); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	close(release)
	wg.Wait()

	if builds.Load() != 1 {
		t.Fatalf("builds = %d, want exactly 1 for concurrent requests on a missing snapshot", builds.Load())
	}
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	var builds atomic.Int64
	wantErr := errors.New("build failed")
	c, err := New(4, func(ctx context.Context, snapshot string) (*graph.Graph, error) {
		builds.Add(1)
		return nil, wantErr
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), "bad"); !errors.Is(err, wantErr) {
			t.Fatalf("Get() error = %v, want %v", err, wantErr)
		}
	}
	if builds.Load() != 3 {
		t.Fatalf("builds = %d, want 3 (failures must not be cached)", builds.Load())
	}
}
