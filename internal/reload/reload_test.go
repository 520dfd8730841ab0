package reload

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/konflabs/konf-server/internal/graph"
)

func TestNewBuildsInitialGraph(t *testing.T) {
	want := &graph.Graph{}
	c, err := New(context.Background(), func(ctx context.Context) (*graph.Graph, error) {
		return want, nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Active() != want {
		t.Fatal("Active() should return the graph built at construction")
	}
}

func TestNewFailsOnInitialBuildError(t *testing.T) {
	wantErr := errors.New("source unreachable")
	_, err := New(context.Background(), func(ctx context.Context) (*graph.Graph, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("New() error = %v, want %v", err, wantErr)
	}
}

func TestReloadSwapsGraphOnSuccess(t *testing.T) {
	first := &graph.Graph{}
	second := &graph.Graph{}
	var calls atomic.Int64
	c, err := New(context.Background(), func(ctx context.Context) (*graph.Graph, error) {
		if calls.Add(1) == 1 {
			return first, nil
		}
		return second, nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Active() != first {
		t.Fatal("expected first graph active")
	}
	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if c.Active() != second {
		t.Fatal("expected second graph active after reload")
	}
}

func TestReloadKeepsPreviousGraphOnFailure(t *testing.T) {
	first := &graph.Graph{}
	wantErr := errors.New("build failed")
	var calls atomic.Int64
	c, err := New(context.Background(), func(ctx context.Context) (*graph.Graph, error) {
		if calls.Add(1) == 1 {
			return first, nil
		}
		return nil, wantErr
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Reload(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Reload() error = %v, want %v", err, wantErr)
	}
	if c.Active() != first {
		t.Fatal("a failed reload must leave the previous graph active")
	}
}

func TestReloadCoalescesConcurrentCalls(t *testing.T) {
	release := make(chan struct{})
	var builds atomic.Int64
	c, err := New(context.Background(), func(ctx context.Context) (*graph.Graph, error) {
		return &graph.Graph{}, nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	started := make(chan struct{})
	c.build = func(ctx context.Context) (*graph.Graph, error) {
		if builds.Add(1) == 1 {
			close(started)
		}
		<-release
		return &graph.Graph{}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Reload(context.Background()); err != nil {
				t.Errorf("Reload: %v", err)
			}
		}()
	}
	// Hold the first build open until the other callers have had time to
	// arrive and join it, so the five calls really overlap.
	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if builds.Load() != 1 {
		t.Fatalf("builds = %d, want exactly 1 for concurrent reloads", builds.Load())
	}
}
