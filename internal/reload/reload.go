// Package reload holds the currently active graph behind an atomic
// pointer and serialises rebuilds, so concurrent HTTP traffic always
// renders against one complete, immutable graph — never a torn one.
package reload

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/konflabs/konf-server/internal/graph"
)

// BuildFunc constructs a fresh graph from the source of truth.
type BuildFunc func(ctx context.Context) (*graph.Graph, error)

// reloadState is a single in-flight build, shared by every Reload call
// that coalesced onto it. done is closed once the build finishes; err is
// only safe to read after a receive on done completes, which the Go
// memory model guarantees happens-after the write below.
type reloadState struct {
	done chan struct{}
	err  error
}

// Coordinator holds the active graph and serialises Reload calls.
// Concurrent Reload calls coalesce onto whichever build is already in
// flight, per §4.G. It is modelled as an explicit value threaded through
// request handling rather than a package-level singleton, per §9's
// "Global state" design note.
type Coordinator struct {
	active atomic.Pointer[graph.Graph]

	build BuildFunc

	mu       sync.Mutex
	inFlight *reloadState
}

// New builds the initial graph via build and returns a Coordinator
// primed with it. A failure to build the initial graph is fatal — there is
// no "previous graph" to fall back to on first start.
func New(ctx context.Context, build BuildFunc) (*Coordinator, error) {
	c := &Coordinator{build: build}
	g, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build initial graph: %w", err)
	}
	c.active.Store(g)
	return c, nil
}

// Active returns the currently active graph. Callers that capture the
// returned pointer see a consistent, immutable graph for the remainder of
// whatever they do with it, even if Reload swaps in a new one concurrently.
func (c *Coordinator) Active() *graph.Graph {
	return c.active.Load()
}

// Reload builds a new graph from the source and, on success, swaps it in
// atomically. On failure, the previously active graph remains in effect
// and the error is returned to every caller waiting on this reload —
// concurrent Reload calls while one is already building coalesce onto it
// rather than each starting their own build.
func (c *Coordinator) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight != nil {
		st := c.inFlight
		c.mu.Unlock()
		<-st.done
		return st.err
	}
	st := &reloadState{done: make(chan struct{})}
	c.inFlight = st
	c.mu.Unlock()

	g, err := c.build(ctx)

	c.mu.Lock()
	if err == nil {
		c.active.Store(g)
	}
	c.inFlight = nil
	st.err = err
	c.mu.Unlock()
	close(st.done)

	return err
}
