// Package metrics exposes counters for renders, reloads, and cache
// hit/miss in Prometheus text exposition format. No example repo in the
// corpus wires a metrics client library (the domain's nearest analogue,
// go-chi's own middleware stack, only covers logging/tracing, not metrics
// export) so this is a small hand-rolled exposition writer over the
// standard library, kept deliberately minimal — one gauge/counter type,
// no histograms — rather than vendoring a client for a handful of numbers.
package metrics

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Registry holds the counters the data and reload handlers update. Cache
// hit/miss counts are not duplicated here — package cache already tracks
// them (Cache.Stats) since it is the component that actually knows about a
// lookup's outcome; WriteTo's caller merges both sources at render time.
type Registry struct {
	rendersTotal  atomic.Int64
	rendersFailed atomic.Int64
	reloadsTotal  atomic.Int64
	reloadsFailed atomic.Int64
}

// NewRegistry returns a zeroed Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RecordRender increments the render counters; ok reports whether the
// render succeeded.
func (r *Registry) RecordRender(ok bool) {
	r.rendersTotal.Add(1)
	if !ok {
		r.rendersFailed.Add(1)
	}
}

// RecordReload increments the reload counters; ok reports whether the
// reload succeeded.
func (r *Registry) RecordReload(ok bool) {
	r.reloadsTotal.Add(1)
	if !ok {
		r.reloadsFailed.Add(1)
	}
}

// WriteTo writes the current counter values to w in Prometheus text
// exposition format. extra carries additional name/help/value triples
// from collaborating components (the snapshot cache's hit/miss counts in
// git mode); pass nil when there are none.
func (r *Registry) WriteTo(w io.Writer, extra ...Counter) error {
	counters := []Counter{
		{"konf_renders_total", "Total number of document renders attempted.", r.rendersTotal.Load()},
		{"konf_renders_failed_total", "Total number of document renders that failed.", r.rendersFailed.Load()},
		{"konf_reloads_total", "Total number of source reloads attempted.", r.reloadsTotal.Load()},
		{"konf_reloads_failed_total", "Total number of source reloads that failed.", r.reloadsFailed.Load()},
	}
	counters = append(counters, extra...)
	for _, c := range counters {
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", c.Name, c.Help, c.Name, c.Name, c.Value); err != nil {
			return err
		}
	}
	return nil
}

// Counter is one named metric value rendered by WriteTo.
type Counter struct {
	Name  string
	Help  string
	Value int64
}
