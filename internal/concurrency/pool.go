// Package concurrency provides a small bounded worker pool, adapted from
// the task-runner worker pool this codebase used for background job
// processing, repurposed here for fanning document reads out across a
// handful of goroutines while a graph loads.
package concurrency

import (
	"context"
	"sync"
)

// DefaultWorkerCount is used when a non-positive count is requested.
const DefaultWorkerCount = 8

// Run executes fn once per item in items using up to workerCount concurrent
// goroutines, waits for all of them to finish, and returns the results in
// the same order as items. If workerCount is non-positive, DefaultWorkerCount
// is used. Run does not stop early on error; every item's fn runs exactly
// once and callers inspect the per-item results.
func Run[T, R any](ctx context.Context, workerCount int, items []T, fn func(context.Context, T) R) []R {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	if workerCount > len(items) {
		workerCount = len(items)
	}
	if workerCount == 0 {
		return nil
	}

	results := make([]R, len(items))
	indices := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = fn(ctx, items[i])
			}
		}()
	}

	for i := range items {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return results
}
