package fetch

import (
	"context"
	"sync"
	"time"
)

// Pool bounds concurrent upstream calls and spaces consecutive tasks on
// each worker to stay under marketplace rate limits.
type Pool struct {
	Concurrency int
	Delay       time.Duration
}

// Result pairs a task's key with its outcome.
type Result[K comparable, V any] struct {
	Key   K
	Value V
	Err   error
}

// Map runs fn for every key with at most Pool.Concurrency workers. Each
// worker sleeps Pool.Delay between tasks. Failed tasks are reported in the
// result map with their error; one failure never cancels the rest of the
// batch. Context cancellation stops workers from picking up new tasks.
func Map[K comparable, V any](ctx context.Context, pool Pool, keys []K, fn func(ctx context.Context, key K) (V, error)) map[K]Result[K, V] {
	results := make(map[K]Result[K, V], len(keys))
	if len(keys) == 0 {
		return results
	}

	workers := pool.Concurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(keys) {
		workers = len(keys)
	}

	tasks := make(chan K)
	out := make(chan Result[K, V], len(keys))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first := true
			for key := range tasks {
				if !first && pool.Delay > 0 {
					select {
					case <-time.After(pool.Delay):
					case <-ctx.Done():
						out <- Result[K, V]{Key: key, Err: ctx.Err()}
						continue
					}
				}
				first = false
				value, err := fn(ctx, key)
				out <- Result[K, V]{Key: key, Value: value, Err: err}
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, key := range keys {
			select {
			case tasks <- key:
			case <-ctx.Done():
				out <- Result[K, V]{Key: key, Err: ctx.Err()}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	for result := range out {
		results[result.Key] = result
	}
	return results
}
