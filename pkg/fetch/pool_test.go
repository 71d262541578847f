package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestMapRunsAllTasks(t *testing.T) {
	keys := make([]int, 10)
	for i := range keys {
		keys[i] = i
	}

	results := Map(context.Background(), Pool{Concurrency: 3}, keys, func(_ context.Context, key int) (string, error) {
		return fmt.Sprintf("item-%d", key), nil
	})

	if len(results) != len(keys) {
		t.Fatalf("got %d results, want %d", len(results), len(keys))
	}
	for _, key := range keys {
		result := results[key]
		if result.Err != nil {
			t.Fatalf("key %d failed: %v", key, result.Err)
		}
		if want := fmt.Sprintf("item-%d", key); result.Value != want {
			t.Fatalf("key %d = %q, want %q", key, result.Value, want)
		}
	}
}

func TestMapBoundsConcurrency(t *testing.T) {
	var active, peak int64
	var mu sync.Mutex
	gate := make(chan struct{})

	keys := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	done := make(chan map[int]Result[int, int])
	go func() {
		done <- Map(context.Background(), Pool{Concurrency: 3}, keys, func(_ context.Context, key int) (int, error) {
			n := atomic.AddInt64(&active, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			<-gate
			atomic.AddInt64(&active, -1)
			return key, nil
		})
	}()

	// Let workers saturate, then release every task.
	for i := 0; i < len(keys); i++ {
		gate <- struct{}{}
	}
	results := <-done

	if len(results) != len(keys) {
		t.Fatalf("got %d results, want %d", len(results), len(keys))
	}
	mu.Lock()
	defer mu.Unlock()
	if peak > 3 {
		t.Fatalf("peak concurrency = %d, want <= 3", peak)
	}
	if peak < 1 {
		t.Fatalf("peak concurrency = %d, want >= 1", peak)
	}
}

func TestMapIsolatesFailures(t *testing.T) {
	boom := errors.New("upstream 500")
	keys := []string{"a", "b", "c"}

	results := Map(context.Background(), Pool{Concurrency: 2}, keys, func(_ context.Context, key string) (int, error) {
		if key == "b" {
			return 0, boom
		}
		return len(key), nil
	})

	if results["a"].Err != nil || results["c"].Err != nil {
		t.Fatal("healthy tasks must not be affected by a failing sibling")
	}
	if !errors.Is(results["b"].Err, boom) {
		t.Fatalf("failed task error = %v, want %v", results["b"].Err, boom)
	}
}

func TestMapEmptyInput(t *testing.T) {
	results := Map(context.Background(), Pool{Concurrency: 4}, nil, func(_ context.Context, key int) (int, error) {
		t.Fatal("fn must not run for empty input")
		return 0, nil
	})
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}

func TestMapCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	keys := []int{1, 2, 3, 4, 5}
	results := Map(ctx, Pool{Concurrency: 2}, keys, func(ctx context.Context, key int) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return key, nil
	})

	if len(results) != len(keys) {
		t.Fatalf("got %d results, want one per key", len(results))
	}
	for _, key := range keys {
		if results[key].Err == nil {
			t.Fatalf("key %d should have failed under a canceled context", key)
		}
	}
}
