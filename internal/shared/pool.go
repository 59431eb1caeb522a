package shared

import (
	"context"
	"sync"
)

// ForEachIndex runs fn for every index in [0, n) using at most workers
// concurrent goroutines.
//
// Each invocation owns its index, so callers can safely write results into a
// pre-sized slice without further synchronization. fn should absorb per-item
// failures itself and return an error only when the whole batch must stop
// (rate limit, authorization, cancellation); the first such error cancels
// queued and in-flight work and is returned. Results already written by
// completed invocations are retained.
func ForEachIndex(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if poolCtx.Err() != nil {
					return
				}
				if err := fn(poolCtx, i); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					cancel()
					return
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-poolCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
