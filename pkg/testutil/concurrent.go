// Package testutil holds helpers shared by concurrency tests.
package testutil

import (
	"sync"
	"sync/atomic"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Errors    []error
}

// Total returns the number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + int32(len(r.Errors))
}

// RunConcurrent runs fn on goroutines goroutines at once and collects the
// outcomes. All goroutines are released together so the calls overlap.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes atomic.Int32
		errs      []error
	)
	start := make(chan struct{})

	for i := range goroutines {
		wg.Go(func() {
			<-start
			if err := fn(i); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			successes.Add(1)
		})
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{Successes: successes.Load(), Errors: errs}
}
