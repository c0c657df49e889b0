package executor

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/BrettMayson/hemtt/internal/addon"
)

// ParallelAddons runs fn once per addon over a bounded-parallel worker
// pool sized to runtime.NumCPU(), mirroring internal/build/build.go's
// errgroup+semaphore fan-out (there: one goroutine per package being
// built; here: one goroutine per addon a module processes). Results are
// merged with a plain mutex, since Report.Merge is not safe for
// concurrent use on the same value.
func ParallelAddons(addons []*addon.Addon, fn func(*addon.Addon) Report) Report {
	sem := semaphore.NewWeighted(int64(runtime.NumCPU()))
	g, ctx := errgroup.WithContext(context.Background())

	var mu sync.Mutex
	var total Report

	for _, a := range addons {
		a := a
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			r := fn(a)

			mu.Lock()
			total.Merge(r)
			mu.Unlock()
			return nil
		})
	}
	// errgroup.Group.Wait's error is only non-nil if a worker returned an
	// error; fn reports failures through Report, not error, so there is
	// nothing further to surface here (acquiring the semaphore is the
	// only way Go() can fail, and only on context cancellation).
	_ = g.Wait()
	return total
}
