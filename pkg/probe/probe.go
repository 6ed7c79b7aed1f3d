// Package probe defines the fan-out helpers every nst probe runtime
// shares. Each probe (tcpstability, bandwidth, connperf, dns, jitter)
// owns its own typed Config/Probe/Result rather than implementing a
// shared interface, since Go has no sum type to return one in its place
// and a uniform `Run(ctx) (any, error)` signature would just push the
// type assertion onto every caller instead of removing it.
package probe

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RunEach runs n attempts of attempt concurrently and waits for every one
// of them to finish, regardless of individual failures. Unlike RunSet's
// errgroup-based fan-out, a single attempt failing must not cancel its
// siblings or short-circuit the wait: connection-perf's concurrent burst
// phase needs every attempt's outcome, failures included, to score the
// burst level. attempt is responsible for recording its own outcome
// (e.g. via a mutex-guarded counter), since there is no per-attempt error
// to collect.
func RunEach(ctx context.Context, n int, attempt func(ctx context.Context, index int)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			attempt(ctx, i)
		}()
	}
	wg.Wait()
}

// RunSet drives n identical instances of one probe kind concurrently,
// matching a configured `parallel` fan-out: every instance runs
// independently against the same immutable config (no shared state), the
// set awaits all of them, and their results merge into one via merge.
// The first terminal error is returned alongside whatever partial result
// the surviving instances produced; every sibling's deadline loop is
// expected to observe ctx cancellation and return promptly once the
// errgroup's derived context is canceled.
func RunSet[R any](ctx context.Context, n int, run func(ctx context.Context, index int) (R, error), merge func(a, b R) R) (R, error) {
	if n < 1 {
		n = 1
	}

	results := make([]R, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			r, err := run(gctx, i)
			results[i] = r
			return err
		})
	}
	runErr := g.Wait()

	merged := results[0]
	for _, r := range results[1:] {
		merged = merge(merged, r)
	}
	return merged, runErr
}
