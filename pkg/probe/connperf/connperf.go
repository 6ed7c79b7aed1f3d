// Package connperf drives the connection-performance probe: a sequential
// phase measuring per-CONNECT latency, followed by a concurrent-burst
// phase that discovers the largest concurrency level the proxy sustains
// without a single failure.
package connperf

import (
	"context"
	"sync"
	"time"

	"nst/pkg/log"
	"nst/pkg/metrics"
	"nst/pkg/nsterr"
	"nst/pkg/probe"
	"nst/pkg/semaphore"
	"nst/pkg/socksclient"
)

// concurrencyLevels is the fixed ladder of burst sizes the spec names.
var concurrencyLevels = []int{2, 5, 10, 20, 50}

// Config holds one instance's target and budget parameters.
type Config struct {
	Target                string
	ConcurrentConnections int // advisory; not read by the probe (TotalConnections bounds the burst ladder)
	TotalConnections      int
}

// Probe runs the sequential-then-concurrent CONNECT burst phases.
type Probe struct {
	client *socksclient.Client
	cfg    Config
	logger *log.Logger
}

// New builds a Probe for cfg, dialing through client.
func New(client *socksclient.Client, cfg Config, logger *log.Logger) *Probe {
	return &Probe{client: client, cfg: cfg, logger: logger}
}

// Run executes the sequential phase (cfg.TotalConnections attempts, one at
// a time, 100 ms apart) followed by the concurrent phase (one burst per
// ladder level not exceeding cfg.TotalConnections).
func (p *Probe) Run(ctx context.Context) (metrics.ConnectionPerfResult, error) {
	var result metrics.ConnectionPerfResult

	for i := 0; i < p.cfg.TotalConnections; i++ {
		if ctx.Err() != nil {
			break
		}
		result.Attempts = append(result.Attempts, p.attempt(ctx))

		select {
		case <-ctx.Done():
		case <-time.After(100 * time.Millisecond):
		}
	}

	for _, level := range concurrencyLevels {
		if level > p.cfg.TotalConnections || ctx.Err() != nil {
			continue
		}
		result.ConcurrentResults = append(result.ConcurrentResults, p.burst(ctx, level))
	}

	return result, nil
}

func (p *Probe) attempt(ctx context.Context) metrics.AttemptOutcome {
	attemptCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	start := time.Now()
	conn, err := p.client.Connect(attemptCtx, p.cfg.Target)
	duration := time.Since(start)

	if err != nil {
		outcome := metrics.Failure
		if nsterr.IsTimeout(err) {
			outcome = metrics.Timeout
		}
		return metrics.AttemptOutcome{Outcome: outcome, Duration: duration, ErrorTag: err.Error()}
	}

	conn.Close()
	return metrics.AttemptOutcome{Outcome: metrics.Success, Duration: duration}
}

func (p *Probe) burst(ctx context.Context, level int) metrics.ConcurrentResult {
	sem := semaphore.New(level, 15*time.Second)

	var (
		mu             sync.Mutex
		successes      int
		failures       int
		successTimeSum time.Duration
	)

	start := time.Now()
	probe.RunEach(ctx, level, func(ctx context.Context, index int) {
		if err := sem.Acquire(ctx); err != nil {
			mu.Lock()
			failures++
			mu.Unlock()
			return
		}
		defer sem.Release()

		attemptStart := time.Now()
		conn, err := p.client.Connect(ctx, p.cfg.Target)
		duration := time.Since(attemptStart)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failures++
			return
		}
		successes++
		successTimeSum += duration
		conn.Close()
	})
	wallClock := time.Since(start)

	var avgSuccessTime time.Duration
	if successes > 0 {
		avgSuccessTime = successTimeSum / time.Duration(successes)
	}

	p.logger.VerboseMsg("connection-perf: level %d: %d/%d succeeded in %s", level, successes, level, wallClock)

	return metrics.ConcurrentResult{
		ConcurrentLevel:    level,
		Successes:          successes,
		Failures:           failures,
		AverageSuccessTime: avgSuccessTime,
		WallClock:          wallClock,
	}
}
