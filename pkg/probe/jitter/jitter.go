// Package jitter drives the network-jitter probe: a fresh CONNECT tunnel
// per tick, round-robining across configured targets, measuring RTT via a
// single PING/PONG exchange.
package jitter

import (
	"context"
	"net"
	"time"

	"nst/pkg/log"
	"nst/pkg/metrics"
	"nst/pkg/nsterr"
	"nst/pkg/socksclient"
)

// Config holds one instance's target list and timing parameters.
type Config struct {
	Targets      []string
	PingInterval time.Duration
	TestDuration time.Duration
}

// Probe runs the round-robin fresh-tunnel ping loop against one SOCKS5
// client.
type Probe struct {
	client *socksclient.Client
	cfg    Config
	logger *log.Logger
}

// New builds a Probe for cfg, dialing through client.
func New(client *socksclient.Client, cfg Config, logger *log.Logger) *Probe {
	return &Probe{client: client, cfg: cfg, logger: logger}
}

// Run ticks through the target list round-robin until the test duration
// elapses or ctx is canceled. An empty target list returns immediately
// with a zero-valued result.
func (p *Probe) Run(ctx context.Context) (metrics.JitterResult, error) {
	result := metrics.JitterResult{
		TestDuration: p.cfg.TestDuration,
		PingInterval: p.cfg.PingInterval,
		PerTarget:    make(map[string]*metrics.TargetResult),
	}

	if len(p.cfg.Targets) == 0 {
		return result, nil
	}

	deadline := time.Now().Add(p.cfg.TestDuration)

	for i := 0; time.Now().Before(deadline) && ctx.Err() == nil; i++ {
		target := p.cfg.Targets[i%len(p.cfg.Targets)]
		targetResult := result.PerTarget[target]
		if targetResult == nil {
			targetResult = &metrics.TargetResult{Target: target}
			result.PerTarget[target] = targetResult
		}

		rtt, err := p.ping(ctx, target)
		targetResult.TotalPings++
		if err != nil {
			if nsterr.IsTimeout(err) {
				result.TimeoutPings++
			} else {
				targetResult.FailedPings++
			}
			p.logger.VerboseMsg("jitter: ping to %s failed: %v", target, err)
		} else {
			targetResult.SuccessfulPings++
			targetResult.RTTs = append(targetResult.RTTs, rtt)
		}

		select {
		case <-ctx.Done():
		case <-time.After(p.cfg.PingInterval):
		}
	}

	return result, nil
}

func (p *Probe) ping(ctx context.Context, target string) (time.Duration, error) {
	start := time.Now()

	conn, err := p.client.Connect(ctx, target)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(time.Second))

	if _, err := conn.Write([]byte("PING\n")); err != nil {
		return 0, nsterr.Wrap(nsterr.Connection, err, "writing ping to %s", target)
	}

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, nsterr.Wrap(nsterr.Timeout, err, "reading pong from %s", target)
		}
		return 0, nsterr.Wrap(nsterr.Connection, err, "reading pong from %s", target)
	}
	if n == 0 {
		return 0, nsterr.New(nsterr.Connection, "connection closed by peer during ping to %s", target)
	}

	return time.Since(start), nil
}
