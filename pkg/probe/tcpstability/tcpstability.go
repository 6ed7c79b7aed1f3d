// Package tcpstability drives the long-lived-connection heartbeat probe:
// hold one tunnel open for the whole run, send a monotonically numbered
// PING every heartbeat interval, and reconnect whenever the tunnel drops.
package tcpstability

import (
	"context"
	"fmt"
	"net"
	"time"

	"nst/pkg/log"
	"nst/pkg/metrics"
	"nst/pkg/nsterr"
	"nst/pkg/socksclient"
)

// Config holds one instance's target and timing parameters.
type Config struct {
	Target            string
	HeartbeatInterval time.Duration
	TestDuration      time.Duration
}

// Probe runs the TCP-stability heartbeat loop against one SOCKS5 client.
type Probe struct {
	client *socksclient.Client
	cfg    Config
	logger *log.Logger
}

// New builds a Probe for cfg, dialing through client.
func New(client *socksclient.Client, cfg Config, logger *log.Logger) *Probe {
	return &Probe{client: client, cfg: cfg, logger: logger}
}

// Run executes the heartbeat state machine until the test duration
// elapses or ctx is canceled, returning the accumulated result. A failure
// to establish the very first connection is fatal and returned as an
// error; every subsequent drop is recorded as a reconnection instead.
func (p *Probe) Run(ctx context.Context) (metrics.TCPStabilityResult, error) {
	result := metrics.TCPStabilityResult{
		HeartbeatInterval: p.cfg.HeartbeatInterval,
		TestDuration:      p.cfg.TestDuration,
	}

	deadline := time.Now().Add(p.cfg.TestDuration)

	conn, err := p.client.Connect(ctx, p.cfg.Target)
	if err != nil {
		return result, nsterr.Wrap(nsterr.KindOf(err), err, "establishing initial TCP-stability connection to %s", p.cfg.Target)
	}
	p.logger.VerboseMsg("tcp-stability: initial connection to %s established", p.cfg.Target)

	var (
		seq           uint64
		brokenAt      time.Time
		rttSum        time.Duration
		minRTT        time.Duration
		maxRTT        time.Duration
		haveMinMax    bool
		connected     = true
		lastAttemptAt time.Time
	)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}

		if !connected {
			attemptStart := time.Now()
			newConn, err := p.client.Connect(ctx, p.cfg.Target)
			if err != nil {
				p.logger.VerboseMsg("tcp-stability: reconnect to %s failed: %v", p.cfg.Target, err)
				select {
				case <-ctx.Done():
				case <-time.After(time.Second):
				}
				continue
			}

			conn = newConn
			connected = true
			result.Reconnections++
			downtime := attemptStart.Sub(lastAttemptAt)
			result.TotalDowntime += downtime
			result.ConnectionDrops = append(result.ConnectionDrops, metrics.ConnectionDrop{
				Timestamp: brokenAt,
				Duration:  downtime,
				Reason:    "connection lost - reconnected",
			})
			p.logger.VerboseMsg("tcp-stability: reconnected after %s downtime", downtime)
		}

		seq++
		result.TotalHeartbeats++
		rtt, err := p.heartbeat(ctx, conn, seq)
		if err != nil {
			result.FailedHeartbeats++
			conn.Close()
			connected = false
			brokenAt = time.Now()
			lastAttemptAt = brokenAt
			p.logger.VerboseMsg("tcp-stability: heartbeat %d failed, connection broken: %v", seq, err)
		} else {
			result.SuccessfulHeartbeats++
			rttSum += rtt
			if !haveMinMax || rtt < minRTT {
				minRTT = rtt
			}
			if !haveMinMax || rtt > maxRTT {
				maxRTT = rtt
			}
			haveMinMax = true
		}

		select {
		case <-ctx.Done():
		case <-time.After(p.cfg.HeartbeatInterval):
		}
	}

	if connected {
		conn.Close()
	}

	if result.SuccessfulHeartbeats > 0 {
		result.AverageRTT = rttSum / time.Duration(result.SuccessfulHeartbeats)
		result.MinRTT = minRTT
		result.MaxRTT = maxRTT
	}

	if p.cfg.TestDuration > result.TotalDowntime {
		result.UptimePercentage = float64(p.cfg.TestDuration-result.TotalDowntime) / float64(p.cfg.TestDuration) * 100
	}

	return result, nil
}

func (p *Probe) heartbeat(ctx context.Context, conn net.Conn, seq uint64) (time.Duration, error) {
	start := time.Now()

	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	defer conn.SetDeadline(time.Time{})

	line := fmt.Sprintf("PING-%d\n", seq)
	if _, err := conn.Write([]byte(line)); err != nil {
		return 0, nsterr.Wrap(nsterr.Connection, err, "writing heartbeat %d", seq)
	}

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, nsterr.Wrap(nsterr.Timeout, err, "reading heartbeat %d response", seq)
		}
		return 0, nsterr.Wrap(nsterr.Connection, err, "reading heartbeat %d response", seq)
	}
	if n == 0 {
		return 0, nsterr.New(nsterr.Connection, "connection closed by peer during heartbeat %d", seq)
	}

	return time.Since(start), nil
}
