package echoserver

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"nst/pkg/log"
)

// Port offsets from the suite's base port, in the fixed order the original
// server binds them.
const (
	offsetTCPStability   = 1
	offsetBandwidth      = 2
	offsetConnectionPerf = 3
	offsetDNSStability   = 4
	offsetNetworkJitter  = 5
)

// Mode selects which of the five companion listeners a Suite runs.
type Mode string

// The five listener modes, plus All which runs every one of them.
const (
	ModeAll            Mode = "all"
	ModeTCPStability   Mode = "tcp-stability"
	ModeBandwidth      Mode = "bandwidth"
	ModeConnectionPerf Mode = "connection-perf"
	ModeDNSStability   Mode = "dns-stability"
	ModeNetworkJitter  Mode = "network-jitter"
)

type service struct {
	offset int
	serve  func(ctx context.Context, addr string, logger *log.Logger) error
}

var services = []service{
	{offsetTCPStability, TCPStability},
	{offsetBandwidth, Bandwidth},
	{offsetConnectionPerf, ConnectionPerf},
	{offsetDNSStability, DNS},
	{offsetNetworkJitter, Jitter},
}

func servicesFor(mode Mode) ([]service, error) {
	switch mode {
	case ModeAll:
		return services, nil
	case ModeTCPStability:
		return services[0:1], nil
	case ModeBandwidth:
		return services[1:2], nil
	case ModeConnectionPerf:
		return services[2:3], nil
	case ModeDNSStability:
		return services[3:4], nil
	case ModeNetworkJitter:
		return services[4:5], nil
	default:
		return nil, fmt.Errorf("unknown echo server mode %q", mode)
	}
}

// Suite owns the listeners selected by a Mode and stops them together.
type Suite struct {
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewSuite starts the listeners selected by mode, binding each to host at
// base+offset per the fixed TcpStability/Bandwidth/ConnectionPerf/
// DnsStability/NetworkJitter ordering, and returns once every one of them
// has had a chance to bind. A bind failure in any listener stops the
// others and is returned as the error.
func NewSuite(ctx context.Context, mode Mode, host string, base int, logger *log.Logger) (*Suite, error) {
	svcs, err := servicesFor(mode)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, runCtx := errgroup.WithContext(runCtx)

	startErrs := make(chan error, len(svcs))
	for _, svc := range svcs {
		svc := svc
		addr := net.JoinHostPort(host, strconv.Itoa(base+svc.offset))
		group.Go(func() error {
			err := svc.serve(runCtx, addr, logger)
			startErrs <- err
			return err
		})
	}

	// Every serve function binds synchronously before returning control to
	// its accept/receive loop, so a bind failure surfaces almost
	// immediately; a short grace period is enough to catch it without
	// delaying a healthy startup.
	select {
	case err := <-startErrs:
		if err != nil {
			cancel()
			_ = group.Wait()
			return nil, err
		}
	case <-time.After(50 * time.Millisecond):
	}

	return &Suite{cancel: cancel, group: group}, nil
}

// Wait blocks until every listener has stopped, returning the first error
// any of them reported.
func (s *Suite) Wait() error {
	return s.group.Wait()
}

// Shutdown cancels every owned listener and waits for them to stop.
func (s *Suite) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan error, 1)
	go func() { done <- s.group.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
