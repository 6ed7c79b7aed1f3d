// Package dns drives the DNS-resolution probe: a single UDP ASSOCIATE
// session relays hand-built A-record queries to a fixed resolver, round-
// robining across the configured domain list.
package dns

import (
	"context"
	"time"

	"nst/pkg/log"
	"nst/pkg/metrics"
	"nst/pkg/nsterr"
	"nst/pkg/socksclient"
)

// resolverAddr is the UDP target every query is sent to, per the probe's
// fixed-resolver design (the companion DNS server answers authoritatively
// regardless of the real 8.8.8.8 existing).
const resolverAddr = "8.8.8.8"

const resolverPort = 53

// queryID is the fixed transaction id every query uses, since the probe
// never has more than one query in flight on a relay at a time.
const queryID = 0x1234

// Config holds one instance's domain list and timing parameters.
type Config struct {
	Domains       []string
	QueryInterval time.Duration
	TestDuration  time.Duration
}

// Probe runs the round-robin DNS query loop against one SOCKS5 client.
type Probe struct {
	client *socksclient.Client
	cfg    Config
	logger *log.Logger
}

// New builds a Probe for cfg, dialing through client.
func New(client *socksclient.Client, cfg Config, logger *log.Logger) *Probe {
	return &Probe{client: client, cfg: cfg, logger: logger}
}

// Run opens one UdpRelay for the whole test and ticks through the domain
// list round-robin until the test duration elapses or ctx is canceled. An
// empty domain list returns immediately with a zero-valued result.
func (p *Probe) Run(ctx context.Context) (metrics.DNSResult, error) {
	result := metrics.DNSResult{
		TestDuration:  p.cfg.TestDuration,
		QueryInterval: p.cfg.QueryInterval,
		PerDomain:     make(map[string]*metrics.DomainResult),
	}

	if len(p.cfg.Domains) == 0 {
		return result, nil
	}

	relay, err := p.client.Associate(ctx)
	if err != nil {
		return result, nsterr.Wrap(nsterr.KindOf(err), err, "establishing UDP ASSOCIATE session for DNS probe")
	}
	defer relay.Close()

	deadline := time.Now().Add(p.cfg.TestDuration)
	buf := make([]byte, 2048)

	for i := 0; time.Now().Before(deadline) && ctx.Err() == nil; i++ {
		domain := p.cfg.Domains[i%len(p.cfg.Domains)]
		domainResult := result.PerDomain[domain]
		if domainResult == nil {
			domainResult = &metrics.DomainResult{Domain: domain}
			result.PerDomain[domain] = domainResult
		}

		duration, err := p.query(relay, domain, buf)
		domainResult.TotalQueries++
		if err != nil {
			if nsterr.IsTimeout(err) {
				result.TimeoutQueries++
			} else {
				domainResult.FailedQueries++
			}
			p.logger.VerboseMsg("dns: query for %s failed: %v", domain, err)
		} else {
			domainResult.SuccessfulQueries++
			domainResult.Durations = append(domainResult.Durations, duration)
		}

		select {
		case <-ctx.Done():
		case <-time.After(p.cfg.QueryInterval):
		}
	}

	return result, nil
}

func (p *Probe) query(relay *socksclient.UDPRelay, domain string, buf []byte) (time.Duration, error) {
	packet := buildQuery(domain)

	start := time.Now()
	if err := relay.Send(resolverAddr, resolverPort, packet); err != nil {
		return 0, err
	}

	if err := relay.SetDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return 0, nsterr.Wrap(nsterr.Io, err, "setting DNS relay deadline")
	}
	defer relay.SetDeadline(time.Time{})

	payload, _, err := relay.Receive(buf)
	if err != nil {
		return 0, err
	}
	duration := time.Since(start)

	if len(payload) < 12 {
		return 0, nsterr.New(nsterr.Socks5, "DNS response too short: %d bytes", len(payload))
	}
	if rcode := payload[3] & 0x0F; rcode != 0 {
		return 0, nsterr.New(nsterr.Socks5, "DNS response RCODE=%d", rcode)
	}

	return duration, nil
}

// buildQuery encodes a standard-query A-record request for domain with
// the fixed queryID, RD=1, QDCOUNT=1.
func buildQuery(domain string) []byte {
	packet := make([]byte, 0, 12+len(domain)+6)

	packet = append(packet, byte(queryID>>8), byte(queryID))
	packet = append(packet, 0x01, 0x00) // flags: standard query, RD=1
	packet = append(packet, 0x00, 0x01) // QDCOUNT=1
	packet = append(packet, 0x00, 0x00) // ANCOUNT=0
	packet = append(packet, 0x00, 0x00) // NSCOUNT=0
	packet = append(packet, 0x00, 0x00) // ARCOUNT=0

	packet = append(packet, encodeQName(domain)...)
	packet = append(packet, 0x00, 0x01) // QTYPE=A
	packet = append(packet, 0x00, 0x01) // QCLASS=IN

	return packet
}

func encodeQName(domain string) []byte {
	var out []byte
	start := 0
	for i := 0; i <= len(domain); i++ {
		if i == len(domain) || domain[i] == '.' {
			label := domain[start:i]
			out = append(out, byte(len(label)))
			out = append(out, label...)
			start = i + 1
		}
	}
	out = append(out, 0x00)
	return out
}
