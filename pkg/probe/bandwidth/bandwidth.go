// Package bandwidth drives the upload-then-download throughput probe over
// a single kept-open tunnel: each round uploads a pseudo-random chunk via
// a minimal HTTP-shaped POST, downloads the echoed response, and verifies
// the response looks like a successful HTTP reply.
package bandwidth

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"

	"nst/pkg/log"
	"nst/pkg/metrics"
	"nst/pkg/nsterr"
	"nst/pkg/socksclient"
)

// Config holds one instance's target and timing parameters.
type Config struct {
	Target       string
	ChunkSize    int
	TestDuration time.Duration
}

// Probe runs the bandwidth round loop against one SOCKS5 client.
type Probe struct {
	client *socksclient.Client
	cfg    Config
	logger *log.Logger
	rng    *rand.Rand
}

// New builds a Probe for cfg, dialing through client.
func New(client *socksclient.Client, cfg Config, logger *log.Logger) *Probe {
	return &Probe{client: client, cfg: cfg, logger: logger, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Run executes upload/download rounds until the test duration elapses or
// ctx is canceled. The initial CONNECT failure is fatal; subsequent
// failures close the tunnel, reconnect, and count as an interruption. A
// failed reconnect terminates the probe with its partial result.
func (p *Probe) Run(ctx context.Context) (metrics.BandwidthResult, error) {
	result := metrics.BandwidthResult{
		TestDuration: p.cfg.TestDuration,
		ChunkSize:    p.cfg.ChunkSize,
	}

	deadline := time.Now().Add(p.cfg.TestDuration)

	conn, err := p.client.Connect(ctx, p.cfg.Target)
	if err != nil {
		return result, nsterr.Wrap(nsterr.KindOf(err), err, "establishing initial bandwidth connection to %s", p.cfg.Target)
	}
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	host, _, _ := net.SplitHostPort(p.cfg.Target)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}

		sample, integrityOK, roundErr := p.runRound(conn, host, &result)
		if roundErr != nil {
			p.logger.VerboseMsg("bandwidth: round failed, reconnecting: %v", roundErr)
			conn.Close()
			conn = nil

			newConn, err := p.client.Connect(ctx, p.cfg.Target)
			if err != nil {
				return result, nsterr.Wrap(nsterr.KindOf(err), err, "reconnecting bandwidth tunnel to %s", p.cfg.Target)
			}
			conn = newConn
			result.ConnectionInterruptions++
			continue
		}

		if !integrityOK {
			result.DataIntegrityErrors++
		}
		result.Samples = append(result.Samples, sample)

		select {
		case <-ctx.Done():
		case <-time.After(100 * time.Millisecond):
		}
	}

	return result, nil
}

func (p *Probe) runRound(conn net.Conn, host string, result *metrics.BandwidthResult) (metrics.SpeedSample, bool, error) {
	chunk := make([]byte, p.cfg.ChunkSize)
	p.rng.Read(chunk)

	sample := metrics.SpeedSample{Timestamp: time.Now()}

	uploadStart := time.Now()
	request := fmt.Sprintf("POST /post HTTP/1.1\r\nHost: %s\r\nContent-Length: %d\r\nConnection: keep-alive\r\n\r\n", host, len(chunk))

	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	defer conn.SetDeadline(time.Time{})

	if _, err := conn.Write([]byte(request)); err != nil {
		return sample, false, nsterr.Wrap(nsterr.Connection, err, "writing bandwidth request headers")
	}
	if _, err := conn.Write(chunk); err != nil {
		return sample, false, nsterr.Wrap(nsterr.Connection, err, "writing bandwidth request body")
	}
	uploadDuration := time.Since(uploadStart)
	sample.UploadSpeed = float64(len(chunk)) / uploadDuration.Seconds()
	result.TotalBytesSent += uint64(len(chunk))

	downloadStart := time.Now()
	response, err := p.readResponse(conn)
	if err != nil {
		return sample, false, err
	}
	downloadDuration := time.Since(downloadStart)
	if downloadDuration <= 0 {
		downloadDuration = time.Nanosecond
	}
	sample.DownloadSpeed = float64(len(response)) / downloadDuration.Seconds()
	result.TotalBytesReceived += uint64(len(response))

	return sample, responseLooksHealthy(response), nil
}

// readResponse reads in 4 KiB chunks with a 5 s per-read deadline until
// the buffer ends with the header terminator or has grown to at least
// twice the configured chunk size, matching the companion server's
// download-complete heuristic.
func (p *Probe) readResponse(conn net.Conn) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 4096)
	limit := 2 * p.cfg.ChunkSize

	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		n, err := conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if bytes.HasSuffix(buf.Bytes(), []byte("\r\n\r\n")) || buf.Len() >= limit {
			return buf.Bytes(), nil
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil, nsterr.Wrap(nsterr.Timeout, err, "reading bandwidth response")
			}
			return nil, nsterr.Wrap(nsterr.Connection, err, "reading bandwidth response")
		}
	}
}

func responseLooksHealthy(response []byte) bool {
	s := string(response)
	if !strings.Contains(s, "HTTP/") {
		return false
	}
	for _, ok := range []string{"200 OK", "201 Created", "204 No Content"} {
		if strings.Contains(s, ok) {
			return true
		}
	}
	return false
}
