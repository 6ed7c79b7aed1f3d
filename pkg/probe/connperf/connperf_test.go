package connperf

import (
	"context"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"nst/pkg/socksclient"
)

// acceptCloseProxy accepts connections and completes the no-auth
// handshake plus a successful CONNECT reply, then closes immediately
// (the connection-perf probe only needs to observe the CONNECT result).
func acceptCloseProxy(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				buf := make([]byte, 2)
				if _, err := io.ReadFull(conn, buf); err != nil {
					return
				}
				methods := make([]byte, int(buf[1]))
				if _, err := io.ReadFull(conn, methods); err != nil {
					return
				}
				if _, err := conn.Write([]byte{0x05, 0x00}); err != nil {
					return
				}
				header := make([]byte, 4)
				if _, err := io.ReadFull(conn, header); err != nil {
					return
				}
				switch header[3] {
				case 0x01:
					io.ReadFull(conn, make([]byte, 6))
				case 0x03:
					lenBuf := make([]byte, 1)
					io.ReadFull(conn, lenBuf)
					io.ReadFull(conn, make([]byte, int(lenBuf[0])+2))
				case 0x04:
					io.ReadFull(conn, make([]byte, 18))
				}
				conn.Write([]byte{0x05, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
			}()
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func newTestClient(t *testing.T, proxyAddr string) *socksclient.Client {
	t.Helper()
	host, portStr, err := net.SplitHostPort(proxyAddr)
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing port: %v", err)
	}
	return socksclient.New(socksclient.Endpoint{Host: host, Port: port, ConnectTimeout: 2 * time.Second})
}

func TestProbeRunSequentialAndConcurrentPhases(t *testing.T) {
	proxyAddr := acceptCloseProxy(t)
	client := newTestClient(t, proxyAddr)

	p := New(client, Config{Target: "example.com:80", TotalConnections: 5}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Attempts) != 5 {
		t.Fatalf("len(Attempts) = %d, want 5", len(result.Attempts))
	}
	if result.SuccessfulConnections() != 5 {
		t.Errorf("SuccessfulConnections() = %d, want 5", result.SuccessfulConnections())
	}

	// Levels 2 and 5 are the only ones in {2,5,10,20,50} that are <= TotalConnections (5).
	var levels []int
	for _, c := range result.ConcurrentResults {
		levels = append(levels, c.ConcurrentLevel)
	}
	wantLevels := []int{2, 5}
	if len(levels) != len(wantLevels) {
		t.Fatalf("ConcurrentResults levels = %v, want %v", levels, wantLevels)
	}
	for i, l := range wantLevels {
		if levels[i] != l {
			t.Errorf("ConcurrentResults[%d].ConcurrentLevel = %d, want %d", i, levels[i], l)
		}
	}
}

func TestProbeRunNoAttemptsWhenTotalConnectionsZero(t *testing.T) {
	proxyAddr := acceptCloseProxy(t)
	client := newTestClient(t, proxyAddr)

	p := New(client, Config{Target: "example.com:80", TotalConnections: 0}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Attempts) != 0 {
		t.Errorf("len(Attempts) = %d, want 0", len(result.Attempts))
	}
	if len(result.ConcurrentResults) != 0 {
		t.Errorf("len(ConcurrentResults) = %d, want 0", len(result.ConcurrentResults))
	}
}
