package bandwidth

import (
	"bufio"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"nst/pkg/socksclient"
)

// bandwidthServer accepts a connection and, for every POST /post it sees,
// drains Content-Length bytes and replies 200 OK with Content-Length: 0.
func bandwidthServer(t *testing.T) string {
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
			go serveBandwidth(conn)
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func serveBandwidth(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		requestLine, err := r.ReadString('\n')
		if err != nil {
			return
		}
		if !strings.HasPrefix(requestLine, "POST /post") {
			return
		}

		contentLength := 0
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			trimmed := strings.TrimRight(line, "\r\n")
			if trimmed == "" {
				break
			}
			if strings.HasPrefix(trimmed, "Content-Length:") {
				n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(trimmed, "Content-Length:")))
				if err == nil {
					contentLength = n
				}
			}
		}

		if _, err := io.CopyN(io.Discard, r, int64(contentLength)); err != nil {
			return
		}

		response := "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n"
		if _, err := conn.Write([]byte(response)); err != nil {
			return
		}
	}
}

func fakeConnectProxy(t *testing.T, target string) string {
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
			go serveOneConnect(conn, target)
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func serveOneConnect(conn net.Conn, target string) {
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
		addr := make([]byte, 6)
		io.ReadFull(conn, addr)
	case 0x03:
		lenBuf := make([]byte, 1)
		io.ReadFull(conn, lenBuf)
		rest := make([]byte, int(lenBuf[0])+2)
		io.ReadFull(conn, rest)
	case 0x04:
		addr := make([]byte, 18)
		io.ReadFull(conn, addr)
	}

	if _, err := conn.Write([]byte{0x05, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0}); err != nil {
		return
	}

	upstream, err := net.Dial("tcp", target)
	if err != nil {
		return
	}
	defer upstream.Close()

	done := make(chan struct{}, 2)
	go func() { io.Copy(upstream, conn); done <- struct{}{} }()
	go func() { io.Copy(conn, upstream); done <- struct{}{} }()
	<-done
}

func TestProbeRunProducesSamples(t *testing.T) {
	target := bandwidthServer(t)
	proxyAddr := fakeConnectProxy(t, target)

	host, portStr, err := net.SplitHostPort(proxyAddr)
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing port: %v", err)
	}

	client := socksclient.New(socksclient.Endpoint{Host: host, Port: port, ConnectTimeout: 2 * time.Second})
	p := New(client, Config{
		Target:       target,
		ChunkSize:    256,
		TestDuration: 150 * time.Millisecond,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Samples) == 0 {
		t.Fatal("expected at least one sample")
	}
	if result.DataIntegrityErrors != 0 {
		t.Errorf("DataIntegrityErrors = %d, want 0", result.DataIntegrityErrors)
	}
	if result.TotalBytesSent == 0 {
		t.Error("expected non-zero TotalBytesSent")
	}
}

func TestResponseLooksHealthy(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"200", "HTTP/1.1 200 OK\r\n\r\n", true},
		{"201", "HTTP/1.1 201 Created\r\n\r\n", true},
		{"204", "HTTP/1.1 204 No Content\r\n\r\n", true},
		{"500", "HTTP/1.1 500 Error\r\n\r\n", false},
		{"garbage", "not http at all", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseLooksHealthy([]byte(tt.body)); got != tt.want {
				t.Errorf("responseLooksHealthy(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestProbeRunInitialConnectFailureIsFatal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing port: %v", err)
	}

	client := socksclient.New(socksclient.Endpoint{Host: host, Port: port, ConnectTimeout: 200 * time.Millisecond})
	p := New(client, Config{Target: "127.0.0.1:1", ChunkSize: 64, TestDuration: 50 * time.Millisecond}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := p.Run(ctx); err == nil {
		t.Fatal("expected an error when the initial connection fails")
	}
}
