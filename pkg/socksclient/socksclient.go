// Package socksclient dials a SOCKS5 proxy and performs the CONNECT and
// UDP ASSOCIATE flows on nst's behalf. It builds on pkg/socks for wire
// encoding and classifies every failure with pkg/nsterr so probes can
// dispatch behavior on error kind rather than message text.
package socksclient

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"nst/pkg/nsterr"
	"nst/pkg/socks"
)

// Endpoint describes a SOCKS5 proxy to dial: its address, optional RFC
// 1929 credentials, and the timeout applied to the TCP dial and the
// handshake that follows it.
type Endpoint struct {
	Host           string
	Port           int
	Username       string
	Password       string
	ConnectTimeout time.Duration
}

// Addr renders the proxy's dial address as host:port, bracketing IPv6
// literals the way pkg/format does.
func (e Endpoint) Addr() string {
	if strings.Contains(e.Host, ":") {
		return fmt.Sprintf("[%s]:%d", e.Host, e.Port)
	}
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

func (e Endpoint) hasAuth() bool {
	return e.Username != "" || e.Password != ""
}

func (e Endpoint) timeout() time.Duration {
	if e.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return e.ConnectTimeout
}

// Client dials a single proxy Endpoint. It holds no mutable state and is
// safe to share across goroutines; every probe that needs its own tunnel
// calls Connect or Associate independently.
type Client struct {
	endpoint Endpoint
}

// New builds a Client for the given Endpoint.
func New(endpoint Endpoint) *Client {
	return &Client{endpoint: endpoint}
}

// Endpoint returns the proxy this client dials.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// Dial opens the TCP control connection to the proxy and completes the
// RFC 1928 method negotiation, falling back to RFC 1929 username/password
// authentication when the proxy requires it and credentials are
// configured. The returned net.Conn is the raw control stream, not yet
// carrying a CONNECT or ASSOCIATE request.
func (c *Client) Dial(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.endpoint.timeout()}

	conn, err := dialer.DialContext(ctx, "tcp", c.endpoint.Addr())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nsterr.Wrap(nsterr.Timeout, err, "dialing proxy %s", c.endpoint.Addr())
		}
		return nil, nsterr.Wrap(nsterr.Connection, err, "dialing proxy %s", c.endpoint.Addr())
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := c.handshake(conn); err != nil {
		conn.Close()
		return nil, err
	}

	_ = conn.SetDeadline(time.Time{})
	return conn, nil
}

func (c *Client) handshake(conn net.Conn) error {
	methods := []socks.Method{socks.MethodNoAuthenticationRequired}
	if c.endpoint.hasAuth() {
		methods = []socks.Method{socks.MethodUsernamePassword}
	}

	if err := socks.WriteMethodSelectionRequest(conn, methods...); err != nil {
		return nsterr.Wrap(nsterr.Socks5, err, "sending method selection request")
	}

	method, err := socks.ReadMethodSelectionResponse(conn)
	if err != nil {
		return nsterr.Wrap(nsterr.Socks5, err, "reading method selection response")
	}

	switch method {
	case socks.MethodNoAuthenticationRequired:
		return nil
	case socks.MethodUsernamePassword:
		return c.authenticate(conn)
	case socks.MethodNoAcceptableMethods:
		return nsterr.New(nsterr.Socks5, "proxy rejected all offered authentication methods")
	default:
		return nsterr.New(nsterr.Socks5, "proxy chose unsupported method %#x", byte(method))
	}
}

func (c *Client) authenticate(conn net.Conn) error {
	if !c.endpoint.hasAuth() {
		return nsterr.New(nsterr.Config, "proxy requires username/password authentication but none was configured")
	}

	if err := socks.WriteUserPassRequest(conn, c.endpoint.Username, c.endpoint.Password); err != nil {
		return nsterr.Wrap(nsterr.Socks5, err, "sending username/password request")
	}

	if err := socks.ReadUserPassResponse(conn); err != nil {
		return nsterr.Wrap(nsterr.Socks5, err, "authenticating with proxy")
	}

	return nil
}

// Connect dials the proxy and issues a CONNECT request for targetHostPort,
// returning a net.Conn that carries the tunneled byte stream once the
// proxy replies with success. targetHostPort is split on its rightmost
// colon, matching the original implementation's handling of bracketed
// IPv6 literals.
func (c *Client) Connect(ctx context.Context, targetHostPort string) (net.Conn, error) {
	host, port, err := splitHostPort(targetHostPort)
	if err != nil {
		return nil, nsterr.Wrap(nsterr.Config, err, "parsing target address %q", targetHostPort)
	}

	conn, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := socks.WriteConnectRequest(conn, host, port); err != nil {
		conn.Close()
		return nil, nsterr.Wrap(nsterr.Socks5, err, "sending CONNECT request for %s", targetHostPort)
	}

	reply, err := socks.ReadReply(conn)
	if err != nil {
		conn.Close()
		return nil, nsterr.Wrap(nsterr.Socks5, err, "reading CONNECT reply for %s", targetHostPort)
	}

	if reply.Rep != socks.ReplySuccess {
		conn.Close()
		return nil, nsterr.New(nsterr.Socks5, "CONNECT to %s failed: %s", targetHostPort, reply.Rep)
	}

	_ = conn.SetDeadline(time.Time{})
	return conn, nil
}

// UDPRelay is an established UDP ASSOCIATE session: the control
// connection that must stay open for the relay to remain valid, the local
// UDP socket used to send and receive datagrams, and the relay address
// the proxy bound for this session.
type UDPRelay struct {
	Control net.Conn
	Local   *net.UDPConn
	Relay   netip.AddrPort
}

// Send encapsulates payload in a SOCKS5 UDP datagram addressed to
// host:port and writes it to the relay.
func (u *UDPRelay) Send(host string, port uint16, payload []byte) error {
	datagram := socks.EncodeUDPDatagram(host, port, payload)
	_, err := u.Local.WriteToUDPAddrPort(datagram, u.Relay)
	if err != nil {
		return nsterr.Wrap(nsterr.Connection, err, "sending UDP datagram via relay %s", u.Relay)
	}
	return nil
}

// Receive reads one SOCKS5 UDP datagram from the relay and returns its
// decapsulated payload and claimed origin address.
func (u *UDPRelay) Receive(buf []byte) (payload []byte, origin string, err error) {
	n, _, err := u.Local.ReadFromUDPAddrPort(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, "", nsterr.Wrap(nsterr.Timeout, err, "reading UDP datagram from relay")
		}
		return nil, "", nsterr.Wrap(nsterr.Connection, err, "reading UDP datagram from relay")
	}

	payload, origin, err = socks.DecodeUDPDatagram(buf[:n])
	if err != nil {
		return nil, "", nsterr.Wrap(nsterr.Socks5, err, "decoding UDP datagram from relay")
	}
	return payload, origin, nil
}

// SetDeadline applies a shared read/write deadline to the local UDP
// socket, mirroring the behavior probes expect of a net.Conn.
func (u *UDPRelay) SetDeadline(t time.Time) error {
	return u.Local.SetDeadline(t)
}

// Close tears down both the local UDP socket and the control connection.
// The control connection must be kept open for the duration of the
// ASSOCIATE session; closing it invalidates the relay binding on the
// proxy side, so closing it here is always the last act of a session.
func (u *UDPRelay) Close() error {
	localErr := u.Local.Close()
	ctrlErr := u.Control.Close()
	if localErr != nil {
		return localErr
	}
	return ctrlErr
}

// Associate dials the proxy, issues a UDP ASSOCIATE request, and opens a
// local UDP socket ready to exchange datagrams with the relay address the
// proxy returns.
func (c *Client) Associate(ctx context.Context) (*UDPRelay, error) {
	conn, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := socks.WriteAssociateRequest(conn); err != nil {
		conn.Close()
		return nil, nsterr.Wrap(nsterr.Socks5, err, "sending UDP ASSOCIATE request")
	}

	reply, err := socks.ReadReply(conn)
	if err != nil {
		conn.Close()
		return nil, nsterr.Wrap(nsterr.Socks5, err, "reading UDP ASSOCIATE reply")
	}

	if reply.Rep != socks.ReplySuccess {
		conn.Close()
		return nil, nsterr.New(nsterr.Socks5, "UDP ASSOCIATE failed: %s", reply.Rep)
	}

	relayHost := reply.BndAddr.String()
	if relayHost == "0.0.0.0" || relayHost == "::" || relayHost == "" {
		// Proxy bound an unspecified address; fall back to the address we
		// already dialed it on, per common SOCKS5 server behavior.
		relayHost = c.endpoint.Host
	}

	relayAddr, err := netip.ParseAddr(relayHost)
	if err != nil {
		conn.Close()
		return nil, nsterr.Wrap(nsterr.Socks5, err, "parsing relay address %q from ASSOCIATE reply", relayHost)
	}

	relay := netip.AddrPortFrom(relayAddr, reply.BndPort)

	local, err := net.ListenUDP("udp", nil)
	if err != nil {
		conn.Close()
		return nil, nsterr.Wrap(nsterr.Io, err, "opening local UDP socket for ASSOCIATE session")
	}

	_ = conn.SetDeadline(time.Time{})
	return &UDPRelay{Control: conn, Local: local, Relay: relay}, nil
}

// splitHostPort splits host:port on the rightmost colon, so IPv6 literals
// (which contain colons themselves) are handled the same way as IPv4
// literals and domain names.
func splitHostPort(hostport string) (string, int, error) {
	idx := strings.LastIndex(hostport, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("missing port in address %q", hostport)
	}

	host := hostport[:idx]
	host = strings.TrimPrefix(strings.TrimSuffix(host, "]"), "[")

	port, err := strconv.Atoi(hostport[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in address %q: %w", hostport, err)
	}

	return host, port, nil
}
