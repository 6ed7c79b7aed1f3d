package socks

import (
	"fmt"
	"io"
)

// ######## Method selection ######## //
//
// https://datatracker.ietf.org/doc/html/rfc1928#section-3
//
//                   +----+----------+----------+
//                   |VER | NMETHODS | METHODS  |
//                   +----+----------+----------+
//                   | 1  |    1     | 1 to 255 |
//                   +----+----------+----------+

// WriteMethodSelectionRequest writes the initial method selection request,
// offering the given methods in order.
func WriteMethodSelectionRequest(w io.Writer, methods ...Method) error {
	out := make([]byte, 0, 2+len(methods))
	out = append(out, VersionSocks5, byte(len(methods)))
	for _, m := range methods {
		out = append(out, byte(m))
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing method selection request: %s", err)
	}
	return nil
}

// ReadMethodSelectionResponse reads the server's chosen method.
//
//	                    +----+--------+
//	                    |VER | METHOD |
//	                    +----+--------+
//	                    | 1  |   1    |
//	                    +----+--------+
func ReadMethodSelectionResponse(r io.Reader) (Method, error) {
	b := make([]byte, 2)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, fmt.Errorf("reading method selection response: %s", err)
	}

	if b[0] != VersionSocks5 {
		return 0, fmt.Errorf("invalid version: %#x", b[0])
	}

	return Method(b[1]), nil
}

// ######## RFC 1929 username/password sub-negotiation ######## //
//
//	+----+------+----------+------+----------+
//	|VER | ULEN |  UNAME   | PLEN |  PASSWD  |
//	+----+------+----------+------+----------+
//	| 1  |  1   | 1 to 255 |  1   | 1 to 255 |
//	+----+------+----------+------+----------+

// authVersion is the version byte used by the RFC 1929 sub-negotiation,
// distinct from VersionSocks5.
const authVersion = byte(0x01)

// WriteUserPassRequest writes the username/password authentication
// request.
func WriteUserPassRequest(w io.Writer, username, password string) error {
	if len(username) > 255 || len(password) > 255 {
		return fmt.Errorf("username/password must each be at most 255 bytes")
	}

	out := make([]byte, 0, 3+len(username)+len(password))
	out = append(out, authVersion, byte(len(username)))
	out = append(out, username...)
	out = append(out, byte(len(password)))
	out = append(out, password...)

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing username/password request: %s", err)
	}
	return nil
}

// ReadUserPassResponse reads the authentication status. A nonzero status
// byte means authentication failed.
//
//	+----+--------+
//	|VER | STATUS |
//	+----+--------+
//	| 1  |   1    |
//	+----+--------+
func ReadUserPassResponse(r io.Reader) error {
	b := make([]byte, 2)
	if _, err := io.ReadFull(r, b); err != nil {
		return fmt.Errorf("reading username/password response: %s", err)
	}

	if b[0] != authVersion {
		return fmt.Errorf("invalid auth version: %#x", b[0])
	}
	if b[1] != 0x00 {
		return fmt.Errorf("authentication failed, status %#x", b[1])
	}
	return nil
}
