// Package shared provides the CLI flag definitions, address parsing, and
// signal handling nst's subcommands and nst-server share.
package shared

import (
	"net"
	"strconv"

	"nst/pkg/format"
	"nst/pkg/nsterr"
)

// ParseHostPort splits a "host:port" CLI argument into its parts,
// rejecting anything that isn't a valid port number. IPv6 literals must
// be bracketed, matching net.SplitHostPort's standard behavior.
func ParseHostPort(s string) (host string, port int, err error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, nsterr.Wrap(nsterr.Config, err, "parsing address %q", s)
	}

	port, err = strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, nsterr.New(nsterr.Config, "invalid port in address %q", s)
	}

	return host, port, nil
}

// FormatHostPort renders host/port back into "host:port", bracketing
// IPv6 literals.
func FormatHostPort(host string, port int) string {
	return format.Addr(host, port)
}
