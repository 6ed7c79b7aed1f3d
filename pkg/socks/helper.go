package socks

import (
	"fmt"
	"io"
	"net/netip"
)

// readIPv4 reads 4 bytes representing an IPv4 address from r.
func readIPv4(r io.Reader) (addrIPv4, error) {
	ip := make([]byte, 4)
	if _, err := io.ReadFull(r, ip); err != nil {
		return addrIPv4{}, fmt.Errorf("reading IPv4 address: %s", err)
	}
	return addrIPv4{IP: netip.AddrFrom4(([4]byte)(ip))}, nil
}

// readIPv6 reads 16 bytes representing an IPv6 address from r.
func readIPv6(r io.Reader) (addrIPv6, error) {
	ip := make([]byte, 16)
	if _, err := io.ReadFull(r, ip); err != nil {
		return addrIPv6{}, fmt.Errorf("reading IPv6 address: %s", err)
	}
	return addrIPv6{IP: netip.AddrFrom16(([16]byte)(ip))}, nil
}

// readFQDN reads a length-prefixed domain name from r: one length byte
// followed by that many bytes of ASCII domain name.
func readFQDN(r io.Reader) (addrFQDN, error) {
	size := make([]byte, 1)
	if _, err := io.ReadFull(r, size); err != nil {
		return addrFQDN{}, fmt.Errorf("reading FQDN length: %s", err)
	}

	fqdn := make([]byte, int(size[0]))
	if _, err := io.ReadFull(r, fqdn); err != nil {
		return addrFQDN{}, fmt.Errorf("reading FQDN of size %d: %s", len(fqdn), err)
	}

	return addrFQDN{FQDN: string(fqdn)}, nil
}
