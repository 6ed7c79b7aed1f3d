package socks

import (
	"bytes"
	"testing"
)

func TestReadIPv4(t *testing.T) {
	addr, err := readIPv4(bytes.NewReader([]byte{127, 0, 0, 1}))
	if err != nil {
		t.Fatalf("readIPv4: %s", err)
	}
	if addr.String() != "127.0.0.1" {
		t.Errorf("got %q, want 127.0.0.1", addr.String())
	}
}

func TestReadIPv4Truncated(t *testing.T) {
	if _, err := readIPv4(bytes.NewReader([]byte{127, 0})); err == nil {
		t.Fatal("expected error for truncated IPv4 address")
	}
}

func TestReadIPv6(t *testing.T) {
	ipv6 := make([]byte, 16)
	ipv6[15] = 1

	addr, err := readIPv6(bytes.NewReader(ipv6))
	if err != nil {
		t.Fatalf("readIPv6: %s", err)
	}
	if addr.String() != "::1" {
		t.Errorf("got %q, want ::1", addr.String())
	}
}

func TestReadIPv6Truncated(t *testing.T) {
	if _, err := readIPv6(bytes.NewReader(make([]byte, 10))); err == nil {
		t.Fatal("expected error for truncated IPv6 address")
	}
}

func TestReadFQDN(t *testing.T) {
	in := append([]byte{11}, "example.com"...)

	addr, err := readFQDN(bytes.NewReader(in))
	if err != nil {
		t.Fatalf("readFQDN: %s", err)
	}
	if addr.FQDN != "example.com" {
		t.Errorf("got %q, want example.com", addr.FQDN)
	}
}

func TestReadFQDNTruncated(t *testing.T) {
	in := append([]byte{20}, "short"...)
	if _, err := readFQDN(bytes.NewReader(in)); err == nil {
		t.Fatal("expected error for truncated FQDN body")
	}
}

func TestReadFQDNMissingLength(t *testing.T) {
	if _, err := readFQDN(bytes.NewReader(nil)); err == nil {
		t.Fatal("expected error for missing length byte")
	}
}
