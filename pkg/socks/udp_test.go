package socks

import (
	"bytes"
	"testing"
)

func TestEncodeUDPDatagramIPv4(t *testing.T) {
	got := EncodeUDPDatagram("8.8.8.8", 53, []byte("query"))
	want := []byte{RSV, RSV, FRAG, byte(AddressTypeIPv4), 8, 8, 8, 8, 0x00, 0x35}
	want = append(want, "query"...)

	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestEncodeUDPDatagramFQDN(t *testing.T) {
	got := EncodeUDPDatagram("dns.example", 53, []byte("q"))
	want := []byte{RSV, RSV, FRAG, byte(AddressTypeFQDN), 11}
	want = append(want, "dns.example"...)
	want = append(want, 0x00, 0x35)
	want = append(want, 'q')

	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestUDPDatagramRoundTripIPv4(t *testing.T) {
	encoded := EncodeUDPDatagram("1.2.3.4", 9999, []byte("hello"))

	payload, origin, err := DecodeUDPDatagram(encoded)
	if err != nil {
		t.Fatalf("DecodeUDPDatagram: %s", err)
	}
	if !bytes.Equal(payload, []byte("hello")) {
		t.Errorf("payload = %q, want %q", payload, "hello")
	}
	if origin != "1.2.3.4:9999" {
		t.Errorf("origin = %q, want 1.2.3.4:9999", origin)
	}
}

func TestUDPDatagramRoundTripIPv6(t *testing.T) {
	encoded := EncodeUDPDatagram("::1", 1234, []byte("ping"))

	payload, origin, err := DecodeUDPDatagram(encoded)
	if err != nil {
		t.Fatalf("DecodeUDPDatagram: %s", err)
	}
	if !bytes.Equal(payload, []byte("ping")) {
		t.Errorf("payload = %q, want %q", payload, "ping")
	}
	if origin != "::1:1234" {
		t.Errorf("origin = %q, want ::1:1234", origin)
	}
}

func TestUDPDatagramRoundTripFQDN(t *testing.T) {
	encoded := EncodeUDPDatagram("relay.example", 80, nil)

	payload, origin, err := DecodeUDPDatagram(encoded)
	if err != nil {
		t.Fatalf("DecodeUDPDatagram: %s", err)
	}
	if len(payload) != 0 {
		t.Errorf("payload = %q, want empty", payload)
	}
	if origin != "relay.example:80" {
		t.Errorf("origin = %q, want relay.example:80", origin)
	}
}

func TestDecodeUDPDatagramRejectsFragmentation(t *testing.T) {
	data := []byte{RSV, RSV, 0x01, byte(AddressTypeIPv4), 1, 2, 3, 4, 0, 80}
	if _, _, err := DecodeUDPDatagram(data); err != ErrFragmentationNotSupported {
		t.Errorf("err = %v, want ErrFragmentationNotSupported", err)
	}
}

func TestDecodeUDPDatagramRejectsTooShort(t *testing.T) {
	if _, _, err := DecodeUDPDatagram([]byte{RSV, RSV, FRAG}); err == nil {
		t.Fatal("expected error for too-short datagram")
	}
}

func TestDecodeUDPDatagramRejectsBadRSV(t *testing.T) {
	data := []byte{0x01, RSV, FRAG, byte(AddressTypeIPv4), 1, 2, 3, 4, 0, 80}
	if _, _, err := DecodeUDPDatagram(data); err == nil {
		t.Fatal("expected error for nonzero RSV")
	}
}

func TestDecodeUDPDatagramRejectsUnsupportedAtyp(t *testing.T) {
	data := []byte{RSV, RSV, FRAG, 0x02, 1, 2, 3, 4, 0, 80}
	if _, _, err := DecodeUDPDatagram(data); err != ErrAddressTypeNotSupported {
		t.Errorf("err = %v, want ErrAddressTypeNotSupported", err)
	}
}

func TestDecodeUDPDatagramRejectsTruncatedFQDN(t *testing.T) {
	data := []byte{RSV, RSV, FRAG, byte(AddressTypeFQDN), 20, 'a', 'b'}
	if _, _, err := DecodeUDPDatagram(data); err == nil {
		t.Fatal("expected error for FQDN length overrunning datagram")
	}
}
