package socks

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ######## UDP datagram encapsulation ######## //
//
// https://datatracker.ietf.org/doc/html/rfc1928#section-7
//
//      +----+------+------+----------+----------+----------+
//      |RSV | FRAG | ATYP | DST.ADDR | DST.PORT |   DATA   |
//      +----+------+------+----------+----------+----------+
//      | 2  |  1   |  1   | Variable |    2     | Variable |
//      +----+------+------+----------+----------+----------+

// FRAG is the only fragment value nst ever sends or accepts.
const FRAG = byte(0x00)

// EncodeUDPDatagram wraps payload in the SOCKS5 UDP request header
// addressed to host:port, ready to send to the relay address returned by
// UDP ASSOCIATE.
func EncodeUDPDatagram(host string, port uint16, payload []byte) []byte {
	addr := ParseAddr(host)

	out := make([]byte, 0, 4+len(addr.Bytes())+2+len(payload))
	out = append(out, RSV, RSV, FRAG, byte(addr.Atyp()))
	out = append(out, addr.Bytes()...)
	out = append(out, byte(port>>8), byte(port))
	out = append(out, payload...)
	return out
}

// DecodeUDPDatagram parses a SOCKS5 UDP datagram received from the relay,
// returning the payload and the origin address it claims to be from.
// Fragmented datagrams (FRAG != 0) are rejected, as nst never reassembles.
func DecodeUDPDatagram(data []byte) (payload []byte, origin string, err error) {
	if len(data) < 10 {
		return nil, "", fmt.Errorf("datagram too short: %d bytes", len(data))
	}

	if data[0] != RSV || data[1] != RSV {
		return nil, "", fmt.Errorf("RSV must be zero but was %#x%02x", data[0], data[1])
	}

	if data[2] != FRAG {
		return nil, "", ErrFragmentationNotSupported
	}

	atyp := Atyp(data[3])
	rest := data[4:]

	var addr Addr
	var addrLen int

	switch atyp {
	case AddressTypeIPv4:
		addrLen = 4
		if len(rest) < addrLen+2 {
			return nil, "", fmt.Errorf("datagram truncated for IPv4 address")
		}
		a, _ := readIPv4(bytes.NewReader(rest[:addrLen]))
		addr = a
	case AddressTypeFQDN:
		if len(rest) < 1 {
			return nil, "", fmt.Errorf("datagram truncated for FQDN length")
		}
		nameLen := int(rest[0])
		addrLen = 1 + nameLen
		if len(rest) < addrLen+2 {
			return nil, "", fmt.Errorf("FQDN length %d overruns datagram", nameLen)
		}
		addr = addrFQDN{FQDN: string(rest[1:addrLen])}
	case AddressTypeIPv6:
		addrLen = 16
		if len(rest) < addrLen+2 {
			return nil, "", fmt.Errorf("datagram truncated for IPv6 address")
		}
		a, _ := readIPv6(bytes.NewReader(rest[:addrLen]))
		addr = a
	default:
		return nil, "", ErrAddressTypeNotSupported
	}

	port := binary.BigEndian.Uint16(rest[addrLen : addrLen+2])
	payload = rest[addrLen+2:]

	return payload, fmt.Sprintf("%s:%d", addr.String(), port), nil
}
