package socks

import (
	"bytes"
	"testing"
)

func TestWriteConnectRequestIPv4(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteConnectRequest(&buf, "93.184.216.34", 443); err != nil {
		t.Fatalf("WriteConnectRequest: %s", err)
	}

	want := []byte{VersionSocks5, byte(CommandConnect), RSV, byte(AddressTypeIPv4), 93, 184, 216, 34, 0x01, 0xbb}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestWriteConnectRequestFQDN(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteConnectRequest(&buf, "example.com", 80); err != nil {
		t.Fatalf("WriteConnectRequest: %s", err)
	}

	want := []byte{VersionSocks5, byte(CommandConnect), RSV, byte(AddressTypeFQDN), 11}
	want = append(want, "example.com"...)
	want = append(want, 0x00, 0x50)

	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestWriteAssociateRequest(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAssociateRequest(&buf); err != nil {
		t.Fatalf("WriteAssociateRequest: %s", err)
	}

	want := []byte{VersionSocks5, byte(CommandAssociate), RSV, byte(AddressTypeIPv4), 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestReadReplySuccess(t *testing.T) {
	in := []byte{VersionSocks5, byte(ReplySuccess), RSV, byte(AddressTypeIPv4), 10, 0, 0, 1, 0x1f, 0x90}

	reply, err := ReadReply(bytes.NewReader(in))
	if err != nil {
		t.Fatalf("ReadReply: %s", err)
	}

	if reply.Rep != ReplySuccess {
		t.Errorf("Rep = %#x, want ReplySuccess", byte(reply.Rep))
	}
	if reply.BndAddr.String() != "10.0.0.1" {
		t.Errorf("BndAddr = %q, want 10.0.0.1", reply.BndAddr.String())
	}
	if reply.BndPort != 8080 {
		t.Errorf("BndPort = %d, want 8080", reply.BndPort)
	}
}

func TestReadReplyFailureStillParsesAddr(t *testing.T) {
	in := []byte{VersionSocks5, byte(ReplyHostUnreachable), RSV, byte(AddressTypeIPv4), 0, 0, 0, 0, 0, 0}

	reply, err := ReadReply(bytes.NewReader(in))
	if err != nil {
		t.Fatalf("ReadReply: %s", err)
	}
	if reply.Rep != ReplyHostUnreachable {
		t.Errorf("Rep = %#x, want ReplyHostUnreachable", byte(reply.Rep))
	}
}

func TestReadReplyBadVersion(t *testing.T) {
	in := []byte{0x04, byte(ReplySuccess), RSV, byte(AddressTypeIPv4), 0, 0, 0, 0, 0, 0}
	if _, err := ReadReply(bytes.NewReader(in)); err == nil {
		t.Fatal("expected error for bad version")
	}
}

func TestReadReplyUnsupportedAtyp(t *testing.T) {
	in := []byte{VersionSocks5, byte(ReplySuccess), RSV, 0x02, 0, 0}
	if _, err := ReadReply(bytes.NewReader(in)); err == nil {
		t.Fatal("expected error for unsupported ATYP")
	}
}
