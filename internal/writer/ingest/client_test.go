// internal/writer/ingest/client_test.go
package ingest

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

func TestPacket_MarshalBinary(t *testing.T) {
	got, err := Packet{Area: 3, UnitID: 7, Addr: 0x0102, Regs: []uint16{0xABCD, 1}}.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary err=%v", err)
	}
	want := []byte{'R', 'I', 0x01, 3, 0, 7, 0x01, 0x02, 0, 2, 0xAB, 0xCD, 0, 1}
	if !bytes.Equal(got, want) {
		t.Fatalf("packet=% x want % x", got, want)
	}
}

// serveOnce accepts one connection, captures the packet and replies.
func serveOnce(t *testing.T, reply byte) (string, <-chan []byte) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	got := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(2 * time.Second))

		hdr := make([]byte, headerLen)
		if _, err := io.ReadFull(conn, hdr); err != nil {
			return
		}
		n := int(hdr[8])<<8 | int(hdr[9])
		body := make([]byte, 2*n)
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}
		got <- append(hdr, body...)
		conn.Write([]byte{reply})
	}()
	return ln.Addr().String(), got
}

func TestWriteRegisters_OK(t *testing.T) {
	addr, got := serveOnce(t, respOK)

	c, err := NewEndpointClient(Config{Endpoint: addr, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewEndpointClient err=%v", err)
	}
	if err := c.WriteRegisters(3, 1, 20, []uint16{1, 2, 3}); err != nil {
		t.Fatalf("WriteRegisters err=%v", err)
	}

	pkt := <-got
	if len(pkt) != headerLen+6 || pkt[3] != 3 || pkt[7] != 20 {
		t.Fatalf("unexpected packet % x", pkt)
	}
}

func TestWriteRegisters_Rejected(t *testing.T) {
	addr, _ := serveOnce(t, respRejected)

	c, _ := NewEndpointClient(Config{Endpoint: addr, Timeout: time.Second})
	if err := c.WriteRegisters(3, 1, 0, []uint16{1}); !errors.Is(err, ErrRejected) {
		t.Fatalf("err=%v want ErrRejected", err)
	}
}

func TestNewEndpointClient_RequiresEndpoint(t *testing.T) {
	if _, err := NewEndpointClient(Config{}); err == nil {
		t.Fatalf("expected error")
	}
}
