// internal/writer/ingest/client.go
package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"
)

// Raw Ingest v1 framing.
//
//	0-1  magic "RI"
//	2    version 0x01
//	3    area
//	4-5  unit id
//	6-7  address
//	8-9  register count
//	10+  registers, big-endian
//
// The receiver answers with one status byte.
const (
	headerLen = 10

	versionV1 byte = 0x01

	respOK       byte = 0x00
	respRejected byte = 0x01
)

var magic = [2]byte{'R', 'I'}

// ErrRejected is returned when the receiver refuses a packet.
var ErrRejected = errors.New("writer ingest: rejected")

// Packet is one Raw Ingest v1 register write.
type Packet struct {
	Area   byte
	UnitID uint8
	Addr   uint16
	Regs   []uint16
}

// MarshalBinary encodes the packet.
func (p Packet) MarshalBinary() ([]byte, error) {
	if len(p.Regs) > 0xFFFF {
		return nil, fmt.Errorf("writer ingest: %d registers exceed packet limit", len(p.Regs))
	}

	buf := make([]byte, headerLen+2*len(p.Regs))
	buf[0], buf[1] = magic[0], magic[1]
	buf[2] = versionV1
	buf[3] = p.Area
	binary.BigEndian.PutUint16(buf[4:6], uint16(p.UnitID))
	binary.BigEndian.PutUint16(buf[6:8], p.Addr)
	binary.BigEndian.PutUint16(buf[8:10], uint16(len(p.Regs)))
	for i, r := range p.Regs {
		binary.BigEndian.PutUint16(buf[headerLen+2*i:], r)
	}
	return buf, nil
}

// EndpointClient is stateless: one packet per connection.
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
	dial     func(network, addr string, timeout time.Duration) (net.Conn, error)
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &EndpointClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		dial:     net.DialTimeout,
	}, nil
}

func (c *EndpointClient) Close() error { return nil }

// WriteRegisters sends one register block and waits for the status byte.
func (c *EndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	pkt, err := Packet{Area: area, UnitID: unitID, Addr: addr, Regs: regs}.MarshalBinary()
	if err != nil {
		return err
	}

	conn, err := c.dial("tcp", c.endpoint, c.timeout)
	if err != nil {
		return fmt.Errorf("writer ingest: dial: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("writer ingest: deadline: %w", err)
	}
	if _, err := conn.Write(pkt); err != nil {
		return fmt.Errorf("writer ingest: write: %w", err)
	}

	var resp [1]byte
	if _, err := conn.Read(resp[:]); err != nil {
		return fmt.Errorf("writer ingest: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	default:
		return fmt.Errorf("writer ingest: unknown status 0x%02x", resp[0])
	}
}
