// Package wol builds and sends Wake-on-LAN magic packets.
package wol

import (
	"bytes"
	"context"
	"fmt"
	"net"
)

const (
	DefaultBroadcast = "255.255.255.255:9"

	PacketSize = 6 + 16*6
)

// Sender emits a wake request for a MAC address.
type Sender interface {
	Wake(ctx context.Context, mac net.HardwareAddr) error
}

// ParseMAC parses a 48-bit MAC address in colon, hyphen or dot notation.
func ParseMAC(s string) (net.HardwareAddr, error) {
	mac, err := net.ParseMAC(s)
	if err != nil {
		return nil, err
	}
	if len(mac) != 6 {
		return nil, fmt.Errorf("%q is not a 48-bit MAC address", s)
	}
	return mac, nil
}

// MagicPacket returns six 0xFF bytes followed by sixteen copies of mac.
func MagicPacket(mac net.HardwareAddr) ([]byte, error) {
	if len(mac) != 6 {
		return nil, fmt.Errorf("magic packet needs a 48-bit MAC address, got %d bytes", len(mac))
	}
	packet := make([]byte, 0, PacketSize)
	packet = append(packet, bytes.Repeat([]byte{0xFF}, 6)...)
	for range 16 {
		packet = append(packet, mac...)
	}
	return packet, nil
}

// UDPSender broadcasts magic packets over UDP.
type UDPSender struct {
	// Addr is the destination, DefaultBroadcast when empty.
	Addr string
}

func (s UDPSender) Wake(ctx context.Context, mac net.HardwareAddr) error {
	packet, err := MagicPacket(mac)
	if err != nil {
		return err
	}

	addr := s.Addr
	if addr == "" {
		addr = DefaultBroadcast
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return fmt.Errorf("failed to open UDP socket to %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.Write(packet); err != nil {
		return fmt.Errorf("failed to send magic packet to %s: %w", addr, err)
	}
	return nil
}
