// Package identity derives the per-boot device identifier from a stable
// hardware address. The identifier is deterministic and is never persisted:
// it is regenerated from the same address on every boot.
package identity

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Prefix is the fixed device ID prefix.
const Prefix = "SDN-"

// Identity errors.
var (
	ErrInvalidHardwareAddr = errors.New("hardware address must be 6 bytes")
	ErrNoHardwareAddr      = errors.New("no usable hardware address found")
)

// Identity is the immutable per-boot device identifier.
// The zero value is not valid; use FromHardwareAddr or FromLocalInterface.
type Identity struct {
	id string
	hw net.HardwareAddr
}

// FromHardwareAddr derives an identity from a 6-byte hardware (MAC) address.
// The ID format is the fixed prefix followed by the 12 uppercase hex digits
// of the address.
func FromHardwareAddr(hw net.HardwareAddr) (Identity, error) {
	if len(hw) != 6 {
		return Identity{}, ErrInvalidHardwareAddr
	}

	addr := make(net.HardwareAddr, 6)
	copy(addr, hw)

	return Identity{
		id: Prefix + strings.ToUpper(fmt.Sprintf("%02x%02x%02x%02x%02x%02x",
			addr[0], addr[1], addr[2], addr[3], addr[4], addr[5])),
		hw: addr,
	}, nil
}

// FromLocalInterface derives an identity from the first non-loopback network
// interface that carries a 6-byte hardware address.
func FromLocalInterface() (Identity, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return Identity{}, fmt.Errorf("failed to enumerate interfaces: %w", err)
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) != 6 {
			continue
		}
		return FromHardwareAddr(iface.HardwareAddr)
	}

	return Identity{}, ErrNoHardwareAddr
}

// ID returns the device identifier string.
func (i Identity) ID() string {
	return i.id
}

// String returns the device identifier string.
func (i Identity) String() string {
	return i.id
}

// HardwareAddr returns a copy of the underlying hardware address.
func (i Identity) HardwareAddr() net.HardwareAddr {
	hw := make(net.HardwareAddr, len(i.hw))
	copy(hw, i.hw)
	return hw
}

// APName returns the access point SSID advertised while unconfigured.
// It uses the last 6 hex digits of the hardware address so multiple
// unconfigured devices on the same bench remain distinguishable.
func (i Identity) APName() string {
	if len(i.id) < 6 {
		return "SDN-Device"
	}
	return "SDN-Device-" + i.id[len(i.id)-6:]
}

// Valid reports whether the identity has been derived from an address.
func (i Identity) Valid() bool {
	return i.id != ""
}
