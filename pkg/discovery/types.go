// Package discovery implements mDNS advertisement for the device. While the
// access point is up the device advertises a discoverable service so setup
// tools can find it; once joined to the configured network it advertises an
// operational service instead.
package discovery

import (
	"errors"
	"time"
)

// Service types and domain.
const (
	// ServiceTypeDiscoverable is advertised while the device awaits
	// configuration.
	ServiceTypeDiscoverable = "_sdnc._udp"

	// ServiceTypeOperational is advertised once the device has joined the
	// configured network.
	ServiceTypeOperational = "_sdn._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultPort is used when the advertised info carries no port.
	DefaultPort = 80

	// MaxInstanceNameLen is the DNS label limit for instance names.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyDeviceID   = "id"
	TXTKeyDeviceType = "type"
	TXTKeyConfigured = "configured"
	TXTKeyFirmware   = "fw"
	TXTKeyDeviceName = "name"
)

// Errors returned by the discovery package.
var (
	// ErrMissingRequired indicates a required TXT field is absent.
	ErrMissingRequired = errors.New("missing required field")

	// ErrInvalidTXTRecord indicates a TXT record could not be parsed.
	ErrInvalidTXTRecord = errors.New("invalid TXT record")

	// ErrNotAdvertising indicates a stop or update with no active service.
	ErrNotAdvertising = errors.New("service not advertising")
)

// Info describes the device for advertisement. The same shape serves both
// service types; Configured is only meaningful on the discoverable service.
type Info struct {
	// DeviceID is the unique device identifier.
	DeviceID string

	// DeviceType is "sensor" or "actuator".
	DeviceType string

	// Configured reports whether the device holds saved configuration.
	Configured bool

	// Firmware is the firmware version string.
	Firmware string

	// DeviceName is the human-readable name, if configured.
	DeviceName string

	// Port is the HTTP API port.
	Port uint16
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       120 * time.Second,
	}
}

// Advertiser publishes the device's mDNS services. At most one service is
// active at a time; advertising one implicitly replaces the other.
type Advertiser interface {
	// AdvertiseDiscoverable starts advertising the discoverable service.
	AdvertiseDiscoverable(info *Info) error

	// AdvertiseOperational starts advertising the operational service.
	AdvertiseOperational(info *Info) error

	// Update refreshes the TXT records of the active service.
	Update(info *Info) error

	// Stop stops the active advertisement.
	Stop() error
}
