// Package config defines the durable device configuration record and its
// storage contract.
//
// The persisted record is the sole source of truth across restarts. A device
// with no record, or a record that fails to parse, boots unconfigured; load
// never fails past this boundary because of record content.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Configuration errors.
var (
	ErrMissingDeviceName = errors.New("device name is empty")
	ErrMissingDeviceType = errors.New("device type is empty")
	ErrMissingSSID       = errors.New("network SSID is empty")
	ErrMissingHost       = errors.New("control plane host is empty")
	ErrInvalidPort       = errors.New("control plane port must be positive")
	ErrInvalidInterval   = errors.New("read interval must be positive")
)

// DeviceConfig is the durable device configuration. It is owned by the
// Store and mutated only by the configuration-accept operation; every save
// writes the full record.
//
// The JSON field names match the control plane's configuration payload, so
// the same shape serves both the wire and the persisted record.
type DeviceConfig struct {
	// DeviceName is the user-assigned device name.
	DeviceName string `json:"deviceName"`

	// DeviceType is "sensor", "actuator", or another application type.
	DeviceType string `json:"deviceType"`

	// WifiSSID and WifiPassword are the target network credentials.
	WifiSSID     string `json:"wifiSSID"`
	WifiPassword string `json:"wifiPassword"`

	// ControlPlaneHost is the control plane address (IP or hostname).
	ControlPlaneHost string `json:"controlPlaneIP"`

	// ControlPlanePort is the control plane HTTP port.
	ControlPlanePort int `json:"controlPlanePort"`

	// ReadInterval is the telemetry push interval in seconds.
	ReadInterval int `json:"readInterval"`

	// Configured marks the record as complete. Configured implies all
	// network fields are set and the port is positive; Validate enforces
	// this invariant.
	Configured bool `json:"configured"`
}

// Validate checks the configured-record invariant. An unconfigured record
// is always valid.
func (c *DeviceConfig) Validate() error {
	if !c.Configured {
		return nil
	}

	switch {
	case c.DeviceName == "":
		return ErrMissingDeviceName
	case c.DeviceType == "":
		return ErrMissingDeviceType
	case c.WifiSSID == "":
		return ErrMissingSSID
	case c.ControlPlaneHost == "":
		return ErrMissingHost
	case c.ControlPlanePort <= 0:
		return ErrInvalidPort
	case c.ReadInterval <= 0:
		return ErrInvalidInterval
	}
	return nil
}

// ReadIntervalDuration returns the telemetry interval as a duration.
func (c *DeviceConfig) ReadIntervalDuration() time.Duration {
	return time.Duration(c.ReadInterval) * time.Second
}

// ControlPlaneAddr returns "host:port" for the control plane.
func (c *DeviceConfig) ControlPlaneAddr() string {
	return fmt.Sprintf("%s:%d", c.ControlPlaneHost, c.ControlPlanePort)
}

// Store defines the durable configuration storage contract.
// Implementations must be safe for concurrent access.
type Store interface {
	// Load reads the persisted record. It returns (nil, nil) when no
	// record exists or the record is malformed; a non-nil error is
	// reserved for infrastructure failures (storage unavailable).
	Load() (*DeviceConfig, error)

	// Save writes the full record, replacing any previous one. After a
	// successful return the new record is what Load yields.
	Save(*DeviceConfig) error

	// Erase removes the record entirely. Erasing an absent record is not
	// an error.
	Erase() error
}
