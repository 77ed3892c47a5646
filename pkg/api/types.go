// Package api implements the device's inbound HTTP surface: the discovery
// endpoint group served while the access point is up, and the operational
// group served after the network join. Only one group is reachable at a
// time; activation follows the lifecycle state machine.
package api

import (
	"errors"

	"github.com/sdn-protocol/dataplane-go/pkg/model"
)

// Handler errors returned by the backend. The endpoint set maps them to
// HTTP status codes.
var (
	// ErrNotSensor - the data endpoint was hit on a non-sensor device.
	ErrNotSensor = errors.New("not a sensor device")

	// ErrNotActuator - the command endpoint was hit on a non-actuator device.
	ErrNotActuator = errors.New("not an actuator device")

	// ErrSaveFailed - configuration persistence failed.
	ErrSaveFailed = errors.New("failed to save configuration")

	// ErrCommandFailed - the command executor reported failure.
	ErrCommandFailed = errors.New("command execution failed")
)

// InfoResponse is the GET /api/info payload.
type InfoResponse struct {
	DeviceID        string `json:"deviceId"`
	DeviceType      string `json:"deviceType"`
	Description     string `json:"description"`
	FirmwareVersion string `json:"firmwareVersion"`
	HardwareVersion string `json:"hardwareVersion"`
	Configured      bool   `json:"configured"`
	Mode            string `json:"mode"`
	Capability      any    `json:"capability"`
}

// StatusResponse is the GET /api/status payload. WifiRSSI is only present
// in the operational (joined) mode.
type StatusResponse struct {
	DeviceID   string `json:"deviceId"`
	State      string `json:"state"`
	Configured bool   `json:"configured"`
	Uptime     int64  `json:"uptime"`
	FreeMemory uint64 `json:"freeMemory"`
	Mode       string `json:"mode"`
	WifiRSSI   *int   `json:"wifiRSSI,omitempty"`
	IP         string `json:"ip"`
}

// ConfigRequest is the POST /api/config payload. Pointer fields distinguish
// a missing field from a zero value; all fields are required.
type ConfigRequest struct {
	DeviceName       *string `json:"deviceName"`
	DeviceType       *string `json:"deviceType"`
	WifiSSID         *string `json:"wifiSSID"`
	WifiPassword     *string `json:"wifiPassword"`
	ControlPlaneHost *string `json:"controlPlaneIP"`
	ControlPlanePort *int    `json:"controlPlanePort"`
	ReadInterval     *int    `json:"readInterval"`
}

// missingField returns the name of the first absent required field, or "".
func (r *ConfigRequest) missingField() string {
	switch {
	case r.DeviceName == nil:
		return "deviceName"
	case r.DeviceType == nil:
		return "deviceType"
	case r.WifiSSID == nil:
		return "wifiSSID"
	case r.WifiPassword == nil:
		return "wifiPassword"
	case r.ControlPlaneHost == nil:
		return "controlPlaneIP"
	case r.ControlPlanePort == nil:
		return "controlPlanePort"
	case r.ReadInterval == nil:
		return "readInterval"
	}
	return ""
}

// ResultResponse is the generic {success, message} payload.
type ResultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Backend is implemented by the device service. The endpoint set performs
// all wire-level parsing and validation; the backend performs the side
// effects and reports domain errors.
type Backend interface {
	// Info returns the info payload for the discovery group.
	Info() InfoResponse

	// Status returns the status payload for either group.
	Status() StatusResponse

	// ApplyConfig accepts a validated configuration: update in-memory
	// state, persist, and schedule the mode switch. Returns ErrSaveFailed
	// when persistence fails; the mode switch must not be scheduled then.
	ApplyConfig(req ConfigRequest) error

	// SensorData returns the current JSON telemetry payload.
	// Returns ErrNotSensor for non-sensor devices.
	SensorData() ([]byte, error)

	// ExecuteCommand runs a parsed command through the executor hook.
	// Returns ErrNotActuator for non-actuator devices (the hook must not
	// run then) and ErrCommandFailed when the hook reports failure.
	ExecuteCommand(cmd model.Command) error
}
