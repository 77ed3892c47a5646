package model

// Device type constants. Types other than sensor and actuator are allowed
// but get neither the data endpoint nor the command endpoint.
const (
	DeviceTypeSensor   = "sensor"
	DeviceTypeActuator = "actuator"
)

// SensorSpec describes a single sensor channel.
type SensorSpec struct {
	// Type is the sensor kind, e.g. "temperature".
	Type string `json:"type"`

	// DataType is the reading value type, e.g. "float".
	DataType string `json:"dataType"`

	// Unit is the reading unit, e.g. "celsius".
	Unit string `json:"unit"`

	// MinValue and MaxValue bound the reported range.
	MinValue float64 `json:"minValue"`
	MaxValue float64 `json:"maxValue"`

	// Accuracy is the absolute measurement accuracy.
	Accuracy float64 `json:"accuracy"`
}

// ActuatorSpec describes a single supported actuator command.
type ActuatorSpec struct {
	// Command is the command name, e.g. "setState".
	Command string `json:"command"`

	// ValueType is the command value type, e.g. "boolean".
	ValueType string `json:"valueType"`

	// SupportedValues lists accepted values, e.g. "on,off".
	SupportedValues string `json:"supportedValues"`

	// ResponseTime is the worst-case actuation time in milliseconds.
	ResponseTime int `json:"responseTime"`
}

// Capability describes the device to the control plane.
type Capability struct {
	// DeviceName is the user-assigned name. Synchronized from an accepted
	// configuration.
	DeviceName string

	// DeviceType is "sensor", "actuator", or another application-defined
	// type. Synchronized from an accepted configuration.
	DeviceType string

	// Description is a free-form device description.
	Description string

	// FirmwareVersion and HardwareVersion are reported on the info endpoint.
	FirmwareVersion string
	HardwareVersion string

	// Sensors lists sensor channels; only consulted when DeviceType is
	// "sensor".
	Sensors []SensorSpec

	// Actuators lists supported commands; only consulted when DeviceType is
	// "actuator".
	Actuators []ActuatorSpec

	// ReadInterval is the telemetry push interval in seconds. Synchronized
	// from an accepted configuration.
	ReadInterval int
}

// IsSensor reports whether the device type is "sensor".
func (c *Capability) IsSensor() bool {
	return c.DeviceType == DeviceTypeSensor
}

// IsActuator reports whether the device type is "actuator".
func (c *Capability) IsActuator() bool {
	return c.DeviceType == DeviceTypeActuator
}

// SpecList returns the capability descriptor list for the info endpoint.
// The element shape depends on the device type; unknown types get an empty
// list rather than nothing, so the JSON field is always an array.
func (c *Capability) SpecList() any {
	switch c.DeviceType {
	case DeviceTypeSensor:
		if c.Sensors == nil {
			return []SensorSpec{}
		}
		return c.Sensors
	case DeviceTypeActuator:
		if c.Actuators == nil {
			return []ActuatorSpec{}
		}
		return c.Actuators
	default:
		return []struct{}{}
	}
}
