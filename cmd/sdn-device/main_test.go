package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sdn-protocol/dataplane-go/pkg/model"
)

func TestBuildCapabilityFromProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	data := `name: Relay Bank
type: actuator
description: Two-channel relay
actuators:
  - command: setState
    valueType: string
    supportedValues: ["on", "off"]
    responseTime: 100
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := buildCapability(Options{Profile: path, Type: "sensor"})
	if err != nil {
		t.Fatalf("buildCapability() error = %v", err)
	}

	if c.DeviceType != model.DeviceTypeActuator {
		t.Errorf("DeviceType = %q, want actuator", c.DeviceType)
	}
	if c.DeviceName != "Relay Bank" {
		t.Errorf("DeviceName = %q, want Relay Bank", c.DeviceName)
	}
	if len(c.Actuators) != 1 {
		t.Fatalf("len(Actuators) = %d, want 1", len(c.Actuators))
	}

	// The list in the profile collapses to the comma-joined wire form.
	a := c.Actuators[0]
	if a.SupportedValues != "on,off" {
		t.Errorf("SupportedValues = %q, want %q", a.SupportedValues, "on,off")
	}
	if a.Command != "setState" || a.ResponseTime != 100 {
		t.Errorf("actuator spec = %+v", a)
	}
}

func TestBuildCapabilityDefaults(t *testing.T) {
	t.Run("Sensor", func(t *testing.T) {
		c, err := buildCapability(Options{Type: model.DeviceTypeSensor})
		if err != nil {
			t.Fatalf("buildCapability() error = %v", err)
		}
		if len(c.Sensors) != 1 || c.Sensors[0].Type != "temperature" {
			t.Errorf("Sensors = %+v, want one temperature spec", c.Sensors)
		}
	})

	t.Run("Actuator", func(t *testing.T) {
		c, err := buildCapability(Options{Type: model.DeviceTypeActuator})
		if err != nil {
			t.Fatalf("buildCapability() error = %v", err)
		}
		if len(c.Actuators) != 1 || c.Actuators[0].SupportedValues != "on,off" {
			t.Errorf("Actuators = %+v, want one setState spec", c.Actuators)
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		if _, err := buildCapability(Options{Type: "gateway"}); err == nil {
			t.Error("buildCapability() error = nil, want unknown type error")
		}
	})
}
