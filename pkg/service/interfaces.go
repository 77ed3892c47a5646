package service

import (
	"math/rand"

	"github.com/sdn-protocol/dataplane-go/pkg/lifecycle"
	"github.com/sdn-protocol/dataplane-go/pkg/model"
)

// SensorDataProvider supplies the current sensor readings. Called on every
// telemetry push and on every data endpoint hit; implementations should be
// cheap and must be safe for concurrent use.
type SensorDataProvider interface {
	Readings() []model.Reading
}

// CommandExecutor applies an actuator command to the hardware. A returned
// error reports execution failure to the caller; the command is still
// counted as received.
type CommandExecutor interface {
	Execute(cmd model.Command) error
}

// NotificationSink receives application-level notifications. All methods are
// called from the runner goroutine or an HTTP handler; implementations must
// not block.
type NotificationSink interface {
	// StatusChanged fires once per lifecycle transition.
	StatusChanged(oldState, newState lifecycle.State)

	// CommandReceived fires once per accepted command, regardless of the
	// execution outcome.
	CommandReceived(cmd model.Command)
}

// NoopSink is a NotificationSink that discards everything.
type NoopSink struct{}

func (NoopSink) StatusChanged(oldState, newState lifecycle.State) {}
func (NoopSink) CommandReceived(cmd model.Command)                {}

var _ NotificationSink = NoopSink{}

// SyntheticProvider is the default SensorDataProvider: a single generic
// channel with a random value, for devices without real hardware attached.
type SyntheticProvider struct{}

func (SyntheticProvider) Readings() []model.Reading {
	return []model.Reading{
		{
			Type:   "generic",
			Value:  rand.Float64() * 100,
			Unit:   "units",
			Status: "ok",
		},
	}
}

var _ SensorDataProvider = SyntheticProvider{}
