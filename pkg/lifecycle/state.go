package lifecycle

// State is the device lifecycle mode.
type State uint8

const (
	// StateDiscovery - local access point up, waiting for configuration.
	StateDiscovery State = iota

	// StateConfiguring - network join in progress.
	StateConfiguring

	// StateOperational - joined, steady-state telemetry and heartbeats.
	StateOperational

	// StateError - fault signalled; cooldown-retry is the only exit.
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDiscovery:
		return "DISCOVERY"
	case StateConfiguring:
		return "CONFIGURING"
	case StateOperational:
		return "OPERATIONAL"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StatusLabel returns the label reported through the status-changed
// notification sink.
func (s State) StatusLabel() string {
	switch s {
	case StateDiscovery:
		return "discovery_mode"
	case StateConfiguring:
		return "connecting"
	case StateOperational:
		return "operational"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is an input to the transition table.
type Event uint8

const (
	// EventConfigSaved - a configuration was accepted and persisted.
	EventConfigSaved Event = iota

	// EventJoinSucceeded - the network join completed.
	EventJoinSucceeded

	// EventJoinFailed - the network join failed definitively.
	EventJoinFailed

	// EventCooldownElapsed - the error-state cooldown expired.
	EventCooldownElapsed

	// EventFault - a fatal infrastructure fault was signalled.
	EventFault

	// EventFactoryReset - a factory reset was requested.
	EventFactoryReset
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventConfigSaved:
		return "CONFIG_SAVED"
	case EventJoinSucceeded:
		return "JOIN_SUCCEEDED"
	case EventJoinFailed:
		return "JOIN_FAILED"
	case EventCooldownElapsed:
		return "COOLDOWN_ELAPSED"
	case EventFault:
		return "FAULT"
	case EventFactoryReset:
		return "FACTORY_RESET"
	default:
		return "UNKNOWN"
	}
}

// Action is a side-effect intent for the runner to execute.
type Action uint8

const (
	// ActionStartAccessPoint brings the discovery access point up.
	ActionStartAccessPoint Action = iota

	// ActionStopAccessPoint tears the access point down.
	ActionStopAccessPoint

	// ActionStartJoin begins the network join with the stored credentials.
	ActionStartJoin

	// ActionActivateDiscoveryEndpoints switches the inbound surface to the
	// discovery group.
	ActionActivateDiscoveryEndpoints

	// ActionActivateOperationalEndpoints switches the inbound surface to
	// the operational group.
	ActionActivateOperationalEndpoints

	// ActionClearConfigured clears the in-memory configured flag after a
	// failed join.
	ActionClearConfigured

	// ActionRegister announces the device to the control plane. Emitted
	// exactly once per operational entry.
	ActionRegister

	// ActionSendTelemetry pushes a sensor reading.
	ActionSendTelemetry

	// ActionSendHeartbeat pushes a liveness signal.
	ActionSendHeartbeat

	// ActionEraseConfig removes the persisted record.
	ActionEraseConfig

	// ActionRestart asks the runner to restart the device.
	ActionRestart
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionStartAccessPoint:
		return "START_AP"
	case ActionStopAccessPoint:
		return "STOP_AP"
	case ActionStartJoin:
		return "START_JOIN"
	case ActionActivateDiscoveryEndpoints:
		return "ACTIVATE_DISCOVERY_ENDPOINTS"
	case ActionActivateOperationalEndpoints:
		return "ACTIVATE_OPERATIONAL_ENDPOINTS"
	case ActionClearConfigured:
		return "CLEAR_CONFIGURED"
	case ActionRegister:
		return "REGISTER"
	case ActionSendTelemetry:
		return "SEND_TELEMETRY"
	case ActionSendHeartbeat:
		return "SEND_HEARTBEAT"
	case ActionEraseConfig:
		return "ERASE_CONFIG"
	case ActionRestart:
		return "RESTART"
	default:
		return "UNKNOWN"
	}
}

// JoinStatus is the externally observed join progress fed into Tick.
// It decouples the machine from the network package.
type JoinStatus uint8

const (
	// JoinUnknown - no join information this tick.
	JoinUnknown JoinStatus = iota

	// JoinPending - association still underway.
	JoinPending

	// JoinSuccess - the device holds an address on the target network.
	JoinSuccess

	// JoinFailure - the join failed definitively.
	JoinFailure
)
