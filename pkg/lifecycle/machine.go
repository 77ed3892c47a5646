package lifecycle

import (
	"sync"
	"time"
)

// Timing defaults.
const (
	// DefaultHeartbeatInterval is the fixed heartbeat period.
	DefaultHeartbeatInterval = 30 * time.Second

	// DefaultReadInterval applies until a configuration sets one.
	DefaultReadInterval = 10 * time.Second

	// DefaultSwitchDelay is the grace delay between a successful
	// configuration save and the AP teardown, so the success response can
	// flush to the caller.
	DefaultSwitchDelay = 2 * time.Second

	// DefaultErrorCooldown is the wait before an error-state recovery
	// attempt.
	DefaultErrorCooldown = 5 * time.Second
)

// Config sets the machine's static parameters. Zero fields take the
// package defaults.
type Config struct {
	// DeviceType gates the telemetry timer ("sensor" only).
	DeviceType string

	// Configured is the boot-time configured flag.
	Configured bool

	// ReadInterval is the telemetry period.
	ReadInterval time.Duration

	// HeartbeatInterval is the liveness period.
	HeartbeatInterval time.Duration

	// SwitchDelay is the grace delay before the AP-to-join mode switch.
	SwitchDelay time.Duration

	// ErrorCooldown is the error-state retry delay.
	ErrorCooldown time.Duration
}

// Machine holds the lifecycle state and timers. It is safe for concurrent
// use, but a single runner goroutine is the intended driver: inbound
// handlers feed it events, the runner ticks it.
type Machine struct {
	mu sync.Mutex

	state      State
	configured bool
	deviceType string

	readInterval      time.Duration
	heartbeatInterval time.Duration
	switchDelay       time.Duration
	errorCooldown     time.Duration

	lastTelemetry time.Time
	lastHeartbeat time.Time

	// switchAt is when a scheduled AP-to-join switch fires; zero when none
	// is pending.
	switchAt time.Time

	// erroredAt is when the error state was entered.
	erroredAt time.Time
}

// NewMachine creates a machine in the discovery state. Call Boot to move
// it to the boot-appropriate state.
func NewMachine(cfg Config) *Machine {
	if cfg.ReadInterval <= 0 {
		cfg.ReadInterval = DefaultReadInterval
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.SwitchDelay <= 0 {
		cfg.SwitchDelay = DefaultSwitchDelay
	}
	if cfg.ErrorCooldown <= 0 {
		cfg.ErrorCooldown = DefaultErrorCooldown
	}

	return &Machine{
		state:             StateDiscovery,
		configured:        cfg.Configured,
		deviceType:        cfg.DeviceType,
		readInterval:      cfg.ReadInterval,
		heartbeatInterval: cfg.HeartbeatInterval,
		switchDelay:       cfg.SwitchDelay,
		errorCooldown:     cfg.ErrorCooldown,
	}
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Configured returns the in-memory configured flag.
func (m *Machine) Configured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configured
}

// Boot moves a fresh machine to its starting state: configuring (join
// attempted immediately, discovery skipped) when a valid configuration was
// loaded, discovery otherwise.
func (m *Machine) Boot(now time.Time) []Action {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.configured {
		m.state = StateConfiguring
		return []Action{ActionStartJoin}
	}

	m.state = StateDiscovery
	return []Action{ActionActivateDiscoveryEndpoints, ActionStartAccessPoint}
}

// Configure records an accepted configuration: the device type and read
// interval take effect and the configured flag is set. It does not
// transition; ScheduleModeSwitch arms the delayed discovery exit.
func (m *Machine) Configure(deviceType string, readInterval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deviceType = deviceType
	if readInterval > 0 {
		m.readInterval = readInterval
	}
	m.configured = true
}

// ScheduleModeSwitch arms the AP-to-join switch to fire one grace delay
// from now. Only meaningful in the discovery state.
func (m *Machine) ScheduleModeSwitch(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.switchAt = now.Add(m.switchDelay)
}

// Apply runs the transition table for an explicit event and updates the
// machine. It returns the resulting actions; callers detect a transition by
// comparing State before and after.
func (m *Machine) Apply(now time.Time, ev Event) []Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apply(now, ev)
}

// apply is the locked core of Apply.
func (m *Machine) apply(now time.Time, ev Event) []Action {
	next, actions := Transition(m.state, ev, m.configured)
	if next == m.state && actions == nil {
		return nil
	}

	// A same-state row (factory reset while already in discovery) still
	// disarms a pending mode switch and processes its actions.
	m.state = next
	m.switchAt = time.Time{}

	switch next {
	case StateOperational:
		// Timers start on operational entry: first sends happen one full
		// interval after the join completes.
		m.lastTelemetry = now
		m.lastHeartbeat = now
	case StateError:
		m.erroredAt = now
	}

	for _, a := range actions {
		if a == ActionClearConfigured {
			m.configured = false
		}
	}

	return actions
}

// Tick evaluates timers and external inputs at the given instant and
// returns the due actions. At most one transition occurs per tick; the
// telemetry and heartbeat timers are independent and may both fire in the
// same tick.
func (m *Machine) Tick(now time.Time, join JoinStatus) []Action {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateDiscovery:
		if !m.switchAt.IsZero() && !now.Before(m.switchAt) {
			m.switchAt = time.Time{}
			return m.apply(now, EventConfigSaved)
		}

	case StateConfiguring:
		switch join {
		case JoinSuccess:
			return m.apply(now, EventJoinSucceeded)
		case JoinFailure:
			return m.apply(now, EventJoinFailed)
		}

	case StateOperational:
		var actions []Action
		if m.deviceType == deviceTypeSensor && now.Sub(m.lastTelemetry) > m.readInterval {
			actions = append(actions, ActionSendTelemetry)
			m.lastTelemetry = now
		}
		if now.Sub(m.lastHeartbeat) > m.heartbeatInterval {
			actions = append(actions, ActionSendHeartbeat)
			m.lastHeartbeat = now
		}
		return actions

	case StateError:
		if now.Sub(m.erroredAt) > m.errorCooldown {
			return m.apply(now, EventCooldownElapsed)
		}
	}

	return nil
}

// deviceTypeSensor mirrors model.DeviceTypeSensor without importing the
// model package; lifecycle stays dependency-free.
const deviceTypeSensor = "sensor"
