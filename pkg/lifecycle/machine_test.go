package lifecycle

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sensorMachine() *Machine {
	return NewMachine(Config{
		DeviceType:        "sensor",
		ReadInterval:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		SwitchDelay:       2 * time.Second,
		ErrorCooldown:     5 * time.Second,
	})
}

func contains(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

func TestBootUnconfigured(t *testing.T) {
	m := sensorMachine()

	actions := m.Boot(t0)

	if got := m.State(); got != StateDiscovery {
		t.Errorf("State() = %v, want StateDiscovery", got)
	}
	if !contains(actions, ActionStartAccessPoint) || !contains(actions, ActionActivateDiscoveryEndpoints) {
		t.Errorf("Boot() actions = %v, want AP start and discovery endpoints", actions)
	}
}

func TestBootConfiguredSkipsDiscovery(t *testing.T) {
	m := NewMachine(Config{DeviceType: "sensor", Configured: true})

	actions := m.Boot(t0)

	if got := m.State(); got != StateConfiguring {
		t.Errorf("State() = %v, want StateConfiguring", got)
	}
	if !contains(actions, ActionStartJoin) {
		t.Errorf("Boot() actions = %v, want StartJoin", actions)
	}
	if contains(actions, ActionStartAccessPoint) {
		t.Errorf("Boot() actions = %v, must not start the AP when configured", actions)
	}
}

func TestScheduledModeSwitch(t *testing.T) {
	m := sensorMachine()
	m.Boot(t0)
	m.Configure("sensor", 10*time.Second)
	m.ScheduleModeSwitch(t0)

	// Before the grace delay: no transition.
	if actions := m.Tick(t0.Add(1*time.Second), JoinUnknown); actions != nil {
		t.Errorf("Tick() before grace delay = %v, want nil", actions)
	}
	if got := m.State(); got != StateDiscovery {
		t.Fatalf("State() = %v before grace delay, want StateDiscovery", got)
	}

	// At the grace delay: transition to configuring with AP teardown.
	actions := m.Tick(t0.Add(2*time.Second), JoinUnknown)
	if got := m.State(); got != StateConfiguring {
		t.Errorf("State() = %v, want StateConfiguring", got)
	}
	if !contains(actions, ActionStopAccessPoint) || !contains(actions, ActionStartJoin) {
		t.Errorf("Tick() actions = %v, want StopAP and StartJoin", actions)
	}

	// The switch is one-shot.
	if actions := m.Tick(t0.Add(3*time.Second), JoinUnknown); contains(actions, ActionStartJoin) {
		t.Errorf("Tick() after switch = %v, switch fired twice", actions)
	}
}

func TestNoSwitchWithoutSchedule(t *testing.T) {
	m := sensorMachine()
	m.Boot(t0)

	// A failed save means ScheduleModeSwitch is never called; the machine
	// must stay in discovery indefinitely.
	for i := 1; i <= 10; i++ {
		if actions := m.Tick(t0.Add(time.Duration(i)*time.Second), JoinUnknown); actions != nil {
			t.Fatalf("Tick() = %v with no scheduled switch, want nil", actions)
		}
	}
	if got := m.State(); got != StateDiscovery {
		t.Errorf("State() = %v, want StateDiscovery", got)
	}
}

func TestJoinSuccessEntersOperational(t *testing.T) {
	m := NewMachine(Config{DeviceType: "sensor", Configured: true})
	m.Boot(t0)

	// Pending keeps the machine configuring.
	if m.Tick(t0.Add(time.Second), JoinPending) != nil {
		t.Error("Tick(JoinPending) produced actions")
	}
	if got := m.State(); got != StateConfiguring {
		t.Fatalf("State() = %v, want StateConfiguring", got)
	}

	actions := m.Tick(t0.Add(2*time.Second), JoinSuccess)
	if got := m.State(); got != StateOperational {
		t.Errorf("State() = %v, want StateOperational", got)
	}
	if !contains(actions, ActionRegister) || !contains(actions, ActionActivateOperationalEndpoints) {
		t.Errorf("Tick() actions = %v, want Register and operational endpoints", actions)
	}

	// Register is emitted once per operational entry, never again on
	// subsequent ticks.
	if actions := m.Tick(t0.Add(3*time.Second), JoinSuccess); contains(actions, ActionRegister) {
		t.Errorf("Tick() = %v, Register emitted twice", actions)
	}
}

func TestJoinFailureClearsConfigured(t *testing.T) {
	m := NewMachine(Config{DeviceType: "sensor", Configured: true})
	m.Boot(t0)

	if !m.Configured() {
		t.Fatal("Configured() = false before join failure")
	}

	actions := m.Tick(t0.Add(time.Second), JoinFailure)

	if got := m.State(); got != StateDiscovery {
		t.Errorf("State() = %v, want StateDiscovery", got)
	}
	if m.Configured() {
		t.Error("Configured() = true after join failure, want cleared")
	}
	if !contains(actions, ActionClearConfigured) || !contains(actions, ActionStartAccessPoint) {
		t.Errorf("Tick() actions = %v, want ClearConfigured and StartAP", actions)
	}
}

func TestIndependentTimers(t *testing.T) {
	m := sensorMachine()
	m.Boot(t0)
	m.Configure("sensor", 10*time.Second)
	m.ScheduleModeSwitch(t0)
	m.Tick(t0.Add(2*time.Second), JoinUnknown) // -> configuring
	m.Tick(t0.Add(3*time.Second), JoinSuccess) // -> operational, timers anchored at +3s
	entered := t0.Add(3 * time.Second)

	t.Run("TelemetryOnly", func(t *testing.T) {
		// Past the read interval but not the heartbeat interval.
		actions := m.Tick(entered.Add(11*time.Second), JoinUnknown)
		if !contains(actions, ActionSendTelemetry) {
			t.Errorf("Tick() = %v, want SendTelemetry", actions)
		}
		if contains(actions, ActionSendHeartbeat) {
			t.Errorf("Tick() = %v, heartbeat fired early", actions)
		}
	})

	t.Run("HeartbeatOnly", func(t *testing.T) {
		// Re-anchor telemetry at +25s, then tick at +31s: heartbeat is due
		// (31s > 30s) while telemetry has only 6s elapsed on its 10s
		// interval.
		m.Tick(entered.Add(25*time.Second), JoinUnknown)

		actions := m.Tick(entered.Add(31*time.Second), JoinUnknown)
		if !contains(actions, ActionSendHeartbeat) {
			t.Errorf("Tick() = %v, want SendHeartbeat", actions)
		}
		if contains(actions, ActionSendTelemetry) {
			t.Errorf("Tick() = %v, telemetry fired inside its interval", actions)
		}
	})

	t.Run("BothInOneTick", func(t *testing.T) {
		actions := m.Tick(entered.Add(90*time.Second), JoinUnknown)
		if !contains(actions, ActionSendTelemetry) || !contains(actions, ActionSendHeartbeat) {
			t.Errorf("Tick() = %v, want both sends", actions)
		}
	})
}

func TestHeartbeatOnlyForNonSensor(t *testing.T) {
	m := NewMachine(Config{
		DeviceType:        "actuator",
		Configured:        true,
		ReadInterval:      time.Second,
		HeartbeatInterval: 30 * time.Second,
	})
	m.Boot(t0)
	m.Tick(t0, JoinSuccess)

	actions := m.Tick(t0.Add(time.Minute), JoinUnknown)
	if contains(actions, ActionSendTelemetry) {
		t.Errorf("Tick() = %v, actuator must not send telemetry", actions)
	}
	if !contains(actions, ActionSendHeartbeat) {
		t.Errorf("Tick() = %v, want SendHeartbeat", actions)
	}
}

func TestErrorCooldownBranches(t *testing.T) {
	t.Run("ConfiguredRetriesJoin", func(t *testing.T) {
		m := NewMachine(Config{DeviceType: "sensor", Configured: true, ErrorCooldown: 5 * time.Second})
		m.Apply(t0, EventFault)
		if got := m.State(); got != StateError {
			t.Fatalf("State() = %v, want StateError", got)
		}

		// Within cooldown: nothing.
		if actions := m.Tick(t0.Add(4*time.Second), JoinUnknown); actions != nil {
			t.Errorf("Tick() within cooldown = %v, want nil", actions)
		}

		actions := m.Tick(t0.Add(6*time.Second), JoinUnknown)
		if got := m.State(); got != StateConfiguring {
			t.Errorf("State() = %v, want StateConfiguring", got)
		}
		if !contains(actions, ActionStartJoin) {
			t.Errorf("Tick() = %v, want StartJoin", actions)
		}
	})

	t.Run("UnconfiguredRestartsDiscovery", func(t *testing.T) {
		m := NewMachine(Config{DeviceType: "sensor", ErrorCooldown: 5 * time.Second})
		m.Apply(t0, EventFault)

		actions := m.Tick(t0.Add(6*time.Second), JoinUnknown)
		if got := m.State(); got != StateDiscovery {
			t.Errorf("State() = %v, want StateDiscovery", got)
		}
		if !contains(actions, ActionStartAccessPoint) {
			t.Errorf("Tick() = %v, want StartAP", actions)
		}
	})
}

func TestFactoryResetFromOperational(t *testing.T) {
	m := NewMachine(Config{DeviceType: "sensor", Configured: true})
	m.Boot(t0)
	m.Tick(t0, JoinSuccess)

	actions := m.Apply(t0.Add(time.Minute), EventFactoryReset)

	if got := m.State(); got != StateDiscovery {
		t.Errorf("State() = %v, want StateDiscovery", got)
	}
	if m.Configured() {
		t.Error("Configured() = true after factory reset")
	}
	if !contains(actions, ActionEraseConfig) || !contains(actions, ActionRestart) {
		t.Errorf("Apply() actions = %v, want EraseConfig and Restart", actions)
	}
}

func TestFactoryResetDuringModeSwitchGrace(t *testing.T) {
	m := sensorMachine()
	m.Boot(t0)
	m.Configure("sensor", 10*time.Second)
	m.ScheduleModeSwitch(t0)

	// Reset lands inside the grace window, before the switch fires.
	actions := m.Apply(t0.Add(time.Second), EventFactoryReset)

	if got := m.State(); got != StateDiscovery {
		t.Errorf("State() = %v, want StateDiscovery", got)
	}
	if m.Configured() {
		t.Error("Configured() = true after factory reset")
	}
	if !contains(actions, ActionEraseConfig) || !contains(actions, ActionStartAccessPoint) {
		t.Errorf("Apply() actions = %v, want EraseConfig and StartAP", actions)
	}

	// The armed switch is disarmed: no join attempt against the erased
	// configuration.
	if actions := m.Tick(t0.Add(10*time.Second), JoinUnknown); actions != nil {
		t.Errorf("Tick() after reset = %v, want nil", actions)
	}
	if got := m.State(); got != StateDiscovery {
		t.Errorf("State() after tick = %v, want StateDiscovery", got)
	}
}

func TestPendingSwitchCancelledByTransition(t *testing.T) {
	m := sensorMachine()
	m.Boot(t0)
	m.Configure("sensor", 10*time.Second)
	m.ScheduleModeSwitch(t0)

	// A fault before the switch fires must cancel it.
	m.Apply(t0.Add(time.Second), EventFault)
	m.Tick(t0.Add(10*time.Second), JoinUnknown)

	// After cooldown the machine recovers toward configuring (configured
	// is still true), not via the stale scheduled switch.
	if got := m.State(); got != StateConfiguring {
		t.Errorf("State() = %v, want StateConfiguring via cooldown recovery", got)
	}
}
