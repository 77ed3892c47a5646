package lifecycle

// Transition runs the transition table. It is the only place a next state
// is computed; callers must treat the returned state as the sole legal
// mutation of lifecycle state.
//
// The configured flag selects the recovery target when leaving the error
// state. Events that do not apply to the current state return the state
// unchanged with no actions.
func Transition(s State, ev Event, configured bool) (State, []Action) {
	// Factory reset and faults apply from any state.
	switch ev {
	case EventFactoryReset:
		// The discovery surface comes back up before the restart intent so
		// the device stays reconfigurable when no restart hook is installed.
		return StateDiscovery, []Action{
			ActionEraseConfig,
			ActionClearConfigured,
			ActionActivateDiscoveryEndpoints,
			ActionStartAccessPoint,
			ActionRestart,
		}
	case EventFault:
		return StateError, nil
	}

	switch s {
	case StateDiscovery:
		if ev == EventConfigSaved {
			return StateConfiguring, []Action{ActionStopAccessPoint, ActionStartJoin}
		}

	case StateConfiguring:
		switch ev {
		case EventJoinSucceeded:
			return StateOperational, []Action{ActionActivateOperationalEndpoints, ActionRegister}
		case EventJoinFailed:
			return StateDiscovery, []Action{
				ActionClearConfigured,
				ActionActivateDiscoveryEndpoints,
				ActionStartAccessPoint,
			}
		}

	case StateError:
		if ev == EventCooldownElapsed {
			if configured {
				return StateConfiguring, []Action{ActionStartJoin}
			}
			return StateDiscovery, []Action{
				ActionActivateDiscoveryEndpoints,
				ActionStartAccessPoint,
			}
		}
	}

	return s, nil
}
