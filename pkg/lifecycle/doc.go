// Package lifecycle implements the device lifecycle state machine.
//
// The machine owns the current mode (discovery, configuring, operational,
// error) and the periodic-send timers. All mutation goes through two entry
// points: Apply, which runs the transition table for an explicit event, and
// Tick, which evaluates timers and external inputs against a caller-supplied
// clock and applies at most one transition. Neither sleeps or touches the
// wall clock, so every transition is unit-testable without real delays.
//
// The machine decides; it never acts. Each transition and timer expiry
// yields a list of side-effect intents (stop the access point, begin the
// network join, send a heartbeat) for the runner to execute.
package lifecycle
