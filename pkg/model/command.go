package model

// Command is an inbound control-plane command. All fields are carried as
// strings on the wire; interpretation of Value is up to the command
// executor.
type Command struct {
	// ID is the control-plane-assigned command identifier.
	ID string `json:"id"`

	// Command is the command name. Must be one of the capability's
	// actuator spec commands for well-behaved control planes, but the
	// device does not enforce this; the executor decides.
	Command string `json:"command"`

	// Value is the command argument.
	Value string `json:"value"`

	// Timestamp is the control plane's issue time, echoed back untouched.
	Timestamp string `json:"timestamp"`
}
