// Package network abstracts the device's two radio roles: the local access
// point used during discovery and the client-side join onto the target
// network. Real hardware backends are supplied by the embedding
// application; simulated implementations live here for the reference
// binary and for tests.
package network

import "errors"

// Network errors.
var (
	ErrAPActive   = errors.New("access point already active")
	ErrJoinActive = errors.New("join already in progress")
)

// JoinState reports the progress of a network join attempt.
type JoinState uint8

const (
	// JoinIdle - no join attempted since boot or since the last Leave.
	JoinIdle JoinState = iota

	// JoinInProgress - association is underway.
	JoinInProgress

	// JoinSucceeded - the device holds an address on the target network.
	JoinSucceeded

	// JoinFailed - the attempt failed definitively.
	JoinFailed
)

// String returns the join state name.
func (s JoinState) String() string {
	switch s {
	case JoinIdle:
		return "IDLE"
	case JoinInProgress:
		return "IN_PROGRESS"
	case JoinSucceeded:
		return "SUCCEEDED"
	case JoinFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// AccessPoint controls the local discovery-mode access point.
// Implementations must be safe for concurrent use.
type AccessPoint interface {
	// Start brings the access point up with the given SSID and passphrase.
	Start(ssid, passphrase string) error

	// Stop tears the access point down. Stopping an inactive AP is not an
	// error.
	Stop() error

	// Active reports whether the access point is up.
	Active() bool

	// IP returns the AP-side address clients reach the device on, or ""
	// when inactive.
	IP() string
}

// Joiner drives the client-side join onto the target network.
// Join must not block; progress is observed by polling Status.
// Implementations must be safe for concurrent use.
type Joiner interface {
	// Join begins associating with the given network. It resets any prior
	// outcome.
	Join(ssid, password string) error

	// Status returns the current join state.
	Status() JoinState

	// Leave drops the association and returns the joiner to idle.
	Leave() error

	// LocalIP returns the joined-side address, or "" when not joined.
	LocalIP() string

	// RSSI returns the current signal strength in dBm, or 0 when the
	// backend cannot report one.
	RSSI() int
}
