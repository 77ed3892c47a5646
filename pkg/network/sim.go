package network

import "sync"

// SimAccessPoint is an in-memory AccessPoint for simulation and tests.
type SimAccessPoint struct {
	mu         sync.Mutex
	active     bool
	ssid       string
	passphrase string

	// Addr is the address reported while active. Defaults to 192.168.4.1,
	// the conventional AP-side address.
	Addr string
}

// NewSimAccessPoint creates an inactive simulated access point.
func NewSimAccessPoint() *SimAccessPoint {
	return &SimAccessPoint{Addr: "192.168.4.1"}
}

// Start marks the access point active.
func (a *SimAccessPoint) Start(ssid, passphrase string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active {
		return ErrAPActive
	}
	a.active = true
	a.ssid = ssid
	a.passphrase = passphrase
	return nil
}

// Stop marks the access point inactive.
func (a *SimAccessPoint) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.active = false
	return nil
}

// Active reports whether the access point is up.
func (a *SimAccessPoint) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// IP returns the AP address while active.
func (a *SimAccessPoint) IP() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.active {
		return ""
	}
	return a.Addr
}

// SSID returns the SSID the access point was started with.
func (a *SimAccessPoint) SSID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ssid
}

// SimJoiner is an in-memory Joiner for simulation and tests. The outcome of
// a join is scripted: joins against AcceptSSID (or any SSID when empty)
// succeed after PendingPolls status reads, everything else fails.
type SimJoiner struct {
	mu    sync.Mutex
	state JoinState
	polls int

	// AcceptSSID, when non-empty, is the only SSID that joins successfully.
	AcceptSSID string

	// PendingPolls is how many Status calls report IN_PROGRESS before the
	// outcome settles.
	PendingPolls int

	// Addr is the joined-side address. Defaults to 192.168.1.50.
	Addr string

	// SignalDBM is the reported signal strength.
	SignalDBM int

	willSucceed bool
}

// NewSimJoiner creates an idle simulated joiner that accepts any SSID.
func NewSimJoiner() *SimJoiner {
	return &SimJoiner{Addr: "192.168.1.50", SignalDBM: -52}
}

// Join scripts the outcome and enters IN_PROGRESS.
func (j *SimJoiner) Join(ssid, password string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state == JoinInProgress {
		return ErrJoinActive
	}

	j.state = JoinInProgress
	j.polls = 0
	j.willSucceed = j.AcceptSSID == "" || ssid == j.AcceptSSID
	return nil
}

// Status settles the scripted outcome after PendingPolls reads.
func (j *SimJoiner) Status() JoinState {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != JoinInProgress {
		return j.state
	}

	if j.polls < j.PendingPolls {
		j.polls++
		return JoinInProgress
	}

	if j.willSucceed {
		j.state = JoinSucceeded
	} else {
		j.state = JoinFailed
	}
	return j.state
}

// Leave returns the joiner to idle.
func (j *SimJoiner) Leave() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.state = JoinIdle
	return nil
}

// LocalIP returns the joined address once joined.
func (j *SimJoiner) LocalIP() string {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != JoinSucceeded {
		return ""
	}
	return j.Addr
}

// RSSI returns the scripted signal strength while joined.
func (j *SimJoiner) RSSI() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != JoinSucceeded {
		return 0
	}
	return j.SignalDBM
}

// Compile-time interface satisfaction checks.
var (
	_ AccessPoint = (*SimAccessPoint)(nil)
	_ Joiner      = (*SimJoiner)(nil)
)
