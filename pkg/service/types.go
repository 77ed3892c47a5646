package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sdn-protocol/dataplane-go/pkg/config"
	"github.com/sdn-protocol/dataplane-go/pkg/discovery"
	"github.com/sdn-protocol/dataplane-go/pkg/identity"
	"github.com/sdn-protocol/dataplane-go/pkg/log"
	"github.com/sdn-protocol/dataplane-go/pkg/model"
	"github.com/sdn-protocol/dataplane-go/pkg/network"
)

// Configuration errors.
var (
	ErrInvalidIdentity = errors.New("invalid device identity")
	ErrNilCapability   = errors.New("capability must not be nil")
	ErrNilStore        = errors.New("config store must not be nil")
	ErrNilAccessPoint  = errors.New("access point must not be nil")
	ErrNilJoiner       = errors.New("joiner must not be nil")
	ErrAlreadyStarted  = errors.New("service already started")
	ErrNotStarted      = errors.New("service not started")
)

// Defaults.
const (
	// DefaultTickInterval is the runner's polling period.
	DefaultTickInterval = 100 * time.Millisecond

	// DefaultAPPassphrase protects the setup access point.
	DefaultAPPassphrase = "12345678"

	// DefaultHTTPPort is the device API port.
	DefaultHTTPPort = 80
)

// Config configures a DeviceService.
type Config struct {
	// Identity is the device's hardware-derived identity.
	Identity identity.Identity

	// Capability describes the device to the info endpoint and the control
	// plane.
	Capability *model.Capability

	// Store persists the device configuration.
	Store config.Store

	// AccessPoint and Joiner drive the two network roles.
	AccessPoint network.AccessPoint
	Joiner      network.Joiner

	// Advertiser publishes mDNS services. Optional.
	Advertiser discovery.Advertiser

	// HTTPPort is the device API port. Zero means DefaultHTTPPort; the
	// service only binds a listener itself when Start is asked to.
	HTTPPort int

	// APPassphrase protects the setup access point.
	// Default: DefaultAPPassphrase.
	APPassphrase string

	// TickInterval is the runner's polling period.
	// Default: DefaultTickInterval.
	TickInterval time.Duration

	// HeartbeatInterval, SwitchDelay, and ErrorCooldown override the
	// lifecycle machine defaults when positive.
	HeartbeatInterval time.Duration
	SwitchDelay       time.Duration
	ErrorCooldown     time.Duration

	// DataProvider supplies sensor readings.
	// Default: SyntheticProvider.
	DataProvider SensorDataProvider

	// Executor applies actuator commands. Optional; without one every
	// command reports execution failure.
	Executor CommandExecutor

	// Notifications receives status and command notifications.
	// Default: NoopSink.
	Notifications NotificationSink

	// Restart is invoked when a factory reset asks for a device restart.
	// Optional; without one the reset is logged and the process keeps
	// running in the discovery state with the access point and discovery
	// endpoints restored.
	Restart func()

	// Logger for debug output. Optional.
	Logger *slog.Logger

	// ProtocolLogger for structured event capture. Optional.
	ProtocolLogger log.Logger
}

// Validate checks the required fields.
func (c *Config) Validate() error {
	if !c.Identity.Valid() {
		return ErrInvalidIdentity
	}
	if c.Capability == nil {
		return ErrNilCapability
	}
	if c.Store == nil {
		return ErrNilStore
	}
	if c.AccessPoint == nil {
		return ErrNilAccessPoint
	}
	if c.Joiner == nil {
		return ErrNilJoiner
	}
	return nil
}
