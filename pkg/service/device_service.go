package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sdn-protocol/dataplane-go/pkg/api"
	"github.com/sdn-protocol/dataplane-go/pkg/config"
	"github.com/sdn-protocol/dataplane-go/pkg/controlplane"
	"github.com/sdn-protocol/dataplane-go/pkg/discovery"
	"github.com/sdn-protocol/dataplane-go/pkg/lifecycle"
	"github.com/sdn-protocol/dataplane-go/pkg/log"
	"github.com/sdn-protocol/dataplane-go/pkg/model"
	"github.com/sdn-protocol/dataplane-go/pkg/network"
)

// DeviceService orchestrates the device.
type DeviceService struct {
	mu sync.RWMutex

	cfg Config

	machine   *lifecycle.Machine
	endpoints *api.EndpointSet
	client    *controlplane.Client

	// In-memory configuration; the persisted record may lag behind it when
	// a save fails.
	deviceConfig config.DeviceConfig

	// loadErr is a boot-time store failure, surfaced as a fault on Start.
	loadErr error

	// sessionID is a fresh UUID per boot for control plane correlation.
	sessionID string

	bootTime time.Time

	httpServer *http.Server

	logger *slog.Logger
	plog   log.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewDeviceService creates a device service. The persisted configuration is
// loaded here so the service is queryable before Start; a store read failure
// is remembered and surfaced as a fault when the service starts.
func NewDeviceService(cfg Config) (*DeviceService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.APPassphrase == "" {
		cfg.APPassphrase = DefaultAPPassphrase
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = DefaultHTTPPort
	}
	if cfg.DataProvider == nil {
		cfg.DataProvider = SyntheticProvider{}
	}
	if cfg.Notifications == nil {
		cfg.Notifications = NoopSink{}
	}
	if cfg.ProtocolLogger == nil {
		cfg.ProtocolLogger = log.NoopLogger{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &DeviceService{
		cfg:       cfg,
		client:    controlplane.NewClient(controlplane.DefaultTimeout),
		sessionID: uuid.NewString(),
		bootTime:  time.Now(),
		logger:    cfg.Logger,
		plog:      cfg.ProtocolLogger,
	}
	s.endpoints = api.NewEndpointSet(s)

	rec, err := cfg.Store.Load()
	if rec != nil {
		s.deviceConfig = *rec
		s.syncCapability(rec)
	}
	s.loadErr = err

	machineCfg := lifecycle.Config{
		DeviceType:        cfg.Capability.DeviceType,
		Configured:        rec != nil && rec.Configured,
		HeartbeatInterval: cfg.HeartbeatInterval,
		SwitchDelay:       cfg.SwitchDelay,
		ErrorCooldown:     cfg.ErrorCooldown,
	}
	if rec != nil {
		machineCfg.ReadInterval = rec.ReadIntervalDuration()
	}
	s.machine = lifecycle.NewMachine(machineCfg)

	return s, nil
}

// SessionID returns the per-boot session identifier.
func (s *DeviceService) SessionID() string {
	return s.sessionID
}

// State returns the current lifecycle state.
func (s *DeviceService) State() lifecycle.State {
	return s.machine.State()
}

// Handler returns the device's HTTP handler with request logging attached.
// Useful when the caller runs its own listener.
func (s *DeviceService) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		s.endpoints.ServeHTTP(sw, r)
		s.plog.Log(log.NewRequestEvent(
			s.sessionID, s.cfg.Identity.ID(), r.RemoteAddr,
			r.Method, r.URL.Path, sw.status, time.Since(start)))
	})
}

// statusWriter captures the response status for request logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Start boots the lifecycle machine, binds the HTTP listener when a port is
// configured, and launches the runner goroutine.
func (s *DeviceService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.bootTime = time.Now()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	now := time.Now()
	s.execute(now, s.machine.Boot(now))

	if s.loadErr != nil {
		s.logError("config load", s.loadErr)
		s.applyEvent(now, lifecycle.EventFault, "storage fault")
	}

	if s.cfg.HTTPPort > 0 {
		s.httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", s.cfg.HTTPPort),
			Handler: s.Handler(),
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logError("http server", err)
			}
		}()
	}

	s.wg.Add(1)
	go s.run()

	s.logger.Info("device service started",
		"deviceId", s.cfg.Identity.ID(),
		"state", s.machine.State().String(),
		"session", s.sessionID)
	return nil
}

// Stop shuts the service down: runner, HTTP listener, advertisement, and
// access point.
func (s *DeviceService) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.started = false
	cancel := s.cancel
	srv := s.httpServer
	s.mu.Unlock()

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}

	s.wg.Wait()

	if s.cfg.Advertiser != nil {
		_ = s.cfg.Advertiser.Stop()
	}
	_ = s.cfg.AccessPoint.Stop()

	s.logger.Info("device service stopped", "deviceId", s.cfg.Identity.ID())
	return nil
}

// FactoryReset erases the persisted configuration and returns the device to
// the discovery state.
func (s *DeviceService) FactoryReset() {
	now := time.Now()
	s.applyEvent(now, lifecycle.EventFactoryReset, "factory reset")
}

// run is the single driver of the lifecycle machine.
func (s *DeviceService) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

// tick advances the machine one step and executes the resulting actions.
func (s *DeviceService) tick(now time.Time) {
	pre := s.machine.State()
	actions := s.machine.Tick(now, s.joinStatus())
	s.execute(now, actions)
	post := s.machine.State()
	if post != pre {
		s.notifyTransition(pre, post, transitionReason(pre, post))
	}
}

// applyEvent feeds an event to the machine outside the tick cycle.
func (s *DeviceService) applyEvent(now time.Time, ev lifecycle.Event, reason string) {
	pre := s.machine.State()
	actions := s.machine.Apply(now, ev)
	s.execute(now, actions)
	post := s.machine.State()
	if post != pre {
		s.notifyTransition(pre, post, reason)
	}
}

// joinStatus maps the joiner's state into the machine's terms.
func (s *DeviceService) joinStatus() lifecycle.JoinStatus {
	switch s.cfg.Joiner.Status() {
	case network.JoinInProgress:
		return lifecycle.JoinPending
	case network.JoinSucceeded:
		return lifecycle.JoinSuccess
	case network.JoinFailed:
		return lifecycle.JoinFailure
	default:
		return lifecycle.JoinUnknown
	}
}

func transitionReason(pre, post lifecycle.State) string {
	switch {
	case pre == lifecycle.StateDiscovery && post == lifecycle.StateConfiguring:
		return "configuration saved"
	case pre == lifecycle.StateConfiguring && post == lifecycle.StateOperational:
		return "network join succeeded"
	case pre == lifecycle.StateConfiguring && post == lifecycle.StateDiscovery:
		return "network join failed"
	case pre == lifecycle.StateError:
		return "error cooldown elapsed"
	default:
		return "lifecycle"
	}
}

func (s *DeviceService) notifyTransition(pre, post lifecycle.State, reason string) {
	s.logger.Info("state changed",
		"from", pre.String(), "to", post.String(), "reason", reason)
	s.plog.Log(log.NewStateChangeEvent(
		s.sessionID, s.cfg.Identity.ID(), pre.String(), post.String(), reason))
	s.cfg.Notifications.StatusChanged(pre, post)
	s.updateAdvertisement()
}

// execute performs the side effects the machine asked for. Outbound sends
// run synchronously on the runner goroutine; no service lock is held.
func (s *DeviceService) execute(now time.Time, actions []lifecycle.Action) {
	for _, a := range actions {
		switch a {
		case lifecycle.ActionStartAccessPoint:
			if !s.cfg.AccessPoint.Active() {
				if err := s.cfg.AccessPoint.Start(s.cfg.Identity.APName(), s.cfg.APPassphrase); err != nil {
					s.logError("access point start", err)
				}
			}
			s.advertiseDiscoverable()

		case lifecycle.ActionStopAccessPoint:
			if err := s.cfg.AccessPoint.Stop(); err != nil {
				s.logError("access point stop", err)
			}

		case lifecycle.ActionStartJoin:
			cfg := s.currentConfig()
			if err := s.cfg.Joiner.Join(cfg.WifiSSID, cfg.WifiPassword); err != nil {
				s.logError("network join", err)
			}

		case lifecycle.ActionActivateDiscoveryEndpoints:
			s.endpoints.Activate(api.GroupDiscovery)

		case lifecycle.ActionActivateOperationalEndpoints:
			s.endpoints.Activate(api.GroupOperational)
			s.advertiseOperational()

		case lifecycle.ActionClearConfigured:
			// The machine already dropped its flag; the persisted record is
			// left alone so the credentials survive a reboot for retry.

		case lifecycle.ActionRegister:
			s.register()

		case lifecycle.ActionSendTelemetry:
			s.sendTelemetry(now)

		case lifecycle.ActionSendHeartbeat:
			s.sendHeartbeat(now)

		case lifecycle.ActionEraseConfig:
			if err := s.cfg.Store.Erase(); err != nil {
				s.logError("config erase", err)
			}

		case lifecycle.ActionRestart:
			if s.cfg.Restart != nil {
				s.cfg.Restart()
			} else {
				s.logger.Info("restart requested, no restart hook installed")
			}
		}
	}
}

// currentConfig returns a copy of the in-memory configuration.
func (s *DeviceService) currentConfig() config.DeviceConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceConfig
}

func (s *DeviceService) controlPlaneTarget() controlplane.Target {
	cfg := s.currentConfig()
	return controlplane.Target{Host: cfg.ControlPlaneHost, Port: cfg.ControlPlanePort}
}

func (s *DeviceService) register() {
	cfg := s.currentConfig()
	reg := controlplane.Registration{
		DeviceID:     s.cfg.Identity.ID(),
		Name:         cfg.DeviceName,
		Type:         cfg.DeviceType,
		IP:           s.cfg.Joiner.LocalIP(),
		ReadInterval: cfg.ReadInterval,
		SessionID:    s.sessionID,
	}

	status, err := s.client.Register(s.ctx, s.controlPlaneTarget(), reg)
	if err != nil {
		s.logError("register", err)
	}
	s.plog.Log(log.NewPushEvent(s.sessionID, s.cfg.Identity.ID(), controlplane.PathRegister, status))
}

func (s *DeviceService) sendTelemetry(now time.Time) {
	payload, err := json.Marshal(s.telemetryPayload(now))
	if err != nil {
		s.logError("telemetry encode", err)
		return
	}

	status, err := s.client.SendTelemetry(s.ctx, s.controlPlaneTarget(), payload)
	if err != nil {
		s.logError("telemetry push", err)
	}
	s.plog.Log(log.NewPushEvent(s.sessionID, s.cfg.Identity.ID(), controlplane.PathData, status))
}

func (s *DeviceService) sendHeartbeat(now time.Time) {
	hb := controlplane.Heartbeat{
		DeviceID:   s.cfg.Identity.ID(),
		Timestamp:  now.Unix(),
		Status:     controlplane.StatusOnline,
		Uptime:     s.uptimeSeconds(now),
		FreeMemory: freeMemory(),
	}

	status, err := s.client.SendHeartbeat(s.ctx, s.controlPlaneTarget(), hb)
	if err != nil {
		s.logError("heartbeat push", err)
	}
	s.plog.Log(log.NewPushEvent(s.sessionID, s.cfg.Identity.ID(), controlplane.PathHeartbeat, status))
}

func (s *DeviceService) telemetryPayload(now time.Time) model.TelemetryPayload {
	cfg := s.currentConfig()
	return model.TelemetryPayload{
		DeviceID:   s.cfg.Identity.ID(),
		DeviceName: cfg.DeviceName,
		Timestamp:  now.Unix(),
		Readings:   s.cfg.DataProvider.Readings(),
	}
}

func (s *DeviceService) uptimeSeconds(now time.Time) int64 {
	return int64(now.Sub(s.bootTime).Seconds())
}

func freeMemory() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapIdle
}

func (s *DeviceService) advertiseDiscoverable() {
	if s.cfg.Advertiser == nil {
		return
	}
	if err := s.cfg.Advertiser.AdvertiseDiscoverable(s.advertiseInfo()); err != nil {
		s.logError("mdns advertise", err)
	}
}

func (s *DeviceService) advertiseOperational() {
	if s.cfg.Advertiser == nil {
		return
	}
	if err := s.cfg.Advertiser.AdvertiseOperational(s.advertiseInfo()); err != nil {
		s.logError("mdns advertise", err)
	}
}

func (s *DeviceService) updateAdvertisement() {
	if s.cfg.Advertiser == nil {
		return
	}
	_ = s.cfg.Advertiser.Update(s.advertiseInfo())
}

func (s *DeviceService) advertiseInfo() *discovery.Info {
	cfg := s.currentConfig()
	return &discovery.Info{
		DeviceID:   s.cfg.Identity.ID(),
		DeviceType: s.cfg.Capability.DeviceType,
		Configured: s.machine.Configured(),
		Firmware:   s.cfg.Capability.FirmwareVersion,
		DeviceName: cfg.DeviceName,
		Port:       uint16(s.cfg.HTTPPort),
	}
}

// syncCapability pulls the configuration-owned fields into the capability.
// Caller holds the lock or is still single-threaded in the constructor.
func (s *DeviceService) syncCapability(cfg *config.DeviceConfig) {
	s.cfg.Capability.DeviceName = cfg.DeviceName
	s.cfg.Capability.DeviceType = cfg.DeviceType
	s.cfg.Capability.ReadInterval = cfg.ReadInterval
}

func (s *DeviceService) logError(context string, err error) {
	s.logger.Error(context, "error", err)
	s.plog.Log(log.NewErrorEvent(s.sessionID, s.cfg.Identity.ID(), context, err))
}
