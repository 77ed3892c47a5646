package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdn-protocol/dataplane-go/pkg/api"
	"github.com/sdn-protocol/dataplane-go/pkg/config"
	"github.com/sdn-protocol/dataplane-go/pkg/identity"
	"github.com/sdn-protocol/dataplane-go/pkg/lifecycle"
	"github.com/sdn-protocol/dataplane-go/pkg/model"
	"github.com/sdn-protocol/dataplane-go/pkg/network"
)

const (
	waitFor  = 3 * time.Second
	pollTick = 5 * time.Millisecond
)

// recordingSink captures notifications for assertions.
type recordingSink struct {
	mu          sync.Mutex
	transitions [][2]lifecycle.State
	commands    []model.Command
}

func (r *recordingSink) StatusChanged(oldState, newState lifecycle.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, [2]lifecycle.State{oldState, newState})
}

func (r *recordingSink) CommandReceived(cmd model.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
}

func (r *recordingSink) Transitions() [][2]lifecycle.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][2]lifecycle.State, len(r.transitions))
	copy(out, r.transitions)
	return out
}

func (r *recordingSink) Commands() []model.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// recordingExecutor captures executed commands.
type recordingExecutor struct {
	mu       sync.Mutex
	err      error
	commands []model.Command
}

func (r *recordingExecutor) Execute(cmd model.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
	return r.err
}

func (r *recordingExecutor) Commands() []model.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// controlPlaneRecorder is a fake control plane that records pushed bodies
// by path.
type controlPlaneRecorder struct {
	srv *httptest.Server

	mu     sync.Mutex
	bodies map[string][][]byte
}

func newControlPlaneRecorder(t *testing.T) *controlPlaneRecorder {
	t.Helper()

	rec := &controlPlaneRecorder{bodies: make(map[string][][]byte)}
	rec.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)

		rec.mu.Lock()
		rec.bodies[r.URL.Path] = append(rec.bodies[r.URL.Path], buf.Bytes())
		rec.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(rec.srv.Close)
	return rec
}

func (r *controlPlaneRecorder) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies[path])
}

func (r *controlPlaneRecorder) last(path string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	bodies := r.bodies[path]
	if len(bodies) == 0 {
		return nil
	}
	return bodies[len(bodies)-1]
}

func (r *controlPlaneRecorder) hostPort(t *testing.T) (string, int) {
	t.Helper()

	u, err := url.Parse(r.srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return u.Hostname(), port
}

type testEnv struct {
	svc      *DeviceService
	store    *config.MemoryStore
	ap       *network.SimAccessPoint
	joiner   *network.SimJoiner
	sink     *recordingSink
	executor *recordingExecutor
	plane    *controlPlaneRecorder
}

func testIdentity(t *testing.T) identity.Identity {
	t.Helper()

	id, err := identity.FromHardwareAddr(net.HardwareAddr{0xA4, 0xCF, 0x12, 0x34, 0xAB, 0xCD})
	require.NoError(t, err)
	return id
}

func sensorCapability() *model.Capability {
	return &model.Capability{
		DeviceType:      model.DeviceTypeSensor,
		Description:     "test sensor",
		FirmwareVersion: "1.0.0",
		HardwareVersion: "rev-a",
		Sensors: []model.SensorSpec{
			{Type: "temperature", DataType: "float", Unit: "C"},
		},
	}
}

func actuatorCapability() *model.Capability {
	return &model.Capability{
		DeviceType:      model.DeviceTypeActuator,
		Description:     "test actuator",
		FirmwareVersion: "1.0.0",
		HardwareVersion: "rev-a",
		Actuators: []model.ActuatorSpec{
			{Command: "setState", ValueType: "string", SupportedValues: "on,off"},
		},
	}
}

func newTestEnv(t *testing.T, capability *model.Capability, mutate func(*Config, *testEnv)) *testEnv {
	t.Helper()

	env := &testEnv{
		store:    config.NewMemoryStore(),
		ap:       network.NewSimAccessPoint(),
		joiner:   network.NewSimJoiner(),
		sink:     &recordingSink{},
		executor: &recordingExecutor{},
		plane:    newControlPlaneRecorder(t),
	}

	cfg := Config{
		Identity:          testIdentity(t),
		Capability:        capability,
		Store:             env.store,
		AccessPoint:       env.ap,
		Joiner:            env.joiner,
		HTTPPort:          -1, // no built-in listener; tests use Handler()
		TickInterval:      pollTick,
		HeartbeatInterval: 60 * time.Millisecond,
		SwitchDelay:       20 * time.Millisecond,
		ErrorCooldown:     40 * time.Millisecond,
		Executor:          env.executor,
		Notifications:     env.sink,
	}
	if mutate != nil {
		mutate(&cfg, env)
	}

	svc, err := NewDeviceService(cfg)
	require.NoError(t, err)
	env.svc = svc
	return env
}

func (e *testEnv) start(t *testing.T) {
	t.Helper()

	require.NoError(t, e.svc.Start(context.Background()))
	t.Cleanup(func() { _ = e.svc.Stop() })
}

// apiServer serves the device's HTTP API for the test.
func (e *testEnv) apiServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(e.svc.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// configure pushes a valid configuration through the HTTP config endpoint,
// pointing the device at the fake control plane.
func (e *testEnv) configure(t *testing.T, srv *httptest.Server) *http.Response {
	t.Helper()

	host, port := e.plane.hostPort(t)
	body, err := json.Marshal(map[string]any{
		"deviceName":       "Test Device",
		"deviceType":       e.svc.cfg.Capability.DeviceType,
		"wifiSSID":         "HomeNet",
		"wifiPassword":     "secret123",
		"controlPlaneIP":   host,
		"controlPlanePort": port,
		"readInterval":     1,
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/config", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestDeviceService_BootUnconfigured(t *testing.T) {
	env := newTestEnv(t, sensorCapability(), nil)
	env.start(t)

	assert.Equal(t, lifecycle.StateDiscovery, env.svc.State())
	assert.True(t, env.ap.Active())
	assert.Equal(t, "SDN-Device-34ABCD", env.ap.SSID())

	// Discovery endpoints are live, operational ones are not.
	srv := env.apiServer(t)
	resp, err := http.Get(srv.URL + "/api/info")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/data")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeviceService_BootConfigured(t *testing.T) {
	env := newTestEnv(t, sensorCapability(), func(cfg *Config, e *testEnv) {
		e.joiner.PendingPolls = 1 << 30 // never settles during the test
		require.NoError(t, e.store.Save(&config.DeviceConfig{
			DeviceName:       "Seeded",
			DeviceType:       "sensor",
			WifiSSID:         "HomeNet",
			WifiPassword:     "secret123",
			ControlPlaneHost: "192.168.1.10",
			ControlPlanePort: 8080,
			ReadInterval:     10,
			Configured:       true,
		}))
	})
	env.start(t)

	// Configured boot goes straight to joining, no access point.
	assert.Equal(t, lifecycle.StateConfiguring, env.svc.State())
	assert.False(t, env.ap.Active())
	assert.Equal(t, network.JoinInProgress, env.joiner.Status())
}

func TestDeviceService_ProvisioningFlow(t *testing.T) {
	env := newTestEnv(t, sensorCapability(), func(cfg *Config, e *testEnv) {
		e.joiner.PendingPolls = 2
	})
	env.start(t)
	srv := env.apiServer(t)

	resp := env.configure(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The mode switch fires after the grace delay; the join then succeeds
	// and the device registers.
	require.Eventually(t, func() bool {
		return env.svc.State() == lifecycle.StateOperational
	}, waitFor, pollTick)

	assert.False(t, env.ap.Active())

	require.Eventually(t, func() bool {
		return env.plane.count("/api/register") == 1
	}, waitFor, pollTick)

	var reg map[string]any
	require.NoError(t, json.Unmarshal(env.plane.last("/api/register"), &reg))
	assert.Equal(t, "SDN-A4CF1234ABCD", reg["deviceId"])
	assert.Equal(t, "Test Device", reg["name"])
	assert.Equal(t, "sensor", reg["type"])
	assert.Equal(t, env.svc.SessionID(), reg["sessionId"])

	// Operational endpoints took over.
	dataResp, err := http.Get(srv.URL + "/api/data")
	require.NoError(t, err)
	dataResp.Body.Close()
	assert.Equal(t, http.StatusOK, dataResp.StatusCode)

	infoResp, err := http.Get(srv.URL + "/api/info")
	require.NoError(t, err)
	infoResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, infoResp.StatusCode)

	// Exactly one notification per transition, in order.
	transitions := env.sink.Transitions()
	require.Len(t, transitions, 2)
	assert.Equal(t, [2]lifecycle.State{lifecycle.StateDiscovery, lifecycle.StateConfiguring}, transitions[0])
	assert.Equal(t, [2]lifecycle.State{lifecycle.StateConfiguring, lifecycle.StateOperational}, transitions[1])

	// Registration happens once; give the runner time to prove it.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, env.plane.count("/api/register"))
}

func TestDeviceService_JoinFailureReturnsToDiscovery(t *testing.T) {
	env := newTestEnv(t, sensorCapability(), func(cfg *Config, e *testEnv) {
		e.joiner.AcceptSSID = "OtherNet" // configured SSID will be rejected
	})
	env.start(t)
	srv := env.apiServer(t)

	resp := env.configure(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Leaves discovery for the join attempt, then falls back.
	require.Eventually(t, func() bool {
		transitions := env.sink.Transitions()
		return len(transitions) == 2 &&
			transitions[1] == [2]lifecycle.State{lifecycle.StateConfiguring, lifecycle.StateDiscovery}
	}, waitFor, pollTick)

	assert.Equal(t, lifecycle.StateDiscovery, env.svc.State())
	assert.True(t, env.ap.Active())

	// The in-memory configured flag is cleared, but the persisted record
	// keeps the credentials for a retry after reboot.
	assert.False(t, env.svc.Info().Configured)
	rec, err := env.store.Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Configured)
}

func TestDeviceService_SaveFailureStaysDiscoverable(t *testing.T) {
	env := newTestEnv(t, sensorCapability(), func(cfg *Config, e *testEnv) {
		e.store.FailSaves = true
	})
	env.start(t)
	srv := env.apiServer(t)

	resp := env.configure(t, srv)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// No mode switch was scheduled; the device stays put.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, lifecycle.StateDiscovery, env.svc.State())
	assert.True(t, env.ap.Active())
	assert.Empty(t, env.sink.Transitions())
}

func TestDeviceService_TelemetryAndHeartbeat(t *testing.T) {
	env := newTestEnv(t, sensorCapability(), nil)
	env.start(t)
	srv := env.apiServer(t)

	resp := env.configure(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return env.svc.State() == lifecycle.StateOperational
	}, waitFor, pollTick)

	// Heartbeats run on the test's short interval; telemetry on the
	// configured one-second read interval.
	require.Eventually(t, func() bool {
		return env.plane.count("/api/heartbeat") >= 2
	}, waitFor, pollTick)

	var hb map[string]any
	require.NoError(t, json.Unmarshal(env.plane.last("/api/heartbeat"), &hb))
	assert.Equal(t, "SDN-A4CF1234ABCD", hb["deviceId"])
	assert.Equal(t, "online", hb["status"])

	require.Eventually(t, func() bool {
		return env.plane.count("/api/data") >= 1
	}, waitFor, pollTick)

	var payload model.TelemetryPayload
	require.NoError(t, json.Unmarshal(env.plane.last("/api/data"), &payload))
	assert.Equal(t, "SDN-A4CF1234ABCD", payload.DeviceID)
	assert.Equal(t, "Test Device", payload.DeviceName)
	require.NotEmpty(t, payload.Readings)
	assert.Equal(t, "generic", payload.Readings[0].Type)
}

func TestDeviceService_ActuatorSendsNoTelemetry(t *testing.T) {
	env := newTestEnv(t, actuatorCapability(), nil)
	env.start(t)
	srv := env.apiServer(t)

	resp := env.configure(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return env.plane.count("/api/heartbeat") >= 2
	}, waitFor, pollTick)

	assert.Zero(t, env.plane.count("/api/data"))
}

func TestDeviceService_CommandFlow(t *testing.T) {
	env := newTestEnv(t, actuatorCapability(), nil)
	env.start(t)
	srv := env.apiServer(t)

	resp := env.configure(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return env.svc.State() == lifecycle.StateOperational
	}, waitFor, pollTick)

	body, _ := json.Marshal(model.Command{ID: "cmd-1", Command: "setState", Value: "on"})
	cmdResp, err := http.Post(srv.URL+"/api/command", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	cmdResp.Body.Close()
	require.Equal(t, http.StatusOK, cmdResp.StatusCode)

	require.Len(t, env.executor.Commands(), 1)
	assert.Equal(t, "setState", env.executor.Commands()[0].Command)

	// The received notification fires once, after execution.
	require.Len(t, env.sink.Commands(), 1)
	assert.Equal(t, "cmd-1", env.sink.Commands()[0].ID)
}

func TestDeviceService_CommandOnSensorRejected(t *testing.T) {
	env := newTestEnv(t, sensorCapability(), nil)
	env.start(t)

	err := env.svc.ExecuteCommand(model.Command{ID: "cmd-1", Command: "setState", Value: "on"})
	assert.ErrorIs(t, err, api.ErrNotActuator)
	assert.Empty(t, env.executor.Commands())
	assert.Empty(t, env.sink.Commands())
}

func TestDeviceService_CommandExecutionFailure(t *testing.T) {
	env := newTestEnv(t, actuatorCapability(), func(cfg *Config, e *testEnv) {
		e.executor.err = api.ErrCommandFailed
	})
	env.start(t)

	err := env.svc.ExecuteCommand(model.Command{ID: "cmd-1", Command: "setState", Value: "on"})
	assert.ErrorIs(t, err, api.ErrCommandFailed)

	// Executed and still counted as received.
	assert.Len(t, env.executor.Commands(), 1)
	assert.Len(t, env.sink.Commands(), 1)
}

func TestDeviceService_FactoryReset(t *testing.T) {
	restarted := make(chan struct{}, 1)
	env := newTestEnv(t, sensorCapability(), func(cfg *Config, e *testEnv) {
		cfg.Restart = func() { restarted <- struct{}{} }
	})
	env.start(t)
	srv := env.apiServer(t)

	resp := env.configure(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return env.svc.State() == lifecycle.StateOperational
	}, waitFor, pollTick)

	env.svc.FactoryReset()

	assert.Equal(t, lifecycle.StateDiscovery, env.svc.State())
	assert.False(t, env.svc.Info().Configured)

	rec, err := env.store.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)

	select {
	case <-restarted:
	default:
		t.Fatal("restart hook was not invoked")
	}
}

func TestDeviceService_FactoryResetWithoutRestartHook(t *testing.T) {
	env := newTestEnv(t, sensorCapability(), nil)
	env.start(t)
	srv := env.apiServer(t)

	resp := env.configure(t, srv)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return env.svc.State() == lifecycle.StateOperational
	}, waitFor, pollTick)

	env.svc.FactoryReset()

	// Without a restart hook the device must come back reconfigurable:
	// discovery endpoints live, access point up.
	assert.Equal(t, lifecycle.StateDiscovery, env.svc.State())
	assert.True(t, env.ap.Active())

	infoResp, err := http.Get(srv.URL + "/api/info")
	require.NoError(t, err)
	infoResp.Body.Close()
	assert.Equal(t, http.StatusOK, infoResp.StatusCode)

	dataResp, err := http.Get(srv.URL + "/api/data")
	require.NoError(t, err)
	dataResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, dataResp.StatusCode)
}

func TestDeviceService_StoreLoadFaultEntersError(t *testing.T) {
	env := newTestEnv(t, sensorCapability(), func(cfg *Config, e *testEnv) {
		e.store.FailLoads = true
	})
	env.start(t)

	assert.Equal(t, lifecycle.StateError, env.svc.State())

	// After the cooldown an unconfigured device retries discovery.
	require.Eventually(t, func() bool {
		return env.svc.State() == lifecycle.StateDiscovery
	}, waitFor, pollTick)
	assert.True(t, env.ap.Active())
}

func TestDeviceService_StatusEndpointBothGroups(t *testing.T) {
	env := newTestEnv(t, sensorCapability(), nil)
	env.start(t)
	srv := env.apiServer(t)

	var status api.StatusResponse
	resp, err := http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()

	assert.Equal(t, "SDN-A4CF1234ABCD", status.DeviceID)
	assert.Equal(t, "DISCOVERY", status.State)
	assert.Equal(t, "AP", status.Mode)
	assert.Equal(t, env.ap.IP(), status.IP)
	assert.Nil(t, status.WifiRSSI)

	cfgResp := env.configure(t, srv)
	require.Equal(t, http.StatusOK, cfgResp.StatusCode)
	require.Eventually(t, func() bool {
		return env.svc.State() == lifecycle.StateOperational
	}, waitFor, pollTick)

	resp, err = http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()

	assert.Equal(t, "OPERATIONAL", status.State)
	assert.Equal(t, "STA", status.Mode)
	assert.Equal(t, env.joiner.LocalIP(), status.IP)
	require.NotNil(t, status.WifiRSSI)
	assert.Equal(t, env.joiner.RSSI(), *status.WifiRSSI)
}

func TestDeviceService_StartTwice(t *testing.T) {
	env := newTestEnv(t, sensorCapability(), nil)
	env.start(t)

	assert.ErrorIs(t, env.svc.Start(context.Background()), ErrAlreadyStarted)
}
