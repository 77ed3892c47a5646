package service

import (
	"encoding/json"
	"time"

	"github.com/sdn-protocol/dataplane-go/pkg/api"
	"github.com/sdn-protocol/dataplane-go/pkg/config"
	"github.com/sdn-protocol/dataplane-go/pkg/lifecycle"
	"github.com/sdn-protocol/dataplane-go/pkg/model"
)

// The device service backs its own HTTP API.
var _ api.Backend = (*DeviceService)(nil)

// Info implements the info endpoint.
func (s *DeviceService) Info() api.InfoResponse {
	c := s.cfg.Capability
	return api.InfoResponse{
		DeviceID:        s.cfg.Identity.ID(),
		DeviceType:      c.DeviceType,
		Description:     c.Description,
		FirmwareVersion: c.FirmwareVersion,
		HardwareVersion: c.HardwareVersion,
		Configured:      s.machine.Configured(),
		Mode:            s.networkMode(),
		Capability:      c.SpecList(),
	}
}

// Status implements the status endpoint, served by both groups.
func (s *DeviceService) Status() api.StatusResponse {
	now := time.Now()
	state := s.machine.State()

	resp := api.StatusResponse{
		DeviceID:   s.cfg.Identity.ID(),
		State:      state.String(),
		Configured: s.machine.Configured(),
		Uptime:     s.uptimeSeconds(now),
		FreeMemory: freeMemory(),
		Mode:       s.networkMode(),
		IP:         s.localIP(),
	}

	if state == lifecycle.StateOperational {
		rssi := s.cfg.Joiner.RSSI()
		resp.WifiRSSI = &rssi
	}

	return resp
}

// ApplyConfig accepts a validated configuration request: the in-memory
// record and capability are updated first, then the record is persisted.
// A failed save leaves the in-memory update in place but schedules no mode
// switch, so the device stays discoverable for a retry.
func (s *DeviceService) ApplyConfig(req api.ConfigRequest) error {
	rec := config.DeviceConfig{
		DeviceName:       *req.DeviceName,
		DeviceType:       *req.DeviceType,
		WifiSSID:         *req.WifiSSID,
		WifiPassword:     *req.WifiPassword,
		ControlPlaneHost: *req.ControlPlaneHost,
		ControlPlanePort: *req.ControlPlanePort,
		ReadInterval:     *req.ReadInterval,
		Configured:       true,
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.deviceConfig = rec
	s.syncCapability(&rec)
	s.mu.Unlock()

	if err := s.cfg.Store.Save(&rec); err != nil {
		s.logError("config save", err)
		return api.ErrSaveFailed
	}

	now := time.Now()
	s.machine.Configure(rec.DeviceType, rec.ReadIntervalDuration())
	s.machine.ScheduleModeSwitch(now)

	s.logger.Info("configuration accepted",
		"deviceName", rec.DeviceName,
		"deviceType", rec.DeviceType,
		"ssid", rec.WifiSSID)
	return nil
}

// SensorData implements the data endpoint.
func (s *DeviceService) SensorData() ([]byte, error) {
	if !s.cfg.Capability.IsSensor() {
		return nil, api.ErrNotSensor
	}
	return json.Marshal(s.telemetryPayload(time.Now()))
}

// ExecuteCommand implements the command endpoint. The received notification
// fires once per accepted command, whatever the execution outcome; the type
// check rejects before anything runs.
func (s *DeviceService) ExecuteCommand(cmd model.Command) error {
	if !s.cfg.Capability.IsActuator() {
		return api.ErrNotActuator
	}

	var execErr error
	if s.cfg.Executor != nil {
		execErr = s.cfg.Executor.Execute(cmd)
	} else {
		execErr = api.ErrCommandFailed
	}

	s.cfg.Notifications.CommandReceived(cmd)

	if execErr != nil {
		s.logError("command execute", execErr)
		return api.ErrCommandFailed
	}

	s.logger.Info("command executed", "id", cmd.ID, "command", cmd.Command)
	return nil
}

// networkMode reports "AP" while the access point is up, "STA" otherwise.
func (s *DeviceService) networkMode() string {
	if s.cfg.AccessPoint.Active() {
		return "AP"
	}
	return "STA"
}

func (s *DeviceService) localIP() string {
	if s.cfg.AccessPoint.Active() {
		return s.cfg.AccessPoint.IP()
	}
	return s.cfg.Joiner.LocalIP()
}
