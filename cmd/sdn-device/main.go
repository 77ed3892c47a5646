// Command sdn-device is a reference device implementation with a simulated
// radio.
//
// The device boots into discovery mode, brings up a (simulated) access
// point, and serves the configuration API. Once configured it joins the
// target network, registers with the control plane, and starts pushing
// telemetry and heartbeats.
//
// Usage:
//
//	sdn-device [flags]
//
// Flags:
//
//	-profile string    Device profile file (YAML)
//	-type string       Device type: sensor, actuator (default "sensor")
//	-name string       Device name shown before configuration
//	-data-dir string   Directory for persisted configuration (default "data")
//	-port int          HTTP API port (default 8080)
//	-log string        Write protocol events to this .dlog file
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-mdns              Advertise the device over mDNS
//	-interactive       Run the interactive console (default true)
//
// Examples:
//
//	# Start a simulated temperature sensor
//	sdn-device -type sensor -name "Kitchen Sensor"
//
//	# Start an actuator from a profile with protocol logging
//	sdn-device -profile relay.yaml -log device.dlog
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/sdn-protocol/dataplane-go/cmd/sdn-device/interactive"
	"github.com/sdn-protocol/dataplane-go/pkg/config"
	"github.com/sdn-protocol/dataplane-go/pkg/discovery"
	"github.com/sdn-protocol/dataplane-go/pkg/identity"
	"github.com/sdn-protocol/dataplane-go/pkg/log"
	"github.com/sdn-protocol/dataplane-go/pkg/model"
	"github.com/sdn-protocol/dataplane-go/pkg/network"
	"github.com/sdn-protocol/dataplane-go/pkg/service"
	"github.com/sdn-protocol/dataplane-go/pkg/version"
)

// Options holds the parsed command line.
type Options struct {
	Profile     string
	Type        string
	Name        string
	DataDir     string
	Port        int
	LogFile     string
	LogLevel    string
	MDNS        bool
	Interactive bool
}

// profile is the YAML device profile.
type profile struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`

	Sensors []struct {
		Type     string  `yaml:"type"`
		DataType string  `yaml:"dataType"`
		Unit     string  `yaml:"unit"`
		MinValue float64 `yaml:"minValue"`
		MaxValue float64 `yaml:"maxValue"`
		Accuracy float64 `yaml:"accuracy"`
	} `yaml:"sensors"`

	Actuators []struct {
		Command         string   `yaml:"command"`
		ValueType       string   `yaml:"valueType"`
		SupportedValues []string `yaml:"supportedValues"`
		ResponseTime    int      `yaml:"responseTime"`
	} `yaml:"actuators"`
}

func parseFlags() Options {
	var opts Options
	flag.StringVar(&opts.Profile, "profile", "", "Device profile file (YAML)")
	flag.StringVar(&opts.Type, "type", "sensor", "Device type: sensor, actuator")
	flag.StringVar(&opts.Name, "name", "", "Device name shown before configuration")
	flag.StringVar(&opts.DataDir, "data-dir", "data", "Directory for persisted configuration")
	flag.IntVar(&opts.Port, "port", 8080, "HTTP API port")
	flag.StringVar(&opts.LogFile, "log", "", "Write protocol events to this .dlog file")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&opts.MDNS, "mdns", false, "Advertise the device over mDNS")
	flag.BoolVar(&opts.Interactive, "interactive", true, "Run the interactive console")
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()

	logger := newLogger(opts.LogLevel)

	capability, err := buildCapability(opts)
	if err != nil {
		fatal(logger, "invalid device profile", err)
	}

	id, err := deviceIdentity()
	if err != nil {
		fatal(logger, "failed to derive device identity", err)
	}
	logger.Info("device identity", "deviceId", id.ID(), "apName", id.APName())

	plog, closeLog, err := buildProtocolLogger(opts, logger)
	if err != nil {
		fatal(logger, "failed to open protocol log", err)
	}
	defer closeLog()

	store := config.NewFileStore(filepath.Join(opts.DataDir, "device.json"))

	var advertiser discovery.Advertiser
	if opts.MDNS {
		advertiser = discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A factory reset asks for a device restart; this loop rebuilds the
	// service the way a reboot would.
	for {
		restart := make(chan struct{}, 1)

		svc, err := service.NewDeviceService(service.Config{
			Identity:       id,
			Capability:     capability,
			Store:          store,
			AccessPoint:    network.NewSimAccessPoint(),
			Joiner:         network.NewSimJoiner(),
			Advertiser:     advertiser,
			HTTPPort:       opts.Port,
			Executor:       interactive.NewEchoExecutor(logger),
			Notifications:  interactive.NewLogSink(logger),
			Restart:        func() { restart <- struct{}{} },
			Logger:         logger,
			ProtocolLogger: plog,
		})
		if err != nil {
			fatal(logger, "failed to create device service", err)
		}

		if err := svc.Start(ctx); err != nil {
			fatal(logger, "failed to start device service", err)
		}
		logger.Info("device started",
			"state", svc.State().String(),
			"port", opts.Port,
			"session", svc.SessionID())

		exited := false
		if opts.Interactive {
			exited = runConsole(ctx, svc, logger, restart)
		} else {
			select {
			case <-ctx.Done():
				exited = true
			case <-restart:
			}
		}

		if err := svc.Stop(); err != nil {
			logger.Error("stop failed", "error", err)
		}

		if exited {
			logger.Info("goodbye")
			return
		}
		logger.Info("restarting after factory reset")
	}
}

// runConsole runs the interactive console until exit or restart. Returns
// true when the process should exit.
func runConsole(ctx context.Context, svc *service.DeviceService, logger *slog.Logger, restart <-chan struct{}) bool {
	console, err := interactive.New(svc)
	if err != nil {
		logger.Error("console unavailable, running headless", "error", err)
		select {
		case <-ctx.Done():
			return true
		case <-restart:
			return false
		}
	}

	done := make(chan struct{})
	go func() {
		console.Run(ctx)
		close(done)
	}()

	select {
	case <-ctx.Done():
		console.Close()
		<-done
		return true
	case <-restart:
		console.Close()
		<-done
		return false
	case <-done:
		return true
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// buildCapability assembles the device capability from the profile file or
// the command line.
func buildCapability(opts Options) (*model.Capability, error) {
	c := &model.Capability{
		DeviceName:      opts.Name,
		DeviceType:      opts.Type,
		Description:     "Reference device with simulated radio",
		FirmwareVersion: version.Firmware,
		HardwareVersion: version.Hardware,
	}

	if opts.Profile != "" {
		data, err := os.ReadFile(opts.Profile)
		if err != nil {
			return nil, err
		}

		var p profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse profile: %w", err)
		}

		if p.Name != "" {
			c.DeviceName = p.Name
		}
		if p.Type != "" {
			c.DeviceType = p.Type
		}
		if p.Description != "" {
			c.Description = p.Description
		}
		for _, s := range p.Sensors {
			c.Sensors = append(c.Sensors, model.SensorSpec{
				Type:     s.Type,
				DataType: s.DataType,
				Unit:     s.Unit,
				MinValue: s.MinValue,
				MaxValue: s.MaxValue,
				Accuracy: s.Accuracy,
			})
		}
		for _, a := range p.Actuators {
			c.Actuators = append(c.Actuators, model.ActuatorSpec{
				Command:         a.Command,
				ValueType:       a.ValueType,
				SupportedValues: strings.Join(a.SupportedValues, ","),
				ResponseTime:    a.ResponseTime,
			})
		}
	}

	if len(c.Sensors) == 0 && len(c.Actuators) == 0 {
		applyDefaultSpecs(c)
	}

	switch c.DeviceType {
	case model.DeviceTypeSensor, model.DeviceTypeActuator:
		return c, nil
	default:
		return nil, fmt.Errorf("unknown device type: %s", c.DeviceType)
	}
}

func applyDefaultSpecs(c *model.Capability) {
	switch c.DeviceType {
	case model.DeviceTypeSensor:
		c.Sensors = []model.SensorSpec{
			{Type: "temperature", DataType: "float", Unit: "C", MinValue: -40, MaxValue: 85, Accuracy: 0.5},
		}
	case model.DeviceTypeActuator:
		c.Actuators = []model.ActuatorSpec{
			{Command: "setState", ValueType: "string", SupportedValues: "on,off", ResponseTime: 100},
		}
	}
}

// deviceIdentity derives the identity from a local interface, falling back
// to a fixed address when none is usable (containers, CI).
func deviceIdentity() (identity.Identity, error) {
	id, err := identity.FromLocalInterface()
	if err == nil {
		return id, nil
	}
	return identity.FromHardwareAddr(net.HardwareAddr{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01})
}

func buildProtocolLogger(opts Options, logger *slog.Logger) (log.Logger, func(), error) {
	slogAdapter := log.NewSlogAdapter(logger)

	if opts.LogFile == "" {
		return slogAdapter, func() {}, nil
	}

	fileLogger, err := log.NewFileLogger(opts.LogFile)
	if err != nil {
		return nil, nil, err
	}
	return log.NewMultiLogger(fileLogger, slogAdapter), func() { _ = fileLogger.Close() }, nil
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
