// Package interactive provides the interactive command-line interface for
// sdn-device.
package interactive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sdn-protocol/dataplane-go/pkg/lifecycle"
	"github.com/sdn-protocol/dataplane-go/pkg/model"
	"github.com/sdn-protocol/dataplane-go/pkg/service"
)

// Console is the interactive command loop for a running device.
type Console struct {
	svc *service.DeviceService
	rl  *readline.Instance
}

// New creates a console attached to the device service.
func New(svc *service.DeviceService) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "device> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{svc: svc, rl: rl}, nil
}

// Close shuts the console down; a blocked Run returns.
func (c *Console) Close() {
	_ = c.rl.Close()
}

// Run processes commands until exit, EOF, or Close.
func (c *Console) Run(ctx context.Context) {
	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			// EOF or closed
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "status", "s":
			c.cmdStatus()

		case "info", "i":
			c.cmdInfo()

		case "data", "d":
			c.cmdData()

		case "command", "c":
			c.cmdCommand(args)

		case "reset":
			c.cmdReset()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Device Commands:
  status             - Show lifecycle state, mode, and uptime
  info               - Show device identity and capability
  data               - Show the current sensor payload
  command <cmd> [v]  - Execute an actuator command locally
  reset              - Factory reset (erases configuration, restarts)
  help               - Show this help
  quit               - Exit`)
}

func (c *Console) cmdStatus() {
	w := c.rl.Stdout()
	st := c.svc.Status()

	fmt.Fprintf(w, "State:       %s\n", st.State)
	fmt.Fprintf(w, "Configured:  %v\n", st.Configured)
	fmt.Fprintf(w, "Mode:        %s\n", st.Mode)
	fmt.Fprintf(w, "IP:          %s\n", st.IP)
	fmt.Fprintf(w, "Uptime:      %ds\n", st.Uptime)
	if st.WifiRSSI != nil {
		fmt.Fprintf(w, "RSSI:        %d dBm\n", *st.WifiRSSI)
	}
	fmt.Fprintf(w, "Session:     %s\n", c.svc.SessionID())
}

func (c *Console) cmdInfo() {
	w := c.rl.Stdout()
	info := c.svc.Info()

	fmt.Fprintf(w, "Device ID:   %s\n", info.DeviceID)
	fmt.Fprintf(w, "Type:        %s\n", info.DeviceType)
	fmt.Fprintf(w, "Description: %s\n", info.Description)
	fmt.Fprintf(w, "Firmware:    %s\n", info.FirmwareVersion)
	fmt.Fprintf(w, "Hardware:    %s\n", info.HardwareVersion)
	fmt.Fprintf(w, "Configured:  %v\n", info.Configured)
}

func (c *Console) cmdData() {
	w := c.rl.Stdout()

	payload, err := c.svc.SensorData()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s\n", payload)
}

func (c *Console) cmdCommand(args []string) {
	w := c.rl.Stdout()
	if len(args) == 0 {
		fmt.Fprintln(w, "Usage: command <cmd> [value]")
		return
	}

	cmd := model.Command{ID: "console", Command: args[0]}
	if len(args) > 1 {
		cmd.Value = args[1]
	}

	if err := c.svc.ExecuteCommand(cmd); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(w, "OK")
}

func (c *Console) cmdReset() {
	fmt.Fprintln(c.rl.Stdout(), "Factory reset: erasing configuration and restarting...")
	c.svc.FactoryReset()
}

// EchoExecutor logs commands instead of driving hardware.
type EchoExecutor struct {
	logger *slog.Logger
}

// NewEchoExecutor creates an executor that logs every command.
func NewEchoExecutor(logger *slog.Logger) *EchoExecutor {
	return &EchoExecutor{logger: logger}
}

func (e *EchoExecutor) Execute(cmd model.Command) error {
	e.logger.Info("actuator command", "id", cmd.ID, "command", cmd.Command, "value", cmd.Value)
	return nil
}

// LogSink logs status and command notifications.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink writing to the given logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) StatusChanged(oldState, newState lifecycle.State) {
	s.logger.Info("status changed",
		"from", oldState.String(), "to", newState.String(),
		"status", newState.StatusLabel())
}

func (s *LogSink) CommandReceived(cmd model.Command) {
	s.logger.Info("command received", "id", cmd.ID, "command", cmd.Command)
}

var (
	_ service.CommandExecutor  = (*EchoExecutor)(nil)
	_ service.NotificationSink = (*LogSink)(nil)
)
