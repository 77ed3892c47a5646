// Package controlplane implements the device's outbound calls to the
// control plane: registration, heartbeats, and telemetry pushes.
//
// All calls are best-effort. A non-2xx response or transport failure is
// reported to the caller for logging and otherwise dropped; the periodic
// schedule is the retry mechanism.
package controlplane

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Outbound endpoint paths.
const (
	PathRegister  = "/api/register"
	PathHeartbeat = "/api/heartbeat"
	PathData      = "/api/data"
)

// DefaultTimeout bounds each outbound call.
const DefaultTimeout = 10 * time.Second

// StatusOnline is the heartbeat status reported while the device runs.
const StatusOnline = "online"

// Target addresses a control plane.
type Target struct {
	Host string
	Port int
}

// URL returns the full URL for an endpoint path on this target.
func (t Target) URL(path string) string {
	return fmt.Sprintf("http://%s:%d%s", t.Host, t.Port, path)
}

// Registration is the one-time announcement sent after entering the
// operational state.
type Registration struct {
	DeviceID     string `json:"deviceId"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	IP           string `json:"ip"`
	ReadInterval int    `json:"readInterval"`

	// SessionID is a fresh UUID per boot, letting the control plane tell
	// re-registrations after a restart from duplicate announcements.
	SessionID string `json:"sessionId,omitempty"`
}

// Heartbeat is the periodic liveness signal.
type Heartbeat struct {
	DeviceID   string `json:"deviceId"`
	Timestamp  int64  `json:"timestamp"`
	Status     string `json:"status"`
	Uptime     int64  `json:"uptime"`
	FreeMemory uint64 `json:"freeMemory"`
}

// Client issues outbound control-plane requests. It is stateless per call
// and safe for concurrent use.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with the given per-call timeout.
// A non-positive timeout takes DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Register announces the device. Returns the HTTP status code, or an error
// on transport failure.
func (c *Client) Register(ctx context.Context, t Target, reg Registration) (int, error) {
	return c.postJSON(ctx, t.URL(PathRegister), reg)
}

// SendHeartbeat pushes a liveness signal.
func (c *Client) SendHeartbeat(ctx context.Context, t Target, hb Heartbeat) (int, error) {
	return c.postJSON(ctx, t.URL(PathHeartbeat), hb)
}

// SendTelemetry pushes a collaborator-produced telemetry payload. The
// payload must already be JSON-encoded.
func (c *Client) SendTelemetry(ctx context.Context, t Target, payload []byte) (int, error) {
	return c.post(ctx, t.URL(PathData), payload)
}

func (c *Client) postJSON(ctx context.Context, url string, body any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to encode payload: %w", err)
	}
	return c.post(ctx, url, data)
}

func (c *Client) post(ctx context.Context, url string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused; the body content is ignored.
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
