package model

// Reading is a single sensor channel sample.
type Reading struct {
	Type   string  `json:"type"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Status string  `json:"status"`
}

// TelemetryPayload is the telemetry push body. The same shape serves the
// local data endpoint.
type TelemetryPayload struct {
	DeviceID   string    `json:"deviceId"`
	DeviceName string    `json:"deviceName"`
	Timestamp  int64     `json:"timestamp"`
	Readings   []Reading `json:"readings"`
}
