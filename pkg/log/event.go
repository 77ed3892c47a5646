package log

import "time"

// Event represents a lifecycle log event. CBOR encoding uses integer keys
// for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID is the per-boot session UUID.
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// DeviceID is the device identifier.
	DeviceID string `cbor:"5,keyasint,omitempty"`

	// RemoteAddr is the peer address for request events.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Request     *RequestEvent     `cbor:"7,keyasint,omitempty"`  // Inbound HTTP request
	Push        *PushEvent        `cbor:"8,keyasint,omitempty"`  // Outbound control-plane call
	StateChange *StateChangeEvent `cbor:"9,keyasint,omitempty"`  // Lifecycle state transition
	Error       *ErrorEventData   `cbor:"10,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an inbound request.
	DirectionIn Direction = 0
	// DirectionOut indicates an outbound push.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryRequest indicates an inbound HTTP request.
	CategoryRequest Category = 0
	// CategoryPush indicates an outbound control-plane call.
	CategoryPush Category = 1
	// CategoryState indicates a lifecycle state transition.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryRequest:
		return "REQUEST"
	case CategoryPush:
		return "PUSH"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// RequestEvent captures an inbound HTTP request and its outcome.
type RequestEvent struct {
	// Method is the HTTP method.
	Method string `cbor:"1,keyasint"`

	// Path is the request path.
	Path string `cbor:"2,keyasint"`

	// Status is the response status code.
	Status int `cbor:"3,keyasint"`

	// Duration is the handler processing time.
	Duration time.Duration `cbor:"4,keyasint,omitempty"`
}

// PushEvent captures an outbound control-plane call.
type PushEvent struct {
	// Path is the control-plane endpoint path.
	Path string `cbor:"1,keyasint"`

	// Status is the response status code; zero on transport failure.
	Status int `cbor:"2,keyasint"`

	// Failed indicates the call never produced a response.
	Failed bool `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures a lifecycle state transition.
type StateChangeEvent struct {
	// OldState and NewState are lifecycle state names.
	OldState string `cbor:"1,keyasint"`
	NewState string `cbor:"2,keyasint"`

	// Reason describes what triggered the transition.
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Context describes what was being attempted.
	Context string `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`
}

// NewRequestEvent builds an inbound request event.
func NewRequestEvent(sessionID, deviceID, remoteAddr, method, path string, status int, d time.Duration) Event {
	return Event{
		Timestamp:  time.Now(),
		SessionID:  sessionID,
		Direction:  DirectionIn,
		Category:   CategoryRequest,
		DeviceID:   deviceID,
		RemoteAddr: remoteAddr,
		Request:    &RequestEvent{Method: method, Path: path, Status: status, Duration: d},
	}
}

// NewPushEvent builds an outbound push event. A zero status marks a
// transport failure.
func NewPushEvent(sessionID, deviceID, path string, status int) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: DirectionOut,
		Category:  CategoryPush,
		DeviceID:  deviceID,
		Push:      &PushEvent{Path: path, Status: status, Failed: status == 0},
	}
}

// NewStateChangeEvent builds a lifecycle transition event.
func NewStateChangeEvent(sessionID, deviceID, oldState, newState, reason string) Event {
	return Event{
		Timestamp:   time.Now(),
		SessionID:   sessionID,
		Direction:   DirectionOut,
		Category:    CategoryState,
		DeviceID:    deviceID,
		StateChange: &StateChangeEvent{OldState: oldState, NewState: newState, Reason: reason},
	}
}

// NewErrorEvent builds an error event.
func NewErrorEvent(sessionID, deviceID, context string, err error) Event {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: DirectionOut,
		Category:  CategoryError,
		DeviceID:  deviceID,
		Error:     &ErrorEventData{Context: context, Message: msg},
	}
}
