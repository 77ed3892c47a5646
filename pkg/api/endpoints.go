package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/sdn-protocol/dataplane-go/pkg/model"
)

// Group identifies an endpoint group.
type Group uint8

const (
	// GroupDiscovery serves info, config, and status.
	GroupDiscovery Group = iota

	// GroupOperational serves data, command, and status.
	GroupOperational
)

// String returns the group name.
func (g Group) String() string {
	switch g {
	case GroupDiscovery:
		return "DISCOVERY"
	case GroupOperational:
		return "OPERATIONAL"
	default:
		return "UNKNOWN"
	}
}

// EndpointSet serves the device's HTTP API. Both groups are built at
// construction; Activate atomically swaps which one is reachable.
type EndpointSet struct {
	backend Backend

	discovery   *http.ServeMux
	operational *http.ServeMux

	active atomic.Pointer[http.ServeMux]
	group  atomic.Uint32
}

// NewEndpointSet builds the endpoint set with the discovery group active.
func NewEndpointSet(backend Backend) *EndpointSet {
	s := &EndpointSet{backend: backend}

	s.discovery = http.NewServeMux()
	s.discovery.HandleFunc("/api/info", s.handleInfo)
	s.discovery.HandleFunc("/api/config", s.handleConfig)
	s.discovery.HandleFunc("/api/status", s.handleStatus)

	s.operational = http.NewServeMux()
	s.operational.HandleFunc("/api/data", s.handleData)
	s.operational.HandleFunc("/api/command", s.handleCommand)
	s.operational.HandleFunc("/api/status", s.handleStatus)

	s.Activate(GroupDiscovery)
	return s
}

// Activate makes the given group the reachable one. The other group's
// endpoints answer 404 until reactivated.
func (s *EndpointSet) Activate(g Group) {
	switch g {
	case GroupOperational:
		s.active.Store(s.operational)
	default:
		s.active.Store(s.discovery)
	}
	s.group.Store(uint32(g))
}

// ActiveGroup returns the currently reachable group.
func (s *EndpointSet) ActiveGroup() Group {
	return Group(s.group.Load())
}

// ServeHTTP dispatches to the active group.
func (s *EndpointSet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.active.Load().ServeHTTP(w, r)
}

func (s *EndpointSet) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.backend.Info())
}

func (s *EndpointSet) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.backend.Status())
}

func (s *EndpointSet) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if field := req.missingField(); field != "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("missing required field: %s", field))
		return
	}

	if err := s.backend.ApplyConfig(req); err != nil {
		if errors.Is(err, ErrSaveFailed) {
			writeError(w, http.StatusInternalServerError, "save failed")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ResultResponse{Success: true, Message: "configuration saved"})
}

func (s *EndpointSet) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload, err := s.backend.SensorData()
	if err != nil {
		if errors.Is(err, ErrNotSensor) {
			writeError(w, http.StatusBadRequest, "not a sensor device")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to read sensor")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (s *EndpointSet) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var cmd model.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.backend.ExecuteCommand(cmd); err != nil {
		if errors.Is(err, ErrNotActuator) {
			writeError(w, http.StatusBadRequest, "not an actuator device")
			return
		}
		writeJSON(w, http.StatusInternalServerError, ResultResponse{Success: false, Message: "command failed"})
		return
	}

	writeJSON(w, http.StatusOK, ResultResponse{Success: true})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a {success:false, message} error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ResultResponse{Success: false, Message: message})
}
