package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"glidescope/pkg/sim"
)

// TelemetryHandler caches the latest telemetry reported by the scheduler
// and serves it over HTTP.
type TelemetryHandler struct {
	mu       sync.RWMutex
	latest   sim.Telemetry
	hasTel   bool
	simState sim.State
}

// NewTelemetryHandler creates a new handler instance.
func NewTelemetryHandler() *TelemetryHandler {
	return &TelemetryHandler{
		simState: sim.StateDisconnected,
	}
}

// Update implements core.TelemetrySink. It is called by the scheduler
// whenever fresh telemetry arrives.
func (h *TelemetryHandler) Update(t *sim.Telemetry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = *t
	h.hasTel = true
}

// UpdateState implements core.TelemetrySink.
func (h *TelemetryHandler) UpdateState(s sim.State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.simState = s
}

// TelemetryResponse is the API response structure.
type TelemetryResponse struct {
	sim.Telemetry
	SimState string `json:"SimState"`
}

func (h *TelemetryHandler) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := TelemetryResponse{
		Telemetry: h.latest,
		SimState:  string(h.simState),
	}
	hasTel := h.hasTel
	h.mu.RUnlock()

	if !hasTel {
		http.Error(w, "no telemetry received yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode telemetry response", "error", err)
	}
}

// StateResponse is the wire format for /api/state.
type StateResponse struct {
	SimState     string `json:"sim_state"`
	HasTelemetry bool   `json:"has_telemetry"`
}

func (h *TelemetryHandler) handleState(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := StateResponse{
		SimState:     string(h.simState),
		HasTelemetry: h.hasTel,
	}
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode state response", "error", err)
	}
}
