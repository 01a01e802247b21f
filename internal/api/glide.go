package api

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"glidescope/pkg/config"
	"glidescope/pkg/core"
	"glidescope/pkg/glide"
)

// GlideHandler serves the current glide summary.
type GlideHandler struct {
	monitor *core.Monitor
	cfgProv config.Provider
}

// NewGlideHandler creates a new handler instance.
func NewGlideHandler(monitor *core.Monitor, cfgProv config.Provider) *GlideHandler {
	return &GlideHandler{
		monitor: monitor,
		cfgProv: cfgProv,
	}
}

// GlideResponse is the wire format for /api/glide. The window aggregates
// are pointers because they are undefined until the window fills; JSON
// has no NaN, so absent beats a bogus zero.
type GlideResponse struct {
	State        string   `json:"state"`
	Reason       string   `json:"reason,omitempty"`
	Completeness float64  `json:"completeness"`
	Complete     bool     `json:"complete"`
	Ratio        *float64 `json:"ratio,omitempty"`
	DescentSpeed *float64 `json:"descent_speed,omitempty"`
	SpeedDelta   *float64 `json:"speed_delta,omitempty"`
	Stabilizing  bool     `json:"stabilizing"`
	Controlled   bool     `json:"controlled"`

	TrackingStart *float64 `json:"tracking_start,omitempty"`

	// Status is the pre-rendered overlay line, in the configured units.
	Status string `json:"status"`
}

// HandleSummary serves GET /api/glide.
func (h *GlideHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	s := h.monitor.Summary()
	units := h.cfgProv.Units(r.Context())

	resp := GlideResponse{
		State:         string(s.State),
		Reason:        s.Reason,
		Completeness:  s.Completeness,
		Complete:      s.Complete(),
		Ratio:         finitePtr(s.Ratio),
		DescentSpeed:  finitePtr(s.DescentSpeed),
		SpeedDelta:    finitePtr(s.SpeedDelta),
		Stabilizing:   s.Stabilizing,
		Controlled:    s.Controlled,
		TrackingStart: finitePtr(s.TrackingStart),
		Status:        glide.FormatStatus(s, units),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode glide response", "error", err)
	}
}

// finitePtr returns a pointer to v, or nil when v is NaN or infinite.
func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
