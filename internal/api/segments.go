package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"glidescope/pkg/flightlog"
)

// SegmentsHandler exposes the session flight log.
type SegmentsHandler struct {
	flog *flightlog.Manager
}

// NewSegmentsHandler creates a new handler instance.
func NewSegmentsHandler(flog *flightlog.Manager) *SegmentsHandler {
	return &SegmentsHandler{flog: flog}
}

// SegmentsResponse is the wire format for /api/segments.
type SegmentsResponse struct {
	Segments []flightlog.Segment `json:"segments"`
	Active   *flightlog.Segment  `json:"active,omitempty"`
	Count    int                 `json:"count"`
}

// HandleList serves GET /api/segments.
func (h *SegmentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	segments := h.flog.Segments()

	resp := SegmentsResponse{
		Segments: segments,
		Count:    len(segments),
	}
	if active, ok := h.flog.Active(); ok {
		resp.Active = &active
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode segments response", "error", err)
	}
}

// HandleReset serves DELETE /api/segments.
func (h *SegmentsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.flog.Reset()
	slog.Info("Flight log cleared via API")
	w.WriteHeader(http.StatusNoContent)
}
