package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"glidescope/pkg/stats"
)

// StatsHandler serves runtime diagnostics and the monitor counters.
type StatsHandler struct {
	tracker *stats.Tracker
	started time.Time
}

// NewStatsHandler creates a new handler instance.
func NewStatsHandler(t *stats.Tracker) *StatsHandler {
	return &StatsHandler{
		tracker: t,
		started: time.Now(),
	}
}

// ProcessStats describes the running process.
type ProcessStats struct {
	StartedAt     time.Time `json:"started_at"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Goroutines    int       `json:"goroutines"`
	HeapAllocMB   uint64    `json:"heap_alloc_mb"`
	SysMB         uint64    `json:"sys_mb"`
	NumGC         uint32    `json:"num_gc"`
}

// StatsResponse is the wire format for /api/stats.
type StatsResponse struct {
	Process ProcessStats   `json:"process"`
	Monitor stats.Snapshot `json:"monitor"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	resp := StatsResponse{
		Process: ProcessStats{
			StartedAt:     h.started,
			UptimeSeconds: time.Since(h.started).Seconds(),
			Goroutines:    runtime.NumGoroutine(),
			HeapAllocMB:   bToMb(mem.HeapAlloc),
			SysMB:         bToMb(mem.Sys),
			NumGC:         mem.NumGC,
		},
		Monitor: h.tracker.Snapshot(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode stats response", "error", err)
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
