package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"glidescope/pkg/config"
	"glidescope/pkg/glide"
	"glidescope/pkg/store"
)

// ConfigHandler handles configuration API requests.
type ConfigHandler struct {
	store   store.StateStore
	cfgProv config.Provider
	appCfg  *config.Config
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(st store.StateStore, cfg config.Provider) *ConfigHandler {
	return &ConfigHandler{
		store:   st,
		cfgProv: cfg,
		appCfg:  cfg.AppConfig(),
	}
}

// ConfigResponse represents the config API response. Durations are
// rendered as strings ("10s") so the UI round-trips them unchanged.
type ConfigResponse struct {
	SimSource   string `json:"sim_source"`
	Units       string `json:"units"`
	DatalinkURL string `json:"datalink_url"`

	AllowTrim              bool    `json:"allow_trim"`
	AllowControlInput      bool    `json:"allow_control_input"`
	SamplingWindow         string  `json:"sampling_window"`
	StabilizationThreshold float64 `json:"stabilization_threshold"`
	MinSegment             string  `json:"min_segment"`

	AudioEnabled bool    `json:"audio_enabled"`
	AudioVolume  float64 `json:"audio_volume"`

	MockStartLat     float64 `json:"mock_start_lat"`
	MockStartLon     float64 `json:"mock_start_lon"`
	MockStartAlt     float64 `json:"mock_start_alt"`
	MockStartHeading float64 `json:"mock_start_heading"`

	OverlayShowSpeeds   bool `json:"overlay_show_speeds"`
	OverlayShowSegments bool `json:"overlay_show_segments"`
}

// ConfigRequest represents the config API request for updates.
type ConfigRequest struct {
	SimSource   string `json:"sim_source,omitempty"`
	Units       string `json:"units,omitempty"`
	DatalinkURL string `json:"datalink_url,omitempty"`

	AllowTrim              *bool    `json:"allow_trim,omitempty"` // Pointer to detect false vs missing
	AllowControlInput      *bool    `json:"allow_control_input,omitempty"`
	SamplingWindow         string   `json:"sampling_window,omitempty"`
	StabilizationThreshold *float64 `json:"stabilization_threshold,omitempty"`
	MinSegment             string   `json:"min_segment,omitempty"`

	AudioEnabled *bool    `json:"audio_enabled,omitempty"`
	AudioVolume  *float64 `json:"audio_volume,omitempty"`

	MockStartLat     *float64 `json:"mock_start_lat,omitempty"`
	MockStartLon     *float64 `json:"mock_start_lon,omitempty"`
	MockStartAlt     *float64 `json:"mock_start_alt,omitempty"`
	MockStartHeading *float64 `json:"mock_start_heading,omitempty"`

	OverlayShowSpeeds   *bool `json:"overlay_show_speeds,omitempty"`
	OverlayShowSegments *bool `json:"overlay_show_segments,omitempty"`
}

// HandleConfig is a unified handler for all config-related methods, facilitating CORS/OPTIONS.
func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.HandleGetConfig(w, r)
	case http.MethodPut, http.MethodPost:
		h.HandleSetConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleGetConfig returns the current configuration.
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := h.getConfigResponse(ctx)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode config response", "error", err)
	}
}

func (h *ConfigHandler) getConfigResponse(ctx context.Context) ConfigResponse {
	return ConfigResponse{
		SimSource:              h.cfgProv.SimProvider(ctx),
		Units:                  h.cfgProv.Units(ctx),
		DatalinkURL:            h.cfgProv.DatalinkURL(ctx),
		AllowTrim:              h.cfgProv.AllowTrim(ctx),
		AllowControlInput:      h.cfgProv.AllowControlInput(ctx),
		SamplingWindow:         h.cfgProv.SamplingWindow(ctx).String(),
		StabilizationThreshold: h.cfgProv.StabilizationThreshold(ctx),
		MinSegment:             h.cfgProv.MinSegment(ctx).String(),
		AudioEnabled:           h.cfgProv.AudioEnabled(ctx),
		AudioVolume:            h.cfgProv.AudioVolume(ctx),
		MockStartLat:           h.cfgProv.MockStartLat(ctx),
		MockStartLon:           h.cfgProv.MockStartLon(ctx),
		MockStartAlt:           h.cfgProv.MockStartAlt(ctx),
		MockStartHeading:       h.cfgProv.MockStartHeading(ctx),
		OverlayShowSpeeds:      h.cfgProv.OverlayShowSpeeds(ctx),
		OverlayShowSegments:    h.cfgProv.OverlayShowSegments(ctx),
	}
}

// HandleSetConfig updates the configuration.
func (h *ConfigHandler) HandleSetConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.Body.Close() }()

	var req ConfigRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	ctx := context.Background()

	// Core updates (return error to client if they fail)
	if err := h.applyCoreUpdates(ctx, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Other updates (logged but don't block)
	h.applyGlideUpdates(ctx, &req)
	h.applyAudioUpdates(ctx, &req)
	h.applyMockUpdates(ctx, &req)
	h.applyOverlayUpdates(ctx, &req)

	// Return updated config
	h.HandleGetConfig(w, r)
}

func (h *ConfigHandler) applyCoreUpdates(ctx context.Context, req *ConfigRequest) error {
	if req.SimSource != "" {
		if err := h.updateSimSource(ctx, req.SimSource); err != nil {
			slog.Error("Failed to save sim_source", "error", err)
			return err
		}
	}

	if req.Units != "" {
		if err := h.updateUnits(ctx, req.Units); err != nil {
			slog.Error("Failed to save units", "error", err)
			return err
		}
	}

	if req.DatalinkURL != "" {
		if err := h.updateDatalinkURL(ctx, req.DatalinkURL); err != nil {
			slog.Error("Failed to save datalink_url", "error", err)
			return err
		}
	}

	if req.SamplingWindow != "" {
		if err := h.updateDurationState(ctx, config.KeySamplingWindow, req.SamplingWindow, true); err != nil {
			slog.Error("Failed to save sampling_window", "error", err)
			return err
		}
	}

	if req.MinSegment != "" {
		if err := h.updateDurationState(ctx, config.KeyMinSegment, req.MinSegment, false); err != nil {
			slog.Error("Failed to save min_segment", "error", err)
			return err
		}
	}

	if req.StabilizationThreshold != nil {
		if *req.StabilizationThreshold < 0 {
			return fmt.Errorf("stabilization_threshold must be >= 0, got %g", *req.StabilizationThreshold)
		}
		h.updateFloatState(ctx, config.KeyStabilizationThreshold, *req.StabilizationThreshold)
	}

	if req.AudioVolume != nil {
		if *req.AudioVolume < 0 || *req.AudioVolume > 1 {
			return fmt.Errorf("audio_volume must be within [0, 1], got %g", *req.AudioVolume)
		}
		h.updateFloatState(ctx, config.KeyAudioVolume, *req.AudioVolume)
	}

	return nil
}

func (h *ConfigHandler) applyGlideUpdates(ctx context.Context, req *ConfigRequest) {
	if req.AllowTrim != nil {
		h.updateBoolState(ctx, config.KeyAllowTrim, *req.AllowTrim)
	}

	if req.AllowControlInput != nil {
		h.updateBoolState(ctx, config.KeyAllowControlInput, *req.AllowControlInput)
	}
}

func (h *ConfigHandler) applyAudioUpdates(ctx context.Context, req *ConfigRequest) {
	if req.AudioEnabled != nil {
		h.updateBoolState(ctx, config.KeyAudioEnabled, *req.AudioEnabled)
	}
}

func (h *ConfigHandler) applyMockUpdates(ctx context.Context, req *ConfigRequest) {
	if req.MockStartLat != nil {
		h.updateFloatState(ctx, config.KeyMockLat, *req.MockStartLat)
	}
	if req.MockStartLon != nil {
		h.updateFloatState(ctx, config.KeyMockLon, *req.MockStartLon)
	}
	if req.MockStartAlt != nil {
		h.updateFloatState(ctx, config.KeyMockAlt, *req.MockStartAlt)
	}
	if req.MockStartHeading != nil {
		h.updateFloatState(ctx, config.KeyMockHeading, *req.MockStartHeading)
	}
}

func (h *ConfigHandler) applyOverlayUpdates(ctx context.Context, req *ConfigRequest) {
	if req.OverlayShowSpeeds != nil {
		h.updateBoolState(ctx, config.KeyOverlayShowSpeeds, *req.OverlayShowSpeeds)
	}
	if req.OverlayShowSegments != nil {
		h.updateBoolState(ctx, config.KeyOverlayShowSegments, *req.OverlayShowSegments)
	}
}

func (h *ConfigHandler) updateSimSource(ctx context.Context, val string) error {
	if val != "datalink" && val != "mock" {
		return fmt.Errorf("invalid sim_source %q (want \"datalink\" or \"mock\")", val)
	}
	if err := h.store.SetState(ctx, config.KeySimSource, val); err != nil {
		return err
	}
	slog.Debug("Config updated", "sim_source", val)
	return nil
}

func (h *ConfigHandler) updateUnits(ctx context.Context, val string) error {
	if val != glide.UnitsMetric && val != glide.UnitsImperial {
		return fmt.Errorf("invalid units %q (want \"metric\" or \"imperial\")", val)
	}
	if err := h.store.SetState(ctx, config.KeyUnits, val); err != nil {
		return err
	}
	slog.Debug("Config updated", "units", val)
	return nil
}

func (h *ConfigHandler) updateDatalinkURL(ctx context.Context, val string) error {
	if !strings.HasPrefix(val, "ws://") && !strings.HasPrefix(val, "wss://") {
		return fmt.Errorf("invalid datalink_url %q (want a ws:// or wss:// URL)", val)
	}
	if err := h.store.SetState(ctx, config.KeyDatalinkURL, val); err != nil {
		return err
	}
	slog.Debug("Config updated", "datalink_url", val)
	return nil
}

// updateDurationState validates and stores a duration given as a string
// like "10s" or "250ms". The stored form is the raw string; the provider
// re-parses it on read.
func (h *ConfigHandler) updateDurationState(ctx context.Context, key, val string, requirePositive bool) error {
	d, err := config.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	if requirePositive && d <= 0 {
		return fmt.Errorf("%s must be positive, got %q", key, val)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative, got %q", key, val)
	}
	if err := h.store.SetState(ctx, key, val); err != nil {
		return err
	}
	slog.Debug("Config updated", key, val)
	return nil
}

func (h *ConfigHandler) updateBoolState(ctx context.Context, key string, val bool) {
	strVal := "false"
	if val {
		strVal = "true"
	}
	if err := h.store.SetState(ctx, key, strVal); err != nil {
		slog.Error("Failed to save state", "key", key, "error", err)
	} else {
		slog.Debug("Config updated", key, strVal)
	}
}

func (h *ConfigHandler) updateFloatState(ctx context.Context, key string, val float64) {
	// %g keeps small thresholds like 0.005 intact.
	strVal := strconv.FormatFloat(val, 'g', -1, 64)
	if err := h.store.SetState(ctx, key, strVal); err != nil {
		slog.Error("Failed to save state", "key", key, "error", err)
	} else {
		slog.Debug("Config updated", key, strVal)
	}
}
