package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"glidescope/pkg/config"
)

type mockStore struct {
	state map[string]string
}

func (m *mockStore) GetState(ctx context.Context, key string) (string, bool) {
	val, ok := m.state[key]
	return val, ok
}

func (m *mockStore) SetState(ctx context.Context, key, val string) error {
	if m.state == nil {
		m.state = make(map[string]string)
	}
	m.state[key] = val
	return nil
}

func (m *mockStore) DeleteState(ctx context.Context, key string) error {
	delete(m.state, key)
	return nil
}

func TestHandleGetConfig(t *testing.T) {
	tests := []struct {
		name               string
		storeState         map[string]string
		wantSimSource      string
		wantUnits          string
		wantSamplingWindow string
		wantAllowTrim      bool
		wantAudioVolume    float64
		wantShowSpeeds     bool
	}{
		{
			name:               "Defaults",
			storeState:         map[string]string{},
			wantSimSource:      "datalink",
			wantUnits:          "metric",
			wantSamplingWindow: "10s",
			wantAllowTrim:      true,
			wantAudioVolume:    0.8,
			wantShowSpeeds:     true,
		},
		{
			name: "Store Overrides",
			storeState: map[string]string{
				"sim_source":          "mock",
				"units":               "imperial",
				"sampling_window":     "5s",
				"allow_trim":          "false",
				"audio_volume":        "0.35",
				"overlay_show_speeds": "false",
			},
			wantSimSource:      "mock",
			wantUnits:          "imperial",
			wantSamplingWindow: "5s",
			wantAllowTrim:      false,
			wantAudioVolume:    0.35,
			wantShowSpeeds:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &mockStore{state: tt.storeState}
			h := NewConfigHandler(st, config.NewProvider(config.DefaultConfig(), st))

			req := httptest.NewRequest("GET", "/api/config", nil)
			w := httptest.NewRecorder()

			h.HandleConfig(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected status OK, got %v", resp.Status)
			}

			var got ConfigResponse
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if got.SimSource != tt.wantSimSource {
				t.Errorf("SimSource = %q, want %q", got.SimSource, tt.wantSimSource)
			}
			if got.Units != tt.wantUnits {
				t.Errorf("Units = %q, want %q", got.Units, tt.wantUnits)
			}
			if got.SamplingWindow != tt.wantSamplingWindow {
				t.Errorf("SamplingWindow = %q, want %q", got.SamplingWindow, tt.wantSamplingWindow)
			}
			if got.AllowTrim != tt.wantAllowTrim {
				t.Errorf("AllowTrim = %v, want %v", got.AllowTrim, tt.wantAllowTrim)
			}
			if got.AudioVolume != tt.wantAudioVolume {
				t.Errorf("AudioVolume = %v, want %v", got.AudioVolume, tt.wantAudioVolume)
			}
			if got.OverlayShowSpeeds != tt.wantShowSpeeds {
				t.Errorf("OverlayShowSpeeds = %v, want %v", got.OverlayShowSpeeds, tt.wantShowSpeeds)
			}
		})
	}
}

func TestHandleSetConfig(t *testing.T) {
	// Helper functions for pointers
	ptrBool := func(b bool) *bool { return &b }
	ptrFloat := func(f float64) *float64 { return &f }

	tests := []struct {
		name    string
		req     ConfigRequest
		wantKey string
		wantVal string
	}{
		{
			name:    "Update Sim Source",
			req:     ConfigRequest{SimSource: "mock"},
			wantKey: "sim_source",
			wantVal: "mock",
		},
		{
			name:    "Update Units",
			req:     ConfigRequest{Units: "imperial"},
			wantKey: "units",
			wantVal: "imperial",
		},
		{
			name:    "Update Datalink URL",
			req:     ConfigRequest{DatalinkURL: "wss://sim.local:9000/telemetry"},
			wantKey: "datalink_url",
			wantVal: "wss://sim.local:9000/telemetry",
		},
		{
			name:    "Update Sampling Window",
			req:     ConfigRequest{SamplingWindow: "5s"},
			wantKey: "sampling_window",
			wantVal: "5s",
		},
		{
			name:    "Update Min Segment",
			req:     ConfigRequest{MinSegment: "45s"},
			wantKey: "min_segment",
			wantVal: "45s",
		},
		{
			name:    "Small Threshold Survives Formatting",
			req:     ConfigRequest{StabilizationThreshold: ptrFloat(0.005)},
			wantKey: "stabilization_threshold",
			wantVal: "0.005",
		},
		{
			name:    "Update Audio Volume",
			req:     ConfigRequest{AudioVolume: ptrFloat(0.35)},
			wantKey: "audio_volume",
			wantVal: "0.35",
		},
		{
			name:    "Update Boolean False",
			req:     ConfigRequest{AllowTrim: ptrBool(false)},
			wantKey: "allow_trim",
			wantVal: "false",
		},
		{
			name:    "Update Boolean True",
			req:     ConfigRequest{AudioEnabled: ptrBool(true)},
			wantKey: "audio_enabled",
			wantVal: "true",
		},
		{
			name:    "Update Mock Latitude",
			req:     ConfigRequest{MockStartLat: ptrFloat(61.25)},
			wantKey: "mock_start_lat",
			wantVal: "61.25",
		},
		{
			name:    "Update Overlay Segments",
			req:     ConfigRequest{OverlayShowSegments: ptrBool(true)},
			wantKey: "overlay_show_segments",
			wantVal: "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &mockStore{state: make(map[string]string)}
			h := NewConfigHandler(st, config.NewProvider(config.DefaultConfig(), st))

			body, err := json.Marshal(tt.req)
			if err != nil {
				t.Fatalf("failed to marshal request: %v", err)
			}

			req := httptest.NewRequest("PUT", "/api/config", bytes.NewReader(body))
			w := httptest.NewRecorder()

			h.HandleConfig(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected status OK, got %v", resp.Status)
			}

			if got := st.state[tt.wantKey]; got != tt.wantVal {
				t.Errorf("store[%q] = %q, want %q", tt.wantKey, got, tt.wantVal)
			}
		})
	}
}

func TestHandleSetConfig_Validation(t *testing.T) {
	ptrFloat := func(f float64) *float64 { return &f }

	tests := []struct {
		name string
		req  ConfigRequest
	}{
		{name: "Bad Sim Source", req: ConfigRequest{SimSource: "simconnect"}},
		{name: "Bad Units", req: ConfigRequest{Units: "km"}},
		{name: "Bad Datalink Scheme", req: ConfigRequest{DatalinkURL: "http://sim.local/telemetry"}},
		{name: "Zero Sampling Window", req: ConfigRequest{SamplingWindow: "0s"}},
		{name: "Unparseable Sampling Window", req: ConfigRequest{SamplingWindow: "soon"}},
		{name: "Negative Min Segment", req: ConfigRequest{MinSegment: "-10s"}},
		{name: "Negative Threshold", req: ConfigRequest{StabilizationThreshold: ptrFloat(-0.1)}},
		{name: "Volume Above One", req: ConfigRequest{AudioVolume: ptrFloat(1.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &mockStore{state: make(map[string]string)}
			h := NewConfigHandler(st, config.NewProvider(config.DefaultConfig(), st))

			body, err := json.Marshal(tt.req)
			if err != nil {
				t.Fatalf("failed to marshal request: %v", err)
			}

			req := httptest.NewRequest("PUT", "/api/config", bytes.NewReader(body))
			w := httptest.NewRecorder()

			h.HandleConfig(w, req)

			if w.Result().StatusCode != http.StatusBadRequest {
				t.Errorf("expected status 400, got %v", w.Result().Status)
			}
			if len(st.state) != 0 {
				t.Errorf("expected no store writes, got %v", st.state)
			}
		})
	}
}

func TestHandleConfig_Options(t *testing.T) {
	st := &mockStore{state: make(map[string]string)}
	h := NewConfigHandler(st, config.NewProvider(config.DefaultConfig(), st))

	req := httptest.NewRequest("OPTIONS", "/api/config", nil)
	w := httptest.NewRecorder()

	h.HandleConfig(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status OK, got %v", resp.Status)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestHandleSetConfig_InvalidJSON(t *testing.T) {
	st := &mockStore{state: make(map[string]string)}
	h := NewConfigHandler(st, config.NewProvider(config.DefaultConfig(), st))

	req := httptest.NewRequest("POST", "/api/config", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	h.HandleConfig(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %v", w.Result().Status)
	}
}
