package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Ticker  TickerConfig  `yaml:"ticker"`
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
	Sim     SimConfig     `yaml:"sim"`
	Glide   GlideConfig   `yaml:"glide"`
	Audio   AudioConfig   `yaml:"audio"`
	Overlay OverlayConfig `yaml:"overlay"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// TickerConfig holds the polling cadence of the telemetry loop.
type TickerConfig struct {
	TelemetryLoop Duration `yaml:"telemetry_loop"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Datalink LogSettings `yaml:"datalink"`
	Requests LogSettings `yaml:"requests"`
	Events   LogSettings `yaml:"events"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// SimConfig holds settings for the simulation connection.
type SimConfig struct {
	Provider string         `yaml:"provider"` // "datalink", "mock"
	Datalink DatalinkConfig `yaml:"datalink"`
	Mock     MockSimConfig  `yaml:"mock"`
}

// DatalinkConfig holds settings for the websocket telemetry feed.
type DatalinkConfig struct {
	URL string `yaml:"url"`
}

// MockSimConfig holds the flight envelope of the built-in mock glider.
type MockSimConfig struct {
	StartLat     float64  `yaml:"start_lat"`
	StartLon     float64  `yaml:"start_lon"`
	StartAlt     Distance `yaml:"start_alt"`
	StartHeading float64  `yaml:"start_heading"`
	CeilingAlt   Distance `yaml:"ceiling_alt"`
	FloorAlt     Distance `yaml:"floor_alt"`
	ClimbRate    float64  `yaml:"climb_rate"`
	SinkRate     float64  `yaml:"sink_rate"`
	CruiseSpeed  float64  `yaml:"cruise_speed"`
	SpeedJitter  float64  `yaml:"speed_jitter"`
	BlipPeriod   Duration `yaml:"blip_period"`
}

// GlideConfig holds the glide measurement settings.
type GlideConfig struct {
	SamplingWindow         Duration `yaml:"sampling_window"`
	StabilizationThreshold float64  `yaml:"stabilization_threshold"`
	AllowTrim              bool     `yaml:"allow_trim"`
	AllowControlInput      bool     `yaml:"allow_control_input"`
	MinSegment             Duration `yaml:"min_segment"`
}

// AudioConfig holds audio cue settings.
type AudioConfig struct {
	Enabled bool      `yaml:"enabled"`
	Volume  float64   `yaml:"volume"`
	Cues    CueConfig `yaml:"cues"`
}

// CueConfig toggles individual audio cues.
type CueConfig struct {
	WindowComplete bool `yaml:"window_complete"`
	Stabilizing    bool `yaml:"stabilizing"`
	TrackingLost   bool `yaml:"tracking_lost"`
}

// OverlayConfig holds default visibility of overlay panels.
type OverlayConfig struct {
	ShowSpeeds   bool `yaml:"show_speeds"`
	ShowSegments bool `yaml:"show_segments"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:8420",
		},
		Ticker: TickerConfig{
			TelemetryLoop: Duration(250 * time.Millisecond),
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Datalink: LogSettings{
				Path:  "./logs/datalink.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path:  "./logs/events.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/glidescope.db",
		},
		Sim: SimConfig{
			Provider: "datalink",
			Datalink: DatalinkConfig{
				URL: "ws://localhost:8169/telemetry",
			},
			Mock: MockSimConfig{
				StartLat:     47.42,
				StartLon:     10.98,
				StartAlt:     Distance(1200),
				StartHeading: 270,
				CeilingAlt:   Distance(2200),
				FloorAlt:     Distance(900),
				ClimbRate:    5.0,
				SinkRate:     1.8,
				CruiseSpeed:  28.0,
				SpeedJitter:  0.005,
				BlipPeriod:   Duration(0),
			},
		},
		Glide: GlideConfig{
			SamplingWindow:         Duration(10 * time.Second),
			StabilizationThreshold: 0.01,
			AllowTrim:              true,
			AllowControlInput:      true,
			MinSegment:             Duration(30 * time.Second),
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  0.8,
			Cues: CueConfig{
				WindowComplete: true,
				Stabilizing:    true,
				TrackingLost:   false,
			},
		},
		Overlay: OverlayConfig{
			ShowSpeeds:   true,
			ShowSegments: false,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		// Env fallback for the feed URL (set via .env or shell, never
		// written back to disk).
		if cfg.Sim.Datalink.URL == "" {
			if url := os.Getenv("GLIDESCOPE_DATALINK_URL"); url != "" {
				cfg.Sim.Datalink.URL = url
			}
		}

		expandPaths(cfg)

		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	expandPaths(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandPaths resolves $VAR and %VAR% references in file paths. Raw
// values stay on disk; expansion happens in memory only.
func expandPaths(cfg *Config) {
	cfg.DB.Path = expandEnv(cfg.DB.Path)
	cfg.Log.Server.Path = expandEnv(cfg.Log.Server.Path)
	cfg.Log.Datalink.Path = expandEnv(cfg.Log.Datalink.Path)
	cfg.Log.Requests.Path = expandEnv(cfg.Log.Requests.Path)
	cfg.Log.Events.Path = expandEnv(cfg.Log.Events.Path)
}

var winVarRe = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

func expandEnv(s string) string {
	s = winVarRe.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(strings.Trim(m, "%"))
	})
	return os.ExpandEnv(s)
}

func (c *Config) validate() error {
	switch c.Sim.Provider {
	case "", "datalink", "mock":
	default:
		return fmt.Errorf("invalid sim provider '%s': must be 'datalink' or 'mock'", c.Sim.Provider)
	}
	if time.Duration(c.Glide.SamplingWindow) <= 0 {
		return fmt.Errorf("invalid sampling_window %v: must be positive", time.Duration(c.Glide.SamplingWindow))
	}
	if c.Glide.StabilizationThreshold < 0 {
		return fmt.Errorf("invalid stabilization_threshold %v: must not be negative", c.Glide.StabilizationThreshold)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("invalid audio volume %v: must be within [0, 1]", c.Audio.Volume)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# GlideScope Configuration
# -----------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles), ft (feet)

`)
	data = append(header, data...)

	// Inject comments for Enum fields
	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: datalink, mock\n${1}provider:"))

	reLevel := regexp.MustCompile(`(?m)^(\s+)level:`)
	data = reLevel.ReplaceAll(data, []byte("${1}# Options: DEBUG, INFO, WARN, ERROR\n${1}level:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
