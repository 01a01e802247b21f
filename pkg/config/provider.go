package config

import (
	"context"
	"strconv"
	"time"

	"glidescope/pkg/store"
)

// Provider defines the interface for accessing unified configuration.
// Values tunable at runtime resolve through the settings store first and
// fall back to the static YAML config.
type Provider interface {
	// General
	SimProvider(ctx context.Context) string
	Units(ctx context.Context) string
	DatalinkURL(ctx context.Context) string

	// Glide measurement
	AllowTrim(ctx context.Context) bool
	AllowControlInput(ctx context.Context) bool
	SamplingWindow(ctx context.Context) time.Duration
	StabilizationThreshold(ctx context.Context) float64
	MinSegment(ctx context.Context) time.Duration

	// Audio
	AudioEnabled(ctx context.Context) bool
	AudioVolume(ctx context.Context) float64

	// Mock Sim
	MockStartLat(ctx context.Context) float64
	MockStartLon(ctx context.Context) float64
	MockStartAlt(ctx context.Context) float64
	MockStartHeading(ctx context.Context) float64

	// UI / Overlay
	OverlayShowSpeeds(ctx context.Context) bool
	OverlayShowSegments(ctx context.Context) bool

	// Raw access (for components that need deep access)
	AppConfig() *Config
}

// UnifiedProvider implements Provider by bridging static Config and
// persistent Store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

// --- Implementations ---

func (p *UnifiedProvider) SimProvider(ctx context.Context) string {
	fallback := p.base.Sim.Provider
	if fallback == "" {
		fallback = "datalink"
	}
	return p.getString(ctx, KeySimSource, fallback)
}

func (p *UnifiedProvider) Units(ctx context.Context) string {
	return p.getString(ctx, KeyUnits, "metric")
}

func (p *UnifiedProvider) DatalinkURL(ctx context.Context) string {
	return p.getString(ctx, KeyDatalinkURL, p.base.Sim.Datalink.URL)
}

func (p *UnifiedProvider) AllowTrim(ctx context.Context) bool {
	return p.getBool(ctx, KeyAllowTrim, p.base.Glide.AllowTrim)
}

func (p *UnifiedProvider) AllowControlInput(ctx context.Context) bool {
	return p.getBool(ctx, KeyAllowControlInput, p.base.Glide.AllowControlInput)
}

func (p *UnifiedProvider) SamplingWindow(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeySamplingWindow, time.Duration(p.base.Glide.SamplingWindow))
}

func (p *UnifiedProvider) StabilizationThreshold(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyStabilizationThreshold, p.base.Glide.StabilizationThreshold)
}

func (p *UnifiedProvider) MinSegment(ctx context.Context) time.Duration {
	return p.getDuration(ctx, KeyMinSegment, time.Duration(p.base.Glide.MinSegment))
}

func (p *UnifiedProvider) AudioEnabled(ctx context.Context) bool {
	return p.getBool(ctx, KeyAudioEnabled, p.base.Audio.Enabled)
}

func (p *UnifiedProvider) AudioVolume(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyAudioVolume, p.base.Audio.Volume)
}

func (p *UnifiedProvider) MockStartLat(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyMockLat, p.base.Sim.Mock.StartLat)
}

func (p *UnifiedProvider) MockStartLon(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyMockLon, p.base.Sim.Mock.StartLon)
}

func (p *UnifiedProvider) MockStartAlt(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyMockAlt, p.base.Sim.Mock.StartAlt.Meters())
}

func (p *UnifiedProvider) MockStartHeading(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyMockHeading, p.base.Sim.Mock.StartHeading)
}

func (p *UnifiedProvider) OverlayShowSpeeds(ctx context.Context) bool {
	return p.getBool(ctx, KeyOverlayShowSpeeds, p.base.Overlay.ShowSpeeds)
}

func (p *UnifiedProvider) OverlayShowSegments(ctx context.Context) bool {
	return p.getBool(ctx, KeyOverlayShowSegments, p.base.Overlay.ShowSegments)
}

// --- Helpers ---

func (p *UnifiedProvider) getString(ctx context.Context, key, fallback string) string {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val
		}
	}
	return fallback
}

func (p *UnifiedProvider) getFloat64(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return fallback
}

func (p *UnifiedProvider) getBool(ctx context.Context, key string, fallback bool) bool {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			return val == "true"
		}
	}
	return fallback
}

func (p *UnifiedProvider) getDuration(ctx context.Context, key string, fallback time.Duration) time.Duration {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if dur, err := ParseDuration(val); err == nil {
				return dur
			}
		}
	}
	return fallback
}
