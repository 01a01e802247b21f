// Package audio plays short generated cues for glide events. No media
// files are shipped or loaded; every cue is synthesized.
package audio

import (
	"log/slog"
	"sync"
	"time"

	"glidescope/pkg/config"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// Cue identifies one of the generated audio cues.
type Cue string

// Cues raised by the glide monitor.
const (
	CueWindowComplete Cue = "window_complete"
	CueStabilizing    Cue = "stabilizing"
	CueTrackingLost   Cue = "tracking_lost"
)

// cueCooldown is the minimum spacing between repeats of the same cue.
const cueCooldown = 10 * time.Second

// Service defines the interface for cue playback control.
type Service interface {
	// PlayCue plays a cue if audio is enabled, the cue is enabled and
	// its cooldown has elapsed. Never blocks on playback.
	PlayCue(cue Cue)
	// SetEnabled toggles all cue playback.
	SetEnabled(enabled bool)
	// Enabled reports whether cue playback is on.
	Enabled() bool
	// SetVolume sets playback volume (0.0 to 1.0).
	SetVolume(vol float64)
	// Volume returns current volume level.
	Volume() float64
	// Shutdown stops playback.
	Shutdown()
}

// Manager implements Service using gopxl/beep. If the speaker cannot be
// initialized (headless host, no audio device) the manager degrades to a
// silent no-op.
type Manager struct {
	mu                 sync.RWMutex
	enabled            bool
	volume             float64
	cues               config.CueConfig
	speakerInitialized bool
	initFailed         bool
	sampleRate         beep.SampleRate
	lastPlayed         map[Cue]time.Time
}

// New creates a Manager from the audio configuration.
func New(cfg config.AudioConfig) *Manager {
	return &Manager{
		enabled:    cfg.Enabled,
		volume:     cfg.Volume,
		cues:       cfg.Cues,
		lastPlayed: make(map[Cue]time.Time),
	}
}

// PlayCue plays the cue through the speaker. Disabled cues, cooldowns
// and speaker failures all short-circuit silently.
func (m *Manager) PlayCue(cue Cue) {
	m.mu.Lock()
	now := time.Now()
	if !m.shouldPlayLocked(cue, now) {
		m.mu.Unlock()
		return
	}
	if err := m.ensureSpeakerLocked(); err != nil {
		m.mu.Unlock()
		return
	}
	m.lastPlayed[cue] = now
	streamer := cueStreamer(cue, m.sampleRate)
	vol := m.volume
	m.mu.Unlock()

	speaker.Play(&effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   volumeToPower(vol),
		Silent:   vol <= 0.01,
	})
	slog.Debug("Audio: cue played", "cue", cue)
}

// shouldPlayLocked applies the enable flags and the per-cue cooldown.
func (m *Manager) shouldPlayLocked(cue Cue, now time.Time) bool {
	if !m.enabled || m.initFailed {
		return false
	}
	if !m.cueEnabledLocked(cue) {
		return false
	}
	if last, ok := m.lastPlayed[cue]; ok && now.Sub(last) < cueCooldown {
		return false
	}
	return true
}

func (m *Manager) cueEnabledLocked(cue Cue) bool {
	switch cue {
	case CueWindowComplete:
		return m.cues.WindowComplete
	case CueStabilizing:
		return m.cues.Stabilizing
	case CueTrackingLost:
		return m.cues.TrackingLost
	default:
		return false
	}
}

func (m *Manager) ensureSpeakerLocked() error {
	const targetSampleRate = 48000
	if m.speakerInitialized {
		return nil
	}
	err := speaker.Init(beep.SampleRate(targetSampleRate), beep.SampleRate(targetSampleRate).N(time.Second/10))
	if err != nil {
		m.initFailed = true
		slog.Warn("Audio: speaker init failed, cues disabled", "error", err)
		return err
	}
	m.speakerInitialized = true
	m.sampleRate = beep.SampleRate(targetSampleRate)
	return nil
}

// Probe attempts speaker initialization so startup checks surface a
// missing audio device early. Disabled audio always passes.
func (m *Manager) Probe() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return nil
	}
	return m.ensureSpeakerLocked()
}

// SetEnabled toggles all cue playback.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Enabled reports whether cue playback is on.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled && !m.initFailed
}

// SetVolume sets playback volume (0.0 to 1.0).
func (m *Manager) SetVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vol < 0 {
		vol = 0
	} else if vol > 1 {
		vol = 1
	}
	m.volume = vol
}

// Volume returns current volume level.
func (m *Manager) Volume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volume
}

// Shutdown stops playback.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.speakerInitialized {
		speaker.Clear()
	}
}
