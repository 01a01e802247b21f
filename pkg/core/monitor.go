package core

import (
	"log/slog"
	"sync"
	"time"

	"glidescope/pkg/audio"
	"glidescope/pkg/flightlog"
	"glidescope/pkg/glide"
	"glidescope/pkg/sim"
	"glidescope/pkg/stats"
)

// EndReasonHostLost is recorded on segments closed because the
// simulator left the active state rather than by a disqualifying tick.
const EndReasonHostLost = "sim inactive"

// EndReasonSettings is recorded on segments closed because the tracker
// configuration changed underneath a running glide.
const EndReasonSettings = "settings changed"

// Monitor glues the telemetry stream to the glide tracker. It owns the
// eligibility detector and the tracker, forwards lifecycle edges to the
// flight log, audio cues and counters, and serves summary snapshots.
// Safe for concurrent use: the scheduler drives ticks while the API
// pulls summaries.
type Monitor struct {
	mu       sync.Mutex
	detector *sim.Detector
	tracker  *glide.Tracker
	flog     *flightlog.Manager
	snd      audio.Service
	stats    *stats.Tracker

	lastState       sim.State
	lastSimTime     float64
	lastSummary     glide.Summary
	prevComplete    bool
	prevStabilizing bool
}

// NewMonitor creates a monitor in the invalid state.
func NewMonitor(opts glide.Options, det *sim.Detector, flog *flightlog.Manager, snd audio.Service, st *stats.Tracker) *Monitor {
	m := &Monitor{
		detector:  det,
		tracker:   glide.NewTracker(opts),
		flog:      flog,
		snd:       snd,
		stats:     st,
		lastState: sim.StateDisconnected,
	}
	m.lastSummary = m.tracker.Summary()
	return m
}

// Update evaluates one telemetry tick.
func (m *Monitor) Update(tel *sim.Telemetry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sample := glide.Sample{
		Time:            tel.SimTime,
		Eligible:        m.detector.Update(tel),
		VerticalSpeed:   tel.VerticalSpeed,
		HorizontalSpeed: tel.HorizontalSpeed,
		TotalSpeed:      tel.TotalSpeed,
		Throttle:        tel.Throttle,
		TrimActive:      tel.TrimActive,
		AutopilotInput:  tel.AutopilotOn,
		ManualInput:     tel.ManualInput,
	}

	wasTracking := m.tracker.State() == glide.StateTracking
	prev := m.lastSummary

	flushesBefore := m.tracker.Flushes()
	state := m.tracker.Update(sample)
	flushed := m.tracker.Flushes() > flushesBefore

	summary := m.tracker.Summary()
	m.lastSummary = summary
	m.lastSimTime = tel.SimTime

	m.stats.TrackTick(state == glide.StateTracking, m.tracker.Reason())
	if flushed {
		m.stats.TrackFlush()
	}

	switch {
	case state == glide.StateTracking && !wasTracking:
		m.flog.Begin(tel.SimTime, time.Now())
		m.flog.Observe(tel, flushed)
		slog.Debug("Monitor: glide started", "sim_time", tel.SimTime)
	case state == glide.StateTracking:
		m.flog.Observe(tel, flushed)
	case wasTracking:
		m.closeSegmentLocked(tel.SimTime, m.tracker.Reason(), prev)
		m.snd.PlayCue(audio.CueTrackingLost)
	}

	if state != glide.StateTracking {
		m.prevComplete = false
		m.prevStabilizing = false
		return
	}
	if summary.Complete() && !m.prevComplete {
		m.stats.TrackWindowComplete()
		m.snd.PlayCue(audio.CueWindowComplete)
	}
	if summary.Stabilizing && !m.prevStabilizing {
		m.snd.PlayCue(audio.CueStabilizing)
	}
	m.prevComplete = summary.Complete()
	m.prevStabilizing = summary.Stabilizing
}

// UpdateState reacts to simulator state transitions. Leaving the active
// state ends any running glide; telemetry stops flowing, so the tracker
// would otherwise hold stale statistics forever.
func (m *Monitor) UpdateState(s sim.State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s == m.lastState {
		return
	}
	slog.Info("Monitor: sim state changed", "from", m.lastState, "to", s)
	m.lastState = s

	if s == sim.StateActive {
		return
	}

	wasTracking := m.tracker.State() == glide.StateTracking
	prev := m.lastSummary

	m.detector.Reset()
	m.tracker.Reset()
	m.lastSummary = m.tracker.Summary()
	m.prevComplete = false
	m.prevStabilizing = false

	if wasTracking {
		m.closeSegmentLocked(m.lastSimTime, EndReasonHostLost, prev)
		m.snd.PlayCue(audio.CueTrackingLost)
	}
}

// Summary returns the most recently published summary.
func (m *Monitor) Summary() glide.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSummary
}

// Options returns the tracker configuration currently in effect.
func (m *Monitor) Options() glide.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracker.Options()
}

// ApplyOptions swaps the tracker configuration. The window capacity
// depends on it, so a change discards the running statistics; an active
// segment is closed first.
func (m *Monitor) ApplyOptions(opts glide.Options) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if opts == m.tracker.Options() {
		return
	}

	if m.tracker.State() == glide.StateTracking {
		m.closeSegmentLocked(m.lastSimTime, EndReasonSettings, m.lastSummary)
	}

	m.tracker = glide.NewTracker(opts)
	m.lastSummary = m.tracker.Summary()
	m.prevComplete = false
	m.prevStabilizing = false

	slog.Info("Monitor: tracker options applied",
		"window_s", opts.SamplingWindowSeconds,
		"threshold", opts.StabilizationThreshold,
		"allow_trim", opts.AllowTrim,
		"allow_control_input", opts.AllowControlInput)
}

func (m *Monitor) closeSegmentLocked(simTime float64, reason string, last glide.Summary) {
	if _, ok := m.flog.End(simTime, time.Now(), reason, last); ok {
		m.stats.TrackSegment()
	}
}
