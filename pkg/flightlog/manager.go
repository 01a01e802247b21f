// Package flightlog keeps the in-memory record of glide segments flown
// during this session. Nothing here survives process exit.
package flightlog

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"glidescope/pkg/geo"
	"glidescope/pkg/glide"
	"glidescope/pkg/logging"
	"glidescope/pkg/sim"
)

// Segment is one completed continuous glide.
type Segment struct {
	ID        string    `json:"id"`
	StartSim  float64   `json:"start_sim_time"`
	EndSim    float64   `json:"end_sim_time"`
	Duration  float64   `json:"duration_seconds"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	EndReason string    `json:"end_reason"`

	Ticks int64 `json:"ticks"`

	// BestRatio and WorstSink come from the last published summary and
	// are absent when the sampling window never filled.
	BestRatio *float64 `json:"best_ratio,omitempty"`
	WorstSink *float64 `json:"worst_sink,omitempty"`

	MeanSpeed   float64 `json:"mean_speed"`
	SpeedStdDev float64 `json:"speed_stddev"`
	GroundTrack float64 `json:"ground_track_meters"`

	// Course is the overall bearing flown, from the first sampled
	// position to the last. Absent until the track spans two samples.
	Course *float64 `json:"course_degrees,omitempty"`
}

type activeSegment struct {
	id        string
	startSim  float64
	startedAt time.Time
	ticks     int64
	speeds    []float64
	track     geo.Track
}

// Manager owns the session's segment history. Safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	minSeconds float64
	segments   []Segment
	active     *activeSegment
}

// NewManager creates a manager that discards segments shorter than
// minSeconds of simulation time.
func NewManager(minSeconds float64) *Manager {
	return &Manager{minSeconds: minSeconds}
}

// SetMinimum updates the minimum duration applied to future commits.
func (m *Manager) SetMinimum(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minSeconds = seconds
}

// Begin opens a segment when tracking starts.
func (m *Manager) Begin(simTime float64, wall time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = &activeSegment{
		id:        uuid.NewString(),
		startSim:  simTime,
		startedAt: wall,
	}
}

// Observe records one tracked tick. Speed and position are sampled on
// flush boundaries so long glides stay bounded in memory.
func (m *Manager) Observe(tel *sim.Telemetry, flushed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return
	}
	m.active.ticks++
	if flushed {
		m.active.speeds = append(m.active.speeds, tel.TotalSpeed)
		m.active.track.Push(geo.Point{Lat: tel.Latitude, Lon: tel.Longitude})
	}
}

// End closes the active segment and commits it unless it is shorter
// than the configured minimum. The last summary published while the
// glide was alive supplies the headline figures.
func (m *Manager) End(simTime float64, wall time.Time, reason string, last glide.Summary) (Segment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Segment{}, false
	}
	active := m.active
	m.active = nil

	duration := simTime - active.startSim
	if duration < m.minSeconds {
		return Segment{}, false
	}

	seg := Segment{
		ID:          active.id,
		StartSim:    active.startSim,
		EndSim:      simTime,
		Duration:    duration,
		StartedAt:   active.startedAt,
		EndedAt:     wall,
		EndReason:   reason,
		Ticks:       active.ticks,
		MeanSpeed:   meanOf(active.speeds),
		SpeedStdDev: stddevOf(active.speeds),
		GroundTrack: active.track.Distance(),
	}
	if course, ok := active.track.Course(); ok {
		seg.Course = &course
	}
	if last.Complete() && !math.IsNaN(last.Ratio) {
		ratio := last.Ratio
		sink := last.DescentSpeed
		seg.BestRatio = &ratio
		seg.WorstSink = &sink
	}

	m.segments = append(m.segments, seg)

	summary := fmt.Sprintf("%.0fs, %d ticks, end: %s", duration, seg.Ticks, reason)
	if seg.BestRatio != nil {
		summary += fmt.Sprintf(", L/D %.1f", *seg.BestRatio)
	}
	logging.LogEvent(&logging.Event{
		Type:      "segment",
		Title:     "Glide segment closed",
		Summary:   summary,
		Timestamp: wall,
	})

	return seg, true
}

// Segments returns the committed segments, oldest first.
func (m *Manager) Segments() []Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Segment, len(m.segments))
	copy(out, m.segments)
	return out
}

// Active returns a partial view of the in-progress segment, if any.
func (m *Manager) Active() (Segment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return Segment{}, false
	}
	seg := Segment{
		ID:          m.active.id,
		StartSim:    m.active.startSim,
		StartedAt:   m.active.startedAt,
		Ticks:       m.active.ticks,
		MeanSpeed:   meanOf(m.active.speeds),
		SpeedStdDev: stddevOf(m.active.speeds),
		GroundTrack: m.active.track.Distance(),
	}
	if course, ok := m.active.track.Course(); ok {
		seg.Course = &course
	}
	return seg, true
}

// Reset clears the history and abandons any in-progress segment.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments = nil
	m.active = nil
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

func stddevOf(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}
