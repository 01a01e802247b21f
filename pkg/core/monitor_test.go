package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glidescope/pkg/audio"
	"glidescope/pkg/flightlog"
	"glidescope/pkg/glide"
	"glidescope/pkg/sim"
	"glidescope/pkg/stats"
)

// fakeAudio records cue requests instead of touching the speaker.
type fakeAudio struct {
	mu      sync.Mutex
	cues    []audio.Cue
	enabled bool
	volume  float64
}

func (f *fakeAudio) PlayCue(cue audio.Cue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cues = append(f.cues, cue)
}

func (f *fakeAudio) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

func (f *fakeAudio) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *fakeAudio) SetVolume(vol float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = vol
}

func (f *fakeAudio) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *fakeAudio) Shutdown() {}

func (f *fakeAudio) count(cue audio.Cue) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.cues {
		if c == cue {
			n++
		}
	}
	return n
}

type monitorFixture struct {
	mon   *Monitor
	flog  *flightlog.Manager
	snd   *fakeAudio
	stats *stats.Tracker
}

func newMonitorFixture(opts glide.Options) *monitorFixture {
	f := &monitorFixture{
		flog:  flightlog.NewManager(0),
		snd:   &fakeAudio{},
		stats: stats.New(),
	}
	f.mon = NewMonitor(opts, sim.NewDetector(1), f.flog, f.snd, f.stats)
	f.mon.UpdateState(sim.StateActive)
	return f
}

func glidingTick(simTime, totalSpeed float64) *sim.Telemetry {
	return &sim.Telemetry{
		SimTime:         simTime,
		InFlight:        true,
		VerticalSpeed:   -10,
		HorizontalSpeed: 100,
		TotalSpeed:      totalSpeed,
	}
}

// feedGlide pushes n clean ticks at quarter-second spacing starting at
// startTime and returns the sim time of the last tick.
func (f *monitorFixture) feedGlide(n int, startTime float64) float64 {
	last := startTime
	for i := 0; i < n; i++ {
		last = startTime + float64(i)*0.25
		f.mon.Update(glidingTick(last, 100.5))
	}
	return last
}

func TestMonitor_CleanGlide(t *testing.T) {
	f := newMonitorFixture(glide.DefaultOptions())

	f.feedGlide(40, 0)

	s := f.mon.Summary()
	require.Equal(t, glide.StateTracking, s.State)
	require.True(t, s.Complete())
	assert.InDelta(t, 10.0, s.Ratio, 1e-9)
	assert.InDelta(t, 10.0, s.DescentSpeed, 1e-9)
	assert.False(t, s.Stabilizing)

	assert.Equal(t, 1, f.snd.count(audio.CueWindowComplete))
	assert.Equal(t, 0, f.snd.count(audio.CueTrackingLost))

	snap := f.stats.Snapshot()
	assert.EqualValues(t, 40, snap.Ticks)
	assert.EqualValues(t, 40, snap.ValidTicks)
	assert.EqualValues(t, 40, snap.Flushes)
	assert.EqualValues(t, 1, snap.Windows)

	_, active := f.flog.Active()
	assert.True(t, active)
}

func TestMonitor_ThrottleEndsSegment(t *testing.T) {
	f := newMonitorFixture(glide.DefaultOptions())

	last := f.feedGlide(40, 0)

	tel := glidingTick(last+0.25, 100.5)
	tel.Throttle = 1.0
	f.mon.Update(tel)

	s := f.mon.Summary()
	assert.Equal(t, glide.StateInvalid, s.State)
	assert.Equal(t, glide.ReasonThrottle, s.Reason)

	segs := f.flog.Segments()
	require.Len(t, segs, 1)
	assert.Equal(t, glide.ReasonThrottle, segs[0].EndReason)
	assert.EqualValues(t, 40, segs[0].Ticks)
	require.NotNil(t, segs[0].BestRatio)
	assert.InDelta(t, 10.0, *segs[0].BestRatio, 1e-9)

	assert.Equal(t, 1, f.snd.count(audio.CueTrackingLost))
	assert.EqualValues(t, 1, f.stats.Snapshot().Segments)

	_, active := f.flog.Active()
	assert.False(t, active)
}

func TestMonitor_WindowRefillsAfterInvalidation(t *testing.T) {
	f := newMonitorFixture(glide.DefaultOptions())

	last := f.feedGlide(40, 0)

	tel := glidingTick(last+0.25, 100.5)
	tel.Throttle = 1.0
	f.mon.Update(tel)

	// Half a window of clean ticks after the reset.
	f.feedGlide(20, last+0.5)

	s := f.mon.Summary()
	require.Equal(t, glide.StateTracking, s.State)
	assert.InDelta(t, 0.5, s.Completeness, 1e-9)
	assert.False(t, s.Complete())

	// Completion cue only fired for the first window.
	assert.Equal(t, 1, f.snd.count(audio.CueWindowComplete))
}

func TestMonitor_SimStateLossEndsSegment(t *testing.T) {
	f := newMonitorFixture(glide.DefaultOptions())

	f.feedGlide(40, 0)
	f.mon.UpdateState(sim.StateInactive)

	s := f.mon.Summary()
	assert.Equal(t, glide.StateInvalid, s.State)

	segs := f.flog.Segments()
	require.Len(t, segs, 1)
	assert.Equal(t, EndReasonHostLost, segs[0].EndReason)
	assert.Equal(t, 1, f.snd.count(audio.CueTrackingLost))

	// Returning to the active state tracks a fresh glide.
	f.mon.UpdateState(sim.StateActive)
	f.feedGlide(4, 100)

	s = f.mon.Summary()
	assert.Equal(t, glide.StateTracking, s.State)
	assert.InDelta(t, 0.1, s.Completeness, 1e-9)
}

func TestMonitor_StabilizingCue(t *testing.T) {
	f := newMonitorFixture(glide.DefaultOptions())

	// Oscillating total speed: delta (101/99)-1 exceeds the default 1%.
	for i := 0; i < 40; i++ {
		speed := 99.0
		if i%2 == 1 {
			speed = 101.0
		}
		f.mon.Update(glidingTick(float64(i)*0.25, speed))
	}

	s := f.mon.Summary()
	require.True(t, s.Complete())
	assert.True(t, s.Stabilizing)
	assert.Equal(t, 1, f.snd.count(audio.CueStabilizing))
	assert.Equal(t, 1, f.snd.count(audio.CueWindowComplete))
}

func TestMonitor_ShortGlideDiscarded(t *testing.T) {
	f := newMonitorFixture(glide.DefaultOptions())
	f.flog.SetMinimum(30)

	last := f.feedGlide(8, 0)
	tel := glidingTick(last+0.25, 100.5)
	tel.Throttle = 1.0
	f.mon.Update(tel)

	assert.Empty(t, f.flog.Segments())
	assert.EqualValues(t, 0, f.stats.Snapshot().Segments)
}

func TestMonitor_ApplyOptions(t *testing.T) {
	f := newMonitorFixture(glide.DefaultOptions())
	f.feedGlide(40, 0)
	require.True(t, f.mon.Summary().Complete())

	// Identical options are a no-op; statistics survive.
	f.mon.ApplyOptions(glide.DefaultOptions())
	assert.True(t, f.mon.Summary().Complete())
	assert.Empty(t, f.flog.Segments())

	// A real change rebuilds the tracker and closes the segment.
	opts := glide.DefaultOptions()
	opts.SamplingWindowSeconds = 5.0
	f.mon.ApplyOptions(opts)

	assert.Equal(t, opts, f.mon.Options())
	assert.Equal(t, glide.StateInvalid, f.mon.Summary().State)

	segs := f.flog.Segments()
	require.Len(t, segs, 1)
	assert.Equal(t, EndReasonSettings, segs[0].EndReason)
}

func TestMonitor_NotDescendingTick(t *testing.T) {
	f := newMonitorFixture(glide.DefaultOptions())

	tel := glidingTick(0, 100.5)
	tel.VerticalSpeed = 0
	f.mon.Update(tel)

	s := f.mon.Summary()
	assert.Equal(t, glide.StateInvalid, s.State)
	assert.Equal(t, glide.ReasonNotDescending, s.Reason)

	snap := f.stats.Snapshot()
	assert.EqualValues(t, 1, snap.Ticks)
	assert.EqualValues(t, 0, snap.ValidTicks)
	assert.EqualValues(t, 1, snap.Dropped[glide.ReasonNotDescending])

	// Never tracked, so no segment and no loss cue.
	assert.Empty(t, f.flog.Segments())
	assert.Equal(t, 0, f.snd.count(audio.CueTrackingLost))
}
