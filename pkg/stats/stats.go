// Package stats tracks runtime counters for the monitor and the
// telemetry feed.
package stats

import (
	"sync"
	"sync/atomic"
)

// Tracker accumulates process-lifetime counters. Safe for concurrent
// use.
type Tracker struct {
	ticks      int64
	validTicks int64
	flushes    int64
	windows    int64
	segments   int64

	frames      int64
	frameErrors int64

	mu      sync.RWMutex
	dropped map[string]int64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Ticks       int64            `json:"ticks"`
	ValidTicks  int64            `json:"valid_ticks"`
	Flushes     int64            `json:"flushes"`
	Windows     int64            `json:"windows_completed"`
	Segments    int64            `json:"segments_recorded"`
	Frames      int64            `json:"datalink_frames"`
	FrameErrors int64            `json:"datalink_errors"`
	Dropped     map[string]int64 `json:"invalid_by_reason"`
}

// New creates a zeroed tracker.
func New() *Tracker {
	return &Tracker{dropped: make(map[string]int64)}
}

// TrackTick counts one evaluated telemetry tick.
func (t *Tracker) TrackTick(valid bool, reason string) {
	atomic.AddInt64(&t.ticks, 1)
	if valid {
		atomic.AddInt64(&t.validTicks, 1)
		return
	}
	t.mu.Lock()
	t.dropped[reason]++
	t.mu.Unlock()
}

// TrackFlush counts one accumulator flush into the windows.
func (t *Tracker) TrackFlush() {
	atomic.AddInt64(&t.flushes, 1)
}

// TrackWindowComplete counts a sampling window reaching completeness.
func (t *Tracker) TrackWindowComplete() {
	atomic.AddInt64(&t.windows, 1)
}

// TrackSegment counts a glide segment committed to the flight log.
func (t *Tracker) TrackSegment() {
	atomic.AddInt64(&t.segments, 1)
}

// TrackFrame counts one telemetry frame received from the feed.
func (t *Tracker) TrackFrame() {
	atomic.AddInt64(&t.frames, 1)
}

// TrackFrameError counts a malformed or failed feed read.
func (t *Tracker) TrackFrameError() {
	atomic.AddInt64(&t.frameErrors, 1)
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		Ticks:       atomic.LoadInt64(&t.ticks),
		ValidTicks:  atomic.LoadInt64(&t.validTicks),
		Flushes:     atomic.LoadInt64(&t.flushes),
		Windows:     atomic.LoadInt64(&t.windows),
		Segments:    atomic.LoadInt64(&t.segments),
		Frames:      atomic.LoadInt64(&t.frames),
		FrameErrors: atomic.LoadInt64(&t.frameErrors),
		Dropped:     make(map[string]int64),
	}
	t.mu.RLock()
	for k, v := range t.dropped {
		s.Dropped[k] = v
	}
	t.mu.RUnlock()
	return s
}
