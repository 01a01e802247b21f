package core

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"glidescope/pkg/sim"
	"glidescope/pkg/stats"
)

// Job defines a scheduled task.
type Job interface {
	Name() string
	ShouldFire(t *sim.Telemetry) bool
	Run(ctx context.Context, t *sim.Telemetry)
}

// BaseJob provides atomic running state to prevent re-entry.
type BaseJob struct {
	name    string
	running int32 // 1 if running, 0 otherwise
}

func NewBaseJob(name string) BaseJob {
	return BaseJob{name: name}
}

func (b *BaseJob) Name() string {
	return b.name
}

// TryLock attempts to set running to 1. Returns true if successful.
func (b *BaseJob) TryLock() bool {
	return atomic.CompareAndSwapInt32(&b.running, 0, 1)
}

func (b *BaseJob) Unlock() {
	atomic.StoreInt32(&b.running, 0)
}

// TimeJob fires when time elapsed exceeds threshold.
type TimeJob struct {
	BaseJob
	lastTime  time.Time
	threshold time.Duration
	action    func(context.Context, sim.Telemetry)
	firstRun  bool
}

func NewTimeJob(name string, threshold time.Duration, action func(context.Context, sim.Telemetry)) *TimeJob {
	return &TimeJob{
		BaseJob:   NewBaseJob(name),
		threshold: threshold,
		action:    action,
		firstRun:  true,
	}
}

func (j *TimeJob) ShouldFire(t *sim.Telemetry) bool {
	if atomic.LoadInt32(&j.running) == 1 {
		return false
	}

	if j.firstRun {
		return true
	}

	return time.Since(j.lastTime) >= j.threshold
}

func (j *TimeJob) Run(ctx context.Context, t *sim.Telemetry) {
	if !j.TryLock() {
		return
	}
	defer j.Unlock()

	j.lastTime = time.Now()
	j.firstRun = false

	j.action(ctx, *t)
}

// NewStatsLogJob returns a job that writes a one-line counter digest to
// the log once a minute while the sim is active.
func NewStatsLogJob(st *stats.Tracker) *TimeJob {
	return NewTimeJob("Stats", time.Minute, func(ctx context.Context, _ sim.Telemetry) {
		snap := st.Snapshot()
		slog.Info("Monitor stats",
			"ticks", snap.Ticks,
			"valid", snap.ValidTicks,
			"flushes", snap.Flushes,
			"windows", snap.Windows,
			"segments", snap.Segments,
			"frames", snap.Frames,
			"frame_errors", snap.FrameErrors)
	})
}
