package core

import (
	"context"
	"log/slog"
	"time"

	"glidescope/pkg/config"
	"glidescope/pkg/sim"
)

// TelemetrySink is an interface for consumers of the high-frequency
// telemetry stream.
type TelemetrySink interface {
	Update(t *sim.Telemetry)
	UpdateState(s sim.State)
}

// Scheduler manages the central heartbeat. Every tick it polls the
// simulator, fans state and telemetry out to the registered sinks in
// order, then evaluates the scheduled jobs.
type Scheduler struct {
	cfg   *config.Config
	sim   sim.Client
	sinks []TelemetrySink
	jobs  []Job
}

// NewScheduler creates a new Scheduler. Sinks receive updates in the
// order given.
func NewScheduler(cfg *config.Config, simClient sim.Client, sinks ...TelemetrySink) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		sim:   simClient,
		sinks: sinks,
	}
}

// AddJob registers a job.
func (s *Scheduler) AddJob(j Job) {
	s.jobs = append(s.jobs, j)
}

// Start runs the main loop. It blocks until context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	interval := time.Duration(s.cfg.Ticker.TelemetryLoop)
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	// 0. Get and broadcast sim state
	simState := s.sim.GetState()
	for _, sink := range s.sinks {
		sink.UpdateState(simState)
	}

	// Skip telemetry processing if not active
	if simState != sim.StateActive {
		return
	}

	// 1. Fetch telemetry
	tel, err := s.sim.GetTelemetry(ctx)
	if err != nil {
		slog.Debug("failed to read telemetry", "error", err)
		return
	}

	// 2. Broadcast to sinks
	for _, sink := range s.sinks {
		sink.Update(&tel)
	}

	// 3. Evaluate jobs
	for _, job := range s.jobs {
		if job.ShouldFire(&tel) {
			// Fire and forget
			go job.Run(ctx, &tel)
		}
	}
}
