package core

import (
	"context"
	"time"

	"glidescope/pkg/audio"
	"glidescope/pkg/config"
	"glidescope/pkg/flightlog"
	"glidescope/pkg/glide"
	"glidescope/pkg/sim"
)

// refreshInterval is how often runtime-tunable settings are re-read
// from the provider. Changes made through the API take effect within
// one interval.
const refreshInterval = 5 * time.Second

// TrackerOptions derives the tracker configuration from the provider.
func TrackerOptions(ctx context.Context, provider config.Provider) glide.Options {
	return glide.Options{
		SamplingWindowSeconds:  provider.SamplingWindow(ctx).Seconds(),
		StabilizationThreshold: provider.StabilizationThreshold(ctx),
		AllowTrim:              provider.AllowTrim(ctx),
		AllowControlInput:      provider.AllowControlInput(ctx),
	}
}

// NewDynamicConfigJob returns a job that reapplies the provider-backed
// runtime settings to the monitor, flight log and audio service. The
// provider merges the static config with the state store, so values
// changed via PUT /api/config land here without a restart.
func NewDynamicConfigJob(provider config.Provider, mon *Monitor, flog *flightlog.Manager, snd audio.Service) *TimeJob {
	return NewTimeJob("Dynamic Config", refreshInterval, func(ctx context.Context, _ sim.Telemetry) {
		mon.ApplyOptions(TrackerOptions(ctx, provider))
		flog.SetMinimum(provider.MinSegment(ctx).Seconds())
		snd.SetEnabled(provider.AudioEnabled(ctx))
		snd.SetVolume(provider.AudioVolume(ctx))
	})
}
