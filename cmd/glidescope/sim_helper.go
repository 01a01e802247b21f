package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"glidescope/pkg/config"
	"glidescope/pkg/sim"
	"glidescope/pkg/sim/datalink"
	"glidescope/pkg/sim/mocksim"
	"glidescope/pkg/stats"
)

// initSimClient selects the telemetry source. The provider is consulted
// rather than the static config so a source switched via the API sticks
// across restarts.
func initSimClient(ctx context.Context, prov config.Provider, st *stats.Tracker) (sim.Client, error) {
	source := prov.SimProvider(ctx)

	switch source {
	case "mock":
		cfg := mockConfig(ctx, prov)
		slog.Info("Sim Source: Mock", "lat", cfg.StartLat, "lon", cfg.StartLon, "alt_m", cfg.StartAlt)
		return mocksim.NewClient(cfg), nil
	case "datalink":
		feedURL := prov.DatalinkURL(ctx)
		if feedURL == "" {
			return nil, fmt.Errorf("sim provider is datalink but no feed URL is configured")
		}
		slog.Info("Sim Source: Datalink", "url", feedURL)
		return datalink.NewClient(feedURL, st), nil
	default:
		return nil, fmt.Errorf("unknown sim provider %q", source)
	}
}

// mockConfig builds the mock flight envelope. Start position comes from
// the provider (runtime-tunable), the envelope from the static config.
func mockConfig(ctx context.Context, prov config.Provider) mocksim.Config {
	mock := prov.AppConfig().Sim.Mock

	cfg := mocksim.DefaultConfig()
	cfg.StartLat = prov.MockStartLat(ctx)
	cfg.StartLon = prov.MockStartLon(ctx)
	cfg.StartAlt = prov.MockStartAlt(ctx)
	cfg.Heading = prov.MockStartHeading(ctx)

	if m := mock.CeilingAlt.Meters(); m > 0 {
		cfg.CeilingAlt = m
	}
	if m := mock.FloorAlt.Meters(); m > 0 {
		cfg.FloorAlt = m
	}
	if mock.ClimbRate > 0 {
		cfg.ClimbRate = mock.ClimbRate
	}
	if mock.SinkRate > 0 {
		cfg.SinkRate = mock.SinkRate
	}
	if mock.CruiseSpeed > 0 {
		cfg.CruiseSpeed = mock.CruiseSpeed
	}
	if mock.SpeedJitter > 0 {
		cfg.SpeedJitter = mock.SpeedJitter
	}
	cfg.BlipPeriod = time.Duration(mock.BlipPeriod)

	return cfg
}
