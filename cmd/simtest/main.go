// Package main provides a terminal harness for the glide pipeline. It
// drives the detector, tracker and flight log from the built-in mock
// simulator (or a live datalink feed) and prints the same status line
// the overlay would show, without starting the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"glidescope/pkg/audio"
	"glidescope/pkg/config"
	"glidescope/pkg/core"
	"glidescope/pkg/flightlog"
	"glidescope/pkg/glide"
	"glidescope/pkg/sim"
	"glidescope/pkg/sim/datalink"
	"glidescope/pkg/sim/mocksim"
	"glidescope/pkg/stats"
)

const (
	tickInterval   = 250 * time.Millisecond
	statusInterval = time.Second

	// groundConfirmTicks matches the server; two ticks filter
	// single-frame ground contact flickers.
	groundConfirmTicks = 2
)

func main() {
	feedURL := flag.String("feed", "", "datalink websocket URL; empty runs the mock simulator")
	units := flag.String("units", glide.UnitsMetric, "display units (metric or imperial)")
	window := flag.Float64("window", 10, "sampling window in seconds")
	threshold := flag.Float64("threshold", 0.01, "stabilization threshold (fraction of speed spread)")
	blip := flag.Duration("blip", 0, "inject a control blip this often while gliding (mock only)")
	runFor := flag.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	flag.Parse()

	fmt.Println("Glidescope Pipeline Harness")
	fmt.Println("===========================")

	if *units != glide.UnitsMetric && *units != glide.UnitsImperial {
		fmt.Printf("ERROR: unknown units %q\n", *units)
		os.Exit(1)
	}
	if *window <= 0 {
		fmt.Printf("ERROR: window must be positive, got %v\n", *window)
		os.Exit(1)
	}

	tracker := stats.New()
	client := buildClient(*feedURL, *blip, tracker)
	defer func() { _ = client.Close() }()

	opts := glide.DefaultOptions()
	opts.SamplingWindowSeconds = *window
	opts.StabilizationThreshold = *threshold

	flog := flightlog.NewManager(0)
	snd := audio.New(config.AudioConfig{})
	mon := core.NewMonitor(opts, sim.NewDetector(groundConfirmTicks), flog, snd, tracker)

	fmt.Printf("Window: %.0fs  Threshold: %.3f  Units: %s\n", *window, *threshold, *units)
	fmt.Println("Press Ctrl-C to stop.")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *runFor > 0 {
		ctx, cancel = context.WithTimeout(ctx, *runFor)
		defer cancel()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	runLoop(ctx, client, mon, flog, *units)
	printReport(flog, tracker, *units)
}

func buildClient(feedURL string, blip time.Duration, tracker *stats.Tracker) sim.Client {
	if feedURL != "" {
		fmt.Printf("Attaching to datalink feed at %s\n", feedURL)
		return datalink.NewClient(feedURL, tracker)
	}

	cfg := mocksim.DefaultConfig()
	cfg.BlipPeriod = blip
	fmt.Printf("Running mock simulator at %.2f, %.2f (%.0fm)\n", cfg.StartLat, cfg.StartLon, cfg.StartAlt)
	return mocksim.NewClient(cfg)
}

// runLoop polls the client at the server tick rate and prints a status
// line once a second. It returns when the context is cancelled.
func runLoop(ctx context.Context, client sim.Client, mon *core.Monitor, flog *flightlog.Manager, units string) {
	tick := time.NewTicker(tickInterval)
	defer tick.Stop()
	status := time.NewTicker(statusInterval)
	defer status.Stop()

	var last sim.Telemetry
	hasTel := false
	reported := 0

	for {
		select {
		case <-ctx.Done():
			return

		case <-tick.C:
			state := client.GetState()
			mon.UpdateState(state)
			if state != sim.StateActive {
				continue
			}
			tel, err := client.GetTelemetry(ctx)
			if err != nil {
				continue
			}
			mon.Update(&tel)
			last = tel
			hasTel = true

			// Report segments as the flight log closes them.
			segs := flog.Segments()
			for _, seg := range segs[reported:] {
				fmt.Printf("*** segment: %.0fs, %s, %s\n", seg.Duration, formatBest(seg, units), seg.EndReason)
			}
			reported = len(segs)

		case <-status.C:
			now := time.Now().Format("15:04:05")
			if !hasTel {
				fmt.Printf("%s  [%s] waiting for telemetry\n", now, client.GetState())
				continue
			}
			sum := mon.Summary()
			fmt.Printf("%s  alt %5.0f m  vs %+5.1f  |  %s\n", now, last.Altitude, last.VerticalSpeed, glide.FormatStatus(sum, units))
		}
	}
}

func formatBest(seg flightlog.Segment, units string) string {
	if seg.BestRatio == nil || seg.WorstSink == nil {
		return "window never filled"
	}
	return fmt.Sprintf("best L/D %.1f, worst sink %s", *seg.BestRatio, glide.FormatSink(*seg.WorstSink, units))
}

func printReport(flog *flightlog.Manager, tracker *stats.Tracker, units string) {
	snap := tracker.Snapshot()

	fmt.Println()
	fmt.Println("--- Run Report ---")
	fmt.Printf("Ticks: %d (%d valid)  Flushes: %d  Windows: %d\n", snap.Ticks, snap.ValidTicks, snap.Flushes, snap.Windows)

	if len(snap.Dropped) > 0 {
		reasons := make([]string, 0, len(snap.Dropped))
		for r := range snap.Dropped {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		fmt.Println("Invalid ticks:")
		for _, r := range reasons {
			fmt.Printf("  %-24s %d\n", r, snap.Dropped[r])
		}
	}

	segs := flog.Segments()
	fmt.Printf("Segments: %d\n", len(segs))
	for i, seg := range segs {
		fmt.Printf("  #%d  %6.0fs  %-32s  track %.0fm  (%s)\n", i+1, seg.Duration, formatBest(seg, units), seg.GroundTrack, seg.EndReason)
	}
	fmt.Println("Goodbye!")
}
