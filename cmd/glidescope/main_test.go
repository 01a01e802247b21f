package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"glidescope/pkg/audio"
	"glidescope/pkg/config"
	"glidescope/pkg/db"
	"glidescope/pkg/probe"
	"glidescope/pkg/store"
)

// TestRun boots the whole stack against the mock sim and an in-memory
// store, then cancels the context to verify a clean shutdown.
func TestRun(t *testing.T) {
	tmp := t.TempDir()

	tempConfig := fmt.Sprintf(`
server:
    address: localhost:0  # 0 lets OS choose free port
ticker:
    telemetry_loop: 50ms
log:
    server:
        path: %q
        level: "DEBUG"
    datalink:
        path: %q
        level: "INFO"
    requests:
        path: %q
        level: "INFO"
    events:
        path: %q
        level: "INFO"
db:
    path: ":memory:"
sim:
    provider: "mock"
glide:
    sampling_window: 2s
    min_segment: 5s
audio:
    enabled: false
`,
		filepath.Join(tmp, "server.log"),
		filepath.Join(tmp, "datalink.log"),
		filepath.Join(tmp, "requests.log"),
		filepath.Join(tmp, "events.log"),
	)

	cfgPath := filepath.Join(tmp, "glidescope.yaml")
	if err := os.WriteFile(cfgPath, []byte(tempConfig), 0o644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := run(ctx, cfgPath); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
}

// TestStartupProbesComposition verifies the self-check list covers
// config sanity, the settings store and (for a datalink source) feed
// reachability, and that the config check actually rejects a datalink
// provider without a URL.
func TestStartupProbesComposition(t *testing.T) {
	ctx := context.Background()

	appCfg := config.DefaultConfig()
	appCfg.Sim.Provider = "datalink"
	appCfg.Sim.Datalink.URL = ""
	appCfg.Audio.Enabled = false

	dbConn, err := db.Init(":memory:")
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	defer dbConn.Close()
	st := store.NewSQLiteStore(dbConn)

	prov := config.NewProvider(appCfg, st)
	audioMgr := audio.New(appCfg.Audio)
	defer audioMgr.Shutdown()

	probes := startupProbes(ctx, prov, st, audioMgr)

	byName := make(map[string]probe.Probe, len(probes))
	for _, p := range probes {
		byName[p.Name] = p
	}
	for _, name := range []string{"Config Sanity", "Settings Store", "Audio Device", "Datalink Feed"} {
		if _, ok := byName[name]; !ok {
			t.Fatalf("startup probes missing %q (got %d probes)", name, len(probes))
		}
	}
	if !byName["Config Sanity"].Critical || !byName["Settings Store"].Critical {
		t.Fatal("config and store probes must be critical")
	}
	if byName["Audio Device"].Critical || byName["Datalink Feed"].Critical {
		t.Fatal("audio and feed probes must not be critical")
	}

	// Datalink source with no URL must fail the config check.
	if err := byName["Config Sanity"].Check(ctx); err == nil {
		t.Fatal("config check passed with datalink provider and empty URL")
	}

	appCfg.Sim.Datalink.URL = "ws://localhost:8169/telemetry"
	if err := byName["Config Sanity"].Check(ctx); err != nil {
		t.Fatalf("config check failed on a sane config: %v", err)
	}
	if err := byName["Settings Store"].Check(ctx); err != nil {
		t.Fatalf("store check failed on a live store: %v", err)
	}

	// A mock source needs no feed probe.
	appCfg.Sim.Provider = "mock"
	for _, p := range startupProbes(ctx, prov, st, audioMgr) {
		if p.Name == "Datalink Feed" {
			t.Fatal("feed probe wired for the mock source")
		}
	}
}
