package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"glidescope/internal/api"
	"glidescope/pkg/audio"
	"glidescope/pkg/config"
	"glidescope/pkg/core"
	"glidescope/pkg/db"
	"glidescope/pkg/flightlog"
	"glidescope/pkg/logging"
	"glidescope/pkg/probe"
	"glidescope/pkg/sim"
	"glidescope/pkg/stats"
	"glidescope/pkg/store"
	"glidescope/pkg/version"
)

// groundConfirmTicks is how many consecutive ticks an air/ground
// transition needs before the eligibility detector accepts it. Two
// ticks filter out single-frame contact flickers during bounces.
const groundConfirmTicks = 2

var (
	initConfig  = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath  = flag.String("config", "configs/glidescope.yaml", "Path to the config file")
	addr        = flag.String("addr", "", "Listen address override (host:port)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// .env fills in blanks; real environment variables win.
	_ = godotenv.Load()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *addr != "" {
		appCfg.Server.Address = *addr
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Glidescope started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	cfgProv := config.NewProvider(appCfg, st)
	monStats := stats.New()

	simClient, err := initSimClient(ctx, cfgProv, monStats)
	if err != nil {
		return fmt.Errorf("failed to initialize sim client: %w", err)
	}
	defer simClient.Close()

	audioMgr := audio.New(appCfg.Audio)
	defer audioMgr.Shutdown()
	// The store may carry runtime overrides from a previous session.
	audioMgr.SetEnabled(cfgProv.AudioEnabled(ctx))
	audioMgr.SetVolume(cfgProv.AudioVolume(ctx))

	flog := flightlog.NewManager(cfgProv.MinSegment(ctx).Seconds())
	mon := core.NewMonitor(core.TrackerOptions(ctx, cfgProv), sim.NewDetector(groundConfirmTicks), flog, audioMgr, monStats)

	// Telemetry handler (must be created before the scheduler so it
	// receives updates)
	telH := api.NewTelemetryHandler()

	if err := runStartupProbes(ctx, cfgProv, st, audioMgr); err != nil {
		return err
	}

	// Scheduler: the monitor consumes telemetry before the API cache
	// publishes it.
	sched := core.NewScheduler(appCfg, simClient, mon, telH)
	sched.AddJob(core.NewDynamicConfigJob(cfgProv, mon, flog, audioMgr))
	sched.AddJob(core.NewStatsLogJob(monStats))
	go sched.Start(ctx)

	return runServer(ctx, appCfg, cfgProv, st, mon, flog, monStats, telH)
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

func runStartupProbes(ctx context.Context, prov config.Provider, st store.Store, audioMgr *audio.Manager) error {
	results := probe.Run(ctx, startupProbes(ctx, prov, st, audioMgr))
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}
	return nil
}

// startupProbes assembles the self-checks. A broken config or an
// unwritable settings store is fatal; a silent audio device is not, and
// the feed being down is normal before the sim plugin starts.
func startupProbes(ctx context.Context, prov config.Provider, st store.Store, audioMgr *audio.Manager) []probe.Probe {
	probes := []probe.Probe{
		{
			Name:     "Config Sanity",
			Check:    probe.ConfigSane(prov.AppConfig()),
			Critical: true,
		},
		{
			Name:     "Settings Store",
			Check:    probe.DatabaseWritable(st),
			Critical: true,
		},
		{
			Name:     "Audio Device",
			Check:    func(context.Context) error { return audioMgr.Probe() },
			Critical: false,
		},
	}
	if prov.SimProvider(ctx) == "datalink" {
		probes = append(probes, probe.Probe{
			Name:     "Datalink Feed",
			Check:    probe.DatalinkReachable(prov.DatalinkURL(ctx)),
			Critical: false,
		})
	}
	return probes
}

func runServer(ctx context.Context, cfg *config.Config, prov config.Provider, st store.Store, mon *core.Monitor, flog *flightlog.Manager, monStats *stats.Tracker, telH *api.TelemetryHandler) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		telH,
		api.NewGlideHandler(mon, prov),
		api.NewSegmentsHandler(flog),
		api.NewConfigHandler(st, prov),
		api.NewStatsHandler(monStats),
		shutdownFunc,
	)
	srv.Handler = loggingMiddleware(srv.Handler)

	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
