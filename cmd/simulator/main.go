package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	_ "github.com/KimMachineGun/automemlimit"
	_ "go.uber.org/automaxprocs"

	"github.com/developer-vif/openshift-workload-simulator/internal/api"
	"github.com/developer-vif/openshift-workload-simulator/internal/cluster"
	"github.com/developer-vif/openshift-workload-simulator/internal/config"
	"github.com/developer-vif/openshift-workload-simulator/internal/errors"
	"github.com/developer-vif/openshift-workload-simulator/internal/exporter"
	"github.com/developer-vif/openshift-workload-simulator/internal/health"
	"github.com/developer-vif/openshift-workload-simulator/internal/manifest"
	"github.com/developer-vif/openshift-workload-simulator/internal/observability"
	"github.com/developer-vif/openshift-workload-simulator/internal/snapshot"
	"github.com/developer-vif/openshift-workload-simulator/internal/transport"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// 1. Load and validate config.
	cfg := config.Load()
	cfg.SimulatorVersion = version
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel, cfg.LogFormat)

	// 2. Create context with signal handling.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		slog.Info("shutdown signal received", "signal", sig)
		cancel()
	}()

	slog.Info("openshift-workload-simulator starting",
		"version", cfg.SimulatorVersion,
		"cluster_id", cfg.ClusterID,
		"port", cfg.Port,
		"initial_nodes", cfg.InitialNodes,
		"capacity_checked", cfg.CapacityChecked,
		"export_url", cfg.ExportURL,
	)

	// 3. Create shared infrastructure.
	metrics := observability.NewMetrics()
	errCollector := errors.NewErrorCollector(errors.RealClock{})
	sm := exporter.NewStateMachine(errors.RealClock{})

	// 4. Build the cluster.
	opts := []cluster.Option{
		cluster.WithInitialNodes(cfg.InitialNodes),
		cluster.WithNodeDefaults(cfg.NodeCPU, cfg.NodeMemory),
		cluster.WithCapacityChecked(cfg.CapacityChecked),
	}
	if cfg.WorkloadSeed != 0 {
		opts = append(opts, cluster.WithRand(rand.New(rand.NewPCG(cfg.WorkloadSeed, cfg.WorkloadSeed))))
	}
	c := cluster.New(opts...)

	// 5. Apply the bootstrap manifest.
	if cfg.BootstrapManifest != "" {
		m, err := manifest.Load(cfg.BootstrapManifest)
		if err != nil {
			slog.Error("failed to load bootstrap manifest", "error", err)
			os.Exit(1)
		}
		res, err := manifest.Apply(ctx, manifest.ClusterApplier{Cluster: c}, m)
		if err != nil {
			slog.Error("failed to apply bootstrap manifest", "applied", res.Applied, "total", res.Total, "error", err)
			os.Exit(1)
		}
		slog.Info("bootstrap manifest applied", "path", cfg.BootstrapManifest, "steps", res.Applied)
	}
	metrics.ObserveCluster(c.State())

	// 6. Build snapshot builder, transport and exporter.
	builder := snapshot.NewSnapshotBuilder(c, &cfg, metrics, errCollector)

	var sender exporter.Sender
	if cfg.ExportEnabled() {
		sender = transport.NewClient(&cfg, metrics, errCollector)
	} else {
		slog.Info("snapshot export disabled, SIMULATOR_EXPORT_URL not set")
	}
	exp := exporter.New(builder, sender, sm, metrics, cfg.ExportInterval)

	// 7. Start health server.
	healthSrv := health.NewServer(cfg.HealthPort, metrics, exp, exp, builder, cfg.DebugEndpoints)
	if err := healthSrv.Start(); err != nil {
		slog.Error("failed to start health server", "error", err)
		os.Exit(1)
	}

	// 8. Start API server.
	apiSrv := api.NewServer(&cfg, c, metrics, errCollector)
	if err := apiSrv.Start(); err != nil {
		slog.Error("failed to start api server", "error", err)
		os.Exit(1)
	}
	slog.Info("api server listening", "addr", apiSrv.Addr())

	// 9. Start memory pressure monitor.
	memMon := observability.NewMemoryMonitor(0.8, 30*time.Second, func(float64) { debug.FreeOSMemory() })
	go memMon.Run(ctx)

	// 10. Run exporter (blocks until context is canceled).
	if err := exp.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("exporter exited with error", "error", err)
	}

	// 11. Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiSrv.Stop(shutdownCtx); err != nil {
		slog.Error("api server shutdown error", "error", err)
	}
	if err := healthSrv.Stop(shutdownCtx); err != nil {
		slog.Error("health server shutdown error", "error", err)
	}

	slog.Info("openshift-workload-simulator stopped")
}

func setupLogging(level, format string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
