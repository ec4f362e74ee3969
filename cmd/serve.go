package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"delphi/internal/adapters/ai"
	"delphi/internal/adapters/alphavantage"
	"delphi/internal/adapters/fmp"
	"delphi/internal/agents"
	"delphi/internal/api"
	"delphi/internal/api/health"
	"delphi/internal/cache"
	"delphi/internal/metrics"
	"delphi/internal/pipeline"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

// serveCmd starts the dashboard HTTP/WebSocket server.
func serveCmd(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "listen address as host:port (overrides SERVER_HOST/SERVER_PORT)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, log, errorTracker := mustBootstrap(false)
	defer logger.Sync()

	if *addr != "" {
		host, port, err := splitAddr(*addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --addr %q: %v\n", *addr, err)
			return 2
		}
		cfg.Server.Host = host
		cfg.Server.Port = port
	}

	log.Infof("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)
	metrics.Init()

	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize cache store: %v", err)
	}
	stats := store.Stats()
	log.Infof("Cache ready: %d analyses, %s on disk",
		stats.TotalAnalyses, humanize.Bytes(uint64(stats.CacheSizeBytes)))
	metrics.RegisterCacheCollector(metrics.NewCacheCollector(log, func() (int, int64, error) {
		s := store.Stats()
		return s.TotalAnalyses, s.CacheSizeBytes, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The server stays up without provider keys so the dashboard can browse
	// cached analyses; readiness reports the gap.
	registry, err := ai.BuildRegistry(ctx, cfg.AI)
	if err != nil {
		if !errors.Is(err, errors.ErrUnavailable) {
			log.Fatalf("Failed to build AI provider registry: %v", err)
		}
		log.Warn("No AI providers configured, analysis runs will fail until API keys are set")
		registry = ai.NewProviderRegistry()
	}

	fmpClient := fmp.NewClient(cfg.MarketData, log)
	newsClient := alphavantage.NewClient(cfg.MarketData, log)
	team := agents.NewTeam(registry, fmpClient, newsClient, cfg.AI, cfg.MarketData, log)
	runner := pipeline.NewRunner(pipeline.AnalysisSteps(team), store, cfg.Pipeline, log)

	srv := api.NewServer(
		api.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ServiceName:  cfg.App.Name,
			Version:      cfg.App.Version,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		health.New(log, store, registry, cfg.App.Name, cfg.App.Version),
		api.NewWebSocketHandler(runner, log),
		api.NewCacheHandler(store, log),
		log,
	)

	go func() {
		if err := srv.Start(); err != nil {
			log.Errorf("HTTP server failed: %v", err)
			cancel()
		}
	}()

	log.Info("✓ All systems operational")

	waitForShutdown(ctx, cancel, srv, errorTracker, cfg.Server.ShutdownTimeout, log)
	return 0
}

// waitForShutdown waits for a shutdown signal or a fatal server error, then
// performs graceful shutdown.
func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	srv *api.Server,
	errorTracker errors.Tracker,
	timeout time.Duration,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutting down...")
	case <-ctx.Done():
		log.Info("Shutting down after fatal error...")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown failed: %v", err)
	}

	// Flush error tracker
	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, errors.Wrapf(err, "port %q", portStr)
	}
	return host, port, nil
}
