package main

import (
	"fmt"
	"os"

	"delphi/internal/adapters/config"
	"delphi/internal/adapters/errors/noop"
	"delphi/internal/adapters/errors/sentry"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runCmd(os.Args[2:]))
	case "serve":
		os.Exit(serveCmd(os.Args[2:]))
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `delphi - multi-agent stock analysis

Usage:
  delphi run [--ticker SYMBOL] [--date YYYY-MM-DD] [--debug] [--detailed] [--no-cache]
  delphi serve [--addr host:port]

Commands:
  run     analyze one ticker and print a risk-tiered report
  serve   start the dashboard HTTP/WebSocket server
`)
}

// loadConfig loads application configuration from environment
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// initLogger initializes structured logging
func initLogger(cfg *config.Config) error {
	return logger.Init(cfg.App.LogLevel, cfg.App.Env)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// mustBootstrap loads config and brings up logging and error tracking, the
// pieces every command needs before it can report anything else.
func mustBootstrap(debug bool) (*config.Config, *logger.Logger, errors.Tracker) {
	cfg, err := loadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if debug {
		cfg.App.LogLevel = "debug"
		cfg.App.Debug = true
	}

	if err := initLogger(cfg); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	log := logger.Get()
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	return cfg, log, errorTracker
}
