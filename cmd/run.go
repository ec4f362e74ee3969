package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"delphi/internal/adapters/ai"
	"delphi/internal/adapters/alphavantage"
	"delphi/internal/adapters/fmp"
	"delphi/internal/agents"
	"delphi/internal/cache"
	"delphi/internal/pipeline"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

// runCmd analyzes one ticker and prints the risk-tiered report.
func runCmd(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	ticker := fs.String("ticker", "AAPL", "stock ticker symbol to analyze")
	date := fs.String("date", "", "analysis date in YYYY-MM-DD format (default: today)")
	debug := fs.Bool("debug", false, "enable debug logging and step-by-step output")
	detailed := fs.Bool("detailed", false, "print full JSON output for every agent")
	noCache := fs.Bool("no-cache", false, "run the pipeline even when a cached analysis exists")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, log, errorTracker := mustBootstrap(*debug)
	defer logger.Sync()
	defer func() {
		if err := errorTracker.Flush(context.Background()); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Canonical ticker and date, same normalization the pipeline applies.
	st := agents.NewState(*ticker, *date)
	out := os.Stdout

	printSection(out, "DELPHI TRADING AGENTS")
	fmt.Fprintf(out, "\nAnalyzing: %s\n", st.Ticker)
	fmt.Fprintf(out, "Date: %s\n", st.Date)
	debugLabel := "OFF"
	if *debug {
		debugLabel = "ON"
	}
	fmt.Fprintf(out, "Debug Mode: %s\n", debugLabel)

	store, err := cache.NewStore(cfg.Cache)
	if err != nil {
		fmt.Fprintf(out, "\n❌ Error during analysis: %v\n", err)
		return 1
	}

	if !*noCache {
		result, err := store.Load(st.Ticker, st.Date)
		switch {
		case err == nil:
			fmt.Fprintf(out, "\n%s\n", cachedNote(result))
			reportResult(out, log, result, *detailed)
			return 0
		case !errors.Is(err, errors.ErrNotFound):
			log.Warnw("Cache lookup failed, running pipeline", "error", err)
		}
	}

	fmt.Fprintln(out, "\nInitializing trading agents...")

	registry, err := ai.BuildRegistry(ctx, cfg.AI)
	if err != nil {
		fmt.Fprintf(out, "\n❌ Error during analysis: %v\n", err)
		return 1
	}

	fmpClient := fmp.NewClient(cfg.MarketData, log)
	newsClient := alphavantage.NewClient(cfg.MarketData, log)
	team := agents.NewTeam(registry, fmpClient, newsClient, cfg.AI, cfg.MarketData, log)
	runner := pipeline.NewRunner(pipeline.AnalysisSteps(team), store, cfg.Pipeline, log)

	fmt.Fprintf(out, "\nStarting analysis pipeline for %s...\n", st.Ticker)
	fmt.Fprintln(out, "This will:")
	fmt.Fprintln(out, "  1. Review recent news coverage")
	fmt.Fprintln(out, "  2. Analyze market/technical data")
	fmt.Fprintln(out, "  3. Analyze fundamental/financial data")
	fmt.Fprintln(out, "  4. Build the bullish case")
	fmt.Fprintln(out, "  5. Build the bearish case")
	fmt.Fprintln(out, "  6. Generate risk-tiered recommendations")
	fmt.Fprintln(out, "\nPlease wait...")

	var emit pipeline.EmitFunc
	if *debug {
		emit = func(ev pipeline.Event) {
			if ev.Type == pipeline.EventProgress {
				fmt.Fprintf(out, "  [%3d%%] %s\n", ev.Percent(), ev.Message)
			}
		}
		fmt.Fprintln(out)
	}

	result, err := runner.Run(ctx, st.Ticker, st.Date, emit)
	if err != nil {
		fmt.Fprintf(out, "\n❌ Error during analysis: %v\n", err)
		return 1
	}

	reportResult(out, log, result, *detailed)
	if *detailed {
		printUsageSummary(out, team.Usage())
	}
	return 0
}

// reportResult prints the summary sections, the closing banner and writes the
// result file next to the working directory.
func reportResult(out io.Writer, log *logger.Logger, result *agents.Result, detailed bool) {
	printAnalysisSummary(out, result)
	if detailed {
		printDetailedResults(out, result)
	}

	printSection(out, "ANALYSIS COMPLETE")
	fmt.Fprintf(out, "\nFinal Decision: %s\n", labelize(result.Decision))
	fmt.Fprintf(out, "Confidence: %s\n", percent(result.Confidence))

	outputFile := fmt.Sprintf("analysis_%s_%s.json", result.Ticker, result.Date)
	if err := writeResultFile(outputFile, result); err != nil {
		log.Warnf("Failed to write %s: %v", outputFile, err)
		return
	}
	fmt.Fprintf(out, "\nDetailed results saved to: %s\n", outputFile)
}

func writeResultFile(path string, result *agents.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	return os.WriteFile(path, data, 0o644)
}

// cachedNote tells the user the report came from cache and how old it is.
func cachedNote(result *agents.Result) string {
	const hint = "Pass --no-cache to rerun the pipeline."
	if result.CachedAt == "" || result.CachedAt == "unknown" {
		return "Using cached analysis. " + hint
	}
	if t, err := time.Parse(time.RFC3339, result.CachedAt); err == nil {
		return fmt.Sprintf("Using cached analysis saved %s. %s", humanize.Time(t), hint)
	}
	return fmt.Sprintf("Using cached analysis saved %s. %s", result.CachedAt, hint)
}
