package agents

import (
	"context"
	"time"

	"google.golang.org/genai"

	"delphi/internal/adapters/ai"
	"delphi/internal/adapters/alphavantage"
	"delphi/internal/adapters/config"
	"delphi/internal/adapters/fmp"
	"delphi/internal/metrics"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

const (
	analystTemperature    = 0.0
	supervisorTemperature = 0.7
)

// Team wires the six agents to their model configs and data sources. All
// step methods take the accumulated state and return an updated copy.
type Team struct {
	registry *ai.ProviderRegistry
	selector *ai.ModelSelector
	usage    *ai.UsageTracker

	fmp  *fmp.Client
	news *alphavantage.Client

	defaultProvider ai.ProviderName
	candleLookback  int
	newsLookback    int
	newsLimit       int

	log *logger.Logger
}

// NewTeam builds the agent team. Analysts and debaters run on the fast
// model at temperature zero; the supervisor runs on the deep model with
// sampling head-room for synthesis.
func NewTeam(registry *ai.ProviderRegistry, fmpClient *fmp.Client, newsClient *alphavantage.Client, aiCfg config.AIConfig, dataCfg config.MarketDataConfig, log *logger.Logger) *Team {
	defaults := make([]ai.AgentModelConfig, 0, len(AllKinds()))
	for _, kind := range AllKinds() {
		cfg := ai.AgentModelConfig{
			Agent:       kind.String(),
			Provider:    ai.ProviderName(aiCfg.DefaultProvider),
			Model:       aiCfg.FastModel,
			Temperature: analystTemperature,
		}
		if kind == KindSupervisor {
			cfg.Model = aiCfg.DeepModel
			cfg.Temperature = supervisorTemperature
		}
		defaults = append(defaults, cfg)
	}

	return &Team{
		registry:        registry,
		selector:        ai.NewModelSelector(registry, defaults),
		usage:           ai.NewUsageTracker(),
		fmp:             fmpClient,
		news:            newsClient,
		defaultProvider: ai.ProviderName(aiCfg.DefaultProvider),
		candleLookback:  dataCfg.CandleLookbackDays,
		newsLookback:    dataCfg.NewsLookbackDays,
		newsLimit:       dataCfg.NewsArticleLimit,
		log:             log.With("component", "agents"),
	}
}

// Selector exposes per-agent model overrides.
func (t *Team) Selector() *ai.ModelSelector { return t.selector }

// Usage returns the accumulated token and cost tracker.
func (t *Team) Usage() *ai.UsageTracker { return t.usage }

// generate runs one completion for the given agent and decodes the reply
// into out.
func (t *Team) generate(ctx context.Context, kind Kind, system, user string, schema *genai.Schema, out validator) error {
	cfg, info, err := t.selector.Get(ctx, kind.String(), t.defaultProvider)
	if err != nil {
		return err
	}
	provider, err := t.registry.Get(cfg.Provider)
	if err != nil {
		return err
	}

	req := ai.ChatRequest{
		Model: cfg.Model,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: system},
			{Role: ai.RoleUser, Content: user},
		},
		Temperature:    cfg.Temperature,
		MaxTokens:      cfg.MaxTokens,
		ResponseSchema: schema,
	}

	start := time.Now()
	resp, err := provider.Chat(ctx, req)
	latency := time.Since(start)
	if err != nil {
		metrics.RecordAgentCall(kind.String(), cfg.Model, latency, 0, 0, err)
		return errors.Wrapf(err, "%s call", kind)
	}
	metrics.RecordAgentCall(kind.String(), cfg.Model, latency, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, nil)
	t.usage.Record(info, cfg.Provider, int64(resp.Usage.PromptTokens), int64(resp.Usage.CompletionTokens))

	if err := decodeOutput(resp.Text(), out); err != nil {
		t.log.Errorw("agent response rejected",
			"agent", kind.String(),
			"model", cfg.Model,
			"error", err,
		)
		return errors.Wrapf(err, "%s output", kind)
	}

	t.log.Debugw("agent step finished",
		"agent", kind.String(),
		"model", cfg.Model,
		"latency", latency,
		"input_tokens", resp.Usage.PromptTokens,
		"output_tokens", resp.Usage.CompletionTokens,
	)
	return nil
}
