package ai

import (
	"context"
	"strings"
	"time"

	"delphi/pkg/errors"
)

// ClaudeProvider serves chat completions through the Anthropic Messages API.
type ClaudeProvider struct {
	apiKey      string
	timeout     time.Duration
	rateLimiter RateLimiter
	models      []ModelInfo
}

// NewClaudeProvider creates a new Claude provider instance.
func NewClaudeProvider(apiKey string, timeout time.Duration, rateLimiter RateLimiter) *ClaudeProvider {
	if rateLimiter == nil {
		rateLimiter = NewNoOpLimiter()
	}

	return &ClaudeProvider{
		apiKey:      apiKey,
		timeout:     timeout,
		rateLimiter: rateLimiter,
		models:      claudeModels(),
	}
}

// Name returns the provider name.
func (p *ClaudeProvider) Name() ProviderName { return ProviderNameClaude }

// GetModel returns model info by name.
func (p *ClaudeProvider) GetModel(_ context.Context, model string) (ModelInfo, error) {
	for _, m := range p.models {
		if strings.EqualFold(m.Name, model) {
			return m, nil
		}
	}
	return ModelInfo{}, errors.Wrapf(errors.ErrNotFound, "claude model %s not found", model)
}

// ListModels lists available models.
func (p *ClaudeProvider) ListModels(_ context.Context) ([]ModelInfo, error) {
	return p.models, nil
}

func claudeModels() []ModelInfo {
	return []ModelInfo{
		{
			Provider:        ProviderNameClaude,
			Name:            ModelClaudeSonnet4,
			Family:          "claude-sonnet",
			ContextWindow:   200000,
			MaxOutputTokens: 64000,
			InputCostPer1K:  0.003,
			OutputCostPer1K: 0.015,
		},
		{
			Provider:        ProviderNameClaude,
			Name:            "claude-3-5-haiku-20241022",
			Family:          "claude-haiku",
			ContextWindow:   200000,
			MaxOutputTokens: 8192,
			InputCostPer1K:  0.0008,
			OutputCostPer1K: 0.004,
		},
	}
}
