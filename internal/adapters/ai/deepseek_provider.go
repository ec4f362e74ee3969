package ai

import (
	"context"
	"strings"
	"time"

	"delphi/pkg/errors"
)

// DeepSeekProvider serves chat completions through the DeepSeek API,
// which speaks the OpenAI wire format.
type DeepSeekProvider struct {
	apiKey      string
	timeout     time.Duration
	rateLimiter RateLimiter
	models      []ModelInfo
}

// NewDeepSeekProvider creates a new DeepSeek provider instance.
func NewDeepSeekProvider(apiKey string, timeout time.Duration, rateLimiter RateLimiter) *DeepSeekProvider {
	if rateLimiter == nil {
		rateLimiter = NewNoOpLimiter()
	}

	return &DeepSeekProvider{
		apiKey:      apiKey,
		timeout:     timeout,
		rateLimiter: rateLimiter,
		models:      deepSeekModels(),
	}
}

// Name returns the provider name.
func (p *DeepSeekProvider) Name() ProviderName { return ProviderNameDeepSeek }

// GetModel returns model info by name.
func (p *DeepSeekProvider) GetModel(_ context.Context, model string) (ModelInfo, error) {
	for _, m := range p.models {
		if strings.EqualFold(m.Name, model) {
			return m, nil
		}
	}
	return ModelInfo{}, errors.Wrapf(errors.ErrNotFound, "deepseek model %s not found", model)
}

// ListModels lists available models.
func (p *DeepSeekProvider) ListModels(_ context.Context) ([]ModelInfo, error) {
	return p.models, nil
}

func deepSeekModels() []ModelInfo {
	return []ModelInfo{
		{
			Provider:        ProviderNameDeepSeek,
			Name:            ModelDeepSeekChat,
			Family:          "deepseek",
			ContextWindow:   65536,
			MaxOutputTokens: 8192,
			InputCostPer1K:  0.00027,
			OutputCostPer1K: 0.0011,
			SupportsJSON:    true,
		},
		{
			Provider:        ProviderNameDeepSeek,
			Name:            "deepseek-reasoner",
			Family:          "deepseek",
			ContextWindow:   65536,
			MaxOutputTokens: 65536,
			InputCostPer1K:  0.00055,
			OutputCostPer1K: 0.00219,
			SupportsJSON:    true,
		},
	}
}
