package ai

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"delphi/pkg/errors"
)

// OpenAIProvider serves chat completions through the official OpenAI SDK.
type OpenAIProvider struct {
	client      openai.Client
	timeout     time.Duration
	rateLimiter RateLimiter
	models      []ModelInfo
}

// NewOpenAIProvider creates a new OpenAI provider instance.
func NewOpenAIProvider(apiKey string, timeout time.Duration, rateLimiter RateLimiter) *OpenAIProvider {
	if rateLimiter == nil {
		rateLimiter = NewNoOpLimiter()
	}

	return &OpenAIProvider{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		timeout:     timeout,
		rateLimiter: rateLimiter,
		models:      openAIModels(),
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() ProviderName { return ProviderNameOpenAI }

// GetModel returns model info by name.
func (p *OpenAIProvider) GetModel(_ context.Context, model string) (ModelInfo, error) {
	for _, m := range p.models {
		if strings.EqualFold(m.Name, model) {
			return m, nil
		}
	}
	return ModelInfo{}, errors.Wrapf(errors.ErrNotFound, "openai model %s not found", model)
}

// ListModels lists available models.
func (p *OpenAIProvider) ListModels(_ context.Context) ([]ModelInfo, error) {
	return p.models, nil
}

func openAIModels() []ModelInfo {
	return []ModelInfo{
		{
			Provider:        ProviderNameOpenAI,
			Name:            ModelGPT4oMini,
			Family:          "gpt-4o",
			ContextWindow:   128000,
			MaxOutputTokens: 16384,
			InputCostPer1K:  0.00015,
			OutputCostPer1K: 0.0006,
			SupportsJSON:    true,
		},
		{
			Provider:        ProviderNameOpenAI,
			Name:            ModelGPT4o,
			Family:          "gpt-4o",
			ContextWindow:   128000,
			MaxOutputTokens: 16384,
			InputCostPer1K:  0.0025,
			OutputCostPer1K: 0.01,
			SupportsJSON:    true,
		},
		{
			Provider:        ProviderNameOpenAI,
			Name:            "gpt-4.1",
			Family:          "gpt-4.1",
			ContextWindow:   1047576,
			MaxOutputTokens: 32768,
			InputCostPer1K:  0.002,
			OutputCostPer1K: 0.008,
			SupportsJSON:    true,
		},
	}
}
