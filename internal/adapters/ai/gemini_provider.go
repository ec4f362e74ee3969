package ai

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"

	"delphi/pkg/errors"
)

// GeminiProvider serves chat completions through the Google GenAI SDK.
type GeminiProvider struct {
	client      *genai.Client
	timeout     time.Duration
	rateLimiter RateLimiter
	models      []ModelInfo
}

// NewGeminiProvider creates a Gemini provider backed by the Gemini API.
func NewGeminiProvider(ctx context.Context, apiKey string, timeout time.Duration, rateLimiter RateLimiter) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	if rateLimiter == nil {
		rateLimiter = NewNoOpLimiter()
	}

	return &GeminiProvider{
		client:      client,
		timeout:     timeout,
		rateLimiter: rateLimiter,
		models:      geminiModels(),
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() ProviderName { return ProviderNameGemini }

// GetModel returns model info by name.
func (p *GeminiProvider) GetModel(_ context.Context, model string) (ModelInfo, error) {
	for _, m := range p.models {
		if strings.EqualFold(m.Name, model) {
			return m, nil
		}
	}
	return ModelInfo{}, errors.Wrapf(errors.ErrNotFound, "gemini model %s not found", model)
}

// ListModels lists available models.
func (p *GeminiProvider) ListModels(_ context.Context) ([]ModelInfo, error) {
	return p.models, nil
}

func geminiModels() []ModelInfo {
	return []ModelInfo{
		{
			Provider:        ProviderNameGemini,
			Name:            ModelGeminiFlash,
			Family:          "gemini-2.5",
			ContextWindow:   1048576,
			MaxOutputTokens: 65536,
			InputCostPer1K:  0.0003,
			OutputCostPer1K: 0.0025,
			SupportsJSON:    true,
		},
		{
			Provider:        ProviderNameGemini,
			Name:            ModelGeminiPro,
			Family:          "gemini-2.5",
			ContextWindow:   1048576,
			MaxOutputTokens: 65536,
			InputCostPer1K:  0.00125,
			OutputCostPer1K: 0.01,
			SupportsJSON:    true,
		},
		{
			Provider:        ProviderNameGemini,
			Name:            "gemini-2.0-flash",
			Family:          "gemini-2.0",
			ContextWindow:   1048576,
			MaxOutputTokens: 8192,
			InputCostPer1K:  0.0001,
			OutputCostPer1K: 0.0004,
			SupportsJSON:    true,
		},
	}
}
