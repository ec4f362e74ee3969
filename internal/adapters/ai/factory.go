package ai

import (
	"context"
	"strings"
	"time"

	"delphi/internal/adapters/config"
	"delphi/pkg/errors"
)

// BuildRegistry initializes a ProviderRegistry with every provider that has
// an API key configured. Returns errors.ErrUnavailable when no provider can
// be registered.
func BuildRegistry(ctx context.Context, cfg config.AIConfig) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout()
	}

	limits := DefaultRateLimits()
	if cfg.RequestsPerMin > 0 {
		// The configured budget applies to the default provider only.
		name := NormalizeProviderName(cfg.DefaultProvider)
		if lim, ok := limits[name]; ok {
			lim.Enabled = true
			lim.ReqPerMinute = float64(cfg.RequestsPerMin)
			limits[name] = lim
		}
	}

	if cfg.GeminiKey != "" {
		limiter := GetRateLimiter(ProviderNameGemini, limits[ProviderNameGemini])
		provider, err := NewGeminiProvider(ctx, cfg.GeminiKey, timeout, limiter)
		if err != nil {
			return nil, errors.Wrap(err, "build gemini provider")
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	if cfg.OpenAIKey != "" {
		limiter := GetRateLimiter(ProviderNameOpenAI, limits[ProviderNameOpenAI])
		if err := registry.Register(NewOpenAIProvider(cfg.OpenAIKey, timeout, limiter)); err != nil {
			return nil, err
		}
	}

	if cfg.ClaudeKey != "" {
		limiter := GetRateLimiter(ProviderNameClaude, limits[ProviderNameClaude])
		if err := registry.Register(NewClaudeProvider(cfg.ClaudeKey, timeout, limiter)); err != nil {
			return nil, err
		}
	}

	if cfg.DeepSeekKey != "" {
		limiter := GetRateLimiter(ProviderNameDeepSeek, limits[ProviderNameDeepSeek])
		if err := registry.Register(NewDeepSeekProvider(cfg.DeepSeekKey, timeout, limiter)); err != nil {
			return nil, err
		}
	}

	if len(registry.List()) == 0 {
		return nil, errors.Wrap(errors.ErrUnavailable, "no AI providers configured")
	}

	return registry, nil
}

func defaultTimeout() time.Duration {
	return 120 * time.Second
}

// NormalizeProviderName makes provider lookup forgiving about casing,
// whitespace and vendor aliases.
func NormalizeProviderName(name string) ProviderName {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "google", "googleai", "google-genai":
		return ProviderNameGemini
	case "anthropic":
		return ProviderNameClaude
	}
	return ProviderName(normalized)
}
