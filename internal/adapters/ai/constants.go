package ai

// ProviderName identifies an LLM provider.
type ProviderName string

const (
	ProviderNameGemini   ProviderName = "gemini"
	ProviderNameOpenAI   ProviderName = "openai"
	ProviderNameClaude   ProviderName = "claude"
	ProviderNameDeepSeek ProviderName = "deepseek"
)

// String returns the provider name as a plain string.
func (p ProviderName) String() string {
	return string(p)
}

// IsValid reports whether the provider name is one of the supported providers.
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderNameGemini, ProviderNameOpenAI, ProviderNameClaude, ProviderNameDeepSeek:
		return true
	}
	return false
}

// AllProviderNames returns every supported provider name.
func AllProviderNames() []ProviderName {
	return []ProviderName{
		ProviderNameGemini,
		ProviderNameOpenAI,
		ProviderNameClaude,
		ProviderNameDeepSeek,
	}
}

// Well-known model identifiers used as defaults across the pipeline.
const (
	ModelGeminiFlash   = "gemini-2.5-flash"
	ModelGeminiPro     = "gemini-2.5-pro"
	ModelGPT4oMini     = "gpt-4o-mini"
	ModelGPT4o         = "gpt-4o"
	ModelClaudeSonnet4 = "claude-sonnet-4-20250514"
	ModelDeepSeekChat  = "deepseek-chat"
)
