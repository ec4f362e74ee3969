package ai

import (
	"context"

	"google.golang.org/genai"
)

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatRequest describes a single chat completion call.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	TopP        float64

	// ResponseSchema, when set, asks the provider for a JSON response
	// conforming to the schema. Gemini enforces the schema natively;
	// OpenAI-compatible providers fall back to JSON mode and Claude
	// relies on the schema restated in the prompt.
	ResponseSchema *genai.Schema
}

// FinishReason explains why generation stopped.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// Choice is one completion candidate.
type Choice struct {
	Index        int
	Message      Message
	FinishReason FinishReason
}

// Usage reports token consumption for a single call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResponse is the provider-agnostic completion result.
type ChatResponse struct {
	ID      string
	Model   string
	Choices []Choice
	Usage   Usage
}

// Text returns the content of the first choice, or empty when the
// response carries no choices.
func (r *ChatResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// ChatProvider is a Provider that can serve chat completions.
type ChatProvider interface {
	Provider

	// Chat executes a single completion request. Implementations apply
	// their rate limiter before dispatching and honor ctx cancellation.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
