package ai

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"delphi/pkg/errors"
)

// Ensure OpenAIProvider implements ChatProvider
var _ ChatProvider = (*OpenAIProvider)(nil)

// Chat sends a chat completion request to the OpenAI API.
func (p *OpenAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{
			Provider: ProviderNameOpenAI,
			Limit:    p.rateLimiter.Limit(),
			Err:      err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       req.Model,
		Messages:    make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
		Temperature: openai.Float(req.Temperature),
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(req.TopP)
	}
	if req.ResponseSchema != nil {
		// JSON mode. The schema itself travels in the prompt, the API
		// only guarantees syntactically valid JSON.
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternalAPI, "openai chat completion: %v", err)
	}

	return convertFromOpenAI(resp)
}

// convertFromOpenAI maps the SDK response to the provider-agnostic shape.
func convertFromOpenAI(resp *openai.ChatCompletion) (*ChatResponse, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyResponse, "openai returned no choices")
	}

	chatResp := &ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}

	for _, choice := range resp.Choices {
		finishReason := FinishReasonStop
		switch choice.FinishReason {
		case "length":
			finishReason = FinishReasonLength
		case "content_filter":
			finishReason = FinishReasonContentFilter
		}

		chatResp.Choices = append(chatResp.Choices, Choice{
			Index:        int(choice.Index),
			Message:      Message{Role: RoleAssistant, Content: choice.Message.Content},
			FinishReason: finishReason,
		})
	}

	return chatResp, nil
}
