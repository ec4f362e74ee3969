package ai

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"delphi/pkg/errors"
)

// Ensure GeminiProvider implements ChatProvider
var _ ChatProvider = (*GeminiProvider)(nil)

// Chat sends a generate-content request to the Gemini API.
func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{
			Provider: ProviderNameGemini,
			Limit:    p.rateLimiter.Limit(),
			Err:      err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cfg, contents := convertToGemini(req)

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternalAPI, "gemini generate content: %v", err)
	}

	return convertFromGemini(req.Model, resp)
}

// convertToGemini maps the request onto the GenAI config and contents.
// System messages become the system instruction, assistant turns map to
// the model role.
func convertToGemini(req ChatRequest) (*genai.GenerateContentConfig, []*genai.Content) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.TopP > 0 {
		cfg.TopP = genai.Ptr(float32(req.TopP))
	}
	if req.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.ResponseSchema
	}

	var (
		contents    []*genai.Content
		systemParts []string
	)
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(systemParts) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser)
	}

	return cfg, contents
}

// convertFromGemini maps the GenAI response to the provider-agnostic shape.
func convertFromGemini(model string, resp *genai.GenerateContentResponse) (*ChatResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyResponse, "gemini returned no candidates")
	}

	chatResp := &ChatResponse{Model: model}
	if resp.UsageMetadata != nil {
		chatResp.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	for i, candidate := range resp.Candidates {
		var sb strings.Builder
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part != nil {
					sb.WriteString(part.Text)
				}
			}
		}

		finishReason := FinishReasonStop
		switch candidate.FinishReason {
		case genai.FinishReasonMaxTokens:
			finishReason = FinishReasonLength
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent:
			finishReason = FinishReasonContentFilter
		}

		chatResp.Choices = append(chatResp.Choices, Choice{
			Index:        i,
			Message:      Message{Role: RoleAssistant, Content: sb.String()},
			FinishReason: finishReason,
		})
	}

	return chatResp, nil
}
