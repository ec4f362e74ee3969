package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"delphi/pkg/errors"
)

const deepseekAPIURL = "https://api.deepseek.com/v1/chat/completions"

// Ensure DeepSeekProvider implements ChatProvider
var _ ChatProvider = (*DeepSeekProvider)(nil)

// Chat sends a chat completion request to the DeepSeek API.
func (p *DeepSeekProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "deepseek API key not configured")
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{
			Provider: ProviderNameDeepSeek,
			Limit:    p.rateLimiter.Limit(),
			Err:      err,
		}
	}

	body, err := json.Marshal(convertToDeepSeek(req))
	if err != nil {
		return nil, errors.Wrap(err, "marshal deepseek request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, deepseekAPIURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create HTTP request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	client := &http.Client{Timeout: p.timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "send deepseek request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read deepseek response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, errors.Wrapf(errors.ErrExternalAPI, "deepseek API error (%d): %s - %s",
				resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, errors.Wrapf(errors.ErrExternalAPI, "deepseek API error (%d): %s",
			resp.StatusCode, string(respBody))
	}

	var dsResp deepseekResponse
	if err := json.Unmarshal(respBody, &dsResp); err != nil {
		return nil, errors.Wrap(err, "unmarshal deepseek response")
	}

	return convertFromDeepSeek(&dsResp), nil
}

// OpenAI-compatible wire types
type deepseekRequest struct {
	Model          string                  `json:"model"`
	Messages       []deepseekMessage       `json:"messages"`
	Temperature    float64                 `json:"temperature"`
	MaxTokens      int                     `json:"max_tokens,omitempty"`
	TopP           float64                 `json:"top_p,omitempty"`
	ResponseFormat *deepseekResponseFormat `json:"response_format,omitempty"`
}

type deepseekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type deepseekResponseFormat struct {
	Type string `json:"type"`
}

type deepseekResponse struct {
	ID      string           `json:"id"`
	Object  string           `json:"object"`
	Created int64            `json:"created"`
	Model   string           `json:"model"`
	Choices []deepseekChoice `json:"choices"`
	Usage   deepseekUsage    `json:"usage"`
}

type deepseekChoice struct {
	Index        int             `json:"index"`
	Message      deepseekMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

type deepseekUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// convertToDeepSeek maps the request to the OpenAI wire format. When a
// response schema is requested, JSON mode is enabled; DeepSeek requires
// the word "json" somewhere in the prompt for it to apply.
func convertToDeepSeek(req ChatRequest) deepseekRequest {
	dsReq := deepseekRequest{
		Model:       req.Model,
		Messages:    make([]deepseekMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	}
	if dsReq.MaxTokens == 0 {
		dsReq.MaxTokens = 4096
	}
	if req.ResponseSchema != nil {
		dsReq.ResponseFormat = &deepseekResponseFormat{Type: "json_object"}
	}

	for _, msg := range req.Messages {
		dsReq.Messages = append(dsReq.Messages, deepseekMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	return dsReq
}

// convertFromDeepSeek maps the OpenAI-format response to the
// provider-agnostic shape.
func convertFromDeepSeek(resp *deepseekResponse) *ChatResponse {
	chatResp := &ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
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
			Index:        choice.Index,
			Message:      Message{Role: MessageRole(choice.Message.Role), Content: choice.Message.Content},
			FinishReason: finishReason,
		})
	}

	return chatResp
}
