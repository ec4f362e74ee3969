package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"delphi/pkg/errors"
)

const (
	claudeAPIURL     = "https://api.anthropic.com/v1/messages"
	claudeAPIVersion = "2023-06-01"

	defaultClaudeMaxTokens = 4096
)

// Ensure ClaudeProvider implements ChatProvider
var _ ChatProvider = (*ClaudeProvider)(nil)

// Chat sends a messages request to the Anthropic API.
func (p *ClaudeProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "claude API key not configured")
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{
			Provider: ProviderNameClaude,
			Limit:    p.rateLimiter.Limit(),
			Err:      err,
		}
	}

	body, err := json.Marshal(convertToClaude(req))
	if err != nil {
		return nil, errors.Wrap(err, "marshal claude request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create HTTP request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", claudeAPIVersion)

	client := &http.Client{Timeout: p.timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "send claude request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read claude response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, errors.Wrapf(errors.ErrExternalAPI, "claude API error (%d): %s - %s",
				resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, errors.Wrapf(errors.ErrExternalAPI, "claude API error (%d): %s",
			resp.StatusCode, string(respBody))
	}

	var claudeResp claudeResponse
	if err := json.Unmarshal(respBody, &claudeResp); err != nil {
		return nil, errors.Wrap(err, "unmarshal claude response")
	}

	return convertFromClaude(&claudeResp), nil
}

// Anthropic Messages API wire types
type claudeRequest struct {
	Model       string          `json:"model"`
	Messages    []claudeMessage `json:"messages"`
	System      string          `json:"system,omitempty"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	TopP        float64         `json:"top_p,omitempty"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	ID         string               `json:"id"`
	Model      string               `json:"model"`
	Role       string               `json:"role"`
	Content    []claudeContentBlock `json:"content"`
	StopReason string               `json:"stop_reason"`
	Usage      claudeUsage          `json:"usage"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// convertToClaude maps the request to the Anthropic format. System
// messages move into the top-level system field, the rest keep their
// order. Claude has no JSON mode, the response contract lives in the
// prompt text.
func convertToClaude(req ChatRequest) claudeRequest {
	claudeReq := claudeRequest{
		Model:       req.Model,
		Messages:    []claudeMessage{},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if claudeReq.MaxTokens == 0 {
		claudeReq.MaxTokens = defaultClaudeMaxTokens
	}

	var systemParts []string
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		claudeReq.Messages = append(claudeReq.Messages, claudeMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	claudeReq.System = strings.Join(systemParts, "\n\n")

	return claudeReq
}

// convertFromClaude maps the Anthropic response to the provider-agnostic shape.
func convertFromClaude(resp *claudeResponse) *ChatResponse {
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	finishReason := FinishReasonStop
	switch resp.StopReason {
	case "max_tokens":
		finishReason = FinishReasonLength
	case "refusal":
		finishReason = FinishReasonContentFilter
	}

	return &ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Choices: []Choice{
			{
				Index:        0,
				Message:      Message{Role: RoleAssistant, Content: sb.String()},
				FinishReason: finishReason,
			},
		},
		Usage: Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}
}
