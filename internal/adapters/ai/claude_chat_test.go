package ai

import (
	"testing"
)

func TestConvertToClaudeSeparatesSystemMessages(t *testing.T) {
	req := ChatRequest{
		Model: ModelClaudeSonnet4,
		Messages: []Message{
			{Role: RoleSystem, Content: "you are an analyst"},
			{Role: RoleUser, Content: "analyze NVDA"},
			{Role: RoleAssistant, Content: "ok"},
			{Role: RoleUser, Content: "continue"},
		},
		Temperature: 0.7,
	}

	claudeReq := convertToClaude(req)

	if claudeReq.System != "you are an analyst" {
		t.Fatalf("expected system prompt to be lifted, got %q", claudeReq.System)
	}
	if len(claudeReq.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(claudeReq.Messages))
	}
	if claudeReq.Messages[0].Role != "user" || claudeReq.Messages[1].Role != "assistant" {
		t.Fatalf("unexpected message order: %+v", claudeReq.Messages)
	}
	if claudeReq.MaxTokens != defaultClaudeMaxTokens {
		t.Fatalf("expected default max tokens %d, got %d", defaultClaudeMaxTokens, claudeReq.MaxTokens)
	}
	if claudeReq.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %f", claudeReq.Temperature)
	}
}

func TestConvertFromClaudeMapsStopReasons(t *testing.T) {
	tests := []struct {
		stopReason string
		want       FinishReason
	}{
		{stopReason: "end_turn", want: FinishReasonStop},
		{stopReason: "stop_sequence", want: FinishReasonStop},
		{stopReason: "max_tokens", want: FinishReasonLength},
		{stopReason: "refusal", want: FinishReasonContentFilter},
	}

	for _, tt := range tests {
		resp := convertFromClaude(&claudeResponse{
			ID:         "msg_1",
			Content:    []claudeContentBlock{{Type: "text", Text: "a"}, {Type: "text", Text: "b"}},
			StopReason: tt.stopReason,
			Usage:      claudeUsage{InputTokens: 10, OutputTokens: 20},
		})

		if got := resp.Choices[0].FinishReason; got != tt.want {
			t.Errorf("stop_reason %s mapped to %s, want %s", tt.stopReason, got, tt.want)
		}
		if resp.Text() != "ab" {
			t.Errorf("expected joined text blocks, got %q", resp.Text())
		}
		if resp.Usage.TotalTokens != 30 {
			t.Errorf("expected total tokens 30, got %d", resp.Usage.TotalTokens)
		}
	}
}
