package llmgw

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements Provider against the Anthropic Messages
// API. It is the concrete transport behind the Gateway's complete
// operation; retry, timeout, and memory all live one layer up in
// Gateway, so this type makes exactly one best-effort call.
type AnthropicProvider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicProvider creates a provider bound to apiKey and model.
func NewAnthropicProvider(apiKey, model string, maxTokens int64) *AnthropicProvider {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicProvider{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
	}
}

// Complete sends system + messages to Claude and returns the text of
// the first text content block in the response.
func (p *AnthropicProvider) Complete(ctx context.Context, systemPrompt string, messages []Message) (string, error) {
	start := time.Now()

	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  toAnthropicMessages(messages),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: systemPrompt}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	duration := time.Since(start)
	if err != nil {
		slog.Warn("llmgw: anthropic call failed", "duration", duration, "error", err)
		if isRateLimitErr(err) {
			return "", &QuotaError{Err: err}
		}
		return "", &TransientError{Err: fmt.Errorf("anthropic api error: %w", err)}
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic response contained no text block")
}

func toAnthropicMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

func isRateLimitErr(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
