package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicBackend wraps the Anthropic SDK (or a compatible proxy) for single-turn prompts.
type anthropicBackend struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

func newAnthropic(opts Options) *anthropicBackend {
	model := opts.Model
	if model == "" {
		model = "claude-sonnet-4-6"
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	return &anthropicBackend{
		client:    anthropic.NewClient(reqOpts...),
		model:     model,
		maxTokens: opts.MaxTokens,
	}
}

func (a *anthropicBackend) complete(ctx context.Context, text string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(a.model)),
		MaxTokens: anthropic.F(int64(a.maxTokens)),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		}),
	})
	if err != nil {
		return "", fmt.Errorf("messages.new: %w", err)
	}

	var out string
	for _, block := range resp.Content {
		if b, ok := block.AsUnion().(anthropic.TextBlock); ok {
			out += b.Text
		}
	}
	if out == "" {
		return "", fmt.Errorf("empty reply (stop_reason=%s)", resp.StopReason)
	}
	return out, nil
}
