package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type geminiBackend struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func newGemini(ctx context.Context, opts Options) (*geminiBackend, error) {
	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &geminiBackend{client: client, model: model, maxTokens: int32(opts.MaxTokens)}, nil
}

func (g *geminiBackend) complete(ctx context.Context, text string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(text), &genai.GenerateContentConfig{
		MaxOutputTokens: g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	out := resp.Text()
	if out == "" {
		return "", fmt.Errorf("empty reply from %s", g.model)
	}
	return out, nil
}
