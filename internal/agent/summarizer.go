package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/personalai/assistant/internal/llm"
	"github.com/personalai/assistant/internal/store"
)

// Summarizer turns query rows into a sentence for the user.
type Summarizer struct {
	gen llm.Generator
}

func NewSummarizer(gen llm.Generator) *Summarizer {
	return &Summarizer{gen: gen}
}

// Summarize returns the trimmed model reply verbatim. The reply is free text.
func (s *Summarizer) Summarize(ctx context.Context, action string, rows []store.Row) (string, error) {
	if rows == nil {
		rows = []store.Row{}
	}
	encoded, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("%w: encode result: %w", ErrSummarizationFailure, err)
	}

	reply, err := s.gen.Generate(ctx, SummaryPrompt, llm.Bindings{"result": string(encoded), "action": action})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummarizationFailure, err)
	}
	return strings.TrimSpace(reply), nil
}
