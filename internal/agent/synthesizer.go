package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/personalai/assistant/internal/llm"
	"github.com/personalai/assistant/internal/security"
)

// GeneratedQuery is a validated statement and the action it came from.
type GeneratedQuery struct {
	SQL    string
	Action string
}

// Synthesizer turns an action into a validated SQL statement.
type Synthesizer struct {
	gen   llm.Generator
	guard *security.SQLGuard
}

func NewSynthesizer(gen llm.Generator, guard *security.SQLGuard) *Synthesizer {
	return &Synthesizer{gen: gen, guard: guard}
}

// Synthesize asks the model for a query, extracts it from the reply and
// rejects it if it contains a forbidden verb. The guard runs here exactly once;
// callers must not execute anything Synthesize did not return.
func (s *Synthesizer) Synthesize(ctx context.Context, action, schema string) (GeneratedQuery, error) {
	reply, err := s.gen.Generate(ctx, SQLPrompt, llm.Bindings{"schemas": schema, "action": action})
	if err != nil {
		return GeneratedQuery{}, fmt.Errorf("%w: %w", ErrGenerationFailure, err)
	}

	stmt := extractStatement(reply)
	if stmt == "" {
		return GeneratedQuery{}, fmt.Errorf("%w: model returned no query", ErrGenerationFailure)
	}

	if err := s.guard.Check(stmt); err != nil {
		var fe *security.ForbiddenError
		if errors.As(err, &fe) {
			log.Warn().Str("verb", fe.Verb).Msg("synthesized query rejected")
			return GeneratedQuery{SQL: stmt, Action: action}, fmt.Errorf("%w %q in generated query", ErrForbiddenOperation, fe.Verb)
		}
		return GeneratedQuery{}, fmt.Errorf("%w: %w", ErrGenerationFailure, err)
	}

	return GeneratedQuery{SQL: stmt, Action: action}, nil
}

var (
	reSQLFence     = regexp.MustCompile("(?is)```sql\\b[ \t]*\r?\n?(.*?)```")
	reGenericFence = regexp.MustCompile("(?s)```(.*?)```")
)

// extractStatement pulls the statement out of a model reply:
// 1. the first ```sql block
// 2. else the first ``` block of any kind
// 3. else the whole reply
// The result is always trimmed.
func extractStatement(reply string) string {
	if m := reSQLFence.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := reGenericFence.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(reply)
}
