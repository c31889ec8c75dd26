package agent

import (
	"errors"

	"github.com/personalai/assistant/internal/llm"
)

// Error kinds surfaced by the pipeline. Stage errors wrap exactly one of
// these plus the underlying cause.
var (
	ErrClassificationFailure = errors.New("classification failure")
	ErrForbiddenOperation    = errors.New("forbidden operation")
	ErrGenerationFailure     = errors.New("generation failure")
	ErrExecutionError        = errors.New("execution error")
	ErrSummarizationFailure  = errors.New("summarization failure")
	ErrUpstreamProvider      = errors.New("upstream provider error")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrForbiddenOperation, "forbidden_operation"},
	{ErrClassificationFailure, "classification_failure"},
	{ErrGenerationFailure, "generation_failure"},
	{ErrExecutionError, "execution_error"},
	{ErrSummarizationFailure, "summarization_failure"},
	{ErrUpstreamProvider, "upstream_provider"},
}

// KindOf names the error kind of err, or "" when err carries none.
// Stage kinds win over a wrapped llm.ErrProvider.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	if errors.Is(err, llm.ErrProvider) {
		return "upstream_provider"
	}
	return "internal"
}
