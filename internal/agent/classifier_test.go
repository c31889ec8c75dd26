package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personalai/assistant/internal/llm"
)

func fixedReply(reply string) llm.Generator {
	return llm.GeneratorFunc(func(context.Context, llm.Prompt, llm.Bindings) (string, error) {
		return reply, nil
	})
}

func TestClassifyParsesModelLabel(t *testing.T) {
	tests := []struct {
		reply string
		want  Intent
	}{
		{"Viewing", IntentViewing},
		{"  booking\n", IntentBooking},
		{"'Querying Employee Data'", IntentQueryingEmployeeData},
		{"Intent: Unrelated.", IntentUnrelated},
		{"3. Querying Employee Data", IntentQueryingEmployeeData},
		{"I think it's about the weather", IntentUnrelated},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			c := NewClassifier(fixedReply(tt.reply), DefaultOverrides())
			got, err := c.Classify(context.Background(), "what's the capital of France")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyKeywordOverrideBeatsModel(t *testing.T) {
	actions := []string{
		"show me Artem's schedule",
		"How many EMPLOYEES are there",
		"who is at Work on Friday",
		"book something for the SCHEDULED review",
		"employee count please",
	}
	for _, label := range []string{"Viewing", "Booking", "Unrelated", "nonsense"} {
		c := NewClassifier(fixedReply(label), DefaultOverrides())
		for _, action := range actions {
			got, err := c.Classify(context.Background(), action)
			require.NoError(t, err)
			assert.Equal(t, IntentQueryingEmployeeData, got, "label %q action %q", label, action)
		}
	}
}

func TestClassifyWithoutKeywordKeepsModelLabel(t *testing.T) {
	c := NewClassifier(fixedReply("Viewing"), DefaultOverrides())
	got, err := c.Classify(context.Background(), "show me tomorrow's appointments")
	require.NoError(t, err)
	assert.Equal(t, IntentViewing, got)
}

func TestClassifySendsActionToModel(t *testing.T) {
	var seen llm.Bindings
	var prompt llm.Prompt
	gen := llm.GeneratorFunc(func(_ context.Context, p llm.Prompt, b llm.Bindings) (string, error) {
		prompt, seen = p, b
		return "Booking", nil
	})
	_, err := NewClassifier(gen, nil).Classify(context.Background(), "I want to book an appointment")
	require.NoError(t, err)
	assert.Equal(t, IntentPrompt, prompt)
	assert.Equal(t, "I want to book an appointment", seen["action"])
}

func TestClassifyModelFailureIsFatal(t *testing.T) {
	gen := llm.GeneratorFunc(func(context.Context, llm.Prompt, llm.Bindings) (string, error) {
		return "", llm.ErrProvider
	})
	_, err := NewClassifier(gen, DefaultOverrides()).Classify(context.Background(), "show me Artem's schedule")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClassificationFailure))
	assert.True(t, errors.Is(err, llm.ErrProvider))
}

func TestOverridesAreOrderIndependent(t *testing.T) {
	a := KeywordOverride("meeting", IntentViewing)
	b := KeywordOverride("book", IntentBooking)
	c := KeywordOverride("schedule", IntentQueryingEmployeeData)

	action := "book a meeting"
	for _, set := range [][]Override{{a, b}, {b, a}, {a, b, c}, {c, b, a}} {
		assert.Equal(t, IntentUnrelated, applyOverrides(set, action, IntentUnrelated),
			"conflicting overrides must leave the model label")
	}
	for _, set := range [][]Override{{a, c}, {c, a}} {
		assert.Equal(t, IntentViewing, applyOverrides(set, "Team MEETING", IntentBooking))
	}
}
