package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/personalai/assistant/internal/llm"
)

// Intent is the classification of an action.
type Intent string

const (
	IntentViewing              Intent = "viewing"
	IntentBooking              Intent = "booking"
	IntentQueryingEmployeeData Intent = "querying employee data"
	IntentUnrelated            Intent = "unrelated"
)

var intentLabels = map[string]Intent{
	"viewing":                IntentViewing,
	"booking":                IntentBooking,
	"querying employee data": IntentQueryingEmployeeData,
	"querying_employee_data": IntentQueryingEmployeeData,
	"queryingemployeedata":   IntentQueryingEmployeeData,
	"employee data":          IntentQueryingEmployeeData,
	"unrelated":              IntentUnrelated,
}

// Override forces an intent when Match reports true for the lower-cased action.
type Override struct {
	Name   string
	Intent Intent
	Match  func(action string) bool
}

// KeywordOverride matches when the action contains keyword.
func KeywordOverride(keyword string, intent Intent) Override {
	kw := strings.ToLower(keyword)
	return Override{
		Name:   "keyword:" + kw,
		Intent: intent,
		Match:  func(action string) bool { return strings.Contains(action, kw) },
	}
}

// DefaultOverrides sends any action mentioning schedules, employees or work
// down the employee-data path regardless of the model label.
func DefaultOverrides() []Override {
	return []Override{
		KeywordOverride("schedule", IntentQueryingEmployeeData),
		KeywordOverride("employee", IntentQueryingEmployeeData),
		KeywordOverride("work", IntentQueryingEmployeeData),
	}
}

// Classifier asks the model for an intent label, then applies overrides.
type Classifier struct {
	gen       llm.Generator
	overrides []Override
}

func NewClassifier(gen llm.Generator, overrides []Override) *Classifier {
	return &Classifier{gen: gen, overrides: overrides}
}

// Classify returns the intent of action. A model failure is fatal; there is no
// default label.
func (c *Classifier) Classify(ctx context.Context, action string) (Intent, error) {
	reply, err := c.gen.Generate(ctx, IntentPrompt, llm.Bindings{"action": action})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrClassificationFailure, err)
	}

	modelIntent := parseIntent(reply)
	intent := applyOverrides(c.overrides, action, modelIntent)

	log.Debug().
		Str("model_label", strings.TrimSpace(reply)).
		Str("model_intent", string(modelIntent)).
		Str("intent", string(intent)).
		Msg("action classified")
	return intent, nil
}

// parseIntent normalizes a model reply to an Intent. Unknown labels are Unrelated.
func parseIntent(reply string) Intent {
	label := strings.ToLower(strings.TrimSpace(reply))
	label = strings.TrimPrefix(label, "intent:")
	label = strings.Trim(label, " \t\r\n'\"`.!*")
	if i, ok := intentLabels[label]; ok {
		return i
	}
	for _, prefix := range []string{"1.", "2.", "3.", "4."} {
		if rest, ok := strings.CutPrefix(label, prefix); ok {
			if i, ok := intentLabels[strings.TrimSpace(rest)]; ok {
				return i
			}
		}
	}
	return IntentUnrelated
}

// applyOverrides returns the single intent every matching override agrees on.
// No match, or disagreeing matches, leave the model intent in place.
func applyOverrides(overrides []Override, action string, modelIntent Intent) Intent {
	lower := strings.ToLower(action)
	var forced Intent
	for _, o := range overrides {
		if !o.Match(lower) {
			continue
		}
		if forced != "" && forced != o.Intent {
			log.Warn().Str("override", o.Name).Msg("conflicting intent overrides, keeping model label")
			return modelIntent
		}
		forced = o.Intent
	}
	if forced == "" {
		return modelIntent
	}
	return forced
}
