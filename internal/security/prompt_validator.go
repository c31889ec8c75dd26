package security

import (
	"fmt"
	"regexp"
	"strings"
)

// injectionPatterns catch attempts to steer the model away from its instructions.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)override\s+(all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)new\s+context\s*:`),
	regexp.MustCompile(`(?i)change\s+context\s*:`),
	regexp.MustCompile(`(?i)instead\s+of\s+the\s+above`),
}

// PromptValidator validates action text before it reaches the model.
type PromptValidator struct {
	maxLength int
}

func NewPromptValidator(maxLength int) *PromptValidator {
	if maxLength <= 0 {
		maxLength = 2000
	}
	return &PromptValidator{maxLength: maxLength}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks an action for length and injection phrasing.
func (v *PromptValidator) Validate(action string) ValidationResult {
	if strings.TrimSpace(action) == "" {
		return ValidationResult{Valid: false, Message: "action cannot be empty"}
	}

	if len(action) > v.maxLength {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("action too long: %d chars (max %d)", len(action), v.maxLength),
		}
	}

	for _, pattern := range injectionPatterns {
		if pattern.MatchString(action) {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("prompt injection pattern detected: %s", pattern.String()),
			}
		}
	}

	return ValidationResult{Valid: true, Message: "ok"}
}
