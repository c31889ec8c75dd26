package security

import (
	"fmt"
	"strings"
)

// ForbiddenVerbs are rejected anywhere in a generated statement, case-insensitively.
var ForbiddenVerbs = []string{"delete", "remove", "drop", "alter"}

// ForbiddenError reports the denylisted verb found in a statement.
type ForbiddenError struct {
	Verb string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("generated query contains forbidden operation %q", e.Verb)
}

// SQLGuard rejects known-destructive statements before execution.
//
// The denylist is a plain substring filter, not a parser: it also rejects
// harmless text such as a column named "removed_at", and it cannot catch
// obfuscated or multi-statement injections. Set RequireSelect to additionally
// allow only statements that start with SELECT or WITH.
type SQLGuard struct {
	verbs         []string
	RequireSelect bool
}

func NewSQLGuard(requireSelect bool) *SQLGuard {
	return &SQLGuard{verbs: ForbiddenVerbs, RequireSelect: requireSelect}
}

// Check returns nil when sql may be executed.
func (g *SQLGuard) Check(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("SQL cannot be empty")
	}

	lower := strings.ToLower(trimmed)
	for _, verb := range g.verbs {
		if strings.Contains(lower, verb) {
			return &ForbiddenError{Verb: verb}
		}
	}

	if g.RequireSelect && !strings.HasPrefix(lower, "select") && !strings.HasPrefix(lower, "with") {
		return &ForbiddenError{Verb: firstWord(lower)}
	}
	return nil
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}
