package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personalai/assistant/internal/llm"
	"github.com/personalai/assistant/internal/security"
)

func TestExtractStatement(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "sql fence",
			reply: "Here you go:\n```sql\nSELECT id, name FROM departments;\n```\nEnjoy.",
			want:  "SELECT id, name FROM departments;",
		},
		{
			name:  "sql fence upper-case label",
			reply: "```SQL\n  SELECT 1\n```",
			want:  "SELECT 1",
		},
		{
			name:  "sql fence wins over earlier generic fence",
			reply: "```\nnot this\n```\n```sql\nSELECT name FROM employees\n```",
			want:  "SELECT name FROM employees",
		},
		{
			name:  "generic fence",
			reply: "Query:\n```\n  SELECT * FROM schedules  \n```",
			want:  "SELECT * FROM schedules",
		},
		{
			name:  "no fence",
			reply: "   SELECT count(*) FROM employees   \n",
			want:  "SELECT count(*) FROM employees",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractStatement(tt.reply))
		})
	}
}

func TestSynthesizeBindsSchemaAndAction(t *testing.T) {
	var got llm.Bindings
	gen := llm.GeneratorFunc(func(_ context.Context, p llm.Prompt, b llm.Bindings) (string, error) {
		assert.Equal(t, SQLPrompt, p)
		got = b
		return "```sql\nSELECT id, name FROM departments\n```", nil
	})
	s := NewSynthesizer(gen, security.NewSQLGuard(false))

	q, err := s.Synthesize(context.Background(), "list departments", SchemaDescription)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM departments", q.SQL)
	assert.Equal(t, "list departments", q.Action)
	assert.Equal(t, SchemaDescription, got["schemas"])
	assert.Equal(t, "list departments", got["action"])
}

func TestSynthesizeRejectsForbiddenVerbs(t *testing.T) {
	replies := []string{
		"```sql\nDELETE FROM employees\n```",
		"```\ndrop table departments\n```",
		"ALTER TABLE employees ADD COLUMN x INT",
		"```sql\nSELECT * FROM employees; Remove everything\n```",
	}
	for _, reply := range replies {
		s := NewSynthesizer(fixedReply(reply), security.NewSQLGuard(false))
		_, err := s.Synthesize(context.Background(), "do it", SchemaDescription)
		require.Error(t, err, reply)
		assert.True(t, errors.Is(err, ErrForbiddenOperation), "reply %q: %v", reply, err)
		assert.Equal(t, "forbidden_operation", KindOf(err))
	}
}

func TestSynthesizeForbiddenMessage(t *testing.T) {
	s := NewSynthesizer(fixedReply("```sql\nDELETE FROM employees\n```"), security.NewSQLGuard(false))
	q, err := s.Synthesize(context.Background(), "delete everyone", SchemaDescription)
	require.Error(t, err)
	assert.Equal(t, `forbidden operation "delete" in generated query`, err.Error())
	assert.Equal(t, "DELETE FROM employees", q.SQL)
}

func TestSynthesizeChecksOnlyExtractedStatement(t *testing.T) {
	reply := "I will not delete anything.\n```sql\nSELECT name FROM employees\n```"
	s := NewSynthesizer(fixedReply(reply), security.NewSQLGuard(false))
	q, err := s.Synthesize(context.Background(), "names", SchemaDescription)
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM employees", q.SQL)
}

func TestSynthesizeGenerationFailures(t *testing.T) {
	failing := llm.GeneratorFunc(func(context.Context, llm.Prompt, llm.Bindings) (string, error) {
		return "", llm.ErrProvider
	})
	_, err := NewSynthesizer(failing, security.NewSQLGuard(false)).Synthesize(context.Background(), "x", SchemaDescription)
	assert.True(t, errors.Is(err, ErrGenerationFailure))

	_, err = NewSynthesizer(fixedReply("```sql\n\n```"), security.NewSQLGuard(false)).Synthesize(context.Background(), "x", SchemaDescription)
	assert.True(t, errors.Is(err, ErrGenerationFailure))
}
