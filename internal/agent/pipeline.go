package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/personalai/assistant/internal/observability"
	"github.com/personalai/assistant/internal/security"
	"github.com/personalai/assistant/internal/store"
)

// Action is one caller request: free text plus optional named parameters.
type Action struct {
	Text       string
	Parameters map[string]any
	// Caller identifies the requester for audit logging only.
	Caller string
}

// Envelope is the pipeline result. Err is set whenever Error is, for status mapping.
type Envelope struct {
	OriginalQuery string         `json:"original_query"`
	Intent        Intent         `json:"intent,omitempty"`
	SQLQuery      string         `json:"sql_query"`
	Results       []store.Row    `json:"results"`
	Error         string         `json:"error,omitempty"`
	UserMessage   string         `json:"user_message,omitempty"`
	Appointments  any            `json:"appointments,omitempty"`
	Metadata      map[string]any `json:"metadata"`

	Err error `json:"-"`
}

// Executor runs a statement the Synthesizer has already validated.
type Executor interface {
	Execute(ctx context.Context, sql string) ([]store.Row, error)
}

// Pipeline sequences classification, synthesis, execution and summarization.
type Pipeline struct {
	classifier  *Classifier
	synthesizer *Synthesizer
	executor    Executor
	summarizer  *Summarizer
	calendar    *CalendarView
	audit       *security.AuditLogger
	schema      string
}

type PipelineConfig struct {
	Classifier  *Classifier
	Synthesizer *Synthesizer
	Executor    Executor
	Summarizer  *Summarizer
	Calendar    *CalendarView
	Audit       *security.AuditLogger
	// Schema defaults to SchemaDescription.
	Schema string
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	schema := cfg.Schema
	if schema == "" {
		schema = SchemaDescription
	}
	audit := cfg.Audit
	if audit == nil {
		audit = security.NewAuditLogger(false)
	}
	return &Pipeline{
		classifier:  cfg.Classifier,
		synthesizer: cfg.Synthesizer,
		executor:    cfg.Executor,
		summarizer:  cfg.Summarizer,
		calendar:    cfg.Calendar,
		audit:       audit,
		schema:      schema,
	}
}

// Run never returns an error: every stage failure is folded into the envelope.
//
//	Viewing  -> calendar view, no SQL
//	Booking  -> intent marker only
//	other    -> synthesize -> execute -> summarize
func (p *Pipeline) Run(ctx context.Context, action Action) *Envelope {
	start := time.Now()
	env := &Envelope{
		OriginalQuery: action.Text,
		Results:       []store.Row{},
		Metadata:      map[string]any{},
	}

	err := p.run(ctx, action, env)
	elapsed := time.Since(start)
	env.Metadata["execution_time_ms"] = elapsed.Milliseconds()

	if err != nil {
		env.Err = err
		env.Error = err.Error()
		env.Results = []store.Row{}
		env.UserMessage = ""
		env.Appointments = nil
		env.Metadata["error_kind"] = KindOf(err)
		log.Error().Err(err).
			Str("intent", string(env.Intent)).
			Str("error_kind", KindOf(err)).
			Msg("pipeline run failed")
	}

	observability.ObservePipelineRun(string(env.Intent), err == nil)
	p.audit.LogPipelineRun(security.PipelineEvent{
		Action:          action.Text,
		APIKey:          action.Caller,
		Intent:          string(env.Intent),
		GeneratedSQL:    env.SQLQuery,
		RowCount:        len(env.Results),
		Success:         err == nil,
		ErrorKind:       KindOf(err),
		ExecutionTimeMs: elapsed.Milliseconds(),
	})
	return env
}

func (p *Pipeline) run(ctx context.Context, action Action, env *Envelope) error {
	var intent Intent
	err := stage("classify", func() (err error) {
		intent, err = p.classifier.Classify(ctx, action.Text)
		return err
	})
	if err != nil {
		return err
	}
	env.Intent = intent
	env.Metadata["intent"] = string(intent)

	switch intent {
	case IntentViewing:
		if p.calendar == nil {
			return fmt.Errorf("%w: appointment viewing is not configured", ErrExecutionError)
		}
		return stage("calendar", func() (err error) {
			env.Appointments, err = p.calendar.Appointments(ctx)
			return err
		})
	case IntentBooking:
		return nil
	}

	var q GeneratedQuery
	err = stage("synthesize", func() (err error) {
		q, err = p.synthesizer.Synthesize(ctx, action.Text, p.schema)
		return err
	})
	env.SQLQuery = q.SQL
	if err != nil {
		if errors.Is(err, ErrForbiddenOperation) {
			observability.IncrementForbiddenQuery()
		}
		return err
	}

	var rows []store.Row
	err = stage("execute", func() (err error) {
		rows, err = p.executor.Execute(ctx, q.SQL)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutionError, err)
	}
	if rows == nil {
		rows = []store.Row{}
	}
	env.Results = rows
	env.Metadata["row_count"] = len(rows)

	return stage("summarize", func() (err error) {
		env.UserMessage, err = p.summarizer.Summarize(ctx, action.Text, rows)
		return err
	})
}

func stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	observability.ObserveStage(name, time.Since(start), err == nil)
	log.Debug().Str("stage", name).Dur("elapsed", time.Since(start)).Bool("ok", err == nil).Msg("pipeline stage")
	return err
}
