package security

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs security-relevant events with hashed identifiers
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// PipelineEvent describes one natural-language pipeline run.
type PipelineEvent struct {
	Action          string
	APIKey          string
	Intent          string
	GeneratedSQL    string
	RowCount        int
	Success         bool
	ErrorKind       string
	ExecutionTimeMs int64
}

// LogPipelineRun records a pipeline run. Action text and SQL are hashed, never logged raw.
func (a *AuditLogger) LogPipelineRun(e PipelineEvent) {
	if a == nil || !a.enabled {
		return
	}
	sqlHash := ""
	if e.GeneratedSQL != "" {
		sqlHash = hashStr(e.GeneratedSQL)[:16]
	}

	evt := log.Info().
		Str("event", "pipeline_audit").
		Str("action_hash", hashStr(e.Action)[:16]).
		Str("api_key_hash", hashStr(e.APIKey)[:16]).
		Str("intent", e.Intent).
		Str("sql_hash", sqlHash).
		Int("row_count", e.RowCount).
		Bool("success", e.Success).
		Int64("execution_time_ms", e.ExecutionTimeMs)

	if e.ErrorKind != "" {
		evt = evt.Str("error_kind", e.ErrorKind)
	}
	evt.Msg("audit")
}

// LogWrite records a CRUD mutation against the relational store.
func (a *AuditLogger) LogWrite(apiKey, table, op string, id int64, success bool) {
	if a == nil || !a.enabled {
		return
	}
	log.Info().
		Str("event", "write_audit").
		Str("api_key_hash", hashStr(apiKey)[:16]).
		Str("table", table).
		Str("op", op).
		Int64("id", id).
		Bool("success", success).
		Msg("audit")
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}
