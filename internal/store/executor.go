package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Row is one result record keyed by column name.
type Row = map[string]any

type ExecutorOptions struct {
	// ReadOnly runs every statement inside a READ ONLY transaction.
	ReadOnly bool
	Timeout  time.Duration
}

// Executor runs already-validated SQL text against the store. It performs no
// validation of its own.
type Executor struct {
	db   *sql.DB
	opts ExecutorOptions
}

func NewExecutor(db *sql.DB, opts ExecutorOptions) *Executor {
	return &Executor{db: db, opts: opts}
}

// Execute runs query in a single transaction and returns every row it produced.
func (e *Executor) Execute(ctx context.Context, query string) ([]Row, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	tx, err := e.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: e.opts.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	result, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02T15:04:05")
	default:
		return val
	}
}
