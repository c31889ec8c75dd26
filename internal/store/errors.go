package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSlotUnavailable = errors.New("slot is not available")
	// ErrConstraint covers integrity violations (SQLSTATE class 23): unknown
	// foreign keys, check constraints, duplicate keys.
	ErrConstraint = errors.New("constraint violation")
)

// translate maps driver errors onto the store's sentinels.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return fmt.Errorf("%w: %s", ErrConstraint, pgErr.Message)
	}
	return err
}
