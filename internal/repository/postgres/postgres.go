package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"docvault/internal/apperr"
)

// Package postgres implements the repository interfaces with database/sql and
// parameterized queries. Driver-level errors are translated to the shared
// apperr kinds at this boundary.

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapErr translates driver errors into apperr kinds: unique violations become
// ErrConflict, broken foreign keys and missing rows become ErrNotFound.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case pgUniqueViolation:
			return apperr.ErrConflict
		case pgForeignKeyViolation:
			return apperr.ErrNotFound
		}
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
