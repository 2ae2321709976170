package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfeidau/sessionauth/internal/store"
)

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// mapPostgresError turns constraint violations on the users and user_sessions
// tables into store sentinels and labels the remaining failures by error class.
// Non-postgres errors pass through unchanged.
func mapPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if err == nil || !errors.As(err, &pgErr) {
		return err
	}

	code := pgErr.Code
	switch {
	case code == pgerrcode.UniqueViolation && (pgErr.ConstraintName == "users_email_key" || pgErr.ConstraintName == "users_pkey"):
		return store.ErrUserAlreadyExists
	case code == pgerrcode.ForeignKeyViolation:
		// session inserted for a user that doesn't exist
		return fmt.Errorf("%w: %s", store.ErrUserNotFound, pgErr.Detail)
	case code == pgerrcode.QueryCanceled:
		return fmt.Errorf("query canceled: %w", err)
	case pgerrcode.IsConnectionException(code):
		return fmt.Errorf("database connection error: %w", err)
	case pgerrcode.IsOperatorIntervention(code):
		return fmt.Errorf("database server unavailable: %w", err)
	case pgerrcode.IsInsufficientResources(code):
		return fmt.Errorf("database resource limit: %w", err)
	default:
		return fmt.Errorf("postgres error [%s]: %w", code, err)
	}
}
