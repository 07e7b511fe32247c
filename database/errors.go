package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	SQLStateForeignKeyViolation = "23503"
	SQLStateUniqueViolation     = "23505"
)

// SQLState returns the postgres error code carried by err, or "" when err
// did not come from the server.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsForeignKeyViolation also accepts the error gorm produces when
// TranslateError is enabled on the session.
func IsForeignKeyViolation(err error) bool {
	return SQLState(err) == SQLStateForeignKeyViolation || errors.Is(err, gorm.ErrForeignKeyViolated)
}
