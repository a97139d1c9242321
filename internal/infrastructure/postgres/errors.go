package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// validID reports whether id can be compared against a uuid column.
// Malformed ids are treated as absent rows rather than query errors.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
