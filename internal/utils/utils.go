package utils

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsPGCheckViolation reports whether error is a PostgreSQL check constraint violation (code 23514).
func IsPGCheckViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23514"
	}
	return false
}
