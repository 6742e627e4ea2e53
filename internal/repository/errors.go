package repository

import (
	"errors"

	"github.com/lib/pq"
)

// pq unique_violation
const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err wraps a postgres unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}
