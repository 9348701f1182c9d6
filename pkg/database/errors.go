package database

import (
	"strings"

	"github.com/lib/pq"

	"github.com/trackshelf/trackshelf-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError.
// Returns nil if err is not a *pq.Error or the code is not mapped.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	case "23514": // check_violation
		return mapCheckConstraint(pqErr)
	case "23505": // unique_violation
		return errors.Conflict("a record with these values already exists")
	case "23503": // foreign_key_violation
		return errors.BadRequest("referenced record does not exist")
	case "23502": // not_null_violation
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{col: "must not be empty"})
	default:
		return nil
	}
}

func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	c := pqErr.Constraint
	switch {
	case strings.Contains(c, "quantity"):
		return errors.Validation(map[string]string{"quantity": "must be at least 1"})
	case strings.Contains(c, "name"):
		return errors.Validation(map[string]string{"name": "must not be empty"})
	case strings.Contains(c, "soon_days"), strings.Contains(c, "grace"):
		return errors.Validation(map[string]string{"thresholds": "out of range"})
	default:
		return errors.BadRequest("data validation failed: " + c)
	}
}
