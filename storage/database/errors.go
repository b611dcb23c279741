package database

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// Postgres error codes of interest.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// trapErr translates driver errors into the core error taxonomy so handlers
// can map them to proper statuses: no rows -> notFound, unique violation ->
// conflict, FK violation -> a field-level validation error.
func trapErr(err error, notFound error, conflict error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			if usrErr := userKeyConflict(pqErr); usrErr != nil {
				return usrErr
			}
			if conflict != nil {
				return conflict
			}
		case pqForeignKeyViolation:
			return core.NewValidationError(
				errors.New("related record not found"),
				core.FieldError{Field: pqErr.Column, Error: "related record not found"},
			)
		}
	}
	return err
}

// userKeyConflict maps unique violations on the users table keys to account
// conflicts. Multi-step onboarding flows insert the user row alongside their
// own entity row; a collision on a users key must never be reported as an
// entity-key conflict.
func userKeyConflict(pqErr *pq.Error) error {
	if !strings.HasPrefix(pqErr.Constraint, "users_") {
		return nil
	}
	switch {
	case strings.Contains(pqErr.Constraint, "username"):
		return user.ErrUsernameExists
	case strings.Contains(pqErr.Constraint, "email"):
		return user.ErrEmailExists
	}
	return nil
}
