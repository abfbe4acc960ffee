package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories translate into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Constraint names declared in the migrations.
const (
	constraintUsersEmail       = "users_email_key"
	constraintBookingsPair     = "bookings_user_event_key"
	constraintBookingsEventRef = "bookings_event_fk"
	constraintBookingsUserRef  = "bookings_user_fk"
)

// violation reports the SQLSTATE and constraint name of a constraint error.
func violation(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	return pgErr.Code, pgErr.ConstraintName, true
}

func isUniqueViolation(err error, constraint string) bool {
	code, name, ok := violation(err)
	return ok && code == codeUniqueViolation && name == constraint
}

func isForeignKeyViolation(err error, constraint string) bool {
	code, name, ok := violation(err)
	return ok && code == codeForeignKeyViolation && name == constraint
}
