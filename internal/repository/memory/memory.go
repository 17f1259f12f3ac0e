// Package memory provides in-process implementations of the repository
// interfaces. They back the service when no database is configured and are
// the fakes used by service and handler tests.
//
// Missing rows are reported as pgx.ErrNoRows and duplicate keys as a
// pgconn.PgError with code 23505 so callers observe the same errors as with
// Postgres.
package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Clock returns the time stamped on created and updated rows.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

func newID() string {
	return uuid.NewString()
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
