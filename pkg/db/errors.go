package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
)

const pgUniqueViolation = "23505"

// sqliteUniqueMarker is how SQLite words the failure; the sqlite driver
// surfaces it as a plain string.
const sqliteUniqueMarker = "UNIQUE constraint failed"

// IsUniqueViolation reports whether err is a unique-constraint failure. A
// non-empty constraint must also match the Postgres constraint name, or
// appear in SQLite's "table.column" list.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	if pg, ok := pkgerrors.Postgres(err); ok {
		return pg.Code == pgUniqueViolation && (constraint == "" || pg.Constraint == constraint)
	}
	msg := err.Error()
	if !strings.Contains(msg, sqliteUniqueMarker) && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return false
	}
	return constraint == "" || strings.Contains(msg, constraint)
}

// IsNotFound reports whether err is GORM's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
