package store

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrConflict is returned when a conditional update lost against a
	// concurrent writer.
	ErrConflict = errors.New("store: conflicting update")

	// ErrNotAssigned is returned when a duty is not held by the given member.
	ErrNotAssigned = errors.New("store: duty not assigned to member")

	// ErrDuplicate is returned when an insert hits a uniqueness rule, such as
	// a second account for one email or a user joining a second room.
	ErrDuplicate = errors.New("store: duplicate")
)

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
