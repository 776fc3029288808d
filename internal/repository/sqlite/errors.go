package sqlite

import (
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func constraintError(err error) (*msqlite.Error, bool) {
	var serr *msqlite.Error
	if !errors.As(err, &serr) {
		return nil, false
	}
	return serr, serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

func isUniqueViolation(err error) bool {
	serr, ok := constraintError(err)
	if !ok {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return strings.Contains(serr.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	serr, ok := constraintError(err)
	if !ok {
		return false
	}
	return serr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
		strings.Contains(serr.Error(), "FOREIGN KEY constraint failed")
}
