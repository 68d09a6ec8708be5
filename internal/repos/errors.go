package repos

import (
	"database/sql"

	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("unique constraint violated")
	ErrForeignKey        = errors.New("foreign key constraint violated")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// classify maps driver errors onto the sentinels above using SQLite extended
// result codes. Other errors are wrapped with op.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errors.WithMessage(ErrDuplicate, op)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_TRIGGER:
			return errors.WithMessage(ErrForeignKey, op)
		}
	}
	return errors.Wrap(err, op)
}
