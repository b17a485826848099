package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert collides with an existing key.
	ErrDuplicate = errors.New("record already exists")
	// ErrConflict is returned when a concurrent transaction raced the current one.
	// Callers may retry the whole unit of work.
	ErrConflict = errors.New("concurrent modification")
)

// classifyError maps driver errors onto the package sentinels.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return ErrConflict
		case "23505":
			return ErrDuplicate
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return ErrConflict
		case sqlite3.ErrConstraint:
			if liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
				return ErrDuplicate
			}
		}
	}
	return err
}

// wrapError keeps the driver message while exposing the sentinel to errors.Is.
func wrapError(err error) error {
	classified := classifyError(err)
	if classified == nil || classified == err {
		return err
	}
	return &repoError{sentinel: classified, cause: err}
}

type repoError struct {
	sentinel error
	cause    error
}

func (e *repoError) Error() string { return e.sentinel.Error() + ": " + e.cause.Error() }

func (e *repoError) Is(target error) bool { return target == e.sentinel }

func (e *repoError) Unwrap() error { return e.cause }
