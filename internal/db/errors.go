package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a requested record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when attempting to insert a duplicate record.
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

// WrapError wraps database errors with operation context and maps them to
// the sentinel error types above.
func WrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", operation, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w (constraint: %s)", operation, ErrDuplicateKey, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w (constraint: %s)", operation, ErrForeignKeyViolation, pgErr.ConstraintName)
		default:
			return fmt.Errorf("%s: database error [%s]: %w", operation, pgErr.Code, err)
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}

// IsNotFound returns true if the error is an ErrNotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateKey returns true if the error is an ErrDuplicateKey error.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsForeignKeyViolation returns true if the error is an ErrForeignKeyViolation error.
func IsForeignKeyViolation(err error) bool {
	return errors.Is(err, ErrForeignKeyViolation)
}
