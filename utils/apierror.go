package utils

import (
	"errors"
	"strings"
)

// Request-scoped error taxonomy. Every error is fatal to the request only;
// nothing here is process-fatal.
var (
	// ErrNotFound means a referenced entity is absent
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden means the caller is neither owner nor admin
	ErrForbidden = errors.New("not authorized")
	// ErrInvalidState means an illegal lifecycle transition was requested
	ErrInvalidState = errors.New("invalid state for this operation")
	// ErrConflict means a uniqueness or concurrent-update conflict
	ErrConflict = errors.New("conflict")
)

// IsDuplicateKeyError detects unique-constraint violations from the database.
// String matching keeps it portable across PostgreSQL and SQLite.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
