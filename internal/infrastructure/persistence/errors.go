package persistence

import (
	"errors"
	"strings"

	"github.com/erp/salesengine/internal/domain/shared"
	"gorm.io/gorm"
)

// errConcurrentModification is returned when an optimistic version check matches no row
var errConcurrentModification = shared.NewConflictError("CONCURRENT_MODIFICATION",
	"Record was modified by another transaction")

// isUniqueViolation reports whether err is a storage uniqueness violation.
// TranslateError covers both drivers; the text checks catch errors raised
// where gorm's translation does not run, such as raw statements.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// translateWriteError maps a uniqueness violation to shared.ErrAlreadyExists,
// keeping the driver error as the cause
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return shared.ErrAlreadyExists.Wrap(err)
	}
	return err
}

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
