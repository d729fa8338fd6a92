package implementation

import (
	"errors"
	"strings"

	"uny-compass-be/internal/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// sqlite (local runs and tests) reports constraint names in the message only
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translateWriteError turns unique-index violations into conflicts and leaves everything else alone.
func translateWriteError(err error, conflictMessage string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return apperror.Wrap(apperror.KindConflict, conflictMessage, err)
	}
	return err
}
