package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"food-delivery-Orurh/internal/apperr"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// IsDuplicate - signals that the error is a duplicate key violation.
func IsDuplicate(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsNotFound - signals that the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsTransient - signals that retrying the transaction may succeed.
func IsTransient(err error) bool {
	return hasCode(err, codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable)
}

func hasCode(err error, codes ...string) bool {
	var pgerr *pgconn.PgError
	if !errors.As(err, &pgerr) {
		return false
	}
	for _, c := range codes {
		if pgerr.Code == c {
			return true
		}
	}
	return false
}

// classify attaches the matching apperr sentinel so callers can branch with errors.Is.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsDuplicate(err):
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrDuplicateRequest, err)
	case IsTransient(err):
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrTransient, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
