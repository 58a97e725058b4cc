package dberror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/zepolnala/leave-management-system/internal/shared/apperror"
	"gorm.io/gorm"
)

// SQLSTATE codes that mean "try again", not "your input is wrong".
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// IsUniqueViolation reports whether err is a duplicate-key failure. When the
// driver exposes the constraint name it must equal constraint.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation &&
			(pgErr.ConstraintName == "" || pgErr.ConstraintName == constraint)
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		(strings.Contains(msg, "duplicate key value") && strings.Contains(msg, constraint))
}

// IsTransient reports lock and serialization failures raised while two
// transactions contend for the same row.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
		return false
	}

	return strings.Contains(strings.ToLower(err.Error()), "database is locked")
}

// MapTransient wraps contention failures into a retryable Conflict and
// returns every other error untouched.
func MapTransient(err error) error {
	if IsTransient(err) {
		return apperror.Wrap(err, apperror.CodeConflict, apperror.ErrConflict.Message, http.StatusConflict)
	}
	return err
}
