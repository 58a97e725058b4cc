package user

import (
	"errors"

	"github.com/zepolnala/leave-management-system/internal/shared/dberror"
	usererrors "github.com/zepolnala/leave-management-system/internal/user/errors"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usererrors.ErrUserNotFound
	}
	if dberror.IsUniqueViolation(err, "uq_users_email") {
		return usererrors.ErrUserAlreadyExists
	}
	return dberror.MapTransient(err)
}
