package leavepolicy

import (
	"errors"

	leavepolicyerrors "github.com/zepolnala/leave-management-system/internal/leavepolicy/errors"
	"github.com/zepolnala/leave-management-system/internal/shared/dberror"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leavepolicyerrors.ErrLeavePolicyNotFound
	}
	return dberror.MapTransient(err)
}
