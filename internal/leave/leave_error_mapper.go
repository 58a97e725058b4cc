package leave

import (
	"errors"

	leaveerrors "github.com/zepolnala/leave-management-system/internal/leave/errors"
	"github.com/zepolnala/leave-management-system/internal/shared/dberror"
	"gorm.io/gorm"
)

// mapRepositoryError translates a failure on the leave_requests table.
// Lookups of users and policies map their own not-found errors at the call
// site so the caller learns which reference was missing.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveRequestNotFound
	}
	return dberror.MapTransient(err)
}

func mapLookupError(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return dberror.MapTransient(err)
}
