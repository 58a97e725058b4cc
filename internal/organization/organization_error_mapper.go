package organization

import (
	"errors"

	organizationerrors "github.com/zepolnala/leave-management-system/internal/organization/errors"
	"github.com/zepolnala/leave-management-system/internal/shared/dberror"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return organizationerrors.ErrOrganizationNotFound
	}
	if dberror.IsUniqueViolation(err, "uq_organizations_name") {
		return organizationerrors.ErrOrganizationAlreadyExists
	}
	return dberror.MapTransient(err)
}
