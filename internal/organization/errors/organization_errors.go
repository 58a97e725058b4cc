package organizationerrors

import (
	"net/http"

	"github.com/zepolnala/leave-management-system/internal/shared/apperror"
)

var (
	ErrOrganizationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Organization not found",
		http.StatusNotFound,
	)

	ErrOrganizationAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Organization with the same name already exists",
		http.StatusConflict,
	)

	ErrInvalidOrganizationID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid organization ID",
		http.StatusBadRequest,
	)

	ErrInvalidName = apperror.New(
		apperror.CodeInvalidInput,
		"Organization name must not be blank",
		http.StatusBadRequest,
	)
)
