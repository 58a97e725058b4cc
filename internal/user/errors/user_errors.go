package usererrors

import (
	"net/http"

	"github.com/zepolnala/leave-management-system/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrUserAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"User with the same email already exists",
		http.StatusConflict,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"Role must be employee or admin",
		http.StatusBadRequest,
	)

	ErrInvalidDaysRemaining = apperror.New(
		apperror.CodeInvalidInput,
		"days_remaining must not be negative",
		http.StatusBadRequest,
	)

	ErrMissingRequiredFields = apperror.New(
		apperror.CodeInvalidInput,
		"Missing required fields",
		http.StatusBadRequest,
	)
)
