package leavepolicyerrors

import (
	"net/http"

	"github.com/zepolnala/leave-management-system/internal/shared/apperror"
)

var (
	ErrLeavePolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave policy not found",
		http.StatusNotFound,
	)

	ErrInvalidLeavePolicyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave policy ID",
		http.StatusBadRequest,
	)

	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type is required",
		http.StatusBadRequest,
	)

	ErrInvalidMaxDays = apperror.New(
		apperror.CodeInvalidInput,
		"max_days must not be negative",
		http.StatusBadRequest,
	)
)
