package leaveerrors

import (
	"net/http"

	"github.com/zepolnala/leave-management-system/internal/shared/apperror"
)

var (
	ErrInvalidLeaveRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"user_id is required",
		http.StatusBadRequest,
	)
	ErrInvalidPolicyID = apperror.New(
		apperror.CodeInvalidInput,
		"policy_id is required",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type is required",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrLeaveTypeMismatch = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type does not match the leave policy",
		http.StatusBadRequest,
	)
	ErrLeaveRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrPolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave policy not found",
		http.StatusNotFound,
	)
	ErrApproverNotFound = apperror.New(
		apperror.CodeNotFound,
		"approver not found",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"status must be approved or rejected",
		http.StatusBadRequest,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"leave request has already been adjudicated",
		http.StatusConflict,
	)
)
