package leave

import (
	"time"

	leaveerrors "github.com/zepolnala/leave-management-system/internal/leave/errors"
)

// LeaveTypeVacation is the only leave type that draws on days_remaining.
const LeaveTypeVacation = "vacation"

const secondsPerDay = 24 * 60 * 60

// ComputeDuration returns the whole calendar days between start and end.
// Both dates are inclusive on the calendar but the ledger charges end - start,
// so 2024-01-01..2024-01-05 costs 4 days and a single-day request costs 0.
func ComputeDuration(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int((e.Unix() - s.Unix()) / secondsPerDay)
}

func IsAffordable(balance, days int) bool {
	return days <= balance
}

// Debit returns the balance after taking days. The balance is returned
// unchanged with ErrInsufficientBalance when days exceed it.
func Debit(balance, days int) (int, error) {
	if !IsAffordable(balance, days) {
		return balance, leaveerrors.ErrInsufficientBalance
	}
	return balance - days, nil
}

func IsBalanceBearing(leaveType string) bool {
	return leaveType == LeaveTypeVacation
}
