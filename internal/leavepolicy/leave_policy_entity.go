package leavepolicy

import (
	"strings"
	"time"
)

type LeavePolicy struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	OrganizationID uint64    `gorm:"not null;index"`
	LeaveType      string    `gorm:"type:varchar(100);not null"`
	MaxDays        int       `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime"`
}

func (LeavePolicy) TableName() string {
	return "leave_policies"
}

// NormalizeLeaveType is the canonical form stored on policies and requests.
func NormalizeLeaveType(leaveType string) string {
	return strings.ToLower(strings.TrimSpace(leaveType))
}
