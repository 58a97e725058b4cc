package leave

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type LeaveRequest struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	UserID     uint64    `gorm:"not null;index"`
	PolicyID   uint64    `gorm:"not null;index"`
	LeaveType  string    `gorm:"type:varchar(100);not null"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	Status     Status    `gorm:"type:varchar(20);not null;default:pending"`
	ApproverID *uint64   `gorm:"index"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
