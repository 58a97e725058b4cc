package user

import "time"

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// DefaultDaysRemaining is the leave balance a user starts with when the
// creator does not supply one.
const DefaultDaysRemaining = 23

type User struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	OrganizationID uint64    `gorm:"not null;index:idx_users_organization"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email"`
	Role           Role      `gorm:"type:varchar(20);not null"`
	DaysRemaining  int       `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
