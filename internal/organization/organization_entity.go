package organization

import "time"

type Organization struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_organizations_name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
}

func (Organization) TableName() string {
	return "organizations"
}
