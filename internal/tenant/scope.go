package tenant

import "gorm.io/gorm"

// Scope limits a query to one organization. Zero leaves the query unscoped so
// list endpoints can serve both filtered and global reads.
func Scope(organizationID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if organizationID == 0 {
			return db
		}
		return db.Where("organization_id = ?", organizationID)
	}
}
