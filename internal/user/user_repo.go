package user

import (
	"context"

	"github.com/zepolnala/leave-management-system/internal/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, u *User) error
	FindAll(ctx context.Context, organizationID uint64) ([]User, error)
	FindByID(ctx context.Context, id uint64) (*User, error)
	// FindByIDForUpdate reads the user and holds a row lock until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint64) (*User, error)
	UpdateDaysRemaining(ctx context.Context, id uint64, daysRemaining int) error
	OrganizationExists(ctx context.Context, organizationID uint64) (bool, error)
	Delete(ctx context.Context, id uint64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindAll(ctx context.Context, organizationID uint64) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) FindByID(ctx context.Context, id uint64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uint64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) UpdateDaysRemaining(ctx context.Context, id uint64, daysRemaining int) error {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("days_remaining", daysRemaining)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) OrganizationExists(ctx context.Context, organizationID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("organizations").
		Where("id = ?", organizationID).
		Count(&count).Error
	return count > 0, err
}

// Delete removes the user and the leave requests it submitted. Requests it
// adjudicated for other users stay, with approver_id cleared.
func (r *repository) Delete(ctx context.Context, id uint64) error {
	db := r.db.WithContext(ctx)

	if err := db.Exec("UPDATE leave_requests SET approver_id = NULL WHERE approver_id = ?", id).Error; err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM leave_requests WHERE user_id = ?", id).Error; err != nil {
		return err
	}

	res := db.Delete(&User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
