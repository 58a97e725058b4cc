package leavepolicy

import (
	"context"

	"github.com/zepolnala/leave-management-system/internal/tenant"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, p *LeavePolicy) error
	FindAll(ctx context.Context, organizationID uint64) ([]LeavePolicy, error)
	FindByID(ctx context.Context, id uint64) (*LeavePolicy, error)
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

func (r *repository) Create(ctx context.Context, p *LeavePolicy) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindAll(ctx context.Context, organizationID uint64) ([]LeavePolicy, error) {
	var policies []LeavePolicy
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		Order("id ASC").
		Find(&policies).Error
	return policies, err
}

func (r *repository) FindByID(ctx context.Context, id uint64) (*LeavePolicy, error) {
	var p LeavePolicy
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) OrganizationExists(ctx context.Context, organizationID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("organizations").
		Where("id = ?", organizationID).
		Count(&count).Error
	return count > 0, err
}

// Delete removes the policy and every leave request filed against it.
func (r *repository) Delete(ctx context.Context, id uint64) error {
	db := r.db.WithContext(ctx)

	if err := db.Exec("DELETE FROM leave_requests WHERE policy_id = ?", id).Error; err != nil {
		return err
	}

	res := db.Delete(&LeavePolicy{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
