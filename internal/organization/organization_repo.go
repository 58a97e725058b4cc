package organization

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, org *Organization) error
	FindAll(ctx context.Context) ([]Organization, error)
	FindByID(ctx context.Context, id uint64) (*Organization, error)
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

func (r *repository) Create(ctx context.Context, org *Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Organization, error) {
	var orgs []Organization
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&orgs).Error
	return orgs, err
}

func (r *repository) FindByID(ctx context.Context, id uint64) (*Organization, error) {
	var org Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	return &org, err
}

// Delete removes the organization together with its users, policies and every
// leave request that hangs off them. Requests elsewhere that were adjudicated
// by one of the removed users keep existing with the approver cleared.
// Callers run it inside a transaction.
func (r *repository) Delete(ctx context.Context, id uint64) error {
	db := r.db.WithContext(ctx)

	steps := []struct {
		sql  string
		args []any
	}{
		{
			sql:  "UPDATE leave_requests SET approver_id = NULL WHERE approver_id IN (SELECT id FROM users WHERE organization_id = ?)",
			args: []any{id},
		},
		{
			sql: "DELETE FROM leave_requests WHERE user_id IN (SELECT id FROM users WHERE organization_id = ?)" +
				" OR policy_id IN (SELECT id FROM leave_policies WHERE organization_id = ?)",
			args: []any{id, id},
		},
		{sql: "DELETE FROM leave_policies WHERE organization_id = ?", args: []any{id}},
		{sql: "DELETE FROM users WHERE organization_id = ?", args: []any{id}},
	}
	for _, step := range steps {
		if err := db.Exec(step.sql, step.args...).Error; err != nil {
			return err
		}
	}

	res := db.Delete(&Organization{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
