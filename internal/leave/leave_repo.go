package leave

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindByID(ctx context.Context, id uint64) (*LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (*LeaveRequest, error)
	UpdateStatus(ctx context.Context, l *LeaveRequest) error
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindByID(ctx context.Context, id uint64) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uint64) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	return &l, err
}

// UpdateStatus writes status and approver_id only. Dates, type and owner are
// fixed once the request exists.
func (r *repository) UpdateStatus(ctx context.Context, l *LeaveRequest) error {
	res := r.db.WithContext(ctx).
		Model(l).
		Select("status", "approver_id", "updated_at").
		Updates(l)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
