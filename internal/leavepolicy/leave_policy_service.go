package leavepolicy

import (
	"context"
	"strconv"
	"time"

	leavepolicyerrors "github.com/zepolnala/leave-management-system/internal/leavepolicy/errors"
	organizationerrors "github.com/zepolnala/leave-management-system/internal/organization/errors"
	"github.com/zepolnala/leave-management-system/internal/shared/contextutil"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/leave_policy_service_mock.go -package=mock . Service
type Service interface {
	Create(ctx context.Context, req CreateLeavePolicyRequest) (LeavePolicyResponse, error)
	GetAll(ctx context.Context, organizationID uint64) ([]LeavePolicyResponse, error)
	GetByID(ctx context.Context, id uint64) (LeavePolicyResponse, error)
	Delete(ctx context.Context, id uint64) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger

	// listGroup collapses concurrent identical list reads. Nothing is kept
	// once the shared call returns.
	listGroup singleflight.Group
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavepolicy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavepolicy.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateLeavePolicyRequest) (LeavePolicyResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	leaveType := NormalizeLeaveType(req.LeaveType)
	if leaveType == "" {
		return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidLeaveType
	}
	if req.MaxDays == nil || *req.MaxDays < 0 {
		return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidMaxDays
	}
	if req.OrganizationID == 0 {
		return LeavePolicyResponse{}, organizationerrors.ErrInvalidOrganizationID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("create leave policy begin tx failed", zap.Error(tx.Error))
		return LeavePolicyResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.OrganizationExists(ctx, req.OrganizationID)
	if err != nil {
		log.Error("create leave policy organization check failed", zap.Error(err))
		return LeavePolicyResponse{}, mapRepositoryError(err)
	}
	if !exists {
		return LeavePolicyResponse{}, organizationerrors.ErrOrganizationNotFound
	}

	p := &LeavePolicy{
		OrganizationID: req.OrganizationID,
		LeaveType:      leaveType,
		MaxDays:        *req.MaxDays,
	}
	if err := qtx.Create(ctx, p); err != nil {
		log.Error("create leave policy persist failed", zap.Error(err))
		return LeavePolicyResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("create leave policy commit failed", zap.Error(err))
		return LeavePolicyResponse{}, mapRepositoryError(err)
	}

	log.Info("create leave policy success",
		zap.Uint64("leave_policy_id", p.ID),
		zap.String("leave_type", p.LeaveType),
	)
	return mapToResponse(*p), nil
}

func (s *service) GetAll(ctx context.Context, organizationID uint64) ([]LeavePolicyResponse, error) {
	key := strconv.FormatUint(organizationID, 10)
	v, err, _ := s.listGroup.Do(key, func() (any, error) {
		return s.repo.FindAll(ctx, organizationID)
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	policies := v.([]LeavePolicy)
	resp := make([]LeavePolicyResponse, len(policies))
	for i, p := range policies {
		resp[i] = mapToResponse(p)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id uint64) (LeavePolicyResponse, error) {
	if id == 0 {
		return LeavePolicyResponse{}, leavepolicyerrors.ErrInvalidLeavePolicyID
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeavePolicyResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*p), nil
}

func (s *service) Delete(ctx context.Context, id uint64) error {
	log := contextutil.GetLogger(ctx, s.logger)
	if id == 0 {
		return leavepolicyerrors.ErrInvalidLeavePolicyID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("delete leave policy begin tx failed", zap.Error(tx.Error))
		return tx.Error
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
		log.Warn("delete leave policy failed", zap.Uint64("leave_policy_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}
	if err := tx.Commit().Error; err != nil {
		log.Error("delete leave policy commit failed", zap.Uint64("leave_policy_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	log.Info("delete leave policy success", zap.Uint64("leave_policy_id", id))
	return nil
}

func mapToResponse(p LeavePolicy) LeavePolicyResponse {
	return LeavePolicyResponse{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		LeaveType:      p.LeaveType,
		MaxDays:        p.MaxDays,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
