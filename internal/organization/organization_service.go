package organization

import (
	"context"
	"strings"
	"time"

	organizationerrors "github.com/zepolnala/leave-management-system/internal/organization/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/organization_service_mock.go -package=mock . Service
type Service interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (OrganizationResponse, error)
	GetAll(ctx context.Context) ([]OrganizationResponse, error)
	GetByID(ctx context.Context, id uint64) (OrganizationResponse, error)
	Delete(ctx context.Context, id uint64) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("organization.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("organization.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateOrganizationRequest) (OrganizationResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return OrganizationResponse{}, organizationerrors.ErrInvalidName
	}

	org := &Organization{Name: name}
	if err := s.repo.Create(ctx, org); err != nil {
		s.logger.Warn("create organization persist failed", zap.String("name", name), zap.Error(err))
		return OrganizationResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create organization success", zap.Uint64("organization_id", org.ID))
	return mapToResponse(*org), nil
}

func (s *service) GetAll(ctx context.Context) ([]OrganizationResponse, error) {
	orgs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	resp := make([]OrganizationResponse, len(orgs))
	for i, o := range orgs {
		resp[i] = mapToResponse(o)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id uint64) (OrganizationResponse, error) {
	if id == 0 {
		return OrganizationResponse{}, organizationerrors.ErrInvalidOrganizationID
	}

	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return OrganizationResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*org), nil
}

func (s *service) Delete(ctx context.Context, id uint64) error {
	if id == 0 {
		return organizationerrors.ErrInvalidOrganizationID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("delete organization begin tx failed", zap.Error(tx.Error))
		return tx.Error
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
		s.logger.Warn("delete organization failed", zap.Uint64("organization_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("delete organization commit failed", zap.Uint64("organization_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	s.logger.Info("delete organization success", zap.Uint64("organization_id", id))
	return nil
}

func mapToResponse(o Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
