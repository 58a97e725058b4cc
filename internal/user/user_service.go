package user

import (
	"context"
	"strings"
	"time"

	organizationerrors "github.com/zepolnala/leave-management-system/internal/organization/errors"
	"github.com/zepolnala/leave-management-system/internal/shared/contextutil"
	usererrors "github.com/zepolnala/leave-management-system/internal/user/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/user_service_mock.go -package=mock . Service
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	GetAll(ctx context.Context, organizationID uint64) ([]UserResponse, error)
	GetByID(ctx context.Context, id uint64) (UserResponse, error)
	Delete(ctx context.Context, id uint64) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	u, err := buildUser(req)
	if err != nil {
		return UserResponse{}, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("create user begin tx failed", zap.Error(tx.Error))
		return UserResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.OrganizationExists(ctx, u.OrganizationID)
	if err != nil {
		log.Error("create user organization check failed", zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}
	if !exists {
		return UserResponse{}, organizationerrors.ErrOrganizationNotFound
	}

	if err := qtx.Create(ctx, u); err != nil {
		log.Warn("create user persist failed", zap.String("email", u.Email), zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("create user commit failed", zap.Error(err))
		return UserResponse{}, mapRepositoryError(err)
	}

	log.Info("create user success",
		zap.Uint64("user_id", u.ID),
		zap.Uint64("organization_id", u.OrganizationID),
	)
	return mapToResponse(*u), nil
}

func (s *service) GetAll(ctx context.Context, organizationID uint64) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx, organizationID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id uint64) (UserResponse, error) {
	if id == 0 {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return UserResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*u), nil
}

func (s *service) Delete(ctx context.Context, id uint64) error {
	log := contextutil.GetLogger(ctx, s.logger)
	if id == 0 {
		return usererrors.ErrInvalidUserID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("delete user begin tx failed", zap.Error(tx.Error))
		return tx.Error
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
		log.Warn("delete user failed", zap.Uint64("user_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}
	if err := tx.Commit().Error; err != nil {
		log.Error("delete user commit failed", zap.Uint64("user_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	log.Info("delete user success", zap.Uint64("user_id", id))
	return nil
}

func buildUser(req CreateUserRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if req.OrganizationID == 0 || name == "" || email == "" {
		return nil, usererrors.ErrMissingRequiredFields
	}

	switch req.Role {
	case RoleEmployee, RoleAdmin:
	default:
		return nil, usererrors.ErrInvalidRole
	}

	days := DefaultDaysRemaining
	if req.DaysRemaining != nil {
		if *req.DaysRemaining < 0 {
			return nil, usererrors.ErrInvalidDaysRemaining
		}
		days = *req.DaysRemaining
	}

	return &User{
		OrganizationID: req.OrganizationID,
		Name:           name,
		Email:          email,
		Role:           req.Role,
		DaysRemaining:  days,
	}, nil
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		DaysRemaining:  u.DaysRemaining,
		CreatedAt:      u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
