package leave

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/zepolnala/leave-management-system/internal/events"
	leaveerrors "github.com/zepolnala/leave-management-system/internal/leave/errors"
	"github.com/zepolnala/leave-management-system/internal/leavepolicy"
	"github.com/zepolnala/leave-management-system/internal/messaging/kafka"
	"github.com/zepolnala/leave-management-system/internal/shared/contextutil"
	"github.com/zepolnala/leave-management-system/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Service interface {
	Create(ctx context.Context, req CreateLeaveRequest) (LeaveRequestResponse, error)
	Adjudicate(ctx context.Context, id uint64, req AdjudicateLeaveRequest) (LeaveRequestResponse, error)
	GetAll(ctx context.Context) ([]LeaveRequestResponse, error)
	GetByID(ctx context.Context, id uint64) (LeaveRequestResponse, error)
}

type service struct {
	db         *gorm.DB
	repo       Repository
	userRepo   user.Repository
	policyRepo leavepolicy.Repository
	outbox     kafka.OutboxRepository
	logger     *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	userRepo user.Repository,
	policyRepo leavepolicy.Repository,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, userRepo, policyRepo, nil, logger...)
}

// NewServiceWithOutbox records lifecycle events in the same transaction as
// the state change. A nil outbox disables event recording.
func NewServiceWithOutbox(
	db *gorm.DB,
	repo Repository,
	userRepo user.Repository,
	policyRepo leavepolicy.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		userRepo:   userRepo,
		policyRepo: policyRepo,
		outbox:     outboxRepo,
		logger:     l,
	}
}

func (s *service) Create(ctx context.Context, req CreateLeaveRequest) (LeaveRequestResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create leave request requested",
		zap.Uint64("user_id", req.UserID),
		zap.Uint64("policy_id", req.PolicyID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	leaveType, startDate, endDate, err := validateCreateRequest(req)
	if err != nil {
		log.Warn("create leave request validation failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("create leave request begin tx failed", zap.Error(tx.Error))
		return LeaveRequestResponse{}, tx.Error
	}
	defer tx.Rollback()

	u, err := s.userRepo.WithTx(tx).FindByIDForUpdate(ctx, req.UserID)
	if err != nil {
		return LeaveRequestResponse{}, mapLookupError(err, leaveerrors.ErrUserNotFound)
	}

	policy, err := s.policyRepo.WithTx(tx).FindByID(ctx, req.PolicyID)
	if err != nil {
		return LeaveRequestResponse{}, mapLookupError(err, leaveerrors.ErrPolicyNotFound)
	}
	if leavepolicy.NormalizeLeaveType(policy.LeaveType) != leaveType {
		log.Warn("create leave request type mismatch",
			zap.Uint64("policy_id", policy.ID),
			zap.String("policy_leave_type", policy.LeaveType),
			zap.String("leave_type", leaveType),
		)
		return LeaveRequestResponse{}, leaveerrors.ErrLeaveTypeMismatch
	}

	daysDebited := 0
	if IsBalanceBearing(leaveType) {
		days := ComputeDuration(startDate, endDate)
		remaining, err := Debit(u.DaysRemaining, days)
		if err != nil {
			log.Warn("create leave request insufficient balance",
				zap.Uint64("user_id", u.ID),
				zap.Int("days_remaining", u.DaysRemaining),
				zap.Int("days_requested", days),
			)
			return LeaveRequestResponse{}, err
		}
		if err := s.userRepo.WithTx(tx).UpdateDaysRemaining(ctx, u.ID, remaining); err != nil {
			log.Error("create leave request debit failed", zap.Uint64("user_id", u.ID), zap.Error(err))
			return LeaveRequestResponse{}, mapLookupError(err, leaveerrors.ErrUserNotFound)
		}
		daysDebited = days
	}

	l := &LeaveRequest{
		UserID:    u.ID,
		PolicyID:  policy.ID,
		LeaveType: leaveType,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    StatusPending,
	}

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, l); err != nil {
		log.Error("create leave request persist failed", zap.Error(err))
		return LeaveRequestResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, l, events.LeaveRequestCreatedEvent{
		EventType:      events.EventTypeLeaveRequestCreated,
		LeaveRequestID: l.ID,
		UserID:         l.UserID,
		PolicyID:       l.PolicyID,
		LeaveType:      l.LeaveType,
		StartDate:      l.StartDate.Format(dateLayout),
		EndDate:        l.EndDate.Format(dateLayout),
		DaysDebited:    daysDebited,
		OccurredAt:     l.CreatedAt.UTC(),
	}, events.EventTypeLeaveRequestCreated); err != nil {
		log.Error("create leave request outbox persist failed", zap.Uint64("leave_request_id", l.ID), zap.Error(err))
		return LeaveRequestResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("create leave request commit failed", zap.Error(err))
		return LeaveRequestResponse{}, mapRepositoryError(err)
	}
	log.Info("create leave request success",
		zap.Uint64("leave_request_id", l.ID),
		zap.Uint64("user_id", l.UserID),
		zap.Int("days_debited", daysDebited),
	)

	return mapToResponse(*l), nil
}

func (s *service) Adjudicate(ctx context.Context, id uint64, req AdjudicateLeaveRequest) (LeaveRequestResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("adjudicate leave request requested",
		zap.Uint64("leave_request_id", id),
		zap.String("target_status", req.Status),
	)

	if id == 0 {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidLeaveRequestID
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("adjudicate leave request begin tx failed", zap.Error(tx.Error))
		return LeaveRequestResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// Not found takes precedence over an invalid target status.
	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		return LeaveRequestResponse{}, mapRepositoryError(err)
	}
	target := Status(req.Status)
	if !target.IsTerminal() {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidStatus
	}
	if !isAllowedStatusTransition(l.Status, target) {
		log.Warn("adjudicate leave request invalid transition",
			zap.Uint64("leave_request_id", id),
			zap.String("from_status", string(l.Status)),
			zap.String("to_status", string(target)),
		)
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	if req.ApproverID != nil {
		approver, err := s.userRepo.WithTx(tx).FindByID(ctx, *req.ApproverID)
		if err != nil {
			return LeaveRequestResponse{}, mapLookupError(err, leaveerrors.ErrApproverNotFound)
		}
		l.ApproverID = &approver.ID
	}
	l.Status = target

	if err := qtx.UpdateStatus(ctx, l); err != nil {
		log.Error("adjudicate leave request persist failed",
			zap.Uint64("leave_request_id", id),
			zap.String("target_status", string(target)),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, l, events.LeaveRequestAdjudicatedEvent{
		EventType:      events.EventTypeLeaveRequestAdjudicated,
		LeaveRequestID: l.ID,
		UserID:         l.UserID,
		Status:         string(l.Status),
		ApproverID:     l.ApproverID,
		OccurredAt:     l.UpdatedAt.UTC(),
	}, events.EventTypeLeaveRequestAdjudicated); err != nil {
		log.Error("adjudicate leave request outbox persist failed", zap.Uint64("leave_request_id", id), zap.Error(err))
		return LeaveRequestResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("adjudicate leave request commit failed",
			zap.Uint64("leave_request_id", id),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, mapRepositoryError(err)
	}
	log.Info("adjudicate leave request success",
		zap.Uint64("leave_request_id", id),
		zap.String("status", string(l.Status)),
	)

	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveRequestResponse, error) {
	requests, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByID(ctx context.Context, id uint64) (LeaveRequestResponse, error) {
	if id == 0 {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidLeaveRequestID
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveRequestResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*l), nil
}

func (s *service) enqueue(ctx context.Context, tx *gorm.DB, l *LeaveRequest, event any, eventType string) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: events.AggregateTypeLeaveRequest,
		AggregateID:   strconv.FormatUint(l.ID, 10),
		EventType:     eventType,
		Topic:         events.LeaveRequestLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// isAllowedStatusTransition admits pending -> approved and pending -> rejected.
// Adjudicated requests are final.
func isAllowedStatusTransition(current, target Status) bool {
	return current == StatusPending && target.IsTerminal()
}

func validateCreateRequest(req CreateLeaveRequest) (string, time.Time, time.Time, error) {
	if req.UserID == 0 {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidUserID
	}
	if req.PolicyID == 0 {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidPolicyID
	}
	leaveType := leavepolicy.NormalizeLeaveType(req.LeaveType)
	if leaveType == "" {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidLeaveType
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return "", time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return leaveType, startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		PolicyID:   l.PolicyID,
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format(dateLayout),
		EndDate:    l.EndDate.Format(dateLayout),
		Status:     l.Status,
		ApproverID: l.ApproverID,
		CreatedAt:  l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(requests []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(requests))
	for i, l := range requests {
		resp[i] = mapToResponse(l)
	}
	return resp
}
