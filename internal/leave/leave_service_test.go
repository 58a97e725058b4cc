package leave_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zepolnala/leave-management-system/internal/events"
	"github.com/zepolnala/leave-management-system/internal/leave"
	leaveerrors "github.com/zepolnala/leave-management-system/internal/leave/errors"
	"github.com/zepolnala/leave-management-system/internal/leavepolicy"
	"github.com/zepolnala/leave-management-system/internal/messaging/kafka"
	"github.com/zepolnala/leave-management-system/internal/organization"
	"github.com/zepolnala/leave-management-system/internal/testutil"
	"github.com/zepolnala/leave-management-system/internal/user"
	"gorm.io/gorm"
)

type lifecycleDeps struct {
	db       *gorm.DB
	service  leave.Service
	org      *organization.Organization
	employee *user.User
	vacation *leavepolicy.LeavePolicy
	sick     *leavepolicy.LeavePolicy
}

func setupLifecycleTest(t *testing.T, daysRemaining int) *lifecycleDeps {
	t.Helper()

	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrg(t, db)

	svc := leave.NewServiceWithOutbox(
		db,
		leave.NewRepository(db),
		user.NewRepository(db),
		leavepolicy.NewRepository(db),
		kafka.NewOutboxRepository(db),
	)

	return &lifecycleDeps{
		db:       db,
		service:  svc,
		org:      org,
		employee: testutil.CreateTestUser(t, db, org, daysRemaining),
		vacation: testutil.CreateTestPolicy(t, db, org, "vacation"),
		sick:     testutil.CreateTestPolicy(t, db, org, "sick"),
	}
}

func (d *lifecycleDeps) vacationRequest(start, end string) leave.CreateLeaveRequest {
	return leave.CreateLeaveRequest{
		UserID:    d.employee.ID,
		PolicyID:  d.vacation.ID,
		LeaveType: "vacation",
		StartDate: start,
		EndDate:   end,
	}
}

func TestLeaveService_Create(t *testing.T) {
	t.Run("vacation debits end minus start days", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)

		resp, err := deps.service.Create(ctx, deps.vacationRequest("2024-01-01", "2024-01-04"))

		require.NoError(t, err)
		assert.NotZero(t, resp.ID)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Nil(t, resp.ApproverID)
		assert.Equal(t, "2024-01-01", resp.StartDate)
		assert.Equal(t, "2024-01-04", resp.EndDate)
		assert.Equal(t, 20, testutil.ReloadUser(t, deps.db, deps.employee.ID).DaysRemaining)
	})

	t.Run("request larger than balance fails without side effects", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)

		_, err := deps.service.Create(ctx, deps.vacationRequest("2024-01-01", "2024-01-04"))
		require.NoError(t, err)

		_, err = deps.service.Create(ctx, deps.vacationRequest("2024-02-01", "2024-02-25"))

		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
		assert.Equal(t, 20, testutil.ReloadUser(t, deps.db, deps.employee.ID).DaysRemaining)
		assert.Equal(t, int64(1), testutil.CountRows(t, deps.db, &leave.LeaveRequest{}))
		assert.Equal(t, int64(1), testutil.CountRows(t, deps.db, &kafka.OutboxEvent{}))
	})

	t.Run("request equal to balance drains it", func(t *testing.T) {
		deps := setupLifecycleTest(t, 5)
		ctx := testutil.TestContext(t)

		_, err := deps.service.Create(ctx, deps.vacationRequest("2024-03-01", "2024-03-06"))

		require.NoError(t, err)
		assert.Equal(t, 0, testutil.ReloadUser(t, deps.db, deps.employee.ID).DaysRemaining)
	})

	t.Run("non vacation type is never checked or debited", func(t *testing.T) {
		deps := setupLifecycleTest(t, 2)
		ctx := testutil.TestContext(t)

		resp, err := deps.service.Create(ctx, leave.CreateLeaveRequest{
			UserID:    deps.employee.ID,
			PolicyID:  deps.sick.ID,
			LeaveType: "sick",
			StartDate: "2024-01-01",
			EndDate:   "2024-01-15",
		})

		require.NoError(t, err)
		assert.Equal(t, "sick", resp.LeaveType)
		assert.Equal(t, 2, testutil.ReloadUser(t, deps.db, deps.employee.ID).DaysRemaining)
	})

	t.Run("leave type is normalized before matching the policy", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)

		req := deps.vacationRequest("2024-01-01", "2024-01-02")
		req.LeaveType = "  Vacation "
		resp, err := deps.service.Create(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "vacation", resp.LeaveType)
		assert.Equal(t, 22, testutil.ReloadUser(t, deps.db, deps.employee.ID).DaysRemaining)
	})

	t.Run("leave type must match the policy", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)

		req := deps.vacationRequest("2024-01-01", "2024-01-02")
		req.LeaveType = "sick"
		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveTypeMismatch)
		assert.Equal(t, int64(0), testutil.CountRows(t, deps.db, &leave.LeaveRequest{}))
	})

	t.Run("unknown user", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)

		req := deps.vacationRequest("2024-01-01", "2024-01-02")
		req.UserID = 9999
		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, leaveerrors.ErrUserNotFound)
	})

	t.Run("unknown policy", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)

		req := deps.vacationRequest("2024-01-01", "2024-01-02")
		req.PolicyID = 9999
		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, leaveerrors.ErrPolicyNotFound)
		assert.Equal(t, 23, testutil.ReloadUser(t, deps.db, deps.employee.ID).DaysRemaining)
	})

	t.Run("input validation", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)

		cases := []struct {
			name   string
			mutate func(r *leave.CreateLeaveRequest)
			want   error
		}{
			{"missing user", func(r *leave.CreateLeaveRequest) { r.UserID = 0 }, leaveerrors.ErrInvalidUserID},
			{"missing policy", func(r *leave.CreateLeaveRequest) { r.PolicyID = 0 }, leaveerrors.ErrInvalidPolicyID},
			{"blank leave type", func(r *leave.CreateLeaveRequest) { r.LeaveType = "  " }, leaveerrors.ErrInvalidLeaveType},
			{"bad start date", func(r *leave.CreateLeaveRequest) { r.StartDate = "01/01/2024" }, leaveerrors.ErrInvalidDateFormat},
			{"bad end date", func(r *leave.CreateLeaveRequest) { r.EndDate = "2024-13-01" }, leaveerrors.ErrInvalidDateFormat},
			{"end before start", func(r *leave.CreateLeaveRequest) { r.EndDate = "2023-12-31" }, leaveerrors.ErrInvalidDateRange},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				req := deps.vacationRequest("2024-01-01", "2024-01-02")
				tc.mutate(&req)

				_, err := deps.service.Create(ctx, req)

				assert.ErrorIs(t, err, tc.want)
			})
		}
		assert.Equal(t, 23, testutil.ReloadUser(t, deps.db, deps.employee.ID).DaysRemaining)
	})

	t.Run("records a created event in the outbox", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)

		resp, err := deps.service.Create(ctx, deps.vacationRequest("2024-01-01", "2024-01-04"))
		require.NoError(t, err)

		var outbox []kafka.OutboxEvent
		require.NoError(t, deps.db.Find(&outbox).Error)
		require.Len(t, outbox, 1)
		assert.Equal(t, events.EventTypeLeaveRequestCreated, outbox[0].EventType)
		assert.Equal(t, events.LeaveRequestLifecycleTopic, outbox[0].Topic)
		assert.Equal(t, kafka.OutboxStatusPending, outbox[0].Status)

		var payload events.LeaveRequestCreatedEvent
		require.NoError(t, json.Unmarshal(outbox[0].Payload, &payload))
		assert.Equal(t, resp.ID, payload.LeaveRequestID)
		assert.Equal(t, 3, payload.DaysDebited)
	})
}

func TestLeaveService_Create_ConcurrentRequestsCannotOverdraw(t *testing.T) {
	deps := setupLifecycleTest(t, 5)
	ctx := testutil.TestContext(t)

	const workers = 4
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := deps.service.Create(ctx, deps.vacationRequest("2024-05-01", "2024-05-04"))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, 2, testutil.ReloadUser(t, deps.db, deps.employee.ID).DaysRemaining)
	assert.Equal(t, int64(1), testutil.CountRows(t, deps.db, &leave.LeaveRequest{}))
}

func TestLeaveService_Adjudicate(t *testing.T) {
	t.Run("approve keeps the debited balance", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)
		created, err := deps.service.Create(ctx, deps.vacationRequest("2024-01-01", "2024-01-04"))
		require.NoError(t, err)

		resp, err := deps.service.Adjudicate(ctx, created.ID, leave.AdjudicateLeaveRequest{Status: "approved"})

		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.Equal(t, 20, testutil.ReloadUser(t, deps.db, deps.employee.ID).DaysRemaining)
	})

	t.Run("reject does not refund", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)
		created, err := deps.service.Create(ctx, deps.vacationRequest("2024-01-01", "2024-01-04"))
		require.NoError(t, err)

		resp, err := deps.service.Adjudicate(ctx, created.ID, leave.AdjudicateLeaveRequest{Status: "rejected"})

		require.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.Equal(t, 20, testutil.ReloadUser(t, deps.db, deps.employee.ID).DaysRemaining)
	})

	t.Run("records the approver", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)
		manager := testutil.CreateTestUser(t, deps.db, deps.org, 23)
		created, err := deps.service.Create(ctx, deps.vacationRequest("2024-01-01", "2024-01-02"))
		require.NoError(t, err)

		resp, err := deps.service.Adjudicate(ctx, created.ID, leave.AdjudicateLeaveRequest{
			Status:     "approved",
			ApproverID: &manager.ID,
		})

		require.NoError(t, err)
		require.NotNil(t, resp.ApproverID)
		assert.Equal(t, manager.ID, *resp.ApproverID)

		stored, err := deps.service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.ApproverID)
		assert.Equal(t, manager.ID, *stored.ApproverID)
	})

	t.Run("unknown approver leaves the request pending", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)
		created, err := deps.service.Create(ctx, deps.vacationRequest("2024-01-01", "2024-01-02"))
		require.NoError(t, err)
		missing := uint64(9999)

		_, err = deps.service.Adjudicate(ctx, created.ID, leave.AdjudicateLeaveRequest{
			Status:     "approved",
			ApproverID: &missing,
		})

		assert.ErrorIs(t, err, leaveerrors.ErrApproverNotFound)
		stored, err := deps.service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusPending, stored.Status)
	})

	t.Run("unknown request", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)

		_, err := deps.service.Adjudicate(ctx, 9999, leave.AdjudicateLeaveRequest{Status: "approved"})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveRequestNotFound)
	})

	t.Run("unknown request wins over an invalid status", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)

		_, err := deps.service.Adjudicate(ctx, 9999, leave.AdjudicateLeaveRequest{Status: "cancelled"})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveRequestNotFound)
	})

	t.Run("status outside approved and rejected", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)
		created, err := deps.service.Create(ctx, deps.vacationRequest("2024-01-01", "2024-01-02"))
		require.NoError(t, err)

		for _, status := range []string{"cancelled", "pending", "APPROVED", ""} {
			_, err := deps.service.Adjudicate(ctx, created.ID, leave.AdjudicateLeaveRequest{Status: status})
			assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatus, status)
		}

		stored, err := deps.service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusPending, stored.Status)
	})

	t.Run("adjudicated request is final", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)
		created, err := deps.service.Create(ctx, deps.vacationRequest("2024-01-01", "2024-01-02"))
		require.NoError(t, err)
		_, err = deps.service.Adjudicate(ctx, created.ID, leave.AdjudicateLeaveRequest{Status: "approved"})
		require.NoError(t, err)

		_, err = deps.service.Adjudicate(ctx, created.ID, leave.AdjudicateLeaveRequest{Status: "rejected"})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		_, err = deps.service.Adjudicate(ctx, created.ID, leave.AdjudicateLeaveRequest{Status: "approved"})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)

		stored, err := deps.service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, stored.Status)
		assert.Equal(t, 22, testutil.ReloadUser(t, deps.db, deps.employee.ID).DaysRemaining)
	})

	t.Run("records an adjudicated event", func(t *testing.T) {
		deps := setupLifecycleTest(t, 23)
		ctx := testutil.TestContext(t)
		created, err := deps.service.Create(ctx, deps.vacationRequest("2024-01-01", "2024-01-02"))
		require.NoError(t, err)

		_, err = deps.service.Adjudicate(ctx, created.ID, leave.AdjudicateLeaveRequest{Status: "rejected"})
		require.NoError(t, err)

		var outbox []kafka.OutboxEvent
		require.NoError(t, deps.db.Order("created_at ASC").Find(&outbox).Error)
		require.Len(t, outbox, 2)
		assert.ElementsMatch(t,
			[]string{events.EventTypeLeaveRequestCreated, events.EventTypeLeaveRequestAdjudicated},
			[]string{outbox[0].EventType, outbox[1].EventType},
		)
	})
}

func TestLeaveService_GetAllAndGetByID(t *testing.T) {
	deps := setupLifecycleTest(t, 23)
	ctx := testutil.TestContext(t)

	first, err := deps.service.Create(ctx, deps.vacationRequest("2024-01-01", "2024-01-02"))
	require.NoError(t, err)
	second, err := deps.service.Create(ctx, leave.CreateLeaveRequest{
		UserID:    deps.employee.ID,
		PolicyID:  deps.sick.ID,
		LeaveType: "sick",
		StartDate: "2024-02-01",
		EndDate:   "2024-02-01",
	})
	require.NoError(t, err)

	all, err := deps.service.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	got, err := deps.service.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, got.UserID)
	assert.Equal(t, first.PolicyID, got.PolicyID)
	assert.Equal(t, first.LeaveType, got.LeaveType)
	assert.Equal(t, first.StartDate, got.StartDate)
	assert.Equal(t, first.EndDate, got.EndDate)
	assert.Equal(t, first.Status, got.Status)

	_, err = deps.service.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, leaveerrors.ErrLeaveRequestNotFound)

	_, err = deps.service.GetByID(ctx, 0)
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidLeaveRequestID)
}

func TestLeaveService_RoundTripReturnsNormalizedLeaveType(t *testing.T) {
	deps := setupLifecycleTest(t, 23)
	ctx := testutil.TestContext(t)

	req := deps.vacationRequest("2024-03-04", "2024-03-06")
	req.LeaveType = "  VACATION "
	created, err := deps.service.Create(ctx, req)
	require.NoError(t, err)

	got, err := deps.service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, req.UserID, got.UserID)
	assert.Equal(t, req.PolicyID, got.PolicyID)
	assert.Equal(t, req.StartDate, got.StartDate)
	assert.Equal(t, req.EndDate, got.EndDate)
	assert.Equal(t, leave.StatusPending, got.Status)
	assert.Equal(t, "vacation", got.LeaveType)

	all, err := deps.service.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "vacation", all[0].LeaveType)

	var stored leave.LeaveRequest
	require.NoError(t, deps.db.First(&stored, created.ID).Error)
	assert.Equal(t, "vacation", stored.LeaveType)
}
