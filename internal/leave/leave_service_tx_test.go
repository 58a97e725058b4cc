package leave_test

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zepolnala/leave-management-system/internal/leave"
	leaveerrors "github.com/zepolnala/leave-management-system/internal/leave/errors"
	"github.com/zepolnala/leave-management-system/internal/leavepolicy"
	"github.com/zepolnala/leave-management-system/internal/shared/apperror"
	"github.com/zepolnala/leave-management-system/internal/testutil"
	"github.com/zepolnala/leave-management-system/internal/user"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type txServiceDeps struct {
	sqlMock sqlmock.Sqlmock
	service leave.Service
}

// setupTxServiceTest backs the real repositories with sqlmock so the
// transaction boundaries and Postgres error codes can be asserted.
func setupTxServiceTest(t *testing.T) *txServiceDeps {
	t.Helper()

	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	svc := leave.NewService(db, leave.NewRepository(db), user.NewRepository(db), leavepolicy.NewRepository(db))
	return &txServiceDeps{sqlMock: sqlMock, service: svc}
}

func userRows(daysRemaining int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "organization_id", "name", "email", "role", "days_remaining"}).
		AddRow(1, 1, "Ana", "ana@example.com", "employee", daysRemaining)
}

func policyRows(leaveType string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "organization_id", "leave_type", "max_days"}).
		AddRow(1, 1, leaveType, 30)
}

func vacationRequest() leave.CreateLeaveRequest {
	return leave.CreateLeaveRequest{
		UserID:    1,
		PolicyID:  1,
		LeaveType: "vacation",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-04",
	}
}

func TestLeaveService_Create_Transaction(t *testing.T) {
	t.Run("lock timeout on the user row surfaces as conflict", func(t *testing.T) {
		deps := setupTxServiceTest(t)
		ctx := testutil.TestContext(t)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectQuery(`SELECT \* FROM "users" WHERE id = .+ FOR UPDATE`).
			WillReturnError(&pgconn.PgError{Code: "55P03"})
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Create(ctx, vacationRequest())

		require.Error(t, err)
		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, http.StatusConflict, httpErr.Status)
		assert.Equal(t, apperror.CodeConflict, httpErr.Code)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("serialization failure on debit rolls back before insert", func(t *testing.T) {
		deps := setupTxServiceTest(t)
		ctx := testutil.TestContext(t)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectQuery(`SELECT \* FROM "users" WHERE id = .+ FOR UPDATE`).
			WillReturnRows(userRows(23))
		deps.sqlMock.ExpectQuery(`SELECT \* FROM "leave_policies" WHERE id = `).
			WillReturnRows(policyRows("vacation"))
		deps.sqlMock.ExpectExec(`UPDATE "users" SET "days_remaining"`).
			WillReturnError(&pgconn.PgError{Code: "40001"})
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Create(ctx, vacationRequest())

		assert.Equal(t, http.StatusConflict, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("insufficient balance rolls back without writing", func(t *testing.T) {
		deps := setupTxServiceTest(t)
		ctx := testutil.TestContext(t)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectQuery(`SELECT \* FROM "users" WHERE id = .+ FOR UPDATE`).
			WillReturnRows(userRows(2))
		deps.sqlMock.ExpectQuery(`SELECT \* FROM "leave_policies" WHERE id = `).
			WillReturnRows(policyRows("vacation"))
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Create(ctx, vacationRequest())

		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
		assert.Equal(t, http.StatusUnprocessableEntity, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("validation failure never opens a transaction", func(t *testing.T) {
		deps := setupTxServiceTest(t)
		ctx := testutil.TestContext(t)

		req := vacationRequest()
		req.StartDate = "not-a-date"
		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Adjudicate_Transaction(t *testing.T) {
	t.Run("deadlock while locking the request surfaces as conflict", func(t *testing.T) {
		deps := setupTxServiceTest(t)
		ctx := testutil.TestContext(t)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectQuery(`SELECT \* FROM "leave_requests" WHERE id = .+ FOR UPDATE`).
			WillReturnError(&pgconn.PgError{Code: "40P01"})
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Adjudicate(ctx, 7, leave.AdjudicateLeaveRequest{Status: "approved"})

		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, http.StatusConflict, httpErr.Status)
		assert.Equal(t, apperror.CodeConflict, httpErr.Code)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid status is checked after the row lock and writes nothing", func(t *testing.T) {
		deps := setupTxServiceTest(t)
		ctx := testutil.TestContext(t)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectQuery(`SELECT \* FROM "leave_requests" WHERE id = .+ FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "policy_id", "leave_type", "status"}).
				AddRow(7, 1, 1, "vacation", "pending"))
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Adjudicate(ctx, 7, leave.AdjudicateLeaveRequest{Status: "cancelled"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatus)
		assert.Equal(t, http.StatusBadRequest, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("terminal request is rejected without update", func(t *testing.T) {
		deps := setupTxServiceTest(t)
		ctx := testutil.TestContext(t)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectQuery(`SELECT \* FROM "leave_requests" WHERE id = .+ FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "policy_id", "leave_type", "status"}).
				AddRow(7, 1, 1, "vacation", "rejected"))
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Adjudicate(ctx, 7, leave.AdjudicateLeaveRequest{Status: "approved"})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.Equal(t, http.StatusConflict, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
