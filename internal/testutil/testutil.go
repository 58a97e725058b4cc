package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zepolnala/leave-management-system/internal/leave"
	"github.com/zepolnala/leave-management-system/internal/leavepolicy"
	"github.com/zepolnala/leave-management-system/internal/messaging/kafka"
	"github.com/zepolnala/leave-management-system/internal/organization"
	"github.com/zepolnala/leave-management-system/internal/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory SQLite database with every table migrated.
// The pool is pinned to one connection so the in-memory database is shared
// and concurrent transactions queue behind each other the way row locks
// would serialize them on Postgres.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&organization.Organization{},
		&user.User{},
		&leavepolicy.LeavePolicy{},
		&leave.LeaveRequest{},
		&kafka.OutboxEvent{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func CreateTestOrg(t *testing.T, db *gorm.DB) *organization.Organization {
	t.Helper()

	org := &organization.Organization{
		Name: "Test Organization " + uuid.New().String()[:8],
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateTestUser creates an employee of org holding daysRemaining days.
func CreateTestUser(t *testing.T, db *gorm.DB, org *organization.Organization, daysRemaining int) *user.User {
	t.Helper()

	u := &user.User{
		OrganizationID: org.ID,
		Name:           "Test User",
		Email:          "test-" + uuid.New().String()[:8] + "@example.com",
		Role:           user.RoleEmployee,
		DaysRemaining:  daysRemaining,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func CreateTestPolicy(t *testing.T, db *gorm.DB, org *organization.Organization, leaveType string) *leavepolicy.LeavePolicy {
	t.Helper()

	p := &leavepolicy.LeavePolicy{
		OrganizationID: org.ID,
		LeaveType:      leaveType,
		MaxDays:        30,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test leave policy: %v", err)
	}
	return p
}

// CreateTestLeaveRequest inserts a request directly, bypassing the ledger.
func CreateTestLeaveRequest(t *testing.T, db *gorm.DB, u *user.User, p *leavepolicy.LeavePolicy, status leave.Status) *leave.LeaveRequest {
	t.Helper()

	l := &leave.LeaveRequest{
		UserID:    u.ID,
		PolicyID:  p.ID,
		LeaveType: p.LeaveType,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("failed to create test leave request: %v", err)
	}
	return l
}

// ReloadUser reads the current row, failing the test if it is gone.
func ReloadUser(t *testing.T, db *gorm.DB, id uint64) *user.User {
	t.Helper()

	var u user.User
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload user %d: %v", id, err)
	}
	return &u
}

func CountRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()

	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
