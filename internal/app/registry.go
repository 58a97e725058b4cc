package app

import (
	"net/http"

	"github.com/zepolnala/leave-management-system/internal/config"
	"github.com/zepolnala/leave-management-system/internal/leave"
	"github.com/zepolnala/leave-management-system/internal/leavepolicy"
	"github.com/zepolnala/leave-management-system/internal/messaging/kafka"
	"github.com/zepolnala/leave-management-system/internal/middleware"
	"github.com/zepolnala/leave-management-system/internal/organization"
	"github.com/zepolnala/leave-management-system/internal/shared/response"
	"github.com/zepolnala/leave-management-system/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *gorm.DB,
	rdb *redis.Client,
	cfg *config.Config,
	logger *zap.Logger,
) {
	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(logger.Named("http")),
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst),
	)

	// --- Repositories ---
	organizationRepo := organization.NewRepository(db)
	userRepo := user.NewRepository(db)
	policyRepo := leavepolicy.NewRepository(db)
	leaveRepo := leave.NewRepository(db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	organizationService := organization.NewService(db, organizationRepo, logger)
	userService := user.NewService(db, userRepo, logger)
	policyService := leavepolicy.NewService(db, policyRepo, logger)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, userRepo, policyRepo, outboxRepo, logger)

	// --- Handlers ---
	organizationHandler := organization.NewHandler(organizationService, logger)
	userHandler := user.NewHandler(userService, logger)
	policyHandler := leavepolicy.NewHandler(policyService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)

	var createLeaveMiddleware []gin.HandlerFunc
	if rdb != nil {
		createLeaveMiddleware = append(createLeaveMiddleware,
			middleware.Idempotency(rdb, middleware.DefaultIdempotencyTTL, logger))
	}

	// --- Routes Registration ---
	router.GET("/", health)

	api := router.Group("/api/v1")
	{
		organization.RegisterRoutes(api, organizationHandler)
		user.RegisterRoutes(api, userHandler)
		leavepolicy.RegisterRoutes(api, policyHandler)
		leave.RegisterRoutes(api, leaveHandler, createLeaveMiddleware...)
	}
}

func health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"message": "Leave Management System API is running!"}, nil)
}
