package app

import (
	"github.com/zepolnala/leave-management-system/internal/config"
	"github.com/zepolnala/leave-management-system/internal/leave"
	"github.com/zepolnala/leave-management-system/internal/leavepolicy"
	"github.com/zepolnala/leave-management-system/internal/messaging/kafka"
	"github.com/zepolnala/leave-management-system/internal/organization"
	"github.com/zepolnala/leave-management-system/internal/shared/connection"
	"github.com/zepolnala/leave-management-system/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table the service owns, in creation order.
func Models() []any {
	return []any{
		&organization.Organization{},
		&user.User{},
		&leavepolicy.LeavePolicy{},
		&leave.LeaveRequest{},
		&kafka.OutboxEvent{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// BuildApp connects the stores, migrates the schema and registers every
// route on router. The returned func releases the connections.
func BuildApp(router *gin.Engine, cfg *config.Config, logger *zap.Logger) (func(), error) {
	log := logger.Named("app")

	db, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = connection.ConnectRedisWithRetry(cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		log.Info("redis connection established")
	} else {
		log.Warn("REDIS_ADDR not set, idempotency keys are ignored")
	}

	registerModules(router, db, rdb, cfg, logger)

	cleanup := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return cleanup, nil
}
