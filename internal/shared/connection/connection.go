package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/zepolnala/leave-management-system/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const retryDelay = 5 * time.Second

func ConnectGORMWithRetry(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	log := logger.Named("connection.postgres")
	var lastErr error

	for i := 1; i <= cfg.MaxRetries; i++ {
		db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			TranslateError: true,
		})
		if err != nil {
			lastErr = err
			log.Warn("gorm open failed", zap.Int("attempt", i), zap.Int("max", cfg.MaxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			log.Warn("get sql.DB failed", zap.Int("attempt", i), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		if err := sqlDB.Ping(); err != nil {
			lastErr = err
			log.Warn("db ping failed", zap.Int("attempt", i), zap.Int("max", cfg.MaxRetries), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)

		log.Info("database connected", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
		return db, nil
	}

	return nil, fmt.Errorf("database connection failed after %d retries: %w", cfg.MaxRetries, lastErr)
}

func ConnectRedisWithRetry(cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	log := logger.Named("connection.redis")
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})

	var lastErr error
	for i := 1; i <= cfg.MaxRetries; i++ {
		err := rdb.Ping(context.Background()).Err()
		if err == nil {
			log.Info("redis connected", zap.String("addr", cfg.Addr))
			return rdb, nil
		}

		lastErr = err
		log.Warn("redis ping failed", zap.Int("attempt", i), zap.Int("max", cfg.MaxRetries), zap.Error(lastErr))
		time.Sleep(retryDelay)
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("redis connection failed after %d retries: %w", cfg.MaxRetries, lastErr)
}

// ConnectKafkaWithRetry dials the broker until it answers and returns a
// writer that routes each message by its own Topic field.
func ConnectKafkaWithRetry(cfg config.KafkaConfig, logger *zap.Logger) (*kafkago.Writer, error) {
	log := logger.Named("connection.kafka")

	var lastErr error
	for i := 1; i <= cfg.MaxRetries; i++ {
		conn, err := kafkago.Dial("tcp", cfg.Broker)
		if err == nil {
			_ = conn.Close()
			log.Info("kafka connected", zap.String("broker", cfg.Broker))
			return &kafkago.Writer{
				Addr:                   kafkago.TCP(cfg.Broker),
				Balancer:               &kafkago.Hash{},
				RequiredAcks:           kafkago.RequireAll,
				AllowAutoTopicCreation: true,
			}, nil
		}

		lastErr = err
		log.Warn("kafka dial failed", zap.Int("attempt", i), zap.Int("max", cfg.MaxRetries), zap.Error(err))
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("kafka connection failed after %d retries: %w", cfg.MaxRetries, lastErr)
}
