package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zepolnala/leave-management-system/internal/config"
	"github.com/zepolnala/leave-management-system/internal/messaging/kafka"
	"github.com/zepolnala/leave-management-system/internal/messaging/kafka/producer"
	"github.com/zepolnala/leave-management-system/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker drains the outbox to Kafka until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config, logger *zap.Logger) error {
	log := logger.Named("app.worker")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	db, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := Migrate(db); err != nil {
		return err
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, log, cfg.Kafka.PollInterval)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("worker shutting down")
	cancel()
	<-done

	return nil
}
