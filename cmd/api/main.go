package main

import (
	"github.com/zepolnala/leave-management-system/internal/app"
	"github.com/zepolnala/leave-management-system/internal/bootstrap"
	"github.com/zepolnala/leave-management-system/internal/config"
	"github.com/zepolnala/leave-management-system/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// build dependency + routes
	cleanup, err := app.BuildApp(r, cfg, logger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer cleanup()

	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		bootstrap.NewStdoutAuditLogger(logger),
	)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.App.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
