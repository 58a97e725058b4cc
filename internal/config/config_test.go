package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zepolnala/leave-management-system/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "development", cfg.App.Env)
		assert.True(t, cfg.App.IsDevelopment())
		assert.Equal(t, "3000", cfg.Server.Port)
		assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.False(t, cfg.Redis.Enabled())
		assert.Equal(t, 3*time.Second, cfg.Kafka.PollInterval)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("PORT", "8081")
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("DB_PORT", "6543")
		t.Setenv("REDIS_ADDR", "redis:6379")
		t.Setenv("APP_ENV", "production")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "8081", cfg.Server.Port)
		assert.False(t, cfg.App.IsDevelopment())
		assert.True(t, cfg.Redis.Enabled())
		assert.Equal(t,
			"host=db.internal port=6543 user=postgres password=postgres dbname=leave_management sslmode=disable",
			cfg.Database.DSN(),
		)
	})

	t.Run("negative invalid rate limit", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("RATE_LIMIT_BURST", "0")

		_, err := config.Load()
		assert.Error(t, err)
	})
}
