package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Env string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	MaxRetries int
}

type RedisConfig struct {
	Addr       string
	MaxRetries int
}

type KafkaConfig struct {
	Broker       string
	PollInterval time.Duration
	MaxRetries   int
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// RedisEnabled reports whether idempotent request handling can be wired.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// Load reads .env (when present) and the process environment, environment
// values winning over defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env: v.GetString("APP_ENV"),
		},
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetDuration("SERVER_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetInt("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			Name:       v.GetString("DB_NAME"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			MaxRetries: v.GetInt("DB_MAX_RETRIES"),
		},
		Redis: RedisConfig{
			Addr:       v.GetString("REDIS_ADDR"),
			MaxRetries: v.GetInt("REDIS_MAX_RETRIES"),
		},
		Kafka: KafkaConfig{
			Broker:       v.GetString("KAFKA_BROKER"),
			PollInterval: v.GetDuration("OUTBOX_POLL_INTERVAL"),
			MaxRetries:   v.GetInt("KAFKA_MAX_RETRIES"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("SERVER_READ_TIMEOUT", 5*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "leave_management")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_RETRIES", 5)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_MAX_RETRIES", 5)
	v.SetDefault("KAFKA_BROKER", "")
	v.SetDefault("OUTBOX_POLL_INTERVAL", 3*time.Second)
	v.SetDefault("KAFKA_MAX_RETRIES", 5)
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Database.MaxRetries < 1 {
		return fmt.Errorf("DB_MAX_RETRIES must be at least 1, got %d", c.Database.MaxRetries)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate limit must be positive, got rps=%v burst=%d",
			c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}
	return nil
}
