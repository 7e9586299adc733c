// Package config loads application configuration from the environment.
// Consumers depend on the narrow getter interfaces below rather than the
// concrete Config struct, so each module sees only the settings it needs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides token verification settings.
type JWTConfig interface {
	GetJWTSecret() string
}

// HTTPConfig provides HTTP server settings.
type HTTPConfig interface {
	GetPort() string
	GetEnvironment() string
	GetAllowedOrigins() []string
}

// RedisConfig provides redis connection settings.
type RedisConfig interface {
	GetRedisURL() string
}

// SchedulerConfig provides background job settings.
type SchedulerConfig interface {
	GetRedisURL() string
	GetSchedulerConcurrency() int
	GetRetentionDays() int
}

// EmailConfig provides SMTP settings for the daily digest.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFrom() string
	GetEmailFromName() string
}

// MinIOConfig provides object storage settings for ledger archives.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOBucket() string
	GetMinIOUseSSL() bool
}

// SpeedrunConfig provides the work-cycling engine settings.
type SpeedrunConfig interface {
	GetBatchSize() int
	GetScoringTablesPath() string
	GetDefaultTimezone() string
}

// Config holds all application configuration loaded from the environment.
type Config struct {
	Environment    string
	Port           string
	DatabaseURL    string
	JWTSecret      string
	AllowedOrigins []string

	RedisURL             string
	SchedulerConcurrency int
	RetentionDays        int

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	EmailFrom     string
	EmailFromName string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	BatchSize         int
	ScoringTablesPath string
	DefaultTimezone   string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Environment:    getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SchedulerConcurrency: getEnvInt("SCHEDULER_CONCURRENCY", 5),
		RetentionDays:        getEnvInt("CYCLE_RETENTION_DAYS", 90),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		EmailFrom:     getEnv("EMAIL_FROM", "noreply@speedrun.local"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Speedrun"),

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "speedrun-archives"),
		MinIOUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		BatchSize:         getEnvInt("SPEEDRUN_BATCH_SIZE", 20),
		ScoringTablesPath: os.Getenv("SPEEDRUN_SCORING_TABLES"),
		DefaultTimezone:   getEnv("SPEEDRUN_DEFAULT_TIMEZONE", "America/New_York"),

		HTTPReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		HTTPWriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		HTTPIdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("SPEEDRUN_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("CYCLE_RETENTION_DAYS must be positive, got %d", c.RetentionDays)
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("SPEEDRUN_DEFAULT_TIMEZONE %q: %w", c.DefaultTimezone, err)
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Getter implementations.

func (c *Config) GetDatabaseURL() string      { return c.DatabaseURL }
func (c *Config) GetJWTSecret() string        { return c.JWTSecret }
func (c *Config) GetPort() string             { return c.Port }
func (c *Config) GetEnvironment() string      { return c.Environment }
func (c *Config) GetAllowedOrigins() []string { return c.AllowedOrigins }

func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetSchedulerConcurrency() int { return c.SchedulerConcurrency }
func (c *Config) GetRetentionDays() int        { return c.RetentionDays }

func (c *Config) GetSMTPHost() string      { return c.SMTPHost }
func (c *Config) GetSMTPPort() int         { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string  { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string  { return c.SMTPPassword }
func (c *Config) GetEmailFrom() string     { return c.EmailFrom }
func (c *Config) GetEmailFromName() string { return c.EmailFromName }

func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOBucket() string    { return c.MinIOBucket }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }

func (c *Config) GetBatchSize() int            { return c.BatchSize }
func (c *Config) GetScoringTablesPath() string { return c.ScoringTablesPath }
func (c *Config) GetDefaultTimezone() string   { return c.DefaultTimezone }

// Helpers.

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
