// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// PipelineConfig provides settings for the loan stage pipeline.
type PipelineConfig interface {
	GetStageDelay(agentType string) time.Duration
	GetStalledAfter() time.Duration
	GetReconcileInterval() time.Duration
	GetAppBaseURL() string
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetAppBaseURL() string
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetSanctionLetterBucket() string
	IsMinIOEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	JWTAccessSecret      string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	AppBaseURL           string
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
	StageDelays          map[string]time.Duration
	StalledAfter         time.Duration
	ReconcileInterval    time.Duration
	EmailEnabled         bool
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	EmailFromName        string
	EmailFromAddress     string
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	SanctionLetterBucket string
}

// Stage delay defaults mirror the simulated processing latencies of the
// original pipeline. They are simulation parameters, not correctness-relevant.
var defaultStageDelays = map[string]time.Duration{
	"sales":        2 * time.Second,
	"verification": 3 * time.Second,
	"underwriting": 3 * time.Second,
	"sanction":     3 * time.Second,
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// PipelineConfig implementation
func (c *Config) GetStageDelay(agentType string) time.Duration {
	if d, ok := c.StageDelays[agentType]; ok && d > 0 {
		return d
	}
	if d, ok := defaultStageDelays[agentType]; ok {
		return d
	}
	return 3 * time.Second
}
func (c *Config) GetStalledAfter() time.Duration      { return c.StalledAfter }
func (c *Config) GetReconcileInterval() time.Duration { return c.ReconcileInterval }

// NotificationConfig implementation
func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetSanctionLetterBucket() string { return c.SanctionLetterBucket }
func (c *Config) IsMinIOEnabled() bool            { return c.MinIOEndpoint != "" }

// pipelineFile is the optional YAML overlay for pipeline tuning. Delays are
// Go duration strings ("2s", "500ms").
type pipelineFile struct {
	StageDelays       map[string]string `yaml:"stage_delays"`
	StalledAfter      string            `yaml:"stalled_after"`
	ReconcileInterval string            `yaml:"reconcile_interval"`
}

// Load reads configuration from environment variables and, when
// PIPELINE_CONFIG_FILE is set, overlays pipeline tuning from that YAML file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "false"), "true")

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTAccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:           getEnv("APP_BASE_URL", "http://localhost:4200"),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "loans"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		StageDelays:          loadStageDelaysFromEnv(),
		StalledAfter:         mustDuration(getEnv("PIPELINE_STALLED_AFTER", "1m")),
		ReconcileInterval:    mustDuration(getEnv("PIPELINE_RECONCILE_INTERVAL", "30s")),
		EmailEnabled:         emailEnabled,
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", "LoanFlow"),
		EmailFromAddress:     getEnv("EMAIL_FROM_ADDRESS", ""),
		MinIOEndpoint:        getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:       getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:          strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		SanctionLetterBucket: getEnv("MINIO_BUCKET_SANCTION_LETTERS", "sanction-letters"),
	}

	if path := getEnv("PIPELINE_CONFIG_FILE", ""); path != "" {
		if err := cfg.applyPipelineFile(path); err != nil {
			return nil, fmt.Errorf("load pipeline config file: %w", err)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailEnabled && (cfg.SMTPHost == "" || cfg.EmailFromAddress == "") {
		return nil, fmt.Errorf("SMTP_HOST and EMAIL_FROM_ADDRESS are required when EMAIL_ENABLED is true")
	}
	if cfg.StalledAfter <= 0 {
		return nil, fmt.Errorf("PIPELINE_STALLED_AFTER must be a positive duration")
	}

	return cfg, nil
}

func (c *Config) applyPipelineFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file pipelineFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return err
	}

	for agentType, value := range file.StageDelays {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid stage delay for %q: %s", agentType, value)
		}
		c.StageDelays[agentType] = d
	}
	if file.StalledAfter != "" {
		d, err := time.ParseDuration(file.StalledAfter)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid stalled_after: %s", file.StalledAfter)
		}
		c.StalledAfter = d
	}
	if file.ReconcileInterval != "" {
		d, err := time.ParseDuration(file.ReconcileInterval)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid reconcile_interval: %s", file.ReconcileInterval)
		}
		c.ReconcileInterval = d
	}

	return nil
}

func loadStageDelaysFromEnv() map[string]time.Duration {
	delays := make(map[string]time.Duration, len(defaultStageDelays))
	for agentType, fallback := range defaultStageDelays {
		key := "STAGE_DELAY_" + strings.ToUpper(agentType)
		if raw := getEnv(key, ""); raw != "" {
			if d, err := time.ParseDuration(raw); err == nil && d > 0 {
				delays[agentType] = d
				continue
			}
		}
		delays[agentType] = fallback
	}
	return delays
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
