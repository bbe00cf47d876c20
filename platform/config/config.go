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
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings needed by the HTTP router.
type HTTPConfig interface {
	GetEnv() string
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// JWTConfig provides JWT validation settings for admin middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// IntakeConfig provides the shared API key for the lead intake endpoint.
type IntakeConfig interface {
	GetIntakeAPIKey() string
}

// KVConfig provides Redis connection settings.
type KVConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// DatabaseConfig provides database connection settings for the audit log.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// CRMConfig provides settings for the CRM HTTP client.
type CRMConfig interface {
	GetCRMBaseURL() string
	GetCRMTimeout() time.Duration
	GetCRMRequestsPerSecond() float64
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	KVConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetMonitorCron() string
	GetMonitorConfigPath() string
}

// NotifyConfig provides settings for drift/lead notifications.
type NotifyConfig interface {
	GetSlackWebhookURL() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetAlertFromAddress() string
	GetAlertToAddress() string
}

// ComposerConfig selects the custom-property list selection strategy.
type ComposerConfig interface {
	GetComposerStrategy() string
}

// =============================================================================
// Config struct and loader
// =============================================================================

// Config holds all application settings, loaded once at startup.
type Config struct {
	Env               string
	HTTPAddr          string
	RedisURL          string
	RedisTLSInsecure  bool
	DatabaseURL       string
	JWTAccessSecret   string
	IntakeAPIKey      string
	CRMBaseURL        string
	CRMTimeout        time.Duration
	CRMRequestsPerSec float64
	CORSAllowAll      bool
	CORSOrigins       []string
	AsynqQueueName    string
	AsynqConcurrency  int
	MonitorCron       string
	MonitorConfigPath string
	SlackWebhookURL   string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	AlertFromAddress  string
	AlertToAddress    string
	ComposerStrategy  string
}

// Load reads configuration from the environment (and .env if present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		RedisURL:          getEnv("REDIS_URL", ""),
		RedisTLSInsecure:  strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTAccessSecret:   getEnv("JWT_ACCESS_SECRET", ""),
		IntakeAPIKey:      getEnv("INTAKE_API_KEY", ""),
		CRMBaseURL:        getEnv("CRM_BASE_URL", "https://api.hubapi.com"),
		CRMTimeout:        mustDuration(getEnv("CRM_TIMEOUT", "15s")),
		CRMRequestsPerSec: mustFloat(getEnv("CRM_REQUESTS_PER_SECOND", "8")),
		CORSAllowAll:      corsAllowAll,
		CORSOrigins:       corsOrigins,
		AsynqQueueName:    getEnv("ASYNQ_QUEUE", "monitor"),
		AsynqConcurrency:  mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		MonitorCron:       getEnv("MONITOR_CRON", "@every 1h"),
		MonitorConfigPath: getEnv("MONITOR_CONFIG_PATH", "monitor.yml"),
		SlackWebhookURL:   getEnv("SLACK_WEBHOOK_URL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		AlertFromAddress:  getEnv("ALERT_FROM_ADDRESS", ""),
		AlertToAddress:    getEnv("ALERT_TO_ADDRESS", ""),
		ComposerStrategy:  getEnv("COMPOSER_STRATEGY", "random"),
	}

	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.IntakeAPIKey == "" {
		return nil, fmt.Errorf("INTAKE_API_KEY is required")
	}
	if cfg.CRMTimeout <= 0 {
		return nil, fmt.Errorf("CRM_TIMEOUT must be a positive duration")
	}

	return cfg, nil
}

// =============================================================================
// Interface implementations
// =============================================================================

func (c *Config) GetEnv() string                    { return c.Env }
func (c *Config) GetHTTPAddr() string               { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool             { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string          { return c.CORSOrigins }
func (c *Config) GetJWTAccessSecret() string        { return c.JWTAccessSecret }
func (c *Config) GetIntakeAPIKey() string           { return c.IntakeAPIKey }
func (c *Config) GetRedisURL() string               { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool         { return c.RedisTLSInsecure }
func (c *Config) GetDatabaseURL() string            { return c.DatabaseURL }
func (c *Config) GetCRMBaseURL() string             { return c.CRMBaseURL }
func (c *Config) GetCRMTimeout() time.Duration      { return c.CRMTimeout }
func (c *Config) GetCRMRequestsPerSecond() float64  { return c.CRMRequestsPerSec }
func (c *Config) GetAsynqQueueName() string         { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int          { return c.AsynqConcurrency }
func (c *Config) GetMonitorCron() string            { return c.MonitorCron }
func (c *Config) GetMonitorConfigPath() string      { return c.MonitorConfigPath }
func (c *Config) GetSlackWebhookURL() string        { return c.SlackWebhookURL }
func (c *Config) GetSMTPHost() string               { return c.SMTPHost }
func (c *Config) GetSMTPPort() int                  { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string           { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string           { return c.SMTPPassword }
func (c *Config) GetAlertFromAddress() string       { return c.AlertFromAddress }
func (c *Config) GetAlertToAddress() string         { return c.AlertToAddress }
func (c *Config) GetComposerStrategy() string       { return c.ComposerStrategy }

// =============================================================================
// Helpers
// =============================================================================

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
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func mustFloat(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
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
