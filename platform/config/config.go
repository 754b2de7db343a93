// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetEmailProvider() string
	GetBrevoAPIKey() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
}

// NotificationConfig provides settings for the notification dispatch engine.
type NotificationConfig interface {
	// GetPublicBaseURL is the externally reachable base URL used when
	// rewriting development asset links and synthesizing image URLs.
	GetPublicBaseURL() string
	// GetAdminEmailOverride is the authoritative admin recipient list; when
	// non-empty the database roster is not consulted.
	GetAdminEmailOverride() []string
	// GetAdminEmailFallback is the last-resort admin recipient list used when
	// neither the override nor the roster yields any address.
	GetAdminEmailFallback() []string
	GetNotifySendTimeout() time.Duration
	GetNotifyDispatchConcurrency() int
	GetNotifyWorkerPoolSize() int
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetAdminAPIKey() string
}

// SchedulerConfig provides settings for the asynq-backed scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetDeliveryLogRetention() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                       string
	HTTPAddr                  string
	DatabaseURL               string
	CORSAllowAll              bool
	CORSOrigins               []string
	CORSAllowCreds            bool
	AdminAPIKey               string
	PublicBaseURL             string
	EmailEnabled              bool
	EmailProvider             string
	BrevoAPIKey               string
	EmailFromName             string
	EmailFromAddress          string
	SMTPHost                  string
	SMTPPort                  int
	SMTPUsername              string
	SMTPPassword              string
	AdminEmailOverride        []string
	AdminEmailFallback        []string
	NotifySendTimeout         time.Duration
	NotifyDispatchConcurrency int
	NotifyWorkerPoolSize      int
	RedisURL                  string
	RedisTLSInsecure          bool
	AsynqQueueName            string
	AsynqConcurrency          int
	DeliveryLogRetention      time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetEmailProvider() string    { return c.EmailProvider }
func (c *Config) GetBrevoAPIKey() string      { return c.BrevoAPIKey }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }

// NotificationConfig implementation
func (c *Config) GetPublicBaseURL() string            { return c.PublicBaseURL }
func (c *Config) GetAdminEmailOverride() []string     { return c.AdminEmailOverride }
func (c *Config) GetAdminEmailFallback() []string     { return c.AdminEmailFallback }
func (c *Config) GetNotifySendTimeout() time.Duration { return c.NotifySendTimeout }
func (c *Config) GetNotifyDispatchConcurrency() int   { return c.NotifyDispatchConcurrency }
func (c *Config) GetNotifyWorkerPoolSize() int        { return c.NotifyWorkerPoolSize }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) GetAdminAPIKey() string   { return c.AdminAPIKey }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                    { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool              { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string              { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int               { return c.AsynqConcurrency }
func (c *Config) GetDeliveryLogRetention() time.Duration { return c.DeliveryLogRetention }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                       getEnv("APP_ENV", "development"),
		HTTPAddr:                  getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		CORSAllowAll:              corsAllowAll,
		CORSOrigins:               corsOrigins,
		CORSAllowCreds:            strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AdminAPIKey:               getEnv("ADMIN_API_KEY", ""),
		PublicBaseURL:             getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		EmailEnabled:              strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true"),
		EmailProvider:             strings.ToLower(getEnv("EMAIL_PROVIDER", "brevo")),
		BrevoAPIKey:               getEnv("BREVO_API_KEY", ""),
		EmailFromName:             getEnv("EMAIL_FROM_NAME", "Imam Development Portal"),
		EmailFromAddress:          getEnv("EMAIL_FROM_ADDRESS", ""),
		SMTPHost:                  getEnv("SMTP_HOST", ""),
		SMTPPort:                  mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:              getEnv("SMTP_USERNAME", ""),
		SMTPPassword:              getEnv("SMTP_PASSWORD", ""),
		AdminEmailOverride:        splitCSV(getEnv("NOTIFY_ADMIN_EMAILS", "")),
		AdminEmailFallback:        splitCSV(getEnv("NOTIFY_ADMIN_FALLBACK_EMAILS", "")),
		NotifySendTimeout:         mustDuration(getEnv("NOTIFY_SEND_TIMEOUT", "15s")),
		NotifyDispatchConcurrency: mustInt(getEnv("NOTIFY_DISPATCH_CONCURRENCY", "16")),
		NotifyWorkerPoolSize:      mustInt(getEnv("NOTIFY_WORKER_POOL_SIZE", "8")),
		RedisURL:                  getEnv("REDIS_URL", ""),
		RedisTLSInsecure:          strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:            getEnv("ASYNQ_QUEUE_NAME", "default"),
		AsynqConcurrency:          mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		DeliveryLogRetention:      mustDuration(getEnv("DELIVERY_LOG_RETENTION", "2160h")),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
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
