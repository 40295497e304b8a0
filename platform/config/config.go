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

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetAsynqMaxRetry() int
	GetPendingSweepInterval() time.Duration
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketClaimDocuments() string
	GetClaimDocumentPrefix() string
	IsMinIOEnabled() bool
}

// PortalConfig provides settings for the claim portal reader.
type PortalConfig interface {
	GetPortalBaseURL() string
	GetPortalUsername() string
	GetPortalPassword() string
	GetPortalHeadless() bool
	GetPortalProfilePath() string
	GetPortalMinDelay() time.Duration
	GetPortalMaxDelay() time.Duration
	IsPortalEnabled() bool
}

// ExtractionConfig provides settings for phone extraction.
type ExtractionConfig interface {
	GetPhoneMetadataEnabled() bool
	GetExtractionCacheTTL() time.Duration
	GetExtractionConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                       string
	HTTPAddr                  string
	DatabaseURL               string
	JWTAccessSecret           string
	CORSAllowAll              bool
	CORSOrigins               []string
	CORSAllowCreds            bool
	RedisURL                  string
	RedisTLSInsecure          bool
	AsynqQueueName            string
	AsynqConcurrency          int
	AsynqMaxRetry             int
	PendingSweepInterval      time.Duration
	MinIOEndpoint             string
	MinIOAccessKey            string
	MinIOSecretKey            string
	MinIOUseSSL               bool
	MinIOMaxFileSize          int64
	MinioBucketClaimDocuments string
	ClaimDocumentPrefix       string
	PortalBaseURL             string
	PortalUsername            string
	PortalPassword            string
	PortalHeadless            bool
	PortalProfilePath         string
	PortalMinDelay            time.Duration
	PortalMaxDelay            time.Duration
	PhoneMetadataEnabled      bool
	ExtractionCacheTTL        time.Duration
	ExtractionConcurrency     int
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
func (c *Config) GetAsynqMaxRetry() int     { return c.AsynqMaxRetry }
func (c *Config) GetPendingSweepInterval() time.Duration {
	return c.PendingSweepInterval
}

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string   { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string  { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string  { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool       { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64 { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketClaimDocuments() string {
	return c.MinioBucketClaimDocuments
}
func (c *Config) GetClaimDocumentPrefix() string { return c.ClaimDocumentPrefix }
func (c *Config) IsMinIOEnabled() bool           { return c.MinIOEndpoint != "" }

// PortalConfig implementation
func (c *Config) GetPortalBaseURL() string         { return c.PortalBaseURL }
func (c *Config) GetPortalUsername() string        { return c.PortalUsername }
func (c *Config) GetPortalPassword() string        { return c.PortalPassword }
func (c *Config) GetPortalHeadless() bool          { return c.PortalHeadless }
func (c *Config) GetPortalProfilePath() string     { return c.PortalProfilePath }
func (c *Config) GetPortalMinDelay() time.Duration { return c.PortalMinDelay }
func (c *Config) GetPortalMaxDelay() time.Duration { return c.PortalMaxDelay }
func (c *Config) IsPortalEnabled() bool {
	return c.PortalBaseURL != "" && c.PortalUsername != ""
}

// ExtractionConfig implementation
func (c *Config) GetPhoneMetadataEnabled() bool        { return c.PhoneMetadataEnabled }
func (c *Config) GetExtractionCacheTTL() time.Duration { return c.ExtractionCacheTTL }
func (c *Config) GetExtractionConcurrency() int        { return c.ExtractionConcurrency }

// Load reads configuration for the server binaries. DATABASE_URL and
// JWT_ACCESS_SECRET are required.
func Load() (*Config, error) {
	cfg, err := LoadOffline()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}

	return cfg, nil
}

// LoadOffline reads configuration without requiring a database or auth
// secret, for command line tools that work on local files.
func LoadOffline() (*Config, error) {
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
		JWTAccessSecret:           getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:              corsAllowAll,
		CORSOrigins:               corsOrigins,
		CORSAllowCreds:            strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:                  getEnv("REDIS_URL", ""),
		RedisTLSInsecure:          strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:            getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:          mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		AsynqMaxRetry:             mustInt(getEnv("ASYNQ_MAX_RETRY", "5")),
		PendingSweepInterval:      mustDuration(getEnv("PENDING_SWEEP_INTERVAL", "15m")),
		MinIOEndpoint:             getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:            getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:            getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:               strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:          mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinioBucketClaimDocuments: getEnv("MINIO_BUCKET_CLAIM_DOCUMENTS", "claim-documents"),
		ClaimDocumentPrefix:       getEnv("CLAIM_DOCUMENT_PREFIX", "text"),
		PortalBaseURL:             getEnv("PORTAL_BASE_URL", ""),
		PortalUsername:            getEnv("PORTAL_USERNAME", ""),
		PortalPassword:            getEnv("PORTAL_PASSWORD", ""),
		PortalHeadless:            strings.EqualFold(getEnv("PORTAL_HEADLESS", "true"), "true"),
		PortalProfilePath:         getEnv("PORTAL_PROFILE_PATH", ""),
		PortalMinDelay:            mustDuration(getEnv("PORTAL_MIN_DELAY", "300ms")),
		PortalMaxDelay:            mustDuration(getEnv("PORTAL_MAX_DELAY", "900ms")),
		PhoneMetadataEnabled:      strings.EqualFold(getEnv("PHONE_METADATA_ENABLED", "true"), "true"),
		ExtractionCacheTTL:        mustDuration(getEnv("EXTRACTION_CACHE_TTL", "24h")),
		ExtractionConcurrency:     mustInt(getEnv("EXTRACTION_CONCURRENCY", "4")),
	}

	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.PortalMaxDelay < cfg.PortalMinDelay {
		return nil, fmt.Errorf("PORTAL_MAX_DELAY must not be lower than PORTAL_MIN_DELAY")
	}
	if cfg.ExtractionConcurrency < 1 {
		cfg.ExtractionConcurrency = 1
	}

	return cfg, nil
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
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
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
