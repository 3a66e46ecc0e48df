// Package config provides configuration management for the content router.
// It loads configuration from environment variables with sensible defaults
// and validates it before the application starts.
//
// Environment Variables:
//
// Application Settings:
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FILE: Optional log file; stdout when empty
//   - DEFAULT_RULE_HANDLER: Handler used by rules that name none (default: desk_fetch_publish)
//
// Database Configuration:
//   - DATABASE_TYPE: "sqlite" or "postgres" (default: sqlite)
//   - DATABASE_PATH: SQLite database file path (default: ./content_router.db)
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_DB, POSTGRES_USER, POSTGRES_PASSWORD,
//     POSTGRES_SSL_MODE: PostgreSQL connection settings
//
// Redis Configuration:
//   - REDIS_ADDRESS: Redis server address; empty disables Redis (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//   - REDIS_KEY_PREFIX: Prefix for every key and channel (default: content-router)
//
// Routing:
//   - SCHEME_CACHE_TTL: How long routing schemes stay cached (default: 5m)
//   - INGEST_WORKERS: Number of ingest queue consumers (default: 4)
//   - INGEST_POP_TIMEOUT: Blocking pop timeout per poll (default: 5s)
//   - INGEST_RATE_LIMIT: Items routed per second across all workers; 0 disables (default: 0)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the content router.
type Config struct {
	LogLevel           string
	LogFile            string
	DefaultRuleHandler string

	// Database configuration
	DatabaseType     string // "sqlite" or "postgres"
	DatabasePath     string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresSSLMode  string

	// Redis configuration
	RedisAddress   string
	RedisPassword  string
	RedisDB        string
	RedisPoolSize  string
	RedisKeyPrefix string

	// Routing configuration
	SchemeCacheTTL   string
	IngestWorkers    string
	IngestPopTimeout string
	IngestRateLimit  string
}

// Load creates a new Config instance with values loaded from environment variables.
// If an environment variable is not set, the corresponding default value is used.
//
// This function does not validate the configuration - call Validate() on the
// returned Config before use.
func Load() *Config {
	return &Config{
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
		DefaultRuleHandler: getEnv("DEFAULT_RULE_HANDLER", "desk_fetch_publish"),

		DatabaseType:     getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "./content_router.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "content_router"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		RedisAddress:   getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnv("REDIS_DB", "0"),
		RedisPoolSize:  getEnv("REDIS_POOL_SIZE", "10"),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "content-router"),

		SchemeCacheTTL:   getEnv("SCHEME_CACHE_TTL", "5m"),
		IngestWorkers:    getEnv("INGEST_WORKERS", "4"),
		IngestPopTimeout: getEnv("INGEST_POP_TIMEOUT", "5s"),
		IngestRateLimit:  getEnv("INGEST_RATE_LIMIT", "0"),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks required fields, formats and cross-field dependencies.
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case "sqlite":
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required when using SQLite")
		}
	case "postgres", "postgresql":
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when using PostgreSQL")
		}
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required when using PostgreSQL")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when using PostgreSQL")
		}
		if port, err := strconv.Atoi(c.PostgresPort); err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("POSTGRES_PORT must be a valid port number")
		}
	default:
		return fmt.Errorf("DATABASE_TYPE must be 'sqlite' or 'postgres'")
	}

	if c.RedisAddress != "" {
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
	}

	if c.DefaultRuleHandler == "" {
		return fmt.Errorf("DEFAULT_RULE_HANDLER must not be empty")
	}

	if _, err := time.ParseDuration(c.SchemeCacheTTL); err != nil {
		return fmt.Errorf("SCHEME_CACHE_TTL must be a valid duration (e.g., '5m')")
	}
	if _, err := time.ParseDuration(c.IngestPopTimeout); err != nil {
		return fmt.Errorf("INGEST_POP_TIMEOUT must be a valid duration (e.g., '5s')")
	}
	if workers, err := strconv.Atoi(c.IngestWorkers); err != nil || workers < 1 {
		return fmt.Errorf("INGEST_WORKERS must be a positive number")
	}
	if limit, err := strconv.ParseFloat(c.IngestRateLimit, 64); err != nil || limit < 0 {
		return fmt.Errorf("INGEST_RATE_LIMIT must be a non-negative number")
	}

	return nil
}

// RedisDBNumber returns REDIS_DB as an int. Call after Validate.
func (c *Config) RedisDBNumber() int {
	n, _ := strconv.Atoi(c.RedisDB)
	return n
}

// RedisPoolSizeNumber returns REDIS_POOL_SIZE as an int. Call after Validate.
func (c *Config) RedisPoolSizeNumber() int {
	n, _ := strconv.Atoi(c.RedisPoolSize)
	return n
}

// SchemeCacheDuration returns SCHEME_CACHE_TTL parsed. Call after Validate.
func (c *Config) SchemeCacheDuration() time.Duration {
	d, _ := time.ParseDuration(c.SchemeCacheTTL)
	return d
}

// IngestWorkerCount returns INGEST_WORKERS as an int. Call after Validate.
func (c *Config) IngestWorkerCount() int {
	n, _ := strconv.Atoi(c.IngestWorkers)
	return n
}

// IngestPopTimeoutDuration returns INGEST_POP_TIMEOUT parsed. Call after Validate.
func (c *Config) IngestPopTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.IngestPopTimeout)
	return d
}

// IngestRateLimitPerSecond returns INGEST_RATE_LIMIT as a float. Call after Validate.
func (c *Config) IngestRateLimitPerSecond() float64 {
	f, _ := strconv.ParseFloat(c.IngestRateLimit, 64)
	return f
}
