package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the queueview server. It is loaded once
// at startup and not modified afterwards.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Jobs     JobsConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port               int
	Env                string
	RateLimitPerMinute int
}

type AuthConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	DefaultPassword string
	// AllJobsRole, when set, restricts the unscoped job listing to that role.
	AllJobsRole string
}

type JobsConfig struct {
	Source   string
	DataPath string
	Timeout  time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// Job sources.
const (
	SourceXLSX     = "xlsx"
	SourcePostgres = "postgres"
)

var validSources = map[string]bool{
	SourceXLSX:     true,
	SourcePostgres: true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               envInt("QUEUEVIEW_PORT", 8000),
			Env:                envString("QUEUEVIEW_ENV", "development"),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			TokenTTL:        envDuration("JWT_TTL", time.Hour),
			DefaultPassword: os.Getenv("DEFAULT_PASSWORD"),
			AllJobsRole:     strings.TrimSpace(os.Getenv("ALL_JOBS_ROLE")),
		},
		Jobs: JobsConfig{
			Source:   envString("JOBS_SOURCE", SourceXLSX),
			DataPath: envString("JOBS_DATA_PATH", "data/jobs_data.xlsx"),
			Timeout:  envDuration("SOURCE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if !validSources[c.Jobs.Source] {
		return fmt.Errorf("JOBS_SOURCE must be one of xlsx, postgres; got %q", c.Jobs.Source)
	}
	if c.Jobs.Source == SourceXLSX && c.Jobs.DataPath == "" {
		return fmt.Errorf("JOBS_DATA_PATH is required when JOBS_SOURCE is xlsx")
	}
	if c.Jobs.Timeout <= 0 {
		return fmt.Errorf("SOURCE_TIMEOUT must be positive, got %s", c.Jobs.Timeout)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
