package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Campaign Pulse application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Generator  GeneratorConfig
	Analytics  AnalyticsConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type ClickHouseConfig struct {
	Enabled  bool
	Addr     string
	User     string
	Password string
	DBName   string
}

type RateLimitConfig struct {
	Enabled   bool
	RPS       float64
	Burst     int
	SkipPaths []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// GeneratorConfig holds the default dataset shape.  Individual
// regeneration requests may override any of these.
type GeneratorConfig struct {
	Seed         int64
	HorizonStart string
	HorizonEnd   string
	Advertisers  int
	Campaigns    int
	Impressions  int
}

// AnalyticsConfig holds the derived-metric policies.
type AnalyticsConfig struct {
	PacingTolerancePct  float64
	PublisherCostRate   float64
	ReceivableTermsDays int
	PayableTermsDays    int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("PULSE_HTTP_ADDR", ":8080"),
			Env:             getEnv("PULSE_ENV", "development"),
			ShutdownTimeout: getDurationEnv("PULSE_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("PULSE_DB_ENABLED", false),
			Host:     getEnv("PULSE_DB_HOST", "localhost"),
			Port:     getIntEnv("PULSE_DB_PORT", 5432),
			User:     getEnv("PULSE_DB_USER", "pulse"),
			Password: getEnv("PULSE_DB_PASSWORD", "pulse_secret"),
			DBName:   getEnv("PULSE_DB_NAME", "pulse"),
			SSLMode:  getEnv("PULSE_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("PULSE_DB_MAX_CONNS", 10),
			MinConns: getIntEnv("PULSE_DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("PULSE_REDIS_ENABLED", false),
			Addr:     getEnv("PULSE_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("PULSE_REDIS_PASSWORD", ""),
			DB:       getIntEnv("PULSE_REDIS_DB", 0),
			CacheTTL: getDurationEnv("PULSE_REDIS_CACHE_TTL", 15*time.Minute),
		},
		ClickHouse: ClickHouseConfig{
			Enabled:  getBoolEnv("PULSE_CLICKHOUSE_ENABLED", false),
			Addr:     getEnv("PULSE_CLICKHOUSE_ADDR", "localhost:9000"),
			User:     getEnv("PULSE_CLICKHOUSE_USER", "default"),
			Password: getEnv("PULSE_CLICKHOUSE_PASSWORD", ""),
			DBName:   getEnv("PULSE_CLICKHOUSE_DB", "pulse"),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getBoolEnv("PULSE_RATE_LIMIT_ENABLED", true),
			RPS:       getFloatEnv("PULSE_RATE_LIMIT_RPS", 50),
			Burst:     getIntEnv("PULSE_RATE_LIMIT_BURST", 20),
			SkipPaths: getSliceEnv("PULSE_RATE_LIMIT_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		Log: LogConfig{
			Level:  getEnv("PULSE_LOG_LEVEL", "info"),
			Format: getEnv("PULSE_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("PULSE_METRICS_ENABLED", true),
			Path:    getEnv("PULSE_METRICS_PATH", "/metrics"),
		},
		Generator: GeneratorConfig{
			Seed:         getInt64Env("PULSE_GEN_SEED", 42),
			HorizonStart: getEnv("PULSE_GEN_HORIZON_START", "2020-01-01"),
			HorizonEnd:   getEnv("PULSE_GEN_HORIZON_END", "2024-12-31"),
			Advertisers:  getIntEnv("PULSE_GEN_ADVERTISERS", 20),
			Campaigns:    getIntEnv("PULSE_GEN_CAMPAIGNS", 50),
			Impressions:  getIntEnv("PULSE_GEN_IMPRESSIONS", 50000),
		},
		Analytics: AnalyticsConfig{
			PacingTolerancePct:  getFloatEnv("PULSE_PACING_TOLERANCE_PCT", 5),
			PublisherCostRate:   getFloatEnv("PULSE_PUBLISHER_COST_RATE", 0.75),
			ReceivableTermsDays: getIntEnv("PULSE_RECEIVABLE_TERMS_DAYS", 45),
			PayableTermsDays:    getIntEnv("PULSE_PAYABLE_TERMS_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if _, err := time.Parse("2006-01-02", c.Generator.HorizonStart); err != nil {
		return fmt.Errorf("PULSE_GEN_HORIZON_START must be YYYY-MM-DD: %w", err)
	}
	if _, err := time.Parse("2006-01-02", c.Generator.HorizonEnd); err != nil {
		return fmt.Errorf("PULSE_GEN_HORIZON_END must be YYYY-MM-DD: %w", err)
	}
	if c.Analytics.PublisherCostRate < 0 || c.Analytics.PublisherCostRate >= 1 {
		return fmt.Errorf("PULSE_PUBLISHER_COST_RATE must be in [0, 1)")
	}
	if c.Analytics.PacingTolerancePct < 0 {
		return fmt.Errorf("PULSE_PACING_TOLERANCE_PCT must be non-negative")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getInt64Env(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
