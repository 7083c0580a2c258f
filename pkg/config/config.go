package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string `validate:"required,numeric"`
	Env  string `validate:"oneof=development staging production test"`

	// Pipeline
	Pipeline PipelineConfig

	// Market data provider
	Yahoo YahooConfig

	// Database (optional, enables recommendation history)
	Database DatabaseConfig

	// Redis (optional, enables the shared rate limiter)
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// PipelineConfig holds collection and scheduling settings
type PipelineConfig struct {
	RosterPath      string        `validate:"required"`
	PacingInterval  time.Duration `validate:"gte=0"`
	Workers         int           `validate:"gte=1"`
	RefreshSchedule string
}

// YahooConfig holds market data provider settings
type YahooConfig struct {
	BaseURL   string `validate:"required,url"`
	UserAgent string
	Timeout   time.Duration `validate:"gt=0"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Pipeline: PipelineConfig{
			RosterPath:      getEnv("ROSTER_PATH", "sp500_companies.csv"),
			PacingInterval:  getEnvAsDuration("PACING_INTERVAL", "1s"),
			Workers:         getEnvAsInt("COLLECT_WORKERS", 1),
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 0 18 * * 1-5"),
		},

		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			UserAgent: getEnv("YAHOO_USER_AGENT", "Mozilla/5.0 (compatible; stockpick/1.0)"),
			Timeout:   getEnvAsDuration("HTTP_TIMEOUT", "30s"),
		},

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	// 동시 수집은 pacing 간격이 있어야 레이트 리밋을 지킬 수 있음
	if c.Pipeline.Workers > 1 && c.Pipeline.PacingInterval == 0 {
		return fmt.Errorf("PACING_INTERVAL must be positive when COLLECT_WORKERS > 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
