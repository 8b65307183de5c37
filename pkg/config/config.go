package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	FX    FXConfig
	Quote QuoteConfig

	// HTTP API
	CORSOrigins []string

	// Rebalance policy (optional YAML override of sector targets)
	PolicyFile string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
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

// FXConfig holds exchange rate source configuration
type FXConfig struct {
	BaseURL      string        // exchangerate-api.com 호환 엔드포인트
	CacheTTL     time.Duration // 환율 캐시 유지 시간
	FallbackRate float64       // API 실패 시 사용할 USD/KRW 기본 환율
}

// QuoteConfig holds symbol lookup configuration
type QuoteConfig struct {
	NaverBaseURL string
	YahooBaseURL string
	CacheTTL     time.Duration
	YahooRPS     int // Yahoo 초당 요청 한도
}

// Load reads configuration from environment variables and requires a database
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	cfg := load()

	if err := cfg.validate(true); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithoutDatabase reads configuration for commands that never touch PostgreSQL
// (analyze, quote, fx)
func LoadWithoutDatabase() (*Config, error) {
	cfg := load()

	if err := cfg.validate(false); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func load() *Config {
	loadEnvFile()

	return &Config{
		// Server
		Port: getEnv("PORT", "8000"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
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

		// External APIs
		FX: FXConfig{
			BaseURL:      getEnv("FX_BASE_URL", "https://api.exchangerate-api.com/v4/latest"),
			CacheTTL:     getEnvAsDuration("FX_CACHE_TTL", "5m"),
			FallbackRate: getEnvAsFloat("FX_FALLBACK_USD_KRW", 1300),
		},

		Quote: QuoteConfig{
			NaverBaseURL: getEnv("NAVER_BASE_URL", "https://finance.naver.com"),
			YahooBaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			CacheTTL:     getEnvAsDuration("QUOTE_CACHE_TTL", "10m"),
			YahooRPS:     getEnvAsInt("YAHOO_RPS", 5),
		},

		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		PolicyFile:  getEnv("REBALANCE_POLICY_FILE", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}
}

// validate checks if required configuration values are set
func (c *Config) validate(requireDatabase bool) error {
	if requireDatabase && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.FX.FallbackRate <= 0 {
		return fmt.Errorf("FX_FALLBACK_USD_KRW must be positive")
	}

	if c.FX.CacheTTL <= 0 {
		return fmt.Errorf("FX_CACHE_TTL must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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

// getEnvAsList splits a comma separated value, dropping empty entries
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
