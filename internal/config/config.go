// Package config provides configuration management functionality.
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

// Reference data sources
const (
	SourceDir    = "dir"
	SourceXLSX   = "xlsx"
	SourceSQLite = "sqlite"
	SourceS3     = "s3"
)

// Market verdict strategies
const (
	StrategyTrend = "trend"
	StrategyGap   = "gap"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Directory holding the reference tables (always absolute)
	Port           int
	DevMode        bool
	AllowedOrigins []string // CORS origins, also used as WebSocket origin patterns
	Data           DataConfig
	LLM            LLMConfig
	Log            LogConfig
	Market         MarketConfig
	CacheTTL       time.Duration // Commentary cache lifetime
}

// DataConfig selects where reference tables are read from
type DataConfig struct {
	Source     string
	SQLitePath string
	S3         S3Config
}

// S3Config configures the bucket source (AWS S3 or any S3-compatible store such as R2)
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// LLMConfig configures the commentary language model
type LLMConfig struct {
	APIKey    string // Empty disables the model; templates are used instead
	Model     string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

// LogConfig mirrors pkg/logger.Config
type LogConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// MarketConfig holds defaults for the market trend analysis
type MarketConfig struct {
	VerdictStrategy string
	LagMonths       int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		Port:           getEnvAsInt("PORT", 3000),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		Data: DataConfig{
			Source:     getEnv("DATA_SOURCE", SourceDir),
			SQLitePath: getEnv("DATA_SQLITE_PATH", filepath.Join(absDataDir, "reference.db")),
			S3: S3Config{
				Bucket:          getEnv("S3_BUCKET", ""),
				Prefix:          getEnv("S3_PREFIX", ""),
				Region:          getEnv("S3_REGION", "auto"),
				Endpoint:        getEnv("S3_ENDPOINT", ""),
				AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			},
		},
		LLM: LLMConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			BaseURL:   getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			Timeout:   time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
			MaxTokens: getEnvAsInt("LLM_MAX_TOKENS", 2000),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Pretty:     getEnvAsBool("LOG_PRETTY", false),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 14),
		},
		Market: MarketConfig{
			VerdictStrategy: getEnv("MARKET_VERDICT_STRATEGY", StrategyTrend),
			LagMonths:       getEnvAsInt("MARKET_LAG_MONTHS", 0),
		},
		CacheTTL: time.Duration(getEnvAsInt("COMMENTARY_CACHE_TTL_MINUTES", 30)) * time.Minute,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceDir, SourceXLSX, SourceSQLite:
	case SourceS3:
		if c.Data.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when DATA_SOURCE=%s", SourceS3)
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.Data.Source)
	}

	switch c.Market.VerdictStrategy {
	case StrategyTrend, StrategyGap:
	default:
		return fmt.Errorf("unknown MARKET_VERDICT_STRATEGY %q", c.Market.VerdictStrategy)
	}

	if c.Market.LagMonths < 0 {
		return fmt.Errorf("MARKET_LAG_MONTHS must not be negative, got %d", c.Market.LagMonths)
	}
	if c.Port <= 0 {
		return fmt.Errorf("PORT must be positive, got %d", c.Port)
	}

	return nil
}

// HasLLM reports whether a language model credential is configured
func (c *Config) HasLLM() bool {
	return c.LLM.APIKey != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
