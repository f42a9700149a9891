package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Chartmetric ChartmetricConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Report      ReportConfig
	Logging     LoggingConfig
}

type ChartmetricConfig struct {
	BaseURL      string
	AccessToken  string
	RefreshToken string
	Offline      bool

	ThrottleInterval time.Duration
	MaxRetries       int
	BaseRetryDelay   time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

type ReportConfig struct {
	Weeks         int
	IncludeTracks bool
	ArtistsFile   string
	OutputDir     string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Chartmetric: ChartmetricConfig{
			BaseURL:          getEnv("CHARTMETRIC_BASE_URL", "https://api.chartmetric.com/api"),
			AccessToken:      getEnv("CHARTMETRIC_ACCESS_TOKEN", ""),
			RefreshToken:     getEnv("CHARTMETRIC_REFRESH_TOKEN", ""),
			Offline:          getEnvBool("OFFLINE", false),
			ThrottleInterval: time.Duration(getEnvInt("CHARTMETRIC_THROTTLE_MS", 10000)) * time.Millisecond,
			MaxRetries:       getEnvInt("CHARTMETRIC_MAX_RETRIES", 3),
			BaseRetryDelay:   time.Duration(getEnvInt("CHARTMETRIC_RETRY_BASE_MS", 30000)) * time.Millisecond,
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "artistpulse"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Enabled:  getEnvBool("REDIS_ENABLED", true),
		},
		Report: ReportConfig{
			Weeks:         getEnvInt("TRACKER_WEEKS", 8),
			IncludeTracks: getEnvBool("TRACKER_INCLUDE_TRACKS", true),
			ArtistsFile:   getEnv("ARTISTS_FILE", "artists.txt"),
			OutputDir:     getEnv("OUTPUT_DIR", "outputExports"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !c.Chartmetric.Offline && c.Chartmetric.AccessToken == "" && c.Chartmetric.RefreshToken == "" {
		return fmt.Errorf("CHARTMETRIC_ACCESS_TOKEN or CHARTMETRIC_REFRESH_TOKEN is required unless OFFLINE=true")
	}
	if c.Report.Weeks < 1 {
		return fmt.Errorf("TRACKER_WEEKS must be at least 1")
	}
	if c.Postgres.Database == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
